package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/chatter-dev/chatter/internal/domain"
)

// ToggleReaction removes the (message, member, value) reaction if present,
// otherwise inserts it. The unique constraint guarantees the involution:
// two toggles restore the prior state. Returns whether the reaction exists
// after the call.
func (s *Storage) ToggleReaction(ctx context.Context, workspaceId domain.WorkspaceId, messageId domain.MsgId, memberId domain.MemberId, value string) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // The rollback will be ignored if the tx has been committed later in the function.

	var existingId int64
	err = tx.QueryRowContext(ctx, `
	DELETE FROM reactions
	WHERE message_id = $1 AND member_id = $2 AND value = $3
	RETURNING id`, messageId, memberId, value).Scan(&existingId)

	var active bool
	switch {
	case err == nil:
		active = false
	case errors.Is(err, sql.ErrNoRows):
		_, err = tx.ExecContext(ctx, `
		INSERT INTO reactions(workspace_id, message_id, member_id, value)
		VALUES($1, $2, $3, $4)`, workspaceId, messageId, memberId, value)
		if err != nil {
			return false, fmt.Errorf("failed to insert reaction: %w", err)
		}
		active = true
	default:
		return false, err
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return active, nil
}
