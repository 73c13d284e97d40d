package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
)

// GetOrCreateConversation returns the conversation between the two members
// regardless of pair orientation, inserting it on first use.
func (s *Storage) GetOrCreateConversation(workspaceId domain.WorkspaceId, memberOne, memberTwo domain.MemberId) (domain.Conversation, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var c domain.Conversation
	err = tx.QueryRow(`
	SELECT id, workspace_id, member_one_id, member_two_id
	FROM conversations
	WHERE workspace_id = $1
	  AND ((member_one_id = $2 AND member_two_id = $3) OR (member_one_id = $3 AND member_two_id = $2))`,
		workspaceId, memberOne, memberTwo).Scan(&c.Id, &c.WorkspaceId, &c.MemberOneId, &c.MemberTwoId)
	if err == nil {
		return c, tx.Commit()
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return domain.Conversation{}, err
	}

	err = tx.QueryRow(`
	INSERT INTO conversations(workspace_id, member_one_id, member_two_id)
	VALUES($1, $2, $3)
	RETURNING id`, workspaceId, memberOne, memberTwo).Scan(&c.Id)
	if err != nil {
		return domain.Conversation{}, fmt.Errorf("failed to insert conversation: %w", err)
	}
	c.WorkspaceId = workspaceId
	c.MemberOneId = memberOne
	c.MemberTwoId = memberTwo

	if err := tx.Commit(); err != nil {
		return domain.Conversation{}, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return c, nil
}

func (s *Storage) Conversation(id domain.ConversationId) (domain.Conversation, error) {
	var c domain.Conversation
	err := s.db.QueryRow(`
	SELECT id, workspace_id, member_one_id, member_two_id
	FROM conversations
	WHERE id = $1`, id).Scan(&c.Id, &c.WorkspaceId, &c.MemberOneId, &c.MemberTwoId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Conversation{}, &internal_errors.ErrorWithStatusCode{Message: "Conversation not found", StatusCode: http.StatusNotFound}
		}
		return domain.Conversation{}, err
	}
	return c, nil
}
