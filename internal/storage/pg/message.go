package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
	"github.com/chatter-dev/chatter/internal/timeline"
)

// Saves message to db
func (s *Storage) CreateMessage(ctx context.Context, data domain.MessageCreationData) (domain.Message, error) {
	created := time.Now().UTC().Round(time.Microsecond) // database anyway round to microsecond

	var id domain.MsgId
	err := s.db.QueryRowContext(ctx, `
	INSERT INTO messages(workspace_id, channel_id, conversation_id, parent_message_id, member_id, body, image, created)
	VALUES($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id`,
		data.WorkspaceId, nullableId(data.ChannelId), nullableId(data.ConversationId),
		nullableId(data.ParentMessageId), data.MemberId, data.Body, data.Image, created).Scan(&id)
	if err != nil {
		return domain.Message{}, fmt.Errorf("failed to insert message: %w", err)
	}

	return s.Message(ctx, id)
}

func (s *Storage) Message(ctx context.Context, id domain.MsgId) (domain.Message, error) {
	msg, err := s.scanMessage(s.db.QueryRowContext(ctx, `
	SELECT id, workspace_id, channel_id, conversation_id, parent_message_id, member_id, body, image, created, updated
	FROM messages
	WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Message{}, &internal_errors.ErrorWithStatusCode{Message: "Message not found", StatusCode: http.StatusNotFound}
		}
		return domain.Message{}, err
	}

	msgs := []domain.Message{msg}
	if err := s.enrichMessages(ctx, msgs); err != nil {
		return domain.Message{}, err
	}
	return msgs[0], nil
}

func (s *Storage) UpdateMessageBody(ctx context.Context, id domain.MsgId, body string) error {
	updated := time.Now().UTC().Round(time.Microsecond)
	result, err := s.db.ExecContext(ctx, `
	UPDATE messages SET body = $1, updated = $2 WHERE id = $3`, body, updated, id)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Message not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

// DeleteMessage removes the message; replies and reactions cascade.
func (s *Storage) DeleteMessage(ctx context.Context, id domain.MsgId) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Message not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

// MessagePage implements the timeline store contract: keyset pagination in
// descending (created, id) order, limit+1 probe for hasMore.
func (s *Storage) MessagePage(ctx context.Context, scope timeline.Scope, before *timeline.Position, limit int) ([]domain.Message, bool, error) {
	if err := scope.Validate(); err != nil {
		return nil, false, err
	}

	var where string
	var args []interface{}
	switch {
	case scope.ParentMessageId != nil:
		where = "parent_message_id = $1"
		args = append(args, *scope.ParentMessageId)
	case scope.ChannelId != nil:
		where = "channel_id = $1 AND parent_message_id IS NULL"
		args = append(args, *scope.ChannelId)
	default:
		where = "conversation_id = $1 AND parent_message_id IS NULL"
		args = append(args, *scope.ConversationId)
	}
	if before != nil {
		where += fmt.Sprintf(" AND (created, id) < ($%d, $%d)", len(args)+1, len(args)+2)
		args = append(args, before.CreatedAt, before.Id)
	}
	args = append(args, limit+1)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
	SELECT id, workspace_id, channel_id, conversation_id, parent_message_id, member_id, body, image, created, updated
	FROM messages
	WHERE %s
	ORDER BY created DESC, id DESC
	LIMIT $%d`, where, len(args)), args...)
	if err != nil {
		return nil, false, fmt.Errorf("failed to fetch messages: %w", err)
	}
	defer rows.Close()

	var msgs []domain.Message
	for rows.Next() {
		msg, err := s.scanMessage(rows)
		if err != nil {
			return nil, false, fmt.Errorf("failed to scan message: %w", err)
		}
		msgs = append(msgs, msg)
	}
	if err = rows.Err(); err != nil {
		return nil, false, fmt.Errorf("rows iteration error: %w", err)
	}

	hasMore := len(msgs) > limit
	if hasMore {
		msgs = msgs[:limit]
	}

	if err := s.enrichMessages(ctx, msgs); err != nil {
		return nil, false, err
	}
	return msgs, hasMore, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *Storage) scanMessage(row rowScanner) (domain.Message, error) {
	var msg domain.Message
	var channelId, conversationId, parentId sql.NullInt64
	var updated sql.NullTime
	err := row.Scan(
		&msg.Id, &msg.WorkspaceId, &channelId, &conversationId, &parentId,
		&msg.MemberId, &msg.Body, &msg.Image, &msg.CreatedAt, &updated,
	)
	if err != nil {
		return domain.Message{}, err
	}
	msg.ChannelId = idPtr(channelId)
	msg.ConversationId = idPtr(conversationId)
	msg.ParentMessageId = idPtr(parentId)
	if updated.Valid {
		t := updated.Time
		msg.UpdatedAt = &t
	}
	return msg, nil
}

func nullableId(id *int64) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *id, Valid: true}
}

func idPtr(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
