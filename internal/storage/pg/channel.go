package pg

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
)

func (s *Storage) CreateChannel(data domain.ChannelCreationData) (domain.ChannelId, error) {
	var id domain.ChannelId
	created := time.Now().UTC().Round(time.Microsecond)
	err := s.db.QueryRow(`
	INSERT INTO channels(workspace_id, name, created)
	VALUES($1, $2, $3)
	RETURNING id`, data.WorkspaceId, data.Name, created).Scan(&id)
	if err != nil {
		return -1, fmt.Errorf("failed to insert channel: %w", err)
	}
	return id, nil
}

func (s *Storage) Channel(id domain.ChannelId) (domain.Channel, error) {
	var c domain.Channel
	err := s.db.QueryRow(`
	SELECT id, workspace_id, name, created
	FROM channels
	WHERE id = $1`, id).Scan(&c.Id, &c.WorkspaceId, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Channel{}, &internal_errors.ErrorWithStatusCode{Message: "Channel not found", StatusCode: http.StatusNotFound}
		}
		return domain.Channel{}, err
	}
	return c, nil
}

func (s *Storage) Channels(workspaceId domain.WorkspaceId) ([]domain.Channel, error) {
	rows, err := s.db.Query(`
	SELECT id, workspace_id, name, created
	FROM channels
	WHERE workspace_id = $1
	ORDER BY created, id`, workspaceId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var channels []domain.Channel
	for rows.Next() {
		var c domain.Channel
		if err := rows.Scan(&c.Id, &c.WorkspaceId, &c.Name, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan channel: %w", err)
		}
		channels = append(channels, c)
	}
	return channels, rows.Err()
}

func (s *Storage) UpdateChannel(id domain.ChannelId, name string) error {
	result, err := s.db.Exec(`UPDATE channels SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Channel not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

// DeleteChannel removes the channel; its messages cascade via foreign key.
func (s *Storage) DeleteChannel(id domain.ChannelId) error {
	result, err := s.db.Exec(`DELETE FROM channels WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Channel not found", StatusCode: http.StatusNotFound}
	}
	return nil
}
