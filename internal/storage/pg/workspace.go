package pg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lib/pq"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
)

func (s *Storage) CreateWorkspace(data domain.WorkspaceCreationData) (domain.WorkspaceId, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return -1, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // The rollback will be ignored if the tx has been committed later in the function.

	var id domain.WorkspaceId
	created := time.Now().UTC().Round(time.Microsecond)
	err = tx.QueryRow(`
	INSERT INTO workspaces(name, owner_id, join_code, created)
	VALUES($1, $2, $3, $4)
	RETURNING id`,
		data.Name, data.Owner, data.JoinCode, created).Scan(&id)
	if err != nil {
		return -1, fmt.Errorf("failed to insert workspace: %w", err)
	}

	// Creator becomes the first admin member
	_, err = tx.Exec(`
	INSERT INTO members(workspace_id, user_id, role)
	VALUES($1, $2, $3)`, id, data.Owner, domain.RoleAdmin)
	if err != nil {
		return -1, fmt.Errorf("failed to insert owner member: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return -1, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return id, nil
}

func (s *Storage) Workspace(id domain.WorkspaceId) (domain.Workspace, error) {
	var w domain.Workspace
	err := s.db.QueryRow(`
	SELECT id, name, owner_id, join_code, created
	FROM workspaces
	WHERE id = $1`, id).Scan(&w.Id, &w.Name, &w.Owner, &w.JoinCode, &w.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Workspace{}, &internal_errors.ErrorWithStatusCode{Message: "Workspace not found", StatusCode: http.StatusNotFound}
		}
		return domain.Workspace{}, err
	}
	return w, nil
}

// Workspaces returns the workspaces the user is a member of.
func (s *Storage) Workspaces(userId domain.UserId) ([]domain.Workspace, error) {
	rows, err := s.db.Query(`
	SELECT w.id, w.name, w.owner_id, w.join_code, w.created
	FROM workspaces w
	JOIN members m ON m.workspace_id = w.id
	WHERE m.user_id = $1
	ORDER BY w.created`, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workspaces []domain.Workspace
	for rows.Next() {
		var w domain.Workspace
		if err := rows.Scan(&w.Id, &w.Name, &w.Owner, &w.JoinCode, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan workspace: %w", err)
		}
		workspaces = append(workspaces, w)
	}
	return workspaces, rows.Err()
}

func (s *Storage) UpdateWorkspace(id domain.WorkspaceId, name string) error {
	result, err := s.db.Exec(`UPDATE workspaces SET name = $1 WHERE id = $2`, name, id)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Workspace not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

func (s *Storage) DeleteWorkspace(id domain.WorkspaceId) error {
	result, err := s.db.Exec(`DELETE FROM workspaces WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Workspace not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

func (s *Storage) SetJoinCode(id domain.WorkspaceId, code string) error {
	result, err := s.db.Exec(`UPDATE workspaces SET join_code = $1 WHERE id = $2`, code, id)
	if err != nil {
		return err
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		return &internal_errors.ErrorWithStatusCode{Message: "Workspace not found", StatusCode: http.StatusNotFound}
	}
	return nil
}

// MemberByWorkspaceAndUser is the uniqueness-checked membership lookup
// backing every authorization decision.
func (s *Storage) MemberByWorkspaceAndUser(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error) {
	var m domain.Member
	err := s.db.QueryRowContext(ctx, `
	SELECT m.id, m.workspace_id, m.user_id, m.role, u.name, u.image
	FROM members m
	JOIN users u ON u.id = m.user_id
	WHERE m.workspace_id = $1 AND m.user_id = $2`, workspaceId, userId).Scan(
		&m.Id, &m.WorkspaceId, &m.UserId, &m.Role, &m.UserName, &m.UserImage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Member{}, internal_errors.NotFound
		}
		return domain.Member{}, err
	}
	return m, nil
}

func (s *Storage) Member(id domain.MemberId) (domain.Member, error) {
	var m domain.Member
	err := s.db.QueryRow(`
	SELECT m.id, m.workspace_id, m.user_id, m.role, u.name, u.image
	FROM members m
	JOIN users u ON u.id = m.user_id
	WHERE m.id = $1`, id).Scan(&m.Id, &m.WorkspaceId, &m.UserId, &m.Role, &m.UserName, &m.UserImage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Member{}, internal_errors.NotFound
		}
		return domain.Member{}, err
	}
	return m, nil
}

func (s *Storage) Members(workspaceId domain.WorkspaceId) ([]domain.Member, error) {
	rows, err := s.db.Query(`
	SELECT m.id, m.workspace_id, m.user_id, m.role, u.name, u.image
	FROM members m
	JOIN users u ON u.id = m.user_id
	WHERE m.workspace_id = $1
	ORDER BY m.id`, workspaceId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []domain.Member
	for rows.Next() {
		var m domain.Member
		if err := rows.Scan(&m.Id, &m.WorkspaceId, &m.UserId, &m.Role, &m.UserName, &m.UserImage); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (s *Storage) CreateMember(workspaceId domain.WorkspaceId, userId domain.UserId, role domain.Role) (domain.Member, error) {
	var id domain.MemberId
	err := s.db.QueryRow(`
	INSERT INTO members(workspace_id, user_id, role)
	VALUES($1, $2, $3)
	RETURNING id`, workspaceId, userId, role).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return domain.Member{}, &internal_errors.ErrorWithStatusCode{Message: "Already a member", StatusCode: http.StatusConflict}
		}
		return domain.Member{}, err
	}
	return s.Member(id)
}
