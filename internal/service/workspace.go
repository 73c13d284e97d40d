package service

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
)

const joinCodeLen = 6

type WorkspaceStorage interface {
	CreateWorkspace(data domain.WorkspaceCreationData) (domain.WorkspaceId, error)
	Workspace(id domain.WorkspaceId) (domain.Workspace, error)
	Workspaces(userId domain.UserId) ([]domain.Workspace, error)
	UpdateWorkspace(id domain.WorkspaceId, name string) error
	DeleteWorkspace(id domain.WorkspaceId) error
	SetJoinCode(id domain.WorkspaceId, code string) error
	MemberByWorkspaceAndUser(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error)
	Member(id domain.MemberId) (domain.Member, error)
	Members(workspaceId domain.WorkspaceId) ([]domain.Member, error)
	CreateMember(workspaceId domain.WorkspaceId, userId domain.UserId, role domain.Role) (domain.Member, error)
}

type Workspace struct {
	storage WorkspaceStorage
}

func NewWorkspace(storage WorkspaceStorage) *Workspace {
	return &Workspace{storage}
}

func generateJoinCode() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:joinCodeLen]
}

func validateWorkspaceName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if len(name) < 3 || len(name) > 80 {
		return "", &internal_errors.ValidationError{Message: "workspace name must be 3 to 80 characters"}
	}
	return name, nil
}

func (w *Workspace) Create(ctx context.Context, name string, owner domain.UserId) (domain.Workspace, error) {
	name, err := validateWorkspaceName(name)
	if err != nil {
		return domain.Workspace{}, err
	}

	id, err := w.storage.CreateWorkspace(domain.WorkspaceCreationData{
		Name:     name,
		Owner:    owner,
		JoinCode: generateJoinCode(),
	})
	if err != nil {
		return domain.Workspace{}, err
	}
	return w.storage.Workspace(id)
}

func (w *Workspace) Get(ctx context.Context, id domain.WorkspaceId, userId domain.UserId) (domain.Workspace, error) {
	member, err := requireMember(ctx, w.storage, id, userId)
	if err != nil {
		return domain.Workspace{}, err
	}

	workspace, err := w.storage.Workspace(id)
	if err != nil {
		return domain.Workspace{}, err
	}
	if !member.IsAdmin() {
		workspace.JoinCode = ""
	}
	return workspace, nil
}

// List returns the caller's workspaces. Join codes are admin-only and the
// list view never carries them; Get on a single workspace does.
func (w *Workspace) List(ctx context.Context, userId domain.UserId) ([]domain.Workspace, error) {
	workspaces, err := w.storage.Workspaces(userId)
	if err != nil {
		return nil, err
	}
	for i := range workspaces {
		workspaces[i].JoinCode = ""
	}
	return workspaces, nil
}

// Info is the pre-join view: readable without membership so the join page
// can show what the user is joining.
func (w *Workspace) Info(ctx context.Context, id domain.WorkspaceId, userId domain.UserId) (domain.WorkspaceInfo, error) {
	workspace, err := w.storage.Workspace(id)
	if err != nil {
		return domain.WorkspaceInfo{}, err
	}

	_, err = w.storage.MemberByWorkspaceAndUser(ctx, id, userId)
	isMember := err == nil
	if err != nil && !internal_errors.IsNotFound(err) {
		return domain.WorkspaceInfo{}, err
	}

	return domain.WorkspaceInfo{Id: workspace.Id, Name: workspace.Name, IsMember: isMember}, nil
}

func (w *Workspace) Update(ctx context.Context, id domain.WorkspaceId, userId domain.UserId, name string) error {
	if _, err := requireAdmin(ctx, w.storage, id, userId); err != nil {
		return err
	}
	name, err := validateWorkspaceName(name)
	if err != nil {
		return err
	}
	return w.storage.UpdateWorkspace(id, name)
}

func (w *Workspace) Remove(ctx context.Context, id domain.WorkspaceId, userId domain.UserId) error {
	if _, err := requireAdmin(ctx, w.storage, id, userId); err != nil {
		return err
	}
	return w.storage.DeleteWorkspace(id)
}

// Join adds the user as a regular member when the code matches. The code
// comparison is case-insensitive.
func (w *Workspace) Join(ctx context.Context, id domain.WorkspaceId, userId domain.UserId, code string) (domain.Member, error) {
	workspace, err := w.storage.Workspace(id)
	if err != nil {
		return domain.Member{}, err
	}
	if !strings.EqualFold(strings.TrimSpace(code), workspace.JoinCode) {
		return domain.Member{}, &internal_errors.ErrorWithStatusCode{Message: "Invalid join code", StatusCode: http.StatusForbidden}
	}
	return w.storage.CreateMember(id, userId, domain.RoleMember)
}

// NewJoinCode rotates the code, invalidating every copy of the old one.
func (w *Workspace) NewJoinCode(ctx context.Context, id domain.WorkspaceId, userId domain.UserId) (string, error) {
	if _, err := requireAdmin(ctx, w.storage, id, userId); err != nil {
		return "", err
	}
	code := generateJoinCode()
	if err := w.storage.SetJoinCode(id, code); err != nil {
		return "", err
	}
	return code, nil
}

func (w *Workspace) CurrentMember(ctx context.Context, id domain.WorkspaceId, userId domain.UserId) (domain.Member, error) {
	return requireMember(ctx, w.storage, id, userId)
}

func (w *Workspace) MemberById(ctx context.Context, id domain.WorkspaceId, userId domain.UserId, memberId domain.MemberId) (domain.Member, error) {
	if _, err := requireMember(ctx, w.storage, id, userId); err != nil {
		return domain.Member{}, err
	}
	member, err := w.storage.Member(memberId)
	if err != nil {
		return domain.Member{}, err
	}
	if member.WorkspaceId != id {
		return domain.Member{}, internal_errors.NotFound
	}
	return member, nil
}

func (w *Workspace) Members(ctx context.Context, id domain.WorkspaceId, userId domain.UserId) ([]domain.Member, error) {
	if _, err := requireMember(ctx, w.storage, id, userId); err != nil {
		return nil, err
	}
	return w.storage.Members(id)
}
