package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
)

type mockWorkspaceStorage struct {
	createFunc       func(data domain.WorkspaceCreationData) (domain.WorkspaceId, error)
	workspaceFunc    func(id domain.WorkspaceId) (domain.Workspace, error)
	workspacesFunc   func(userId domain.UserId) ([]domain.Workspace, error)
	updateFunc       func(id domain.WorkspaceId, name string) error
	deleteFunc       func(id domain.WorkspaceId) error
	setJoinCodeFunc  func(id domain.WorkspaceId, code string) error
	memberFunc       func(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error)
	memberByIdFunc   func(id domain.MemberId) (domain.Member, error)
	membersFunc      func(workspaceId domain.WorkspaceId) ([]domain.Member, error)
	createMemberFunc func(workspaceId domain.WorkspaceId, userId domain.UserId, role domain.Role) (domain.Member, error)
}

func (m *mockWorkspaceStorage) CreateWorkspace(data domain.WorkspaceCreationData) (domain.WorkspaceId, error) {
	return m.createFunc(data)
}
func (m *mockWorkspaceStorage) Workspace(id domain.WorkspaceId) (domain.Workspace, error) {
	return m.workspaceFunc(id)
}
func (m *mockWorkspaceStorage) Workspaces(userId domain.UserId) ([]domain.Workspace, error) {
	return m.workspacesFunc(userId)
}
func (m *mockWorkspaceStorage) UpdateWorkspace(id domain.WorkspaceId, name string) error {
	return m.updateFunc(id, name)
}
func (m *mockWorkspaceStorage) DeleteWorkspace(id domain.WorkspaceId) error {
	return m.deleteFunc(id)
}
func (m *mockWorkspaceStorage) SetJoinCode(id domain.WorkspaceId, code string) error {
	return m.setJoinCodeFunc(id, code)
}
func (m *mockWorkspaceStorage) MemberByWorkspaceAndUser(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error) {
	return m.memberFunc(ctx, workspaceId, userId)
}
func (m *mockWorkspaceStorage) Member(id domain.MemberId) (domain.Member, error) {
	return m.memberByIdFunc(id)
}
func (m *mockWorkspaceStorage) Members(workspaceId domain.WorkspaceId) ([]domain.Member, error) {
	return m.membersFunc(workspaceId)
}
func (m *mockWorkspaceStorage) CreateMember(workspaceId domain.WorkspaceId, userId domain.UserId, role domain.Role) (domain.Member, error) {
	return m.createMemberFunc(workspaceId, userId, role)
}

func adminMember(workspaceId domain.WorkspaceId, userId domain.UserId) func(context.Context, domain.WorkspaceId, domain.UserId) (domain.Member, error) {
	return func(_ context.Context, wid domain.WorkspaceId, uid domain.UserId) (domain.Member, error) {
		if wid != workspaceId || uid != userId {
			return domain.Member{}, internal_errors.NotFound
		}
		return domain.Member{Id: 1, WorkspaceId: wid, UserId: uid, Role: domain.RoleAdmin}, nil
	}
}

func regularMember(workspaceId domain.WorkspaceId, userId domain.UserId) func(context.Context, domain.WorkspaceId, domain.UserId) (domain.Member, error) {
	return func(_ context.Context, wid domain.WorkspaceId, uid domain.UserId) (domain.Member, error) {
		if wid != workspaceId || uid != userId {
			return domain.Member{}, internal_errors.NotFound
		}
		return domain.Member{Id: 2, WorkspaceId: wid, UserId: uid, Role: domain.RoleMember}, nil
	}
}

func TestWorkspaceCreateGeneratesJoinCode(t *testing.T) {
	var created domain.WorkspaceCreationData
	storage := &mockWorkspaceStorage{
		createFunc: func(data domain.WorkspaceCreationData) (domain.WorkspaceId, error) {
			created = data
			return 11, nil
		},
		workspaceFunc: func(id domain.WorkspaceId) (domain.Workspace, error) {
			return domain.Workspace{Id: id, Name: created.Name, Owner: created.Owner, JoinCode: created.JoinCode}, nil
		},
	}
	service := NewWorkspace(storage)

	workspace, err := service.Create(context.Background(), "  Acme  ", 7)
	require.NoError(t, err)

	assert.Equal(t, "Acme", workspace.Name)
	assert.Len(t, created.JoinCode, joinCodeLen)
	assert.Equal(t, domain.UserId(7), created.Owner)
}

func TestWorkspaceCreateRejectsShortName(t *testing.T) {
	service := NewWorkspace(&mockWorkspaceStorage{})

	_, err := service.Create(context.Background(), "ab", 7)
	assert.True(t, internal_errors.Is[*internal_errors.ValidationError](err))
}

func TestWorkspaceGetHidesJoinCodeFromMembers(t *testing.T) {
	storage := &mockWorkspaceStorage{
		memberFunc: regularMember(11, 7),
		workspaceFunc: func(id domain.WorkspaceId) (domain.Workspace, error) {
			return domain.Workspace{Id: id, Name: "Acme", JoinCode: "abc123"}, nil
		},
	}
	service := NewWorkspace(storage)

	workspace, err := service.Get(context.Background(), 11, 7)
	require.NoError(t, err)
	assert.Empty(t, workspace.JoinCode)
}

func TestWorkspaceGetKeepsJoinCodeForAdmins(t *testing.T) {
	storage := &mockWorkspaceStorage{
		memberFunc: adminMember(11, 7),
		workspaceFunc: func(id domain.WorkspaceId) (domain.Workspace, error) {
			return domain.Workspace{Id: id, Name: "Acme", JoinCode: "abc123"}, nil
		},
	}
	service := NewWorkspace(storage)

	workspace, err := service.Get(context.Background(), 11, 7)
	require.NoError(t, err)
	assert.Equal(t, "abc123", workspace.JoinCode)
}

func TestWorkspaceListBlanksJoinCodes(t *testing.T) {
	storage := &mockWorkspaceStorage{
		workspacesFunc: func(userId domain.UserId) ([]domain.Workspace, error) {
			return []domain.Workspace{
				{Id: 11, Name: "Acme", JoinCode: "abc123"},
				{Id: 12, Name: "Beta", JoinCode: "def456"},
			}, nil
		},
	}
	service := NewWorkspace(storage)

	workspaces, err := service.List(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, workspaces, 2)
	for _, w := range workspaces {
		assert.Empty(t, w.JoinCode)
	}
}

func TestWorkspaceGetNonMember(t *testing.T) {
	storage := &mockWorkspaceStorage{memberFunc: regularMember(11, 7)}
	service := NewWorkspace(storage)

	_, err := service.Get(context.Background(), 11, 99)
	assert.ErrorIs(t, err, internal_errors.NotAuthorized)
}

func TestWorkspaceUpdateAdminOnly(t *testing.T) {
	storage := &mockWorkspaceStorage{memberFunc: regularMember(11, 7)}
	service := NewWorkspace(storage)

	err := service.Update(context.Background(), 11, 7, "New Name")
	assert.ErrorIs(t, err, internal_errors.NotAuthorized)
}

func TestWorkspaceJoinCaseInsensitive(t *testing.T) {
	storage := &mockWorkspaceStorage{
		workspaceFunc: func(id domain.WorkspaceId) (domain.Workspace, error) {
			return domain.Workspace{Id: id, JoinCode: "abc123"}, nil
		},
		createMemberFunc: func(workspaceId domain.WorkspaceId, userId domain.UserId, role domain.Role) (domain.Member, error) {
			assert.Equal(t, domain.RoleMember, role)
			return domain.Member{Id: 3, WorkspaceId: workspaceId, UserId: userId, Role: role}, nil
		},
	}
	service := NewWorkspace(storage)

	member, err := service.Join(context.Background(), 11, 9, " ABC123 ")
	require.NoError(t, err)
	assert.Equal(t, domain.MemberId(3), member.Id)
}

func TestWorkspaceJoinWrongCode(t *testing.T) {
	storage := &mockWorkspaceStorage{
		workspaceFunc: func(id domain.WorkspaceId) (domain.Workspace, error) {
			return domain.Workspace{Id: id, JoinCode: "abc123"}, nil
		},
	}
	service := NewWorkspace(storage)

	_, err := service.Join(context.Background(), 11, 9, "wrong!")
	var withStatus *internal_errors.ErrorWithStatusCode
	require.ErrorAs(t, err, &withStatus)
	assert.Equal(t, http.StatusForbidden, withStatus.StatusCode)
}

func TestWorkspaceNewJoinCodeRotates(t *testing.T) {
	var rotated string
	storage := &mockWorkspaceStorage{
		memberFunc: adminMember(11, 7),
		setJoinCodeFunc: func(id domain.WorkspaceId, code string) error {
			rotated = code
			return nil
		},
	}
	service := NewWorkspace(storage)

	code, err := service.NewJoinCode(context.Background(), 11, 7)
	require.NoError(t, err)
	assert.Equal(t, rotated, code)
	assert.Len(t, code, joinCodeLen)
}

func TestWorkspaceMemberByIdScopedToWorkspace(t *testing.T) {
	storage := &mockWorkspaceStorage{
		memberFunc: regularMember(11, 7),
		memberByIdFunc: func(id domain.MemberId) (domain.Member, error) {
			return domain.Member{Id: id, WorkspaceId: 99}, nil
		},
	}
	service := NewWorkspace(storage)

	_, err := service.MemberById(context.Background(), 11, 7, 5)
	assert.ErrorIs(t, err, internal_errors.NotFound)
}
