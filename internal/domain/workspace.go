package domain

import "time"

// to iterate thru layers: handler -> service -> storage
type WorkspaceCreationData struct {
	Name     string
	Owner    UserId
	JoinCode string
}

type Workspace struct {
	Id        WorkspaceId
	Name      string
	Owner     UserId
	JoinCode  string `json:",omitempty"` // blanked by the service for non-admins
	CreatedAt time.Time
}

// WorkspaceInfo is the pre-join view: enough for the join page, nothing
// member-only.
type WorkspaceInfo struct {
	Id       WorkspaceId
	Name     string
	IsMember bool
}

// Member is a user's membership record within one workspace.
type Member struct {
	Id          MemberId
	WorkspaceId WorkspaceId
	UserId      UserId
	Role        Role
	// Denormalized from users for display
	UserName  string
	UserImage string
}

func (m *Member) IsAdmin() bool {
	return m.Role == RoleAdmin
}
