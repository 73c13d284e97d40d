package domain

type (
	UserId         = int64
	WorkspaceId    = int64
	MemberId       = int64
	ChannelId      = int64
	ConversationId = int64
	MsgId          = int64

	Email = string
	Role  = string
)

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)
