package domain

import "time"

type ChannelCreationData struct {
	Name        string
	WorkspaceId WorkspaceId
}

type Channel struct {
	Id          ChannelId
	Name        string
	WorkspaceId WorkspaceId
	CreatedAt   time.Time
}

// Conversation is a direct-message stream between two members of the same
// workspace. Orientation of the pair is not significant.
type Conversation struct {
	Id          ConversationId
	WorkspaceId WorkspaceId
	MemberOneId MemberId
	MemberTwoId MemberId
}
