package domain

import "time"

// to iterate thru layers: handler -> service -> storage
type MessageCreationData struct {
	WorkspaceId     WorkspaceId
	ChannelId       *ChannelId
	ConversationId  *ConversationId
	ParentMessageId *MsgId
	MemberId        MemberId
	Body            string
	Image           string
}

type MessageMetadata struct {
	Id              MsgId
	WorkspaceId     WorkspaceId
	ChannelId       *ChannelId      `json:",omitempty"`
	ConversationId  *ConversationId `json:",omitempty"`
	ParentMessageId *MsgId          `json:",omitempty"`
	MemberId        MemberId
	CreatedAt       time.Time
	UpdatedAt       *time.Time `json:",omitempty"`
}

type Message struct {
	MessageMetadata
	Body  string
	Image string `json:",omitempty"`

	// Denormalized for display, filled by the storage enrichment pass
	AuthorName  string
	AuthorImage string          `json:",omitempty"`
	Thread      *ThreadSummary  `json:",omitempty"`
	Reactions   []ReactionGroup `json:",omitempty"`
}

// ThreadSummary is computed per parent message: reply count, last reply
// time and the last replier's display identity.
type ThreadSummary struct {
	Count       int
	LastReplyAt time.Time
	Name        string
	Image       string `json:",omitempty"`
}

type Reaction struct {
	Id          int64
	WorkspaceId WorkspaceId
	MessageId   MsgId
	MemberId    MemberId
	Value       string
}

// ReactionGroup aggregates reactions on one message by value.
type ReactionGroup struct {
	Value     string
	Count     int
	MemberIds []MemberId
}

// InChannel reports whether the message lives in a channel stream (as
// opposed to a direct conversation).
func (m *MessageMetadata) InChannel() bool {
	return m.ChannelId != nil
}
