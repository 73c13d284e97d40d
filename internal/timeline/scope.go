package timeline

import (
	"fmt"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
)

// Scope selects exactly one message stream: a channel, a thread under a
// parent message (channel required), or a direct conversation.
type Scope struct {
	ChannelId       *domain.ChannelId
	ParentMessageId *domain.MsgId
	ConversationId  *domain.ConversationId
}

func ChannelScope(id domain.ChannelId) Scope {
	return Scope{ChannelId: &id}
}

func ThreadScope(channelId domain.ChannelId, parentId domain.MsgId) Scope {
	return Scope{ChannelId: &channelId, ParentMessageId: &parentId}
}

func ConversationScope(id domain.ConversationId) Scope {
	return Scope{ConversationId: &id}
}

func (s Scope) Validate() error {
	if s.ChannelId != nil && s.ConversationId != nil {
		return &internal_errors.ValidationError{Message: "scope selects both a channel and a conversation"}
	}
	if s.ChannelId == nil && s.ConversationId == nil {
		return &internal_errors.ValidationError{Message: "scope selects no stream"}
	}
	if s.ParentMessageId != nil && s.ChannelId == nil {
		return &internal_errors.ValidationError{Message: "thread scope requires a channel"}
	}
	return nil
}

// Fingerprint is a stable identity for the scope's fetch stream. Cursors
// are bound to it; a cursor minted for one fingerprint is foreign to every
// other.
func (s Scope) Fingerprint() string {
	switch {
	case s.ConversationId != nil:
		return fmt.Sprintf("d:%d", *s.ConversationId)
	case s.ParentMessageId != nil:
		return fmt.Sprintf("t:%d:%d", *s.ChannelId, *s.ParentMessageId)
	case s.ChannelId != nil:
		return fmt.Sprintf("c:%d", *s.ChannelId)
	default:
		return ""
	}
}

// Contains reports whether a message belongs to this scope's stream.
// Channel and conversation scopes hold top-level messages only; replies
// belong to their thread scope.
func (s Scope) Contains(m *domain.Message) bool {
	switch {
	case s.ParentMessageId != nil:
		return m.ParentMessageId != nil && *m.ParentMessageId == *s.ParentMessageId
	case s.ChannelId != nil:
		return m.ChannelId != nil && *m.ChannelId == *s.ChannelId && m.ParentMessageId == nil
	case s.ConversationId != nil:
		return m.ConversationId != nil && *m.ConversationId == *s.ConversationId && m.ParentMessageId == nil
	default:
		return false
	}
}
