package service

import (
	"context"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
	"github.com/chatter-dev/chatter/internal/richtext"
	"github.com/chatter-dev/chatter/internal/timeline"
)

type MessageStorage interface {
	CreateMessage(ctx context.Context, data domain.MessageCreationData) (domain.Message, error)
	Message(ctx context.Context, id domain.MsgId) (domain.Message, error)
	UpdateMessageBody(ctx context.Context, id domain.MsgId, body string) error
	DeleteMessage(ctx context.Context, id domain.MsgId) error
	MessagePage(ctx context.Context, scope timeline.Scope, before *timeline.Position, limit int) ([]domain.Message, bool, error)
	Channel(id domain.ChannelId) (domain.Channel, error)
	Conversation(id domain.ConversationId) (domain.Conversation, error)
	MemberByWorkspaceAndUser(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error)
}

type Message struct {
	storage  MessageStorage
	events   EventBus
	pageSize int
}

func NewMessage(storage MessageStorage, events EventBus, pageSize int) *Message {
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Message{storage, events, pageSize}
}

// Create posts a message. Replies inherit their channel from the parent and
// are limited to one level; top-level messages name exactly one of a channel
// or a conversation the author can post to.
func (m *Message) Create(ctx context.Context, userId domain.UserId, data domain.MessageCreationData) (domain.Message, error) {
	member, err := requireMember(ctx, m.storage, data.WorkspaceId, userId)
	if err != nil {
		return domain.Message{}, err
	}
	data.MemberId = member.Id

	// Editor deltas of pure whitespace count as empty too
	if richtext.PlainText(data.Body) == "" && data.Image == "" {
		return domain.Message{}, &internal_errors.ValidationError{Message: "message needs a body or an image"}
	}

	var parent *domain.Message
	if data.ParentMessageId != nil {
		p, err := m.storage.Message(ctx, *data.ParentMessageId)
		if err != nil {
			return domain.Message{}, err
		}
		if p.WorkspaceId != data.WorkspaceId {
			return domain.Message{}, internal_errors.NotFound
		}
		if p.ParentMessageId != nil {
			return domain.Message{}, &internal_errors.ValidationError{Message: "cannot reply to a reply"}
		}
		if p.ChannelId == nil {
			return domain.Message{}, &internal_errors.ValidationError{Message: "threads live under channel messages"}
		}
		data.ChannelId = p.ChannelId
		data.ConversationId = nil
		parent = &p
	} else if err := m.checkContainer(ctx, &member, &data); err != nil {
		return domain.Message{}, err
	}

	msg, err := m.storage.CreateMessage(ctx, data)
	if err != nil {
		return domain.Message{}, err
	}
	m.events.Publish(timeline.Event{Type: timeline.EventMessageCreated, Scope: scopeOf(&msg), Message: msg})

	// A new reply changes the parent's thread summary
	if parent != nil {
		m.republish(ctx, parent.Id)
	}
	return msg, nil
}

// checkContainer verifies a top-level message targets exactly one stream in
// its workspace, and that the author is party to it.
func (m *Message) checkContainer(ctx context.Context, member *domain.Member, data *domain.MessageCreationData) error {
	switch {
	case data.ChannelId != nil && data.ConversationId != nil:
		return &internal_errors.ValidationError{Message: "message targets both a channel and a conversation"}
	case data.ChannelId != nil:
		channel, err := m.storage.Channel(*data.ChannelId)
		if err != nil {
			return err
		}
		if channel.WorkspaceId != data.WorkspaceId {
			return internal_errors.NotFound
		}
	case data.ConversationId != nil:
		conversation, err := m.storage.Conversation(*data.ConversationId)
		if err != nil {
			return err
		}
		if conversation.WorkspaceId != data.WorkspaceId {
			return internal_errors.NotFound
		}
		if conversation.MemberOneId != member.Id && conversation.MemberTwoId != member.Id {
			return internal_errors.NotAuthorized
		}
	default:
		return &internal_errors.ValidationError{Message: "message targets no stream"}
	}
	return nil
}

func (m *Message) Get(ctx context.Context, userId domain.UserId, id domain.MsgId) (domain.Message, error) {
	msg, err := m.storage.Message(ctx, id)
	if err != nil {
		return domain.Message{}, err
	}
	if _, err := requireMember(ctx, m.storage, msg.WorkspaceId, userId); err != nil {
		return domain.Message{}, err
	}
	return msg, nil
}

// Update edits the body. Author-only; admins cannot edit others' words.
func (m *Message) Update(ctx context.Context, userId domain.UserId, id domain.MsgId, body string) (domain.Message, error) {
	if richtext.PlainText(body) == "" {
		return domain.Message{}, &internal_errors.ValidationError{Message: "body is required"}
	}

	msg, err := m.authored(ctx, userId, id)
	if err != nil {
		return domain.Message{}, err
	}

	if err := m.storage.UpdateMessageBody(ctx, msg.Id, body); err != nil {
		return domain.Message{}, err
	}
	fresh, err := m.storage.Message(ctx, msg.Id)
	if err != nil {
		return domain.Message{}, err
	}
	m.events.Publish(timeline.Event{Type: timeline.EventMessageUpdated, Scope: scopeOf(&fresh), Message: fresh})
	return fresh, nil
}

// Remove deletes the message along with its replies and reactions.
func (m *Message) Remove(ctx context.Context, userId domain.UserId, id domain.MsgId) error {
	msg, err := m.authored(ctx, userId, id)
	if err != nil {
		return err
	}

	if err := m.storage.DeleteMessage(ctx, msg.Id); err != nil {
		return err
	}
	m.events.Publish(timeline.Event{Type: timeline.EventMessageDeleted, Scope: scopeOf(&msg), Message: msg})

	if msg.ParentMessageId != nil {
		m.republish(ctx, *msg.ParentMessageId)
	}
	return nil
}

// authored fetches the message and rejects callers who are not its author.
func (m *Message) authored(ctx context.Context, userId domain.UserId, id domain.MsgId) (domain.Message, error) {
	msg, err := m.storage.Message(ctx, id)
	if err != nil {
		return domain.Message{}, err
	}
	member, err := requireMember(ctx, m.storage, msg.WorkspaceId, userId)
	if err != nil {
		return domain.Message{}, err
	}
	if member.Id != msg.MemberId {
		return domain.Message{}, internal_errors.NotAuthorized
	}
	return msg, nil
}

// republish re-reads a message and broadcasts it as an update, used when a
// derived part (thread summary, reactions) changed underneath it.
func (m *Message) republish(ctx context.Context, id domain.MsgId) {
	fresh, err := m.storage.Message(ctx, id)
	if err != nil {
		// The stream will self-correct on the next fetch
		return
	}
	m.events.Publish(timeline.Event{Type: timeline.EventMessageUpdated, Scope: scopeOf(&fresh), Message: fresh})
}

// Page serves one cursor-bounded slice of a scope's stream, newest first.
// The cursor must have been minted for this same scope.
func (m *Message) Page(ctx context.Context, userId domain.UserId, workspaceId domain.WorkspaceId, scope timeline.Scope, cursor string, limit int) (domain.Page, error) {
	if err := scope.Validate(); err != nil {
		return domain.Page{}, err
	}
	member, err := requireMember(ctx, m.storage, workspaceId, userId)
	if err != nil {
		return domain.Page{}, err
	}
	if err := m.checkScopeAccess(ctx, &member, workspaceId, scope); err != nil {
		return domain.Page{}, err
	}

	if limit <= 0 || limit > m.pageSize {
		limit = m.pageSize
	}

	var before *timeline.Position
	if cursor != "" {
		pos, err := timeline.DecodeCursor(scope, cursor)
		if err != nil {
			return domain.Page{}, err
		}
		before = &pos
	}

	msgs, hasMore, err := m.storage.MessagePage(ctx, scope, before, limit)
	if err != nil {
		return domain.Page{}, err
	}

	page := domain.Page{Messages: msgs, Status: domain.Exhausted}
	if hasMore {
		last := msgs[len(msgs)-1]
		page.Cursor = timeline.EncodeCursor(scope, timeline.Position{CreatedAt: last.CreatedAt, Id: last.Id})
		page.Status = domain.CanLoadMore
	}
	return page, nil
}

// Watch authorizes the caller for the scope and subscribes to its live
// stream. The caller owns the subscription and must cancel it.
func (m *Message) Watch(ctx context.Context, userId domain.UserId, workspaceId domain.WorkspaceId, scope timeline.Scope) (*timeline.Subscription, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	member, err := requireMember(ctx, m.storage, workspaceId, userId)
	if err != nil {
		return nil, err
	}
	if err := m.checkScopeAccess(ctx, &member, workspaceId, scope); err != nil {
		return nil, err
	}
	return m.events.Subscribe(scope), nil
}

func (m *Message) checkScopeAccess(ctx context.Context, member *domain.Member, workspaceId domain.WorkspaceId, scope timeline.Scope) error {
	switch {
	case scope.ChannelId != nil:
		channel, err := m.storage.Channel(*scope.ChannelId)
		if err != nil {
			return err
		}
		if channel.WorkspaceId != workspaceId {
			return internal_errors.NotFound
		}
		if scope.ParentMessageId != nil {
			parent, err := m.storage.Message(ctx, *scope.ParentMessageId)
			if err != nil {
				return err
			}
			if parent.ChannelId == nil || *parent.ChannelId != *scope.ChannelId {
				return internal_errors.NotFound
			}
		}
	case scope.ConversationId != nil:
		conversation, err := m.storage.Conversation(*scope.ConversationId)
		if err != nil {
			return err
		}
		if conversation.WorkspaceId != workspaceId {
			return internal_errors.NotFound
		}
		if conversation.MemberOneId != member.Id && conversation.MemberTwoId != member.Id {
			return internal_errors.NotAuthorized
		}
	}
	return nil
}
