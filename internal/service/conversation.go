package service

import (
	"context"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
)

type ConversationStorage interface {
	GetOrCreateConversation(workspaceId domain.WorkspaceId, memberOne, memberTwo domain.MemberId) (domain.Conversation, error)
	Conversation(id domain.ConversationId) (domain.Conversation, error)
	MemberByWorkspaceAndUser(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error)
	Member(id domain.MemberId) (domain.Member, error)
}

type Conversation struct {
	storage ConversationStorage
}

func NewConversation(storage ConversationStorage) *Conversation {
	return &Conversation{storage}
}

// CreateOrGet returns the direct stream between the caller and the other
// member, creating it on first use. Pair orientation never matters; asking
// twice in either order returns the same conversation.
func (c *Conversation) CreateOrGet(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId, otherMemberId domain.MemberId) (domain.Conversation, error) {
	me, err := requireMember(ctx, c.storage, workspaceId, userId)
	if err != nil {
		return domain.Conversation{}, err
	}

	other, err := c.storage.Member(otherMemberId)
	if err != nil {
		return domain.Conversation{}, err
	}
	if other.WorkspaceId != workspaceId {
		return domain.Conversation{}, internal_errors.NotFound
	}

	return c.storage.GetOrCreateConversation(workspaceId, me.Id, other.Id)
}

// Get returns the conversation when the caller is one of its two members.
func (c *Conversation) Get(ctx context.Context, userId domain.UserId, id domain.ConversationId) (domain.Conversation, error) {
	conversation, err := c.storage.Conversation(id)
	if err != nil {
		return domain.Conversation{}, err
	}
	me, err := requireMember(ctx, c.storage, conversation.WorkspaceId, userId)
	if err != nil {
		return domain.Conversation{}, err
	}
	if conversation.MemberOneId != me.Id && conversation.MemberTwoId != me.Id {
		return domain.Conversation{}, internal_errors.NotAuthorized
	}
	return conversation, nil
}
