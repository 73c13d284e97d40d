// Package service holds the business rules between handlers and storage.
// Each service declares the storage slice it consumes; authorization is a
// membership lookup keyed by (workspace, user).
package service

import (
	"context"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
	"github.com/chatter-dev/chatter/internal/timeline"
)

type membershipStorage interface {
	MemberByWorkspaceAndUser(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error)
}

// EventPublisher receives change notifications produced by mutations.
// Satisfied by *timeline.Hub.
type EventPublisher interface {
	Publish(e timeline.Event)
}

// EventBus additionally hands out scope subscriptions, for services that
// serve live streams.
type EventBus interface {
	EventPublisher
	Subscribe(scope timeline.Scope) *timeline.Subscription
}

// requireMember maps a missing membership row to NotAuthorized so callers
// never learn whether the workspace exists.
func requireMember(ctx context.Context, s membershipStorage, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error) {
	member, err := s.MemberByWorkspaceAndUser(ctx, workspaceId, userId)
	if err != nil {
		if internal_errors.IsNotFound(err) {
			return domain.Member{}, internal_errors.NotAuthorized
		}
		return domain.Member{}, err
	}
	return member, nil
}

func requireAdmin(ctx context.Context, s membershipStorage, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error) {
	member, err := requireMember(ctx, s, workspaceId, userId)
	if err != nil {
		return domain.Member{}, err
	}
	if !member.IsAdmin() {
		return domain.Member{}, internal_errors.NotAuthorized
	}
	return member, nil
}

// scopeOf resolves the stream a message belongs to: its thread when it is
// a reply, otherwise its channel or conversation.
func scopeOf(m *domain.Message) timeline.Scope {
	switch {
	case m.ParentMessageId != nil:
		return timeline.ThreadScope(*m.ChannelId, *m.ParentMessageId)
	case m.ChannelId != nil:
		return timeline.ChannelScope(*m.ChannelId)
	default:
		return timeline.ConversationScope(*m.ConversationId)
	}
}
