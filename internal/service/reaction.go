package service

import (
	"context"
	"strings"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
	"github.com/chatter-dev/chatter/internal/timeline"
)

const maxReactionLen = 32

type ReactionStorage interface {
	Message(ctx context.Context, id domain.MsgId) (domain.Message, error)
	ToggleReaction(ctx context.Context, workspaceId domain.WorkspaceId, messageId domain.MsgId, memberId domain.MemberId, value string) (bool, error)
	MemberByWorkspaceAndUser(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error)
}

type Reaction struct {
	storage ReactionStorage
	events  EventPublisher
}

func NewReaction(storage ReactionStorage, events EventPublisher) *Reaction {
	return &Reaction{storage, events}
}

// Toggle flips the caller's (message, value) reaction and reports whether
// it is active afterwards. Toggling twice restores the prior state.
func (r *Reaction) Toggle(ctx context.Context, userId domain.UserId, messageId domain.MsgId, value string) (bool, error) {
	value = strings.TrimSpace(value)
	if value == "" || len(value) > maxReactionLen {
		return false, &internal_errors.ValidationError{Message: "reaction value must be 1 to 32 characters"}
	}

	msg, err := r.storage.Message(ctx, messageId)
	if err != nil {
		return false, err
	}
	member, err := requireMember(ctx, r.storage, msg.WorkspaceId, userId)
	if err != nil {
		return false, err
	}

	active, err := r.storage.ToggleReaction(ctx, msg.WorkspaceId, msg.Id, member.Id, value)
	if err != nil {
		return false, err
	}

	fresh, err := r.storage.Message(ctx, msg.Id)
	if err == nil {
		r.events.Publish(timeline.Event{Type: timeline.EventReactionToggled, Scope: scopeOf(&fresh), Message: fresh})
	}
	return active, nil
}
