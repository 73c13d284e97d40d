package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
	"github.com/chatter-dev/chatter/internal/timeline"
)

type mockReactionStorage struct {
	messageFunc func(ctx context.Context, id domain.MsgId) (domain.Message, error)
	toggleFunc  func(ctx context.Context, workspaceId domain.WorkspaceId, messageId domain.MsgId, memberId domain.MemberId, value string) (bool, error)
	memberFunc  func(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error)
}

func (m *mockReactionStorage) Message(ctx context.Context, id domain.MsgId) (domain.Message, error) {
	return m.messageFunc(ctx, id)
}
func (m *mockReactionStorage) ToggleReaction(ctx context.Context, workspaceId domain.WorkspaceId, messageId domain.MsgId, memberId domain.MemberId, value string) (bool, error) {
	return m.toggleFunc(ctx, workspaceId, messageId, memberId, value)
}
func (m *mockReactionStorage) MemberByWorkspaceAndUser(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error) {
	return m.memberFunc(ctx, workspaceId, userId)
}

func TestReactionToggle(t *testing.T) {
	events := &capturePublisher{}
	storage := &mockReactionStorage{
		messageFunc: func(_ context.Context, id domain.MsgId) (domain.Message, error) {
			return channelMessage(100, 21, 5), nil
		},
		memberFunc: regularMember(11, 7),
		toggleFunc: func(_ context.Context, workspaceId domain.WorkspaceId, messageId domain.MsgId, memberId domain.MemberId, value string) (bool, error) {
			assert.Equal(t, domain.MemberId(2), memberId)
			assert.Equal(t, "👍", value)
			return true, nil
		},
	}
	service := NewReaction(storage, events)

	active, err := service.Toggle(context.Background(), 7, 100, " 👍 ")
	require.NoError(t, err)
	assert.True(t, active)

	require.Len(t, events.events, 1)
	assert.Equal(t, timeline.EventReactionToggled, events.events[0].Type)
	assert.Equal(t, "c:21", events.events[0].Scope.Fingerprint())
}

func TestReactionToggleEmptyValue(t *testing.T) {
	service := NewReaction(&mockReactionStorage{}, &capturePublisher{})

	_, err := service.Toggle(context.Background(), 7, 100, "   ")
	assert.True(t, internal_errors.Is[*internal_errors.ValidationError](err))
}

func TestReactionToggleNonMember(t *testing.T) {
	storage := &mockReactionStorage{
		messageFunc: func(_ context.Context, id domain.MsgId) (domain.Message, error) {
			return channelMessage(100, 21, 5), nil
		},
		memberFunc: regularMember(11, 7),
	}
	service := NewReaction(storage, &capturePublisher{})

	_, err := service.Toggle(context.Background(), 99, 100, "👍")
	assert.ErrorIs(t, err, internal_errors.NotAuthorized)
}
