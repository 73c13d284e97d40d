package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
)

type mockChannelStorage struct {
	createFunc   func(data domain.ChannelCreationData) (domain.ChannelId, error)
	channelFunc  func(id domain.ChannelId) (domain.Channel, error)
	channelsFunc func(workspaceId domain.WorkspaceId) ([]domain.Channel, error)
	updateFunc   func(id domain.ChannelId, name string) error
	deleteFunc   func(id domain.ChannelId) error
	memberFunc   func(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error)
}

func (m *mockChannelStorage) CreateChannel(data domain.ChannelCreationData) (domain.ChannelId, error) {
	return m.createFunc(data)
}
func (m *mockChannelStorage) Channel(id domain.ChannelId) (domain.Channel, error) {
	return m.channelFunc(id)
}
func (m *mockChannelStorage) Channels(workspaceId domain.WorkspaceId) ([]domain.Channel, error) {
	return m.channelsFunc(workspaceId)
}
func (m *mockChannelStorage) UpdateChannel(id domain.ChannelId, name string) error {
	return m.updateFunc(id, name)
}
func (m *mockChannelStorage) DeleteChannel(id domain.ChannelId) error {
	return m.deleteFunc(id)
}
func (m *mockChannelStorage) MemberByWorkspaceAndUser(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error) {
	return m.memberFunc(ctx, workspaceId, userId)
}

func TestChannelCreateNormalizesName(t *testing.T) {
	var created domain.ChannelCreationData
	storage := &mockChannelStorage{
		memberFunc: adminMember(11, 7),
		createFunc: func(data domain.ChannelCreationData) (domain.ChannelId, error) {
			created = data
			return 21, nil
		},
		channelFunc: func(id domain.ChannelId) (domain.Channel, error) {
			return domain.Channel{Id: id, Name: created.Name, WorkspaceId: created.WorkspaceId}, nil
		},
	}
	service := NewChannel(storage)

	channel, err := service.Create(context.Background(), 11, 7, "  Team   Chat ")
	require.NoError(t, err)
	assert.Equal(t, "team-chat", channel.Name)
}

func TestChannelCreateAdminOnly(t *testing.T) {
	storage := &mockChannelStorage{memberFunc: regularMember(11, 7)}
	service := NewChannel(storage)

	_, err := service.Create(context.Background(), 11, 7, "general")
	assert.ErrorIs(t, err, internal_errors.NotAuthorized)
}

func TestChannelCreateRejectsBlankName(t *testing.T) {
	storage := &mockChannelStorage{memberFunc: adminMember(11, 7)}
	service := NewChannel(storage)

	_, err := service.Create(context.Background(), 11, 7, "   ")
	assert.True(t, internal_errors.Is[*internal_errors.ValidationError](err))
}

func TestChannelGetRequiresMembership(t *testing.T) {
	storage := &mockChannelStorage{
		channelFunc: func(id domain.ChannelId) (domain.Channel, error) {
			return domain.Channel{Id: id, WorkspaceId: 11, Name: "general"}, nil
		},
		memberFunc: regularMember(11, 7),
	}
	service := NewChannel(storage)

	channel, err := service.Get(context.Background(), 7, 21)
	require.NoError(t, err)
	assert.Equal(t, "general", channel.Name)

	_, err = service.Get(context.Background(), 99, 21)
	assert.ErrorIs(t, err, internal_errors.NotAuthorized)
}

func TestChannelUpdateAdminOnly(t *testing.T) {
	storage := &mockChannelStorage{
		channelFunc: func(id domain.ChannelId) (domain.Channel, error) {
			return domain.Channel{Id: id, WorkspaceId: 11}, nil
		},
		memberFunc: regularMember(11, 7),
	}
	service := NewChannel(storage)

	err := service.Update(context.Background(), 7, 21, "renamed")
	assert.ErrorIs(t, err, internal_errors.NotAuthorized)
}

func TestChannelRemove(t *testing.T) {
	deleted := false
	storage := &mockChannelStorage{
		channelFunc: func(id domain.ChannelId) (domain.Channel, error) {
			return domain.Channel{Id: id, WorkspaceId: 11}, nil
		},
		memberFunc: adminMember(11, 7),
		deleteFunc: func(id domain.ChannelId) error {
			deleted = true
			return nil
		},
	}
	service := NewChannel(storage)

	require.NoError(t, service.Remove(context.Background(), 7, 21))
	assert.True(t, deleted)
}
