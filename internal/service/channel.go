package service

import (
	"context"
	"strings"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
)

type ChannelStorage interface {
	CreateChannel(data domain.ChannelCreationData) (domain.ChannelId, error)
	Channel(id domain.ChannelId) (domain.Channel, error)
	Channels(workspaceId domain.WorkspaceId) ([]domain.Channel, error)
	UpdateChannel(id domain.ChannelId, name string) error
	DeleteChannel(id domain.ChannelId) error
	MemberByWorkspaceAndUser(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error)
}

type Channel struct {
	storage ChannelStorage
}

func NewChannel(storage ChannelStorage) *Channel {
	return &Channel{storage}
}

// normalizeChannelName lowercases and hyphenates whitespace, so "Team Chat"
// and "team-chat" name the same channel.
func normalizeChannelName(name string) (string, error) {
	name = strings.ToLower(strings.Join(strings.Fields(name), "-"))
	if len(name) < 1 || len(name) > 80 {
		return "", &internal_errors.ValidationError{Message: "channel name must be 1 to 80 characters"}
	}
	return name, nil
}

func (c *Channel) Create(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId, name string) (domain.Channel, error) {
	if _, err := requireAdmin(ctx, c.storage, workspaceId, userId); err != nil {
		return domain.Channel{}, err
	}
	name, err := normalizeChannelName(name)
	if err != nil {
		return domain.Channel{}, err
	}

	id, err := c.storage.CreateChannel(domain.ChannelCreationData{Name: name, WorkspaceId: workspaceId})
	if err != nil {
		return domain.Channel{}, err
	}
	return c.storage.Channel(id)
}

func (c *Channel) Get(ctx context.Context, userId domain.UserId, id domain.ChannelId) (domain.Channel, error) {
	channel, err := c.storage.Channel(id)
	if err != nil {
		return domain.Channel{}, err
	}
	if _, err := requireMember(ctx, c.storage, channel.WorkspaceId, userId); err != nil {
		return domain.Channel{}, err
	}
	return channel, nil
}

func (c *Channel) List(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) ([]domain.Channel, error) {
	if _, err := requireMember(ctx, c.storage, workspaceId, userId); err != nil {
		return nil, err
	}
	return c.storage.Channels(workspaceId)
}

func (c *Channel) Update(ctx context.Context, userId domain.UserId, id domain.ChannelId, name string) error {
	channel, err := c.storage.Channel(id)
	if err != nil {
		return err
	}
	if _, err := requireAdmin(ctx, c.storage, channel.WorkspaceId, userId); err != nil {
		return err
	}
	name, err = normalizeChannelName(name)
	if err != nil {
		return err
	}
	return c.storage.UpdateChannel(id, name)
}

func (c *Channel) Remove(ctx context.Context, userId domain.UserId, id domain.ChannelId) error {
	channel, err := c.storage.Channel(id)
	if err != nil {
		return err
	}
	if _, err := requireAdmin(ctx, c.storage, channel.WorkspaceId, userId); err != nil {
		return err
	}
	return c.storage.DeleteChannel(id)
}
