package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chatter-dev/chatter/internal/domain"
)

func TestScopeValidate(t *testing.T) {
	channel := domain.ChannelId(1)
	conversation := domain.ConversationId(2)
	parent := domain.MsgId(3)

	tests := []struct {
		name    string
		scope   Scope
		wantErr bool
	}{
		{"channel", ChannelScope(channel), false},
		{"thread", ThreadScope(channel, parent), false},
		{"conversation", ConversationScope(conversation), false},
		{"empty", Scope{}, true},
		{"channel and conversation", Scope{ChannelId: &channel, ConversationId: &conversation}, true},
		{"parent without channel", Scope{ParentMessageId: &parent}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.scope.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestScopeFingerprintDistinct(t *testing.T) {
	fingerprints := map[string]bool{
		ChannelScope(1).Fingerprint():      true,
		ThreadScope(1, 2).Fingerprint():    true,
		ConversationScope(1).Fingerprint(): true,
		ChannelScope(2).Fingerprint():      true,
	}
	assert.Len(t, fingerprints, 4)
}

func TestScopeContains(t *testing.T) {
	channel := domain.ChannelId(1)
	otherChannel := domain.ChannelId(9)
	parent := domain.MsgId(5)
	conversation := domain.ConversationId(2)

	topLevel := domain.Message{MessageMetadata: domain.MessageMetadata{Id: 10, ChannelId: &channel}}
	reply := domain.Message{MessageMetadata: domain.MessageMetadata{Id: 11, ChannelId: &channel, ParentMessageId: &parent}}
	dm := domain.Message{MessageMetadata: domain.MessageMetadata{Id: 12, ConversationId: &conversation}}
	elsewhere := domain.Message{MessageMetadata: domain.MessageMetadata{Id: 13, ChannelId: &otherChannel}}

	assert.True(t, ChannelScope(channel).Contains(&topLevel))
	assert.False(t, ChannelScope(channel).Contains(&reply), "replies belong to their thread scope")
	assert.False(t, ChannelScope(channel).Contains(&elsewhere))

	assert.True(t, ThreadScope(channel, parent).Contains(&reply))
	assert.False(t, ThreadScope(channel, parent).Contains(&topLevel))

	assert.True(t, ConversationScope(conversation).Contains(&dm))
	assert.False(t, ConversationScope(conversation).Contains(&topLevel))
}
