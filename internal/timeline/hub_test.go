package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chatter-dev/chatter/internal/domain"
)

func publishN(h *Hub, scope Scope, n int) {
	channel := *scope.ChannelId
	for i := 1; i <= n; i++ {
		h.Publish(Event{
			Type:  EventMessageCreated,
			Scope: scope,
			Message: domain.Message{
				MessageMetadata: domain.MessageMetadata{Id: domain.MsgId(i), ChannelId: &channel, CreatedAt: time.Now()},
			},
		})
	}
}

func TestHubDeliversInPublishOrder(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	sub := hub.Subscribe(ChannelScope(1))
	defer sub.Cancel()

	publishN(hub, ChannelScope(1), 10)

	for want := domain.MsgId(1); want <= 10; want++ {
		select {
		case event := <-sub.C:
			assert.Equal(t, want, event.Message.Id)
		case <-time.After(2 * time.Second):
			t.Fatalf("event %d never delivered", want)
		}
	}
}

func TestHubScopeIsolation(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	one := hub.Subscribe(ChannelScope(1))
	defer one.Cancel()
	two := hub.Subscribe(ChannelScope(2))
	defer two.Cancel()

	publishN(hub, ChannelScope(1), 1)

	select {
	case event := <-one.C:
		require.Equal(t, "c:1", event.Scope.Fingerprint())
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber for the published scope got nothing")
	}

	select {
	case <-two.C:
		t.Fatal("subscriber for another scope received the event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubCancelAfterCloseReturns(t *testing.T) {
	hub := NewHub()
	sub := hub.Subscribe(ChannelScope(1))
	hub.Close()

	// A subscriber unwinding during shutdown must not block forever
	done := make(chan struct{})
	go func() {
		sub.Cancel()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Cancel blocked after hub close")
	}
}

func TestHubCancelClosesChannel(t *testing.T) {
	hub := NewHub()
	defer hub.Close()

	sub := hub.Subscribe(ChannelScope(1))
	sub.Cancel()

	select {
	case _, ok := <-sub.C:
		assert.False(t, ok, "channel should be closed after cancel")
	case <-time.After(2 * time.Second):
		t.Fatal("channel not closed after cancel")
	}
}
