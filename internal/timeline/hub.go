package timeline

import (
	"github.com/chatter-dev/chatter/internal/domain"
	"github.com/chatter-dev/chatter/internal/logger"
)

type EventType string

const (
	EventMessageCreated  EventType = "message.created"
	EventMessageUpdated  EventType = "message.updated"
	EventMessageDeleted  EventType = "message.deleted"
	EventReactionToggled EventType = "reaction.toggled"
)

// Event carries the whole enriched message; consumers apply it as an
// atomic replacement, never a field-level patch.
type Event struct {
	Type    EventType
	Scope   Scope
	Message domain.Message
}

// Subscription receives events for one scope, in publish order. The
// channel is buffered; a consumer that falls sendBuffer behind is dropped.
type Subscription struct {
	C chan Event

	hub         *Hub
	fingerprint string
}

// Cancel is safe to call after the hub closed; run() is gone by then and
// nobody drains unregister.
func (s *Subscription) Cancel() {
	select {
	case s.hub.unregister <- s:
	case <-s.hub.done:
	}
}

// Hub fans change notifications out to scope subscribers. It holds no
// polling loop: publishers are the mutation paths.
type Hub struct {
	register   chan *Subscription
	unregister chan *Subscription
	broadcast  chan Event
	done       chan struct{}

	// owned by run()
	subs map[string]map[*Subscription]bool
}

const sendBuffer = 256

func NewHub() *Hub {
	h := &Hub{
		register:   make(chan *Subscription),
		unregister: make(chan *Subscription),
		broadcast:  make(chan Event, sendBuffer),
		done:       make(chan struct{}),
		subs:       make(map[string]map[*Subscription]bool),
	}
	go h.run()
	return h
}

func (h *Hub) Subscribe(scope Scope) *Subscription {
	sub := &Subscription{
		C:           make(chan Event, sendBuffer),
		hub:         h,
		fingerprint: scope.Fingerprint(),
	}
	h.register <- sub
	return sub
}

func (h *Hub) Publish(e Event) {
	select {
	case h.broadcast <- e:
	case <-h.done:
	}
}

func (h *Hub) Close() {
	close(h.done)
}

func (h *Hub) run() {
	for {
		select {
		case sub := <-h.register:
			set := h.subs[sub.fingerprint]
			if set == nil {
				set = make(map[*Subscription]bool)
				h.subs[sub.fingerprint] = set
			}
			set[sub] = true
		case sub := <-h.unregister:
			if set, ok := h.subs[sub.fingerprint]; ok {
				if set[sub] {
					delete(set, sub)
					close(sub.C)
					if len(set) == 0 {
						delete(h.subs, sub.fingerprint)
					}
				}
			}
		case event := <-h.broadcast:
			for sub := range h.subs[event.Scope.Fingerprint()] {
				select {
				case sub.C <- event:
				default:
					// Slow consumer: drop it rather than stall delivery order
					logger.Log.Warn("dropping slow timeline subscriber", "scope", sub.fingerprint)
					delete(h.subs[sub.fingerprint], sub)
					close(sub.C)
				}
			}
		case <-h.done:
			for _, set := range h.subs {
				for sub := range set {
					close(sub.C)
				}
			}
			return
		}
	}
}
