package timeline

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
)

// Store is the document-store boundary the fetcher reads through.
type Store interface {
	// MemberByWorkspaceAndUser is the unique (workspace, user) membership
	// lookup used as the authorization check for reads.
	MemberByWorkspaceAndUser(ctx context.Context, workspaceId domain.WorkspaceId, userId domain.UserId) (domain.Member, error)
	// MessagePage returns up to limit messages of the scope older than
	// before (nil means newest), descending (created, id), plus a hasMore
	// flag. Pages are contiguous and non-overlapping under a stable
	// snapshot.
	MessagePage(ctx context.Context, scope Scope, before *Position, limit int) ([]domain.Message, bool, error)
}

// ErrScopeChanged reports a fetch whose response arrived after the session
// switched scope. The response is discarded, never merged.
var ErrScopeChanged = errors.New("scope changed during fetch")

// Session owns the accumulated message window for one scope and one
// viewer. All computation on the window happens under its mutex; fetches
// and live events never interleave partially.
type Session struct {
	store Store
	hub   *Hub

	workspaceId domain.WorkspaceId
	userId      domain.UserId
	pageSize    int

	mu         sync.Mutex
	scope      Scope
	generation uint64
	messages   []domain.Message // newest-first
	cursor     string
	status     domain.PageStatus
	sub        *Subscription
	onUpdate   func(domain.Page)
}

// NewSession validates the scope eagerly; hub may be nil for one-shot
// request-response use.
func NewSession(store Store, hub *Hub, scope Scope, workspaceId domain.WorkspaceId, userId domain.UserId, pageSize int) (*Session, error) {
	if err := scope.Validate(); err != nil {
		return nil, err
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	return &Session{
		store:       store,
		hub:         hub,
		workspaceId: workspaceId,
		userId:      userId,
		pageSize:    pageSize,
		scope:       scope,
		status:      domain.LoadingFirstPage,
	}, nil
}

// OnUpdate registers the listener invoked (outside the lock) with a fresh
// snapshot whenever a live event changes the window.
func (s *Session) OnUpdate(fn func(domain.Page)) {
	s.mu.Lock()
	s.onUpdate = fn
	s.mu.Unlock()
}

// LoadFirstPage fetches the newest page of the scope. A caller without
// membership in the owning workspace gets NotAuthorized; an empty scope
// gets an empty Exhausted page, not an error. On success the session
// starts consuming live updates for the scope.
func (s *Session) LoadFirstPage(ctx context.Context) (domain.Page, error) {
	if _, err := s.store.MemberByWorkspaceAndUser(ctx, s.workspaceId, s.userId); err != nil {
		if internal_errors.IsNotFound(err) {
			return domain.Page{}, internal_errors.NotAuthorized
		}
		return domain.Page{}, err
	}

	s.mu.Lock()
	scope := s.scope
	gen := s.generation
	s.status = domain.LoadingFirstPage
	s.mu.Unlock()

	msgs, hasMore, err := s.store.MessagePage(ctx, scope, nil, s.pageSize)
	if err != nil {
		return domain.Page{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return domain.Page{}, ErrScopeChanged
	}
	s.messages = msgs
	s.advance(hasMore)
	s.subscribeLocked()
	return s.pageLocked(), nil
}

// LoadMore continues the fetch stream from cursor. A token minted for a
// different scope fails with InvalidCursor; an exhausted stream is a
// no-op returning the current window unchanged.
func (s *Session) LoadMore(ctx context.Context, cursor string) (domain.Page, error) {
	s.mu.Lock()
	scope := s.scope
	gen := s.generation
	if s.status == domain.Exhausted {
		page := s.pageLocked()
		s.mu.Unlock()
		return page, nil
	}
	pos, err := DecodeCursor(scope, cursor)
	if err != nil {
		s.mu.Unlock()
		return domain.Page{}, err
	}
	s.status = domain.LoadingMore
	s.mu.Unlock()

	msgs, hasMore, err := s.store.MessagePage(ctx, scope, &pos, s.pageSize)
	if err != nil {
		s.mu.Lock()
		if gen == s.generation {
			s.status = domain.CanLoadMore
		}
		s.mu.Unlock()
		return domain.Page{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return domain.Page{}, ErrScopeChanged
	}
	s.appendLocked(msgs)
	s.advance(hasMore)
	return s.pageLocked(), nil
}

// SwitchScope abandons the current window and any fetch in flight; stale
// responses and events are discarded by the generation check.
func (s *Session) SwitchScope(scope Scope) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.scope = scope
	s.messages = nil
	s.cursor = ""
	s.status = domain.LoadingFirstPage
	s.unsubscribeLocked()
	return nil
}

func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generation++
	s.unsubscribeLocked()
}

// Page returns a snapshot of the accumulated window.
func (s *Session) Page() domain.Page {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pageLocked()
}

func (s *Session) pageLocked() domain.Page {
	msgs := make([]domain.Message, len(s.messages))
	copy(msgs, s.messages)
	return domain.Page{Messages: msgs, Cursor: s.cursor, Status: s.status}
}

// advance recomputes cursor and status after a fetch merged into the
// window. Caller holds the lock.
func (s *Session) advance(hasMore bool) {
	if !hasMore || len(s.messages) == 0 {
		s.cursor = ""
		s.status = domain.Exhausted
		return
	}
	oldest := s.messages[len(s.messages)-1]
	s.cursor = EncodeCursor(s.scope, Position{CreatedAt: oldest.CreatedAt, Id: oldest.Id})
	s.status = domain.CanLoadMore
}

// appendLocked extends the window, dropping any id already present so a
// concurrent insert between pages cannot duplicate.
func (s *Session) appendLocked(msgs []domain.Message) {
	seen := make(map[domain.MsgId]bool, len(s.messages))
	for _, m := range s.messages {
		seen[m.Id] = true
	}
	for _, m := range msgs {
		if !seen[m.Id] {
			s.messages = append(s.messages, m)
			seen[m.Id] = true
		}
	}
}

func (s *Session) subscribeLocked() {
	if s.hub == nil || s.sub != nil {
		return
	}
	sub := s.hub.Subscribe(s.scope)
	s.sub = sub
	gen := s.generation
	go func() {
		for event := range sub.C {
			s.applyEvent(gen, event)
		}
	}()
}

func (s *Session) unsubscribeLocked() {
	if s.sub != nil {
		s.sub.Cancel()
		s.sub = nil
	}
}

// applyEvent merges one live event into the window as a whole-message
// replacement. Events for a stale generation are discarded.
func (s *Session) applyEvent(gen uint64, event Event) {
	s.mu.Lock()
	if gen != s.generation || (!s.scope.Contains(&event.Message) && event.Type != EventMessageDeleted) {
		s.mu.Unlock()
		return
	}

	switch event.Type {
	case EventMessageDeleted:
		s.removeLocked(event.Message.Id)
	default:
		s.upsertLocked(event.Message)
	}

	listener := s.onUpdate
	page := s.pageLocked()
	s.mu.Unlock()

	if listener != nil {
		listener(page)
	}
}

func (s *Session) removeLocked(id domain.MsgId) {
	for i, m := range s.messages {
		if m.Id == id {
			s.messages = append(s.messages[:i], s.messages[i+1:]...)
			return
		}
	}
}

// upsertLocked replaces an in-window message or inserts a new one that
// falls inside the loaded window. Messages older than the loaded window
// are left for LoadMore to fetch.
func (s *Session) upsertLocked(msg domain.Message) {
	for i, m := range s.messages {
		if m.Id == msg.Id {
			s.messages[i] = msg
			return
		}
	}
	if s.status != domain.Exhausted && len(s.messages) > 0 {
		oldest := s.messages[len(s.messages)-1]
		if msg.CreatedAt.Before(oldest.CreatedAt) {
			return
		}
	}
	s.messages = append(s.messages, msg)
	sort.SliceStable(s.messages, func(i, j int) bool {
		if !s.messages[i].CreatedAt.Equal(s.messages[j].CreatedAt) {
			return s.messages[i].CreatedAt.After(s.messages[j].CreatedAt)
		}
		return s.messages[i].Id > s.messages[j].Id
	})
}
