package domain

type PageStatus string

const (
	LoadingFirstPage PageStatus = "LoadingFirstPage"
	CanLoadMore      PageStatus = "CanLoadMore"
	LoadingMore      PageStatus = "LoadingMore"
	Exhausted        PageStatus = "Exhausted"
)

// Page is one bounded, cursor-ordered slice of messages. Messages are
// newest-first as delivered by the store; Cursor is empty when there is
// nothing further.
type Page struct {
	Messages []Message
	Cursor   string
	Status   PageStatus
}

// DateGroups maps a calendar-day key ("yyyy-mm-dd") to that day's
// messages, oldest-first. Derived, never persisted.
type DateGroups map[string][]Message
