package timeline

import (
	"sort"
	"time"

	"github.com/chatter-dev/chatter/internal/domain"
	internal_errors "github.com/chatter-dev/chatter/internal/errors"
)

// DayKeyLayout is the calendar-day key format.
const DayKeyLayout = "2006-01-02"

// GroupByDay buckets messages by calendar day in loc, each day
// oldest-first. Input is expected newest-first (store order) so front
// insertion yields the display order; any input order produces the same
// mapping since each day is normalized.
//
// Messages without a valid creation time are excluded and reported via a
// MalformedMessageError; the rest of the page groups normally.
func GroupByDay(msgs []domain.Message, loc *time.Location) (domain.DateGroups, error) {
	if loc == nil {
		loc = time.Local
	}

	groups := make(domain.DateGroups)
	var malformed []int64
	for _, msg := range msgs {
		if msg.CreatedAt.IsZero() {
			malformed = append(malformed, msg.Id)
			continue
		}
		key := msg.CreatedAt.In(loc).Format(DayKeyLayout)
		groups[key] = append([]domain.Message{msg}, groups[key]...)
	}

	// Normalize each day to oldest-first regardless of input order
	for _, day := range groups {
		sort.SliceStable(day, func(i, j int) bool {
			if !day[i].CreatedAt.Equal(day[j].CreatedAt) {
				return day[i].CreatedAt.Before(day[j].CreatedAt)
			}
			return day[i].Id < day[j].Id
		})
	}

	if malformed != nil {
		return groups, &internal_errors.MalformedMessageError{Ids: malformed}
	}
	return groups, nil
}

// DayKeys returns the group keys newest-day-first, matching a
// bottom-anchored chat view rendered in reverse.
func DayKeys(groups domain.DateGroups) []string {
	keys := make([]string, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}
