package timeline

import (
	"time"

	"github.com/chatter-dev/chatter/internal/domain"
)

// Classifier decides whether adjacent messages render compact (author
// header suppressed). Stateless; re-evaluated on every grouping pass.
type Classifier struct {
	Threshold time.Duration
	Location  *time.Location
}

func NewClassifier(threshold time.Duration, loc *time.Location) Classifier {
	if threshold <= 0 {
		threshold = 5 * time.Minute
	}
	if loc == nil {
		loc = time.Local
	}
	return Classifier{Threshold: threshold, Location: loc}
}

// IsCompact reports whether cur is a close, same-author continuation of
// prev. A calendar-day change is a hard boundary regardless of gap.
func (c Classifier) IsCompact(prev, cur domain.Message) bool {
	if prev.MemberId != cur.MemberId {
		return false
	}
	if cur.CreatedAt.In(c.Location).Format(DayKeyLayout) != prev.CreatedAt.In(c.Location).Format(DayKeyLayout) {
		return false
	}
	gap := cur.CreatedAt.Sub(prev.CreatedAt)
	return gap >= 0 && gap < c.Threshold
}

// Classify maps a day's oldest-first sequence to per-index compactness.
// Index 0 always renders a full header.
func (c Classifier) Classify(day []domain.Message) []bool {
	compact := make([]bool, len(day))
	for i := 1; i < len(day); i++ {
		compact[i] = c.IsCompact(day[i-1], day[i])
	}
	return compact
}
