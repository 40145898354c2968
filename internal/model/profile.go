package model

import (
	"sort"
	"time"
)

// UserProfile carries per-user learned state consumed by the classifiers.
// Callers fetch a snapshot and pass it explicitly; nothing here is global.
type UserProfile struct {
	UpdatedAt time.Time
	UserID    string
	// TinyTaskThreshold is a learned title character length. Titles at or
	// below it get a confidence boost during tiny-task classification.
	TinyTaskThreshold int
}

// RecomputeTinyThreshold derives the threshold from the titles of recently
// completed tiny tasks: the median title length, so one long outlier does
// not drag the boost window open.
func (p *UserProfile) RecomputeTinyThreshold(completed []Item) {
	lengths := make([]int, 0, len(completed))
	for _, item := range completed {
		if item.IsTinyTask != nil && *item.IsTinyTask && item.Completed {
			lengths = append(lengths, len(item.Title))
		}
	}
	if len(lengths) == 0 {
		return
	}
	sort.Ints(lengths)
	p.TinyTaskThreshold = lengths[len(lengths)/2]
	p.UpdatedAt = time.Now().UTC()
}
