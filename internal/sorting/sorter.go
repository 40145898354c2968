// Package sorting produces the deterministic, explainable ordering the item
// list renders in. The comparator is a strict weak ordering so stable sorts
// give identical output for identical input and "now" snapshot.
package sorting

import (
	"sort"
	"time"

	"github.com/tendnotes/tend/internal/model"
)

// SortItems returns the incomplete items in display order. Completed items
// are dropped. The same "now" snapshot is used for every due/overdue check
// in the call, keeping the ordering stable within one pass.
func SortItems(items []model.Item, now time.Time) []model.Item {
	sorted := make([]model.Item, 0, len(items))
	for _, item := range items {
		if !item.Completed {
			sorted = append(sorted, item)
		}
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return Less(&sorted[i], &sorted[j], now)
	})
	return sorted
}

// Less reports whether a sorts before b. Tie-breaking rules, first
// distinguishing rule wins:
//  1. focus before non-focus
//  2. MUST before non-MUST
//  3. due today (and not overdue) before not
//  4. overdue before not
//  5. within a tier, non-tiny before tiny
//  6. SHOULD before COULD
//  7. more recently created first
func Less(a, b *model.Item, now time.Time) bool {
	if a.IsFocus != b.IsFocus {
		return a.IsFocus
	}

	aMust := a.EffectiveTier() == model.TierMust
	bMust := b.EffectiveTier() == model.TierMust
	if aMust != bMust {
		return aMust
	}

	aDue := DueToday(a, now)
	bDue := DueToday(b, now)
	if aDue != bDue {
		return aDue
	}

	aOver := Overdue(a, now)
	bOver := Overdue(b, now)
	if aOver != bOver {
		return aOver
	}

	if a.EffectiveTier() == b.EffectiveTier() {
		aTiny := a.IsTinyTask != nil && *a.IsTinyTask
		bTiny := b.IsTinyTask != nil && *b.IsTinyTask
		if aTiny != bTiny {
			// Tiny tasks sink within their tier, never across tiers.
			return bTiny
		}
	}

	aShould := a.EffectiveTier() == model.TierShould
	bShould := b.EffectiveTier() == model.TierShould
	if aShould != bShould {
		return aShould
	}

	return a.CreatedAt.After(b.CreatedAt)
}

// DueToday reports whether the item's reminder falls on the snapshot's
// calendar day and has not already passed.
func DueToday(item *model.Item, now time.Time) bool {
	if item.ReminderTime == nil {
		return false
	}
	reminder := *item.ReminderTime
	sameDay := reminder.Year() == now.Year() && reminder.YearDay() == now.YearDay()
	return sameDay && !reminder.Before(now)
}

// Overdue reports whether the item's reminder is in the past.
func Overdue(item *model.Item, now time.Time) bool {
	return item.ReminderTime != nil && item.ReminderTime.Before(now)
}
