package sorting

import (
	"math/rand"
	"testing"
	"time"

	"github.com/tendnotes/tend/internal/model"
)

var testNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func boolPtr(b bool) *bool { return &b }

func timePtr(t time.Time) *time.Time { return &t }

func TestLess_RuleOrder(t *testing.T) {
	base := func() model.Item {
		return model.Item{PriorityTier: model.TierShould, CreatedAt: testNow.Add(-time.Hour)}
	}

	tests := []struct {
		mutateA func(*model.Item)
		mutateB func(*model.Item)
		name    string
	}{
		{
			name:    "focus beats MUST",
			mutateA: func(i *model.Item) { i.IsFocus = true },
			mutateB: func(i *model.Item) { i.PriorityTier = model.TierMust },
		},
		{
			name:    "MUST beats due today",
			mutateA: func(i *model.Item) { i.PriorityTier = model.TierMust },
			mutateB: func(i *model.Item) { i.ReminderTime = timePtr(testNow.Add(2 * time.Hour)) },
		},
		{
			name:    "due today beats overdue",
			mutateA: func(i *model.Item) { i.ReminderTime = timePtr(testNow.Add(2 * time.Hour)) },
			mutateB: func(i *model.Item) { i.ReminderTime = timePtr(testNow.Add(-48 * time.Hour)) },
		},
		{
			name:    "overdue beats plain",
			mutateA: func(i *model.Item) { i.ReminderTime = timePtr(testNow.Add(-time.Hour)) },
			mutateB: func(*model.Item) {},
		},
		{
			name:    "non-tiny beats tiny within a tier",
			mutateA: func(i *model.Item) { i.IsTinyTask = boolPtr(false) },
			mutateB: func(i *model.Item) { i.IsTinyTask = boolPtr(true) },
		},
		{
			name:    "SHOULD beats COULD",
			mutateA: func(*model.Item) {},
			mutateB: func(i *model.Item) { i.PriorityTier = model.TierCould },
		},
		{
			name:    "newer beats older",
			mutateA: func(i *model.Item) { i.CreatedAt = testNow.Add(-time.Minute) },
			mutateB: func(i *model.Item) { i.CreatedAt = testNow.Add(-time.Hour) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, b := base(), base()
			tt.mutateA(&a)
			tt.mutateB(&b)

			if !Less(&a, &b, testNow) {
				t.Error("expected a to sort before b")
			}
			if Less(&b, &a, testNow) {
				t.Error("ordering must be asymmetric")
			}
		})
	}
}

func TestLess_TinyNeverPromotedAcrossTiers(t *testing.T) {
	tinyShould := model.Item{PriorityTier: model.TierShould, IsTinyTask: boolPtr(true)}
	bigCould := model.Item{PriorityTier: model.TierCould, IsTinyTask: boolPtr(false)}

	if !Less(&tinyShould, &bigCould, testNow) {
		t.Error("a tiny SHOULD still sorts before any COULD")
	}
}

func TestSortItems_DropsCompleted(t *testing.T) {
	items := []model.Item{
		{ID: "a", Completed: true, CreatedAt: testNow},
		{ID: "b", CreatedAt: testNow},
	}
	sorted := SortItems(items, testNow)
	if len(sorted) != 1 || sorted[0].ID != "b" {
		t.Errorf("completed items must be excluded, got %v", sorted)
	}
}

func randomItem(r *rand.Rand) model.Item {
	tiers := []model.PriorityTier{model.TierMust, model.TierShould, model.TierCould}
	item := model.Item{
		PriorityTier: tiers[r.Intn(3)],
		IsFocus:      r.Intn(2) == 0,
		CreatedAt:    testNow.Add(-time.Duration(r.Intn(72)) * time.Hour),
	}
	switch r.Intn(3) {
	case 0:
		item.ReminderTime = timePtr(testNow.Add(3 * time.Hour))
	case 1:
		item.ReminderTime = timePtr(testNow.Add(-time.Duration(1+r.Intn(100)) * time.Hour))
	}
	if r.Intn(2) == 0 {
		item.IsTinyTask = boolPtr(r.Intn(2) == 0)
	}
	return item
}

// The comparator must be a strict weak ordering: irreflexive, asymmetric,
// and transitive over arbitrary items.
func TestLess_StrictWeakOrdering(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	items := make([]model.Item, 60)
	for i := range items {
		items[i] = randomItem(r)
	}

	for i := range items {
		if Less(&items[i], &items[i], testNow) {
			t.Fatal("comparator must be irreflexive")
		}
		for j := range items {
			if Less(&items[i], &items[j], testNow) && Less(&items[j], &items[i], testNow) {
				t.Fatal("comparator must be asymmetric")
			}
			for k := range items {
				if Less(&items[i], &items[j], testNow) &&
					Less(&items[j], &items[k], testNow) &&
					!Less(&items[i], &items[k], testNow) {
					t.Fatalf("comparator must be transitive (i=%d j=%d k=%d)", i, j, k)
				}
			}
		}
	}
}

func TestSortItems_Deterministic(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	items := make([]model.Item, 40)
	for i := range items {
		items[i] = randomItem(r)
		items[i].ID = string(rune('A' + i))
	}

	first := SortItems(items, testNow)
	second := SortItems(items, testNow)

	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("sort must be deterministic, diverged at %d", i)
		}
	}
}
