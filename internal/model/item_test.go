package model

import (
	"testing"
	"time"
)

func TestItem_Validate(t *testing.T) {
	tests := []struct {
		name    string
		item    Item
		wantErr bool
	}{
		{
			name: "valid plain capture",
			item: Item{ID: "i1", UserID: "u1", Title: "Buy milk"},
		},
		{
			name:    "missing id",
			item:    Item{UserID: "u1"},
			wantErr: true,
		},
		{
			name:    "missing user",
			item:    Item{ID: "i1"},
			wantErr: true,
		},
		{
			name:    "confidence out of range",
			item:    Item{ID: "i1", UserID: "u1", AIConfidence: 1.2},
			wantErr: true,
		},
		{
			name:    "unknown status",
			item:    Item{ID: "i1", UserID: "u1", ProcessingStatus: "finished"},
			wantErr: true,
		},
		{
			name: "valid enrichment states",
			item: Item{ID: "i1", UserID: "u1", ProcessingStatus: StatusSummarized, AIConfidence: 0.8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProcessingStatus_Order(t *testing.T) {
	ordered := []ProcessingStatus{StatusPending, StatusProcessing, StatusTranscribed, StatusSummarized, StatusIndexed}
	for i, status := range ordered {
		if status.Order() != i {
			t.Errorf("Order(%q) = %d, want %d", status, status.Order(), i)
		}
	}
	if StatusFailed.Order() != -1 {
		t.Errorf("failed should sit outside the forward ordering")
	}
	if StatusNone.Order() != -1 {
		t.Errorf("none should sit outside the forward ordering")
	}
}

func TestProcessingStatus_Terminal(t *testing.T) {
	for _, status := range []ProcessingStatus{StatusNone, StatusIndexed, StatusFailed} {
		if !status.Terminal() {
			t.Errorf("%q should be terminal", status)
		}
	}
	for _, status := range []ProcessingStatus{StatusPending, StatusProcessing, StatusTranscribed, StatusSummarized} {
		if status.Terminal() {
			t.Errorf("%q should not be terminal", status)
		}
	}
}

func TestItem_EffectiveTier(t *testing.T) {
	item := Item{}
	if got := item.EffectiveTier(); got != TierShould {
		t.Errorf("unset tier should default to SHOULD, got %q", got)
	}

	item.PriorityTier = TierMust
	if got := item.EffectiveTier(); got != TierMust {
		t.Errorf("EffectiveTier() = %q, want MUST", got)
	}
}

func TestItem_AgeDays(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		created time.Time
		want    int
	}{
		{"just created", now, 0},
		{"under one day", now.Add(-23 * time.Hour), 0},
		{"eight days", now.AddDate(0, 0, -8), 8},
		{"created in the future", now.Add(time.Hour), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := Item{CreatedAt: tt.created}
			if got := item.AgeDays(now); got != tt.want {
				t.Errorf("AgeDays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestUserProfile_RecomputeTinyThreshold(t *testing.T) {
	tiny := true
	profile := UserProfile{UserID: "u1"}

	profile.RecomputeTinyThreshold([]Item{
		{Title: "Pay rent", IsTinyTask: &tiny, Completed: true},
		{Title: "Call mom", IsTinyTask: &tiny, Completed: true},
		{Title: "Renew the passport before the trip", IsTinyTask: &tiny, Completed: true},
		{Title: "Not completed", IsTinyTask: &tiny},
	})

	// Median of {8, 8, 34}.
	if profile.TinyTaskThreshold != 8 {
		t.Errorf("TinyTaskThreshold = %d, want 8", profile.TinyTaskThreshold)
	}
}
