package tinytask

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tendnotes/tend/internal/model"
	"github.com/tendnotes/tend/internal/service"
)

func TestHeuristic(t *testing.T) {
	reminder := time.Now().Add(time.Hour)

	tests := []struct {
		name           string
		item           model.Item
		wantConfidence float64
		wantTiny       bool
	}{
		{
			name:           "tiny keyword with short title",
			item:           model.Item{Title: "Pay electric bill"},
			wantConfidence: 0.9,
			wantTiny:       true,
		},
		{
			name:           "big keyword dominates regardless of length",
			item:           model.Item{Title: "Research and draft the Q3 strategy presentation"},
			wantConfidence: 0.1,
			wantTiny:       false,
		},
		{
			name:           "tiny keyword with long title",
			item:           model.Item{Title: "Send the follow-up note to everyone who attended the offsite"},
			wantConfidence: 0.7,
			wantTiny:       true,
		},
		{
			name:           "short title with reminder",
			item:           model.Item{Title: "Dentist tomorrow", ReminderTime: &reminder},
			wantConfidence: 0.6,
			wantTiny:       true,
		},
		{
			name:           "short title alone",
			item:           model.Item{Title: "Groceries list thing"},
			wantConfidence: 0.5,
			wantTiny:       true,
		},
		{
			name:           "no signals",
			item:           model.Item{Title: "That interesting conversation about the neighborhood garden project yesterday"},
			wantConfidence: 0.3,
			wantTiny:       false,
		},
		{
			name:           "keyword found in context",
			item:           model.Item{Title: "Electric bill", Context: "need to pay it before friday"},
			wantConfidence: 0.9,
			wantTiny:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Heuristic(&tt.item)
			assert.InDelta(t, tt.wantConfidence, result.Confidence, 0.001)
			assert.Equal(t, tt.wantTiny, result.IsTiny)
			assert.NotEmpty(t, result.Reason)
		})
	}
}

func TestClassify_PersonalizationBoost(t *testing.T) {
	classifier := New(nil, nil)
	profile := &model.UserProfile{UserID: "u1", TinyTaskThreshold: 9}

	// "Groceries" is 9 chars, one word: short title alone → 0.5, boosted to 0.8.
	item := &model.Item{Title: "Groceries"}
	result := classifier.Classify(context.Background(), item, profile)

	assert.InDelta(t, 0.8, result.Confidence, 0.001)
	assert.True(t, result.IsTiny)
	assert.Contains(t, result.Reason, "usual tiny tasks")
}

func TestClassify_BoostNeverFlipsBigKeyword(t *testing.T) {
	classifier := New(nil, nil)
	profile := &model.UserProfile{UserID: "u1", TinyTaskThreshold: 9}

	item := &model.Item{Title: "Draft memo"}
	result := classifier.Classify(context.Background(), item, profile)

	assert.False(t, result.IsTiny)
	assert.InDelta(t, 0.1, result.Confidence, 0.001)
}

func TestClassify_BoostRequiresThresholdUnderCeiling(t *testing.T) {
	classifier := New(nil, nil)
	profile := &model.UserProfile{UserID: "u1", TinyTaskThreshold: 25}

	item := &model.Item{Title: "Groceries"}
	result := classifier.Classify(context.Background(), item, profile)

	assert.InDelta(t, 0.5, result.Confidence, 0.001)
}

type stubRemote struct {
	result service.TinyClassification
	err    error
	calls  int
}

func (s *stubRemote) ClassifyTinyTask(_ context.Context, _, _ string) (service.TinyClassification, error) {
	s.calls++
	return s.result, s.err
}

func TestClassify_RemoteFallback(t *testing.T) {
	remote := &stubRemote{err: errors.New("timeout")}
	classifier := New(remote, nil)

	item := &model.Item{Title: "Pay electric bill"}
	result := classifier.Classify(context.Background(), item, nil)

	// The remote failure is invisible: heuristic answer, no error anywhere.
	require.Equal(t, 1, remote.calls)
	assert.True(t, result.IsTiny)
	assert.InDelta(t, 0.9, result.Confidence, 0.001)
}

func TestClassify_RemoteWins(t *testing.T) {
	remote := &stubRemote{result: service.TinyClassification{
		IsTiny:     false,
		Confidence: 0.2,
		Reason:     "needs a trip to the bank",
	}}
	classifier := New(remote, nil)

	item := &model.Item{Title: "Pay electric bill"}
	result := classifier.Classify(context.Background(), item, nil)

	assert.False(t, result.IsTiny)
	assert.Equal(t, "needs a trip to the bank", result.Reason)
}

func TestClassify_RemoteNeverOverridesBigKeyword(t *testing.T) {
	remote := &stubRemote{result: service.TinyClassification{IsTiny: true, Confidence: 0.95}}
	classifier := New(remote, nil)

	item := &model.Item{Title: "Research flights"}
	result := classifier.Classify(context.Background(), item, nil)

	assert.False(t, result.IsTiny)
	assert.InDelta(t, 0.1, result.Confidence, 0.001)
}

func TestFindTinyTasks(t *testing.T) {
	yes := true
	items := []model.Item{
		{ID: "done", Title: "Pay rent", Completed: true},
		{ID: "classified", Title: "whatever thing", IsTinyTask: &yes, TinyConfidence: 0.95},
		{ID: "pay", Title: "Pay electric bill"},
		{ID: "send", Title: "Send the follow-up note to everyone who attended the offsite"},
		{ID: "big", Title: "Design the onboarding flow"},
	}

	tiny := FindTinyTasks(items, nil)

	require.Len(t, tiny, 3)
	assert.Equal(t, "classified", tiny[0].ID)
	assert.Equal(t, "pay", tiny[1].ID)
	assert.Equal(t, "send", tiny[2].ID)
}

func TestShouldSuggestFiesta(t *testing.T) {
	items := []model.Item{
		{ID: "a", Title: "Pay electric bill"},
		{ID: "b", Title: "Reply to Sam"},
		{ID: "c", Title: "Renew passport"},
	}

	count := len(FindTinyTasks(items, nil))
	require.Equal(t, 3, count)

	assert.True(t, ShouldSuggestFiesta(items, nil, 3))
	assert.False(t, ShouldSuggestFiesta(items, nil, 4))
}
