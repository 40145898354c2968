// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProcessingStatus tracks how far a capture has moved through enrichment.
type ProcessingStatus string

// Processing status constants, in forward order. StatusNone means the item
// never required enrichment (plain text capture) and is treated as terminal.
const (
	StatusNone        ProcessingStatus = ""
	StatusPending     ProcessingStatus = "pending"
	StatusProcessing  ProcessingStatus = "processing"
	StatusTranscribed ProcessingStatus = "transcribed"
	StatusSummarized  ProcessingStatus = "summarized"
	StatusIndexed     ProcessingStatus = "indexed"
	StatusFailed      ProcessingStatus = "failed"
)

// Order returns the position of a status in the forward enrichment
// ordering, or -1 for statuses outside it (none, failed).
func (s ProcessingStatus) Order() int {
	switch s {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	case StatusTranscribed:
		return 2
	case StatusSummarized:
		return 3
	case StatusIndexed:
		return 4
	default:
		return -1
	}
}

// Terminal reports whether no further enrichment transitions are expected.
func (s ProcessingStatus) Terminal() bool {
	return s == StatusNone || s == StatusIndexed || s == StatusFailed
}

// StalenessStatus is a time-since-creation freshness tier, independent of
// enrichment state.
type StalenessStatus string

// Staleness tiers.
const (
	StalenessActive           StalenessStatus = "active"
	StalenessStale            StalenessStatus = "stale"
	StalenessDecisionRequired StalenessStatus = "decision_required"
	StalenessExpiring         StalenessStatus = "expiring"
)

// PriorityTier is the user-assigned importance of an item.
type PriorityTier string

// Priority tiers.
const (
	TierMust   PriorityTier = "MUST"
	TierShould PriorityTier = "SHOULD"
	TierCould  PriorityTier = "COULD"
)

// ScheduledBucket is a scheduling category, distinct from priority tier.
type ScheduledBucket string

// Scheduling buckets. BucketNone means unscheduled.
const (
	BucketNone     ScheduledBucket = ""
	BucketToday    ScheduledBucket = "today"
	BucketThisWeek ScheduledBucket = "this_week"
	BucketUpcoming ScheduledBucket = "upcoming"
	BucketSomeday  ScheduledBucket = "someday"
)

// Item is a single user capture and everything derived from it. The
// persistence layer owns the authoritative copy; pipeline components treat
// an Item as a value they read and request mutations on.
type Item struct {
	CreatedAt           time.Time
	CompletedAt         *time.Time
	FocusDate           *time.Time
	ReminderTime        *time.Time
	IsTinyTask          *bool
	FuturePriorityScore *float64
	ID                  string
	UserID              string
	Title               string
	Context             string
	RawContent          string
	AISummary           string
	PendingAudioPath    string
	ProcessingStatus    ProcessingStatus
	PriorityTier        PriorityTier
	ScheduledBucket     ScheduledBucket
	StalenessStatus     StalenessStatus
	MemoryTags          []string
	AIConfidence        float64
	TinyConfidence      float64
	IsFocus             bool
	Completed           bool
}

// NewItem creates an item with a fresh id and sensible defaults.
func NewItem(userID, title string) *Item {
	return &Item{
		ID:              uuid.NewString(),
		UserID:          userID,
		Title:           title,
		PriorityTier:    TierShould,
		StalenessStatus: StalenessActive,
		CreatedAt:       time.Now().UTC(),
	}
}

// Validate checks structural invariants before persistence.
func (i *Item) Validate() error {
	if i.ID == "" {
		return fmt.Errorf("item id is required")
	}
	if i.UserID == "" {
		return fmt.Errorf("item user id is required")
	}
	if i.AIConfidence < 0 || i.AIConfidence > 1 {
		return fmt.Errorf("ai confidence must be between 0.0 and 1.0, got %.2f", i.AIConfidence)
	}
	switch i.ProcessingStatus {
	case StatusNone, StatusPending, StatusProcessing, StatusTranscribed, StatusSummarized, StatusIndexed, StatusFailed:
	default:
		return fmt.Errorf("unknown processing status: %q", i.ProcessingStatus)
	}
	return nil
}

// EffectiveTier returns the item's priority tier, defaulting to SHOULD when
// the field was never set.
func (i *Item) EffectiveTier() PriorityTier {
	switch i.PriorityTier {
	case TierMust, TierShould, TierCould:
		return i.PriorityTier
	default:
		return TierShould
	}
}

// AgeDays is the number of whole days since the item was created.
func (i *Item) AgeDays(now time.Time) int {
	if now.Before(i.CreatedAt) {
		return 0
	}
	return int(now.Sub(i.CreatedAt).Hours() / 24)
}

// HasAISummary reports whether a non-blank summary has been derived.
func (i *Item) HasAISummary() bool {
	return strings.TrimSpace(i.AISummary) != ""
}

// FullText is the lowercased title and context, used by classifiers.
func (i *Item) FullText() string {
	return strings.ToLower(strings.TrimSpace(i.Title + " " + i.Context))
}
