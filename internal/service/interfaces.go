// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/tendnotes/tend/internal/model"
)

// ItemFilter defines filtering options for item queries.
type ItemFilter struct {
	ProcessingStatus *model.ProcessingStatus
	StalenessStatus  *model.StalenessStatus
	Completed        *bool
	Limit            int
	Offset           int
}

// ItemPatch is a partial update. Nil fields are left untouched, so
// concurrent writers to different fields never clobber each other.
type ItemPatch struct {
	Title            *string
	Context          *string
	RawContent       *string
	AISummary        *string
	AIConfidence     *float64
	ProcessingStatus *model.ProcessingStatus
	PendingAudioPath *string
	IsTinyTask       *bool
	TinyConfidence   *float64
	PriorityTier     *model.PriorityTier
	ScheduledBucket  *model.ScheduledBucket
	IsFocus          *bool
	FocusDate        *time.Time
	ReminderTime     *time.Time
	StalenessStatus  *model.StalenessStatus
	Completed        *bool
	CompletedAt      *time.Time
}

// BulkResult reports the outcome of one id within a bulk write.
type BulkResult struct {
	Err error
	ID  string
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Item operations
	SaveItem(ctx context.Context, item *model.Item) error
	GetItemByID(ctx context.Context, id string) (*model.Item, error)
	ListItems(ctx context.Context, userID string, filter ItemFilter) ([]model.Item, error)
	UpdateItem(ctx context.Context, id string, patch ItemPatch) (*model.Item, error)
	BulkUpdate(ctx context.Context, ids []string, patch ItemPatch) ([]BulkResult, error)
	DeleteItems(ctx context.Context, ids []string) error

	// UpdateStalenessStatus writes only the staleness field, conditionally
	// on its current value. Returns false when the condition did not match.
	UpdateStalenessStatus(ctx context.Context, id string, from, to model.StalenessStatus) (bool, error)

	// Cleanup audit
	SaveCleanupLog(ctx context.Context, log *model.CleanupLog) error
	GetLatestCleanupLog(ctx context.Context, userID string) (*model.CleanupLog, error)

	// Profile operations
	GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	SaveUserProfile(ctx context.Context, profile *model.UserProfile) error

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction scoped to the item
// operations bulk writers need.
type Transaction interface {
	Commit() error
	Rollback() error
	GetItemByID(ctx context.Context, id string) (*model.Item, error)
	UpdateItem(ctx context.Context, id string, patch ItemPatch) (*model.Item, error)
	DeleteItems(ctx context.Context, ids []string) error
	SaveCleanupLog(ctx context.Context, log *model.CleanupLog) error
}

// TinyClassification is the remote classifier's answer shape.
type TinyClassification struct {
	Reason     string
	Confidence float64
	IsTiny     bool
}

// TinyClassifier is the external text-classification capability. Callers
// must treat any error (timeout, malformed payload) as "unavailable" and
// fall back to heuristics.
type TinyClassifier interface {
	ClassifyTinyTask(ctx context.Context, title, context string) (TinyClassification, error)
}

// TaskGroup is one AI-proposed cluster of related stale items.
type TaskGroup struct {
	Title     string
	Rationale string
	ItemIDs   []string
}

// InboxAnalysis is the full AI-proposed cleanup of an inbox.
type InboxAnalysis struct {
	GroupedTasks       []TaskGroup
	QuickWins          []string
	ArchiveSuggestions []string
	Questions          []string
}

// InboxAnalyzer is the external grouping capability, same failure contract
// as TinyClassifier.
type InboxAnalyzer interface {
	AnalyzeInbox(ctx context.Context, items []model.Item) (*InboxAnalysis, error)
}

// Compression is the semantic-compression result feeding the summarized
// enrichment transition.
type Compression struct {
	Summary    string
	Confidence float64
}

// Compressor is the external semantic-compression capability.
type Compressor interface {
	Compress(ctx context.Context, text string) (Compression, error)
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
