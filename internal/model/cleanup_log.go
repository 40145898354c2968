package model

import "time"

// CleanupLog is an audit record written after a bulk cleanup run, capturing
// the pre-cleanup inbox size for later measurement.
type CleanupLog struct {
	CreatedAt      time.Time
	ID             int64
	UserID         string
	InboxSizeAtRun int
	CompletedCount int
	ArchivedCount  int
	SnoozedCount   int
}
