// Package cleanup applies user-confirmed bulk actions from an AI-proposed
// inbox grouping: complete, snooze, or archive whole groups of stale items
// with an audit trail.
package cleanup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/tendnotes/tend/internal/common"
	"github.com/tendnotes/tend/internal/model"
	"github.com/tendnotes/tend/internal/service"
)

// ErrNoAnalysis indicates the remote analyzer was unavailable; callers show
// "no analysis available" rather than an error.
var ErrNoAnalysis = errors.New("no analysis available")

// GroupStats counts what one cleanup session changed.
type GroupStats struct {
	Completed int
	Snoozed   int
	Archived  int
}

// Executor applies group operations against storage.
type Executor struct {
	storage  service.Storage
	analyzer service.InboxAnalyzer
	logger   *slog.Logger
}

// NewExecutor creates an executor. analyzer may be nil; Analyze then always
// reports ErrNoAnalysis.
func NewExecutor(storage service.Storage, analyzer service.InboxAnalyzer, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		storage:  storage,
		analyzer: analyzer,
		logger:   logger,
	}
}

// Analyze asks the remote analyzer for a cleanup proposal over the given
// items. Remote failure degrades to ErrNoAnalysis; it never propagates the
// provider error. Groups referencing unknown ids are sanitized.
func (e *Executor) Analyze(ctx context.Context, items []model.Item) (*service.InboxAnalysis, error) {
	if e.analyzer == nil {
		return nil, ErrNoAnalysis
	}

	analysis, err := e.analyzer.AnalyzeInbox(ctx, items)
	if err != nil {
		e.logger.Warn("inbox analysis unavailable", "error", err)
		return nil, ErrNoAnalysis
	}

	known := make(map[string]bool, len(items))
	for _, item := range items {
		known[item.ID] = true
	}

	sanitized := analysis.GroupedTasks[:0]
	for _, group := range analysis.GroupedTasks {
		group.ItemIDs = dedupe(group.ItemIDs)
		ids := group.ItemIDs[:0]
		for _, id := range group.ItemIDs {
			if known[id] {
				ids = append(ids, id)
			} else {
				e.logger.Warn("dropping unknown id from proposed group",
					"group", group.Title,
					"item_id", id)
			}
		}
		group.ItemIDs = ids
		if len(group.ItemIDs) > 0 {
			sanitized = append(sanitized, group)
		}
	}
	analysis.GroupedTasks = sanitized
	return analysis, nil
}

// CompleteGroup marks every id completed. All-or-nothing: a failure rolls
// the whole group back and reports which ids were involved.
func (e *Executor) CompleteGroup(ctx context.Context, ids []string) (int, error) {
	completed := true
	now := time.Now().UTC()
	return e.applyGroup(ctx, ids, service.ItemPatch{
		Completed:   &completed,
		CompletedAt: &now,
	})
}

// SnoozeGroup moves every id to the someday bucket.
func (e *Executor) SnoozeGroup(ctx context.Context, ids []string) (int, error) {
	someday := model.BucketSomeday
	return e.applyGroup(ctx, ids, service.ItemPatch{
		ScheduledBucket: &someday,
	})
}

// ArchiveGroup hard-deletes every id. All-or-nothing within one storage
// transaction; deleting an already-deleted id is a no-op, so re-running
// after a failure is safe.
func (e *Executor) ArchiveGroup(ctx context.Context, ids []string) (int, error) {
	valid, err := e.filterActionable(ctx, ids)
	if err != nil {
		return 0, err
	}

	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin cleanup transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := tx.DeleteItems(ctx, valid); err != nil {
		return 0, &common.PartialBulkFailure{
			Failed: map[string]error{valid[0]: err},
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit cleanup transaction: %w", err)
	}
	return len(valid), nil
}

// LogCleanup writes the audit record after group operations succeed,
// capturing the pre-cleanup inbox size for later measurement.
func (e *Executor) LogCleanup(ctx context.Context, userID string, inboxSize int, stats GroupStats) error {
	log := &model.CleanupLog{
		UserID:         userID,
		InboxSizeAtRun: inboxSize,
		CompletedCount: stats.Completed,
		ArchivedCount:  stats.Archived,
		SnoozedCount:   stats.Snoozed,
	}
	if err := e.storage.SaveCleanupLog(ctx, log); err != nil {
		return fmt.Errorf("failed to write cleanup log: %w", err)
	}

	e.logger.Info("cleanup logged",
		"user_id", userID,
		"inbox_size", inboxSize,
		"completed", stats.Completed,
		"snoozed", stats.Snoozed,
		"archived", stats.Archived)
	return nil
}

// applyGroup runs one bulk patch over a validated group inside a single
// transaction. Per-id failures are collected into a PartialBulkFailure and
// the transaction is rolled back, so the caller sees all-or-nothing.
func (e *Executor) applyGroup(ctx context.Context, ids []string, patch service.ItemPatch) (int, error) {
	valid, err := e.filterActionable(ctx, ids)
	if err != nil {
		return 0, err
	}

	tx, err := e.storage.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin cleanup transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var succeeded []string
	for _, id := range ids {
		if !contains(valid, id) {
			continue
		}
		if _, updateErr := tx.UpdateItem(ctx, id, patch); updateErr != nil {
			return 0, &common.PartialBulkFailure{
				Succeeded: nil, // rolled back with the transaction
				Failed:    map[string]error{id: updateErr},
			}
		}
		succeeded = append(succeeded, id)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit cleanup transaction: %w", err)
	}
	return len(succeeded), nil
}

// filterActionable dedupes the group and drops ids that are already
// completed or missing. An empty remainder is rejected before any write.
func (e *Executor) filterActionable(ctx context.Context, ids []string) ([]string, error) {
	var valid []string
	for _, id := range dedupe(ids) {
		item, err := e.storage.GetItemByID(ctx, id)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				continue
			}
			return nil, err
		}
		if item.Completed {
			continue
		}
		valid = append(valid, id)
	}

	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: no actionable items in group", common.ErrEmptyGroup)
	}
	return valid, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	var out []string
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

func contains(ids []string, id string) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
