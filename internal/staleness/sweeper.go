// Package staleness reclassifies un-completed items by age into freshness
// tiers. The sweep is a background batch writer that touches only the
// staleness field, so it interleaves safely with foreground edits.
package staleness

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/tendnotes/tend/internal/model"
	"github.com/tendnotes/tend/internal/service"
)

// Thresholds are the tier boundaries in whole days since creation.
type Thresholds struct {
	StaleDays    int
	DecisionDays int
	ExpireDays   int
}

// DefaultThresholds matches the 7/14/21 day tiers.
func DefaultThresholds() Thresholds {
	return Thresholds{
		StaleDays:    7,
		DecisionDays: 14,
		ExpireDays:   21,
	}
}

// TierFor maps an item age to its staleness tier, checking the highest
// boundary first so an item only ever receives one classification per pass.
func TierFor(ageDays int, t Thresholds) model.StalenessStatus {
	switch {
	case ageDays >= t.ExpireDays:
		return model.StalenessExpiring
	case ageDays >= t.DecisionDays:
		return model.StalenessDecisionRequired
	case ageDays >= t.StaleDays:
		return model.StalenessStale
	default:
		return model.StalenessActive
	}
}

// SweepStats summarizes one sweep pass.
type SweepStats struct {
	Examined  int
	Stale     int
	Decisions int
	Expiring  int
	Skipped   int
}

// Sweeper runs the periodic decay pass.
type Sweeper struct {
	storage    service.Storage
	logger     *slog.Logger
	thresholds Thresholds
	// ShowProgress renders a progress bar over the batch; useful when the
	// sweep runs from an interactive command.
	ShowProgress bool
}

// NewSweeper creates a sweeper over the given storage.
func NewSweeper(storage service.Storage, thresholds Thresholds, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		storage:    storage,
		logger:     logger,
		thresholds: thresholds,
	}
}

// Run sweeps every incomplete item for a user once. Completed items never
// enter the sweep; items under the stale boundary are never touched.
func (s *Sweeper) Run(ctx context.Context, userID string) (SweepStats, error) {
	incomplete := false
	items, err := s.storage.ListItems(ctx, userID, service.ItemFilter{Completed: &incomplete})
	if err != nil {
		return SweepStats{}, fmt.Errorf("failed to load items for sweep: %w", err)
	}

	var bar *progressbar.ProgressBar
	if s.ShowProgress && len(items) > 0 {
		bar = progressbar.Default(int64(len(items)), "sweeping")
	}

	now := time.Now().UTC()
	var stats SweepStats
	for i := range items {
		item := &items[i]
		if bar != nil {
			_ = bar.Add(1)
		}
		stats.Examined++

		tier := TierFor(item.AgeDays(now), s.thresholds)
		if tier == model.StalenessActive || tier == item.StalenessStatus {
			continue
		}

		// Conditional write on the single staleness column; a concurrent
		// edit to any other field is untouched, and a lost race just means
		// the next pass reclassifies.
		updated, updateErr := s.storage.UpdateStalenessStatus(ctx, item.ID, item.StalenessStatus, tier)
		if updateErr != nil {
			return stats, fmt.Errorf("failed to update staleness for %s: %w", item.ID, updateErr)
		}
		if !updated {
			stats.Skipped++
			continue
		}

		switch tier {
		case model.StalenessStale:
			stats.Stale++
		case model.StalenessDecisionRequired:
			stats.Decisions++
		case model.StalenessExpiring:
			stats.Expiring++
		case model.StalenessActive:
		}
	}

	s.logger.Info("staleness sweep complete",
		"user_id", userID,
		"examined", stats.Examined,
		"stale", stats.Stale,
		"decision_required", stats.Decisions,
		"expiring", stats.Expiring,
		"skipped", stats.Skipped)
	return stats, nil
}

// Start runs a sweep immediately and then on every tick until the context
// is canceled.
func (s *Sweeper) Start(ctx context.Context, userID string, interval time.Duration) {
	if interval <= 0 {
		interval = 24 * time.Hour
	}

	if _, err := s.Run(ctx, userID); err != nil {
		s.logger.Error("initial staleness sweep failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Run(ctx, userID); err != nil {
				s.logger.Error("staleness sweep failed", "error", err)
			}
		}
	}
}
