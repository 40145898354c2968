package staleness

import (
	"context"
	"fmt"
	"time"

	"github.com/tendnotes/tend/internal/model"
	"github.com/tendnotes/tend/internal/service"
)

// Resolution actions a user takes on a stale item. Each is an atomic
// single-item write, separate from the sweep itself.

// Archive marks a stale item completed, removing it from future sweeps and
// from the sorter.
func Archive(ctx context.Context, storage service.Storage, id string) (*model.Item, error) {
	completed := true
	now := time.Now().UTC()
	item, err := storage.UpdateItem(ctx, id, service.ItemPatch{
		Completed:   &completed,
		CompletedAt: &now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to archive item: %w", err)
	}
	return item, nil
}

// ScheduleForToday pulls a stale item into today's focus and resets its
// staleness.
func ScheduleForToday(ctx context.Context, storage service.Storage, id string) (*model.Item, error) {
	isFocus := true
	today := time.Now().UTC().Truncate(24 * time.Hour)
	active := model.StalenessActive
	item, err := storage.UpdateItem(ctx, id, service.ItemPatch{
		IsFocus:         &isFocus,
		FocusDate:       &today,
		StalenessStatus: &active,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to schedule item for today: %w", err)
	}
	return item, nil
}

// DismissForNow resets a stale item to active without any other changes;
// the next sweep may reclassify it.
func DismissForNow(ctx context.Context, storage service.Storage, id string) (*model.Item, error) {
	active := model.StalenessActive
	item, err := storage.UpdateItem(ctx, id, service.ItemPatch{
		StalenessStatus: &active,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dismiss item: %w", err)
	}
	return item, nil
}
