package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/tendnotes/tend/internal/common"
	"github.com/tendnotes/tend/internal/model"
	"github.com/tendnotes/tend/internal/service"
)

func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewSQLiteStorage(dbPath)
	if err != nil {
		t.Fatalf("failed to create storage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store
}

func TestSaveAndGetItem(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	reminder := time.Date(2025, 6, 20, 9, 0, 0, 0, time.UTC)
	item := model.NewItem("u1", "Buy milk")
	item.Context = "on the way home"
	item.ProcessingStatus = model.StatusPending
	item.MemoryTags = []string{"errands", "home"}
	item.ReminderTime = &reminder

	if err := store.SaveItem(ctx, item); err != nil {
		t.Fatalf("SaveItem() error = %v", err)
	}

	got, err := store.GetItemByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItemByID() error = %v", err)
	}
	if got.Title != "Buy milk" || got.Context != "on the way home" {
		t.Errorf("round trip lost content: %+v", got)
	}
	if got.ProcessingStatus != model.StatusPending {
		t.Errorf("ProcessingStatus = %q, want pending", got.ProcessingStatus)
	}
	if len(got.MemoryTags) != 2 || got.MemoryTags[0] != "errands" {
		t.Errorf("MemoryTags = %v, want [errands home]", got.MemoryTags)
	}
	if got.ReminderTime == nil || !got.ReminderTime.Equal(reminder) {
		t.Errorf("ReminderTime = %v, want %v", got.ReminderTime, reminder)
	}
	if got.IsTinyTask != nil {
		t.Errorf("unclassified item should have nil IsTinyTask, got %v", *got.IsTinyTask)
	}
}

func TestGetItemByID_NotFound(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetItemByID(context.Background(), "missing")
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListItems_Filters(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	pending := model.NewItem("u1", "voice note")
	pending.ProcessingStatus = model.StatusPending
	done := model.NewItem("u1", "already finished")
	done.Completed = true
	stale := model.NewItem("u1", "old thing")
	stale.StalenessStatus = model.StalenessStale
	other := model.NewItem("u2", "someone else's")

	for _, item := range []*model.Item{pending, done, stale, other} {
		if err := store.SaveItem(ctx, item); err != nil {
			t.Fatalf("SaveItem() error = %v", err)
		}
	}

	all, err := store.ListItems(ctx, "u1", service.ItemFilter{})
	if err != nil {
		t.Fatalf("ListItems() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("unfiltered list = %d items, want 3", len(all))
	}

	status := model.StatusPending
	byStatus, err := store.ListItems(ctx, "u1", service.ItemFilter{ProcessingStatus: &status})
	if err != nil {
		t.Fatalf("ListItems(status) error = %v", err)
	}
	if len(byStatus) != 1 || byStatus[0].ID != pending.ID {
		t.Errorf("status filter returned %v", byStatus)
	}

	incomplete := false
	active, err := store.ListItems(ctx, "u1", service.ItemFilter{Completed: &incomplete})
	if err != nil {
		t.Fatalf("ListItems(completed) error = %v", err)
	}
	if len(active) != 2 {
		t.Errorf("incomplete filter = %d items, want 2", len(active))
	}

	staleStatus := model.StalenessStale
	staleItems, err := store.ListItems(ctx, "u1", service.ItemFilter{StalenessStatus: &staleStatus})
	if err != nil {
		t.Fatalf("ListItems(staleness) error = %v", err)
	}
	if len(staleItems) != 1 || staleItems[0].ID != stale.ID {
		t.Errorf("staleness filter returned %v", staleItems)
	}
}

func TestUpdateItem_Patch(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	item := model.NewItem("u1", "voice note")
	item.ProcessingStatus = model.StatusPending
	if err := store.SaveItem(ctx, item); err != nil {
		t.Fatalf("SaveItem() error = %v", err)
	}

	summary := "call the dentist"
	confidence := 0.85
	status := model.StatusSummarized
	updated, err := store.UpdateItem(ctx, item.ID, service.ItemPatch{
		AISummary:        &summary,
		AIConfidence:     &confidence,
		ProcessingStatus: &status,
	})
	if err != nil {
		t.Fatalf("UpdateItem() error = %v", err)
	}

	if updated.AISummary != summary || updated.AIConfidence != confidence {
		t.Errorf("patched fields not applied: %+v", updated)
	}
	if updated.Title != "voice note" {
		t.Errorf("unpatched field changed: Title = %q", updated.Title)
	}
}

func TestUpdateItem_Missing(t *testing.T) {
	store := createTestStorage(t)

	title := "nope"
	_, err := store.UpdateItem(context.Background(), "missing", service.ItemPatch{Title: &title})
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateItem_EmptyPatch(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.UpdateItem(context.Background(), "any", service.ItemPatch{})
	if !errors.Is(err, ErrEmptyPatch) {
		t.Errorf("expected ErrEmptyPatch, got %v", err)
	}
}

func TestBulkUpdate_PerIDResults(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	a := model.NewItem("u1", "one")
	b := model.NewItem("u1", "two")
	for _, item := range []*model.Item{a, b} {
		if err := store.SaveItem(ctx, item); err != nil {
			t.Fatalf("SaveItem() error = %v", err)
		}
	}

	completed := true
	results, err := store.BulkUpdate(ctx, []string{a.ID, "missing", b.ID}, service.ItemPatch{Completed: &completed})
	if err != nil {
		t.Fatalf("BulkUpdate() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	if results[0].Err != nil || results[2].Err != nil {
		t.Errorf("existing ids should succeed: %v, %v", results[0].Err, results[2].Err)
	}
	if !errors.Is(results[1].Err, common.ErrNotFound) {
		t.Errorf("missing id should report ErrNotFound, got %v", results[1].Err)
	}

	got, err := store.GetItemByID(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetItemByID() error = %v", err)
	}
	if !got.Completed {
		t.Error("bulk patch not applied to existing item")
	}
}

func TestDeleteItems_Idempotent(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	item := model.NewItem("u1", "delete me")
	if err := store.SaveItem(ctx, item); err != nil {
		t.Fatalf("SaveItem() error = %v", err)
	}

	if err := store.DeleteItems(ctx, []string{item.ID, "missing"}); err != nil {
		t.Fatalf("DeleteItems() error = %v", err)
	}
	if _, err := store.GetItemByID(ctx, item.ID); !errors.Is(err, common.ErrNotFound) {
		t.Errorf("item should be gone, got %v", err)
	}

	// Re-running the same delete is a no-op, not an error.
	if err := store.DeleteItems(ctx, []string{item.ID}); err != nil {
		t.Errorf("repeated delete should succeed, got %v", err)
	}
}

func TestUpdateStalenessStatus_Conditional(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	item := model.NewItem("u1", "aging capture")
	if err := store.SaveItem(ctx, item); err != nil {
		t.Fatalf("SaveItem() error = %v", err)
	}

	updated, err := store.UpdateStalenessStatus(ctx, item.ID, model.StalenessActive, model.StalenessStale)
	if err != nil {
		t.Fatalf("UpdateStalenessStatus() error = %v", err)
	}
	if !updated {
		t.Error("expected the conditional write to apply")
	}

	// The observed from-value is now wrong, so a second writer loses.
	updated, err = store.UpdateStalenessStatus(ctx, item.ID, model.StalenessActive, model.StalenessDecisionRequired)
	if err != nil {
		t.Fatalf("UpdateStalenessStatus() error = %v", err)
	}
	if updated {
		t.Error("stale from-value should not match")
	}

	got, err := store.GetItemByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItemByID() error = %v", err)
	}
	if got.StalenessStatus != model.StalenessStale {
		t.Errorf("StalenessStatus = %q, want stale", got.StalenessStatus)
	}
}

func TestUpdateStalenessStatus_SkipsCompleted(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	item := model.NewItem("u1", "done already")
	item.Completed = true
	if err := store.SaveItem(ctx, item); err != nil {
		t.Fatalf("SaveItem() error = %v", err)
	}

	updated, err := store.UpdateStalenessStatus(ctx, item.ID, model.StalenessActive, model.StalenessStale)
	if err != nil {
		t.Fatalf("UpdateStalenessStatus() error = %v", err)
	}
	if updated {
		t.Error("completed items must never be marked stale")
	}
}

func TestTransaction_RollbackDiscardsWrites(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	item := model.NewItem("u1", "keep me")
	if err := store.SaveItem(ctx, item); err != nil {
		t.Fatalf("SaveItem() error = %v", err)
	}

	tx, err := store.BeginTx(ctx)
	if err != nil {
		t.Fatalf("BeginTx() error = %v", err)
	}
	completed := true
	if _, err := tx.UpdateItem(ctx, item.ID, service.ItemPatch{Completed: &completed}); err != nil {
		t.Fatalf("tx UpdateItem() error = %v", err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback() error = %v", err)
	}

	got, err := store.GetItemByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItemByID() error = %v", err)
	}
	if got.Completed {
		t.Error("rolled-back write leaked")
	}
}

func TestCleanupLogs_RoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	first := &model.CleanupLog{
		UserID:         "u1",
		InboxSizeAtRun: 12,
		CompletedCount: 3,
		CreatedAt:      time.Now().UTC().Add(-time.Hour),
	}
	second := &model.CleanupLog{
		UserID:         "u1",
		InboxSizeAtRun: 9,
		ArchivedCount:  4,
		SnoozedCount:   1,
		CreatedAt:      time.Now().UTC(),
	}

	for _, log := range []*model.CleanupLog{first, second} {
		if err := store.SaveCleanupLog(ctx, log); err != nil {
			t.Fatalf("SaveCleanupLog() error = %v", err)
		}
	}

	latest, err := store.GetLatestCleanupLog(ctx, "u1")
	if err != nil {
		t.Fatalf("GetLatestCleanupLog() error = %v", err)
	}
	if latest == nil || latest.InboxSizeAtRun != 9 || latest.ArchivedCount != 4 {
		t.Errorf("latest log = %+v, want the second run", latest)
	}
}

func TestUserProfiles_Upsert(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	// A user with no profile gets a zero value, not an error.
	profile, err := store.GetUserProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserProfile() error = %v", err)
	}
	if profile.TinyTaskThreshold != 0 {
		t.Errorf("fresh profile threshold = %d, want 0", profile.TinyTaskThreshold)
	}

	profile.UserID = "u1"
	profile.TinyTaskThreshold = 8
	profile.UpdatedAt = time.Now().UTC()
	if err := store.SaveUserProfile(ctx, profile); err != nil {
		t.Fatalf("SaveUserProfile() error = %v", err)
	}

	profile.TinyTaskThreshold = 11
	if err := store.SaveUserProfile(ctx, profile); err != nil {
		t.Fatalf("SaveUserProfile() upsert error = %v", err)
	}

	got, err := store.GetUserProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("GetUserProfile() error = %v", err)
	}
	if got.TinyTaskThreshold != 11 {
		t.Errorf("TinyTaskThreshold = %d, want 11", got.TinyTaskThreshold)
	}
}

func TestValidation(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	if err := store.SaveItem(ctx, &model.Item{ID: "x"}); err == nil {
		t.Error("item without a user id should be rejected")
	}
	if _, err := store.GetItemByID(ctx, ""); !errors.Is(err, ErrEmptyString) {
		t.Errorf("empty id should be rejected, got %v", err)
	}
	if err := store.DeleteItems(ctx, nil); !errors.Is(err, ErrEmptySlice) {
		t.Errorf("nil ids should be rejected, got %v", err)
	}
	var nilCtx context.Context
	if _, err := store.GetItemByID(nilCtx, "x"); !errors.Is(err, ErrNilContext) {
		t.Errorf("nil context should be rejected, got %v", err)
	}
}
