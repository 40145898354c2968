package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/tendnotes/tend/internal/common"
	"github.com/tendnotes/tend/internal/model"
	"github.com/tendnotes/tend/internal/service"
)

const itemColumns = `id, user_id, title, context, raw_content, ai_summary, ai_confidence,
	processing_status, pending_audio_path, memory_tags, is_tiny_task, tiny_confidence,
	priority_tier, future_priority_score, scheduled_bucket, is_focus, focus_date,
	reminder_time, staleness_status, completed, completed_at, created_at`

// SaveItem inserts or replaces a single item.
func (s *SQLiteStorage) SaveItem(ctx context.Context, item *model.Item) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateItem(item); err != nil {
		return err
	}

	tagsJSON, err := json.Marshal(item.MemoryTags)
	if err != nil {
		return fmt.Errorf("failed to marshal memory tags: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO items (`+itemColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		item.ID, item.UserID, item.Title, item.Context, item.RawContent,
		item.AISummary, item.AIConfidence, string(item.ProcessingStatus),
		item.PendingAudioPath, string(tagsJSON), nullableBool(item.IsTinyTask),
		item.TinyConfidence, string(item.EffectiveTier()), item.FuturePriorityScore,
		string(item.ScheduledBucket), item.IsFocus, item.FocusDate,
		item.ReminderTime, string(item.StalenessStatus), item.Completed,
		item.CompletedAt, item.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}
	return nil
}

// GetItemByID fetches a single item.
func (s *SQLiteStorage) GetItemByID(ctx context.Context, id string) (*model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getItemByID(ctx, s.db, id)
}

func (s *SQLiteStorage) getItemByID(ctx context.Context, q dbtx, id string) (*model.Item, error) {
	row := q.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("item %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return item, nil
}

// ListItems returns a user's items, optionally filtered.
func (s *SQLiteStorage) ListItems(ctx context.Context, userID string, filter service.ItemFilter) ([]model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	query := `SELECT ` + itemColumns + ` FROM items WHERE user_id = ?`
	args := []any{userID}

	if filter.ProcessingStatus != nil {
		query += ` AND processing_status = ?`
		args = append(args, string(*filter.ProcessingStatus))
	}
	if filter.StalenessStatus != nil {
		query += ` AND staleness_status = ?`
		args = append(args, string(*filter.StalenessStatus))
	}
	if filter.Completed != nil {
		query += ` AND completed = ?`
		args = append(args, *filter.Completed)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
		if filter.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, filter.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var items []model.Item
	for rows.Next() {
		item, scanErr := scanItem(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan item: %w", scanErr)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

// UpdateItem applies a partial update and returns the stored result.
func (s *SQLiteStorage) UpdateItem(ctx context.Context, id string, patch service.ItemPatch) (*model.Item, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.updateItem(ctx, s.db, id, patch)
}

func (s *SQLiteStorage) updateItem(ctx context.Context, q dbtx, id string, patch service.ItemPatch) (*model.Item, error) {
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	sets, args := patchClauses(patch)
	args = append(args, id)

	res, err := q.ExecContext(ctx,
		`UPDATE items SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return nil, fmt.Errorf("item %s: %w", id, common.ErrNotFound)
	}

	return s.getItemByID(ctx, q, id)
}

// BulkUpdate applies the same patch to every id, reporting per-id outcomes.
// Each id is updated independently; re-running after a partial failure only
// re-applies the same field values, so retries are safe.
func (s *SQLiteStorage) BulkUpdate(ctx context.Context, ids []string, patch service.ItemPatch) ([]service.BulkResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateIDs(ids); err != nil {
		return nil, err
	}
	if err := validatePatch(patch); err != nil {
		return nil, err
	}

	results := make([]service.BulkResult, 0, len(ids))
	for _, id := range ids {
		_, err := s.updateItem(ctx, s.db, id, patch)
		results = append(results, service.BulkResult{ID: id, Err: err})
	}
	return results, nil
}

// DeleteItems hard-deletes every id. Missing ids are not an error, so
// re-running a delete is safe.
func (s *SQLiteStorage) DeleteItems(ctx context.Context, ids []string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateIDs(ids); err != nil {
		return err
	}
	return s.deleteItems(ctx, s.db, ids)
}

func (s *SQLiteStorage) deleteItems(ctx context.Context, q dbtx, ids []string) error {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	if _, err := q.ExecContext(ctx, `DELETE FROM items WHERE id IN (`+placeholders+`)`, args...); err != nil {
		return fmt.Errorf("failed to delete items: %w", err)
	}
	return nil
}

// UpdateStalenessStatus writes only the staleness field, conditionally on
// its current value. Returns false when another writer got there first.
func (s *SQLiteStorage) UpdateStalenessStatus(ctx context.Context, id string, from, to model.StalenessStatus) (bool, error) {
	if err := validateContext(ctx); err != nil {
		return false, err
	}
	if err := validateString(id, "id"); err != nil {
		return false, err
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE items SET staleness_status = ? WHERE id = ? AND staleness_status = ? AND completed = 0`,
		string(to), id, string(from))
	if err != nil {
		return false, fmt.Errorf("failed to update staleness status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check staleness update: %w", err)
	}
	return affected > 0, nil
}

// patchClauses converts a patch into SET fragments and bind arguments.
func patchClauses(patch service.ItemPatch) ([]string, []any) {
	var sets []string
	var args []any
	add := func(col string, val any) {
		sets = append(sets, col+" = ?")
		args = append(args, val)
	}

	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Context != nil {
		add("context", *patch.Context)
	}
	if patch.RawContent != nil {
		add("raw_content", *patch.RawContent)
	}
	if patch.AISummary != nil {
		add("ai_summary", *patch.AISummary)
	}
	if patch.AIConfidence != nil {
		add("ai_confidence", *patch.AIConfidence)
	}
	if patch.ProcessingStatus != nil {
		add("processing_status", string(*patch.ProcessingStatus))
	}
	if patch.PendingAudioPath != nil {
		add("pending_audio_path", *patch.PendingAudioPath)
	}
	if patch.IsTinyTask != nil {
		add("is_tiny_task", *patch.IsTinyTask)
	}
	if patch.TinyConfidence != nil {
		add("tiny_confidence", *patch.TinyConfidence)
	}
	if patch.PriorityTier != nil {
		add("priority_tier", string(*patch.PriorityTier))
	}
	if patch.ScheduledBucket != nil {
		add("scheduled_bucket", string(*patch.ScheduledBucket))
	}
	if patch.IsFocus != nil {
		add("is_focus", *patch.IsFocus)
	}
	if patch.FocusDate != nil {
		add("focus_date", *patch.FocusDate)
	}
	if patch.ReminderTime != nil {
		add("reminder_time", *patch.ReminderTime)
	}
	if patch.StalenessStatus != nil {
		add("staleness_status", string(*patch.StalenessStatus))
	}
	if patch.Completed != nil {
		add("completed", *patch.Completed)
	}
	if patch.CompletedAt != nil {
		add("completed_at", *patch.CompletedAt)
	}
	return sets, args
}

// scanner abstracts *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanItem(row scanner) (*model.Item, error) {
	var (
		item        model.Item
		status      string
		tier        string
		bucket      string
		staleness   string
		tagsJSON    string
		isTiny      sql.NullBool
		futureScore sql.NullFloat64
		focusDate   sql.NullTime
		reminder    sql.NullTime
		completedAt sql.NullTime
	)

	err := row.Scan(&item.ID, &item.UserID, &item.Title, &item.Context,
		&item.RawContent, &item.AISummary, &item.AIConfidence, &status,
		&item.PendingAudioPath, &tagsJSON, &isTiny, &item.TinyConfidence,
		&tier, &futureScore, &bucket, &item.IsFocus, &focusDate,
		&reminder, &staleness, &item.Completed, &completedAt, &item.CreatedAt)
	if err != nil {
		return nil, err
	}

	item.ProcessingStatus = model.ProcessingStatus(status)
	item.PriorityTier = model.PriorityTier(tier)
	item.ScheduledBucket = model.ScheduledBucket(bucket)
	item.StalenessStatus = model.StalenessStatus(staleness)

	if tagsJSON != "" {
		if err := json.Unmarshal([]byte(tagsJSON), &item.MemoryTags); err != nil {
			return nil, fmt.Errorf("failed to unmarshal memory tags: %w", err)
		}
	}
	if isTiny.Valid {
		item.IsTinyTask = &isTiny.Bool
	}
	if futureScore.Valid {
		item.FuturePriorityScore = &futureScore.Float64
	}
	if focusDate.Valid {
		t := focusDate.Time
		item.FocusDate = &t
	}
	if reminder.Valid {
		t := reminder.Time
		item.ReminderTime = &t
	}
	if completedAt.Valid {
		t := completedAt.Time
		item.CompletedAt = &t
	}
	return &item, nil
}

func nullableBool(b *bool) any {
	if b == nil {
		return nil
	}
	return *b
}
