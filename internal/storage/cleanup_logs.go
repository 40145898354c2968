package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tendnotes/tend/internal/common"
	"github.com/tendnotes/tend/internal/model"
)

// SaveCleanupLog writes an audit record for a completed cleanup run.
func (s *SQLiteStorage) SaveCleanupLog(ctx context.Context, log *model.CleanupLog) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	return s.saveCleanupLog(ctx, s.db, log)
}

func (s *SQLiteStorage) saveCleanupLog(ctx context.Context, q dbtx, log *model.CleanupLog) error {
	if log == nil {
		return fmt.Errorf("%w: log", ErrNilParameter)
	}
	if err := validateString(log.UserID, "log.UserID"); err != nil {
		return err
	}

	createdAt := log.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO cleanup_logs (user_id, inbox_size_at_run, completed_count, archived_count, snoozed_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, log.UserID, log.InboxSizeAtRun, log.CompletedCount, log.ArchivedCount, log.SnoozedCount, createdAt)
	if err != nil {
		return fmt.Errorf("failed to save cleanup log: %w", err)
	}

	if id, idErr := res.LastInsertId(); idErr == nil {
		log.ID = id
	}
	log.CreatedAt = createdAt
	return nil
}

// GetLatestCleanupLog returns the most recent audit record for a user.
func (s *SQLiteStorage) GetLatestCleanupLog(ctx context.Context, userID string) (*model.CleanupLog, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	var log model.CleanupLog
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, inbox_size_at_run, completed_count, archived_count, snoozed_count, created_at
		FROM cleanup_logs WHERE user_id = ? ORDER BY id DESC LIMIT 1
	`, userID).Scan(&log.ID, &log.UserID, &log.InboxSizeAtRun, &log.CompletedCount,
		&log.ArchivedCount, &log.SnoozedCount, &log.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("cleanup log for %s: %w", userID, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cleanup log: %w", err)
	}
	return &log, nil
}
