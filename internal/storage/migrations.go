package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// ExpectedSchemaVersion is the latest schema version that the application
// expects. If the database cannot be migrated to this version, it's a fatal
// error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS items (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					title TEXT NOT NULL DEFAULT '',
					context TEXT NOT NULL DEFAULT '',
					raw_content TEXT NOT NULL DEFAULT '',
					ai_summary TEXT NOT NULL DEFAULT '',
					ai_confidence REAL NOT NULL DEFAULT 0,
					processing_status TEXT NOT NULL DEFAULT '',
					pending_audio_path TEXT NOT NULL DEFAULT '',
					memory_tags TEXT NOT NULL DEFAULT '[]',
					is_tiny_task INTEGER,
					tiny_confidence REAL NOT NULL DEFAULT 0,
					priority_tier TEXT NOT NULL DEFAULT 'SHOULD',
					future_priority_score REAL,
					scheduled_bucket TEXT NOT NULL DEFAULT '',
					is_focus INTEGER NOT NULL DEFAULT 0,
					focus_date DATETIME,
					reminder_time DATETIME,
					staleness_status TEXT NOT NULL DEFAULT 'active',
					completed INTEGER NOT NULL DEFAULT 0,
					completed_at DATETIME,
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_items_user ON items(user_id)`,
				`CREATE INDEX idx_items_status ON items(processing_status)`,
				`CREATE INDEX idx_items_staleness ON items(staleness_status)`,
				`CREATE INDEX idx_items_created ON items(created_at)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Add cleanup audit log",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS cleanup_logs (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					user_id TEXT NOT NULL,
					inbox_size_at_run INTEGER NOT NULL DEFAULT 0,
					completed_count INTEGER NOT NULL DEFAULT 0,
					archived_count INTEGER NOT NULL DEFAULT 0,
					snoozed_count INTEGER NOT NULL DEFAULT 0,
					created_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)
			`)
			return err
		},
	},
	{
		Version:     3,
		Description: "Add user profiles for learned thresholds",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS user_profiles (
					user_id TEXT PRIMARY KEY,
					tiny_task_threshold INTEGER NOT NULL DEFAULT 0,
					updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
				)
			`)
			return err
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	return nil
}
