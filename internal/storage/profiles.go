package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/tendnotes/tend/internal/model"
)

// GetUserProfile returns the learned profile for a user, or a zero-valued
// profile when none has been saved yet.
func (s *SQLiteStorage) GetUserProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	var profile model.UserProfile
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, tiny_task_threshold, updated_at
		FROM user_profiles WHERE user_id = ?
	`, userID).Scan(&profile.UserID, &profile.TinyTaskThreshold, &profile.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return &model.UserProfile{UserID: userID}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user profile: %w", err)
	}
	return &profile, nil
}

// SaveUserProfile upserts a user's learned profile.
func (s *SQLiteStorage) SaveUserProfile(ctx context.Context, profile *model.UserProfile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if profile == nil {
		return fmt.Errorf("%w: profile", ErrNilParameter)
	}
	if err := validateString(profile.UserID, "profile.UserID"); err != nil {
		return err
	}

	updatedAt := profile.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user_id, tiny_task_threshold, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			tiny_task_threshold = excluded.tiny_task_threshold,
			updated_at = excluded.updated_at
	`, profile.UserID, profile.TinyTaskThreshold, updatedAt)
	if err != nil {
		return fmt.Errorf("failed to save user profile: %w", err)
	}
	return nil
}
