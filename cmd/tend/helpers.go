package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/tendnotes/tend/internal/config"
	"github.com/tendnotes/tend/internal/llm"
	"github.com/tendnotes/tend/internal/service"
	"github.com/tendnotes/tend/internal/staleness"
	"github.com/tendnotes/tend/internal/storage"
)

// initStorage initializes the storage service with proper path expansion.
func initStorage(ctx context.Context) (service.Storage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		dbPath = "$HOME/.local/share/tend/tend.db"
	}

	dbPath = config.ExpandPath(dbPath)

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// initLLM builds the remote capability adapters, or returns nil when no
// provider is configured. A nil result is fine: every consumer degrades to
// its local path.
func initLLM() *llm.Adapters {
	apiKey := viper.GetString("llm.api_key")
	if apiKey == "" {
		slog.Debug("no LLM api key configured, remote capabilities disabled")
		return nil
	}

	cfg := llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      apiKey,
		Model:       viper.GetString("llm.model"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
		CallTimeout: viper.GetDuration("llm.call_timeout"),
	}

	adapters, err := llm.NewAdapters(cfg, slog.Default())
	if err != nil {
		slog.Warn("failed to create LLM adapters, remote capabilities disabled", "error", err)
		return nil
	}
	return adapters
}

func currentUser() string {
	return viper.GetString("user.id")
}

func stalenessThresholds() staleness.Thresholds {
	return staleness.Thresholds{
		StaleDays:    viper.GetInt("staleness.stale_days"),
		DecisionDays: viper.GetInt("staleness.decision_days"),
		ExpireDays:   viper.GetInt("staleness.expire_days"),
	}
}
