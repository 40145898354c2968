package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tendnotes/tend/internal/common"
	"github.com/tendnotes/tend/internal/model"
	"github.com/tendnotes/tend/internal/service"
)

// Adapters wraps one Client behind the narrow remote capabilities the
// pipeline consumes. Every call is rate limited, retried once on transient
// failure, and bounded by the configured timeout; callers own the fallback
// behavior on error.
type Adapters struct {
	client      Client
	logger      *slog.Logger
	rateLimiter *rateLimiter
	cache       *classificationCache
	timeout     time.Duration
}

// NewAdapters creates the capability adapters for the configured provider.
func NewAdapters(cfg Config, logger *slog.Logger) (*Adapters, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return NewAdaptersWithClient(client, cfg, logger), nil
}

// NewAdaptersWithClient wires adapters around an existing client. Used by
// tests with the mock client.
func NewAdaptersWithClient(client Client, cfg Config, logger *slog.Logger) *Adapters {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapters{
		client:      client,
		logger:      logger,
		rateLimiter: newRateLimiter(cfg.RateLimit),
		cache:       newClassificationCache(cfg.CacheTTL),
		timeout:     cfg.callTimeout(),
	}
}

// Close releases the adapter's background goroutines.
func (a *Adapters) Close() {
	a.rateLimiter.Close()
	a.cache.Close()
}

func (a *Adapters) complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	if err := a.rateLimiter.wait(ctx); err != nil {
		return CompletionResponse{}, err
	}

	var resp CompletionResponse
	err := common.WithRetry(ctx, func() error {
		var callErr error
		resp, callErr = a.client.Complete(ctx, req)
		return callErr
	}, service.RetryOptions{
		MaxAttempts:  2,
		InitialDelay: 250 * time.Millisecond,
	})
	return resp, err
}

// ClassifyTinyTask implements service.TinyClassifier.
func (a *Adapters) ClassifyTinyTask(ctx context.Context, title, taskContext string) (service.TinyClassification, error) {
	key := cacheKey(title, taskContext)
	if cached, found := a.cache.get(key); found {
		a.logger.Debug("classification cache hit", "title_len", len(title))
		return cached, nil
	}

	prompt := fmt.Sprintf(`Decide whether this task is a "tiny task": something completable in under five minutes with low effort.

Task title: %q
Task context: %q

Respond with JSON: {"is_tiny": bool, "confidence": number between 0 and 1, "reason": "one short sentence"}`, title, taskContext)

	resp, err := a.complete(ctx, CompletionRequest{Prompt: prompt})
	if err != nil {
		return service.TinyClassification{}, fmt.Errorf("%w: %v", common.ErrRemoteClassification, err)
	}

	var parsed struct {
		Reason     string  `json:"reason"`
		Confidence float64 `json:"confidence"`
		IsTiny     bool    `json:"is_tiny"`
	}
	if err := decodeJSON(resp.Content, &parsed); err != nil {
		return service.TinyClassification{}, fmt.Errorf("%w: %v", common.ErrRemoteClassification, err)
	}

	result := service.TinyClassification{
		IsTiny:     parsed.IsTiny,
		Confidence: clampScore(parsed.Confidence),
		Reason:     parsed.Reason,
	}
	a.cache.set(key, result)
	return result, nil
}

// AnalyzeInbox implements service.InboxAnalyzer.
func (a *Adapters) AnalyzeInbox(ctx context.Context, items []model.Item) (*service.InboxAnalysis, error) {
	var sb strings.Builder
	for _, item := range items {
		fmt.Fprintf(&sb, "- id=%s title=%q age_days=%d\n", item.ID, item.Title, item.AgeDays(time.Now()))
	}

	prompt := fmt.Sprintf(`These inbox tasks have gone stale. Propose a cleanup.

Tasks:
%s
Respond with JSON:
{
  "grouped_tasks": [{"title": "...", "rationale": "...", "item_ids": ["..."]}],
  "quick_wins": ["..."],
  "archive_suggestions": ["..."],
  "questions": ["..."]
}
Only reference ids from the task list.`, sb.String())

	resp, err := a.complete(ctx, CompletionRequest{Prompt: prompt})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		GroupedTasks []struct {
			Title     string   `json:"title"`
			Rationale string   `json:"rationale"`
			ItemIDs   []string `json:"item_ids"`
		} `json:"grouped_tasks"`
		QuickWins          []string `json:"quick_wins"`
		ArchiveSuggestions []string `json:"archive_suggestions"`
		Questions          []string `json:"questions"`
	}
	if err := decodeJSON(resp.Content, &parsed); err != nil {
		return nil, err
	}

	analysis := &service.InboxAnalysis{
		QuickWins:          parsed.QuickWins,
		ArchiveSuggestions: parsed.ArchiveSuggestions,
		Questions:          parsed.Questions,
	}
	for _, group := range parsed.GroupedTasks {
		analysis.GroupedTasks = append(analysis.GroupedTasks, service.TaskGroup{
			Title:     group.Title,
			Rationale: group.Rationale,
			ItemIDs:   group.ItemIDs,
		})
	}
	return analysis, nil
}

// Compress implements service.Compressor.
func (a *Adapters) Compress(ctx context.Context, text string) (service.Compression, error) {
	prompt := fmt.Sprintf(`Compress this capture into one sentence that preserves its actionable meaning.

Capture:
%s

Respond with JSON: {"summary": "...", "confidence": number between 0 and 1}`, text)

	resp, err := a.complete(ctx, CompletionRequest{Prompt: prompt})
	if err != nil {
		return service.Compression{}, err
	}

	var parsed struct {
		Summary    string  `json:"summary"`
		Confidence float64 `json:"confidence"`
	}
	if err := decodeJSON(resp.Content, &parsed); err != nil {
		return service.Compression{}, err
	}

	if strings.TrimSpace(parsed.Summary) == "" {
		return service.Compression{}, fmt.Errorf("empty summary returned")
	}

	return service.Compression{
		Summary:    parsed.Summary,
		Confidence: clampScore(parsed.Confidence),
	}, nil
}
