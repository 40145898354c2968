// Package tinytask decides whether an item is a low-effort action, using
// fast local heuristics with a best-effort remote classifier on top.
package tinytask

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/tendnotes/tend/internal/model"
	"github.com/tendnotes/tend/internal/service"
)

// Result is a classification outcome with its explanation.
type Result struct {
	Reason     string
	Confidence float64
	IsTiny     bool
}

// tinyKeywords mark short administrative actions.
var tinyKeywords = []string{
	"pay", "send", "confirm", "renew", "schedule", "reply",
	"call", "email", "text", "book", "order", "cancel",
	"check", "sign", "submit",
}

// bigKeywords mark work that needs sustained focus.
var bigKeywords = []string{
	"research", "design", "implement", "draft", "plan",
	"write", "create", "build", "organize", "analyze",
	"review", "prepare",
}

const (
	// shortTitleWords is the word count at or below which a title counts
	// as short.
	shortTitleWords = 5
	// DefaultPersonalCeiling caps the learned title-length threshold; a
	// threshold at or above it never triggers the personalization boost.
	DefaultPersonalCeiling = 10
	// tinyCutoff is the confidence at which a task counts as tiny.
	tinyCutoff    = 0.5
	personalBoost = 0.3
)

// Classifier combines the heuristic with an optional remote classifier.
// The remote path is best-effort: any failure falls back to the heuristic
// and is never surfaced to the caller as an error.
type Classifier struct {
	remote          service.TinyClassifier
	logger          *slog.Logger
	personalCeiling int
}

// New creates a classifier. remote may be nil to run heuristics only.
func New(remote service.TinyClassifier, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{
		remote:          remote,
		logger:          logger,
		personalCeiling: DefaultPersonalCeiling,
	}
}

// WithPersonalCeiling overrides the personalization ceiling.
func (c *Classifier) WithPersonalCeiling(ceiling int) *Classifier {
	if ceiling > 0 {
		c.personalCeiling = ceiling
	}
	return c
}

// Heuristic classifies an item with no external calls. Most specific rule
// wins.
func Heuristic(item *model.Item) Result {
	fullText := item.FullText()
	hasTiny := containsAny(fullText, tinyKeywords)
	hasBig := containsAny(fullText, bigKeywords)
	shortTitle := len(strings.Fields(item.Title)) <= shortTitleWords
	timeFlag := item.ReminderTime != nil

	var confidence float64
	var reason string
	switch {
	case hasBig:
		confidence, reason = 0.1, "requires complex work"
	case hasTiny && shortTitle:
		confidence, reason = 0.9, "quick admin action with a short title"
	case hasTiny:
		confidence, reason = 0.7, "quick admin action"
	case shortTitle && timeFlag:
		confidence, reason = 0.6, "short title with a set time"
	case shortTitle:
		confidence, reason = 0.5, "short title"
	default:
		confidence, reason = 0.3, "no tiny-task signals"
	}

	return Result{
		IsTiny:     confidence >= tinyCutoff,
		Confidence: confidence,
		Reason:     reason,
	}
}

// Classify classifies an item using the remote classifier when available,
// personalized by the user's learned threshold. It never returns an error:
// remote failures silently degrade to the heuristic path.
func (c *Classifier) Classify(ctx context.Context, item *model.Item, profile *model.UserProfile) Result {
	result := c.personalize(Heuristic(item), item, profile)

	if c.remote == nil {
		return result
	}

	remote, err := c.remote.ClassifyTinyTask(ctx, item.Title, item.Context)
	if err != nil {
		c.logger.Debug("remote classification unavailable, using heuristic",
			"item_id", item.ID,
			"error", err)
		return result
	}

	// A big-keyword match stays authoritative over the remote answer too:
	// "research X" is never a tiny task no matter what the model says.
	if result.Confidence <= 0.1 {
		return result
	}

	return Result{
		IsTiny:     remote.IsTiny,
		Confidence: remote.Confidence,
		Reason:     remote.Reason,
	}
}

// personalize boosts confidence for titles at or under the user's learned
// length threshold. It never flips a big-keyword classification.
func (c *Classifier) personalize(result Result, item *model.Item, profile *model.UserProfile) Result {
	if profile == nil || profile.TinyTaskThreshold <= 0 {
		return result
	}
	if result.Confidence <= 0.1 {
		return result
	}
	if profile.TinyTaskThreshold >= c.personalCeiling {
		return result
	}
	if len(item.Title) > profile.TinyTaskThreshold {
		return result
	}

	result.Confidence += personalBoost
	if result.Confidence > 1.0 {
		result.Confidence = 1.0
	}
	result.Reason = fmt.Sprintf("%s (matches your usual tiny tasks)", result.Reason)
	result.IsTiny = result.Confidence >= tinyCutoff
	return result
}

// FindTinyTasks returns every incomplete tiny item, sorted by descending
// confidence with stable ties. Unclassified items are scored with the
// heuristic on the fly.
func FindTinyTasks(items []model.Item, profile *model.UserProfile) []model.Item {
	type scored struct {
		item       model.Item
		confidence float64
	}

	classifier := New(nil, nil)
	var tiny []scored
	for _, item := range items {
		if item.Completed {
			continue
		}

		isTiny := false
		confidence := item.TinyConfidence
		if item.IsTinyTask != nil {
			isTiny = *item.IsTinyTask
			if confidence == 0 {
				confidence = classifier.personalize(Heuristic(&item), &item, profile).Confidence
			}
		} else {
			result := classifier.personalize(Heuristic(&item), &item, profile)
			isTiny = result.IsTiny
			confidence = result.Confidence
		}

		if isTiny {
			tiny = append(tiny, scored{item: item, confidence: confidence})
		}
	}

	sort.SliceStable(tiny, func(i, j int) bool {
		return tiny[i].confidence > tiny[j].confidence
	})

	result := make([]model.Item, len(tiny))
	for i, s := range tiny {
		result[i] = s.item
	}
	return result
}

// ShouldSuggestFiesta reports whether enough tiny tasks have piled up to
// suggest a batch knock-out session.
func ShouldSuggestFiesta(items []model.Item, profile *model.UserProfile, minCount int) bool {
	return len(FindTinyTasks(items, profile)) >= minCount
}

func containsAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
