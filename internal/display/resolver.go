// Package display decides what text an item shows while its enrichment is
// in flight, failed, or complete. Resolve is pure and safe to call from any
// number of concurrent render passes.
package display

import (
	"strings"

	"github.com/tendnotes/tend/internal/model"
)

// Fixed placeholder strings shown while an item has nothing better to display.
const (
	PlaceholderFailed       = "Processing failed - tap to retry"
	PlaceholderPending      = "Still arriving..."
	PlaceholderTranscribing = "Transcribing..."
	PlaceholderEmpty        = "Empty capture"
)

// Default thresholds used when Options fields are zero.
const (
	DefaultConfidenceThreshold = 0.6
	DefaultLongEntryThreshold  = 100
	transcriptPreviewLimit     = 80
)

// Options tunes the resolver's thresholds.
type Options struct {
	// ConfidenceThreshold is the minimum AI confidence required before a
	// summary may be shown as primary text.
	ConfidenceThreshold float64
	// LongEntryThreshold is the character count beyond which an entry is
	// considered long.
	LongEntryThreshold int
}

func (o Options) confidence() float64 {
	if o.ConfidenceThreshold <= 0 {
		return DefaultConfidenceThreshold
	}
	return o.ConfidenceThreshold
}

func (o Options) longEntry() int {
	if o.LongEntryThreshold <= 0 {
		return DefaultLongEntryThreshold
	}
	return o.LongEntryThreshold
}

// Resolution is everything the UI needs to render an item's text layer.
type Resolution struct {
	DisplayText         string
	RawContent          string
	HasDualLayer        bool
	IsLongEntry         bool
	LowConfidence       bool
	ShowExpandIndicator bool
	IsEmpty             bool
}

// Resolve picks the display text for an item at any point in its enrichment
// lifecycle. It is total: it never fails and always returns display text.
func Resolve(item *model.Item, opts Options) Resolution {
	if item == nil {
		return Resolution{DisplayText: PlaceholderEmpty, IsEmpty: true}
	}

	raw := strings.TrimSpace(item.RawContent)
	summary := strings.TrimSpace(item.AISummary)
	title := strings.TrimSpace(item.Title)

	res := Resolution{
		RawContent:    item.RawContent,
		LowConfidence: item.HasAISummary() && item.AIConfidence < opts.confidence(),
	}
	res.HasDualLayer = summary != "" && summary != raw

	switch item.ProcessingStatus {
	case model.StatusFailed:
		// Expandable so the user can inspect the raw audio reference and retry.
		res.DisplayText = PlaceholderFailed
		res.ShowExpandIndicator = true
		return res
	case model.StatusPending:
		res.DisplayText = PlaceholderPending
		return res
	case model.StatusProcessing:
		res.DisplayText = PlaceholderTranscribing
		return res
	case model.StatusTranscribed:
		res.DisplayText = firstLinePreview(raw)
	case model.StatusSummarized, model.StatusIndexed, model.StatusNone:
		// None is already terminal; a plain capture that was compressed
		// later shows its summary the same way.
		if summary != "" && !res.LowConfidence {
			res.DisplayText = summary
		}
	}

	if res.DisplayText == "" {
		if raw != "" {
			res.DisplayText = raw
		} else {
			res.DisplayText = title
		}
	}

	if res.DisplayText == "" && raw == "" && item.PendingAudioPath == "" {
		res.IsEmpty = true
		res.DisplayText = PlaceholderEmpty
	}

	limit := opts.longEntry()
	res.IsLongEntry = len([]rune(res.DisplayText)) > limit || len([]rune(raw)) > limit

	// The expand affordance appears once there is a hidden layer or an
	// overflowing entry. Pending and processing items returned above.
	res.ShowExpandIndicator = res.HasDualLayer || res.IsLongEntry

	return res
}

// firstLinePreview returns the first line of text truncated to the
// transcript preview limit with an ellipsis.
func firstLinePreview(text string) string {
	line := text
	if idx := strings.IndexByte(line, '\n'); idx >= 0 {
		line = line[:idx]
	}
	line = strings.TrimSpace(line)

	runes := []rune(line)
	if len(runes) <= transcriptPreviewLimit {
		return line
	}
	return string(runes[:transcriptPreviewLimit]) + "…"
}
