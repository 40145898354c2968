// Package enrichment tracks each capture's progress through transcription,
// summarization, and indexing. Transitions are forward-only and idempotent,
// so retried or reordered writes from the async pipeline are absorbed
// without ever regressing an item.
package enrichment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tendnotes/tend/internal/common"
	"github.com/tendnotes/tend/internal/model"
	"github.com/tendnotes/tend/internal/service"
)

// Payload carries the data a transition writes alongside the new status.
type Payload struct {
	// Transcript is the raw text produced by transcription; applied on the
	// move to transcribed.
	Transcript string
	// Summary and Confidence are applied on the move to summarized.
	Summary    string
	Confidence float64
	// Reason annotates a move to failed.
	Reason string
}

// Machine applies enrichment transitions against storage.
type Machine struct {
	storage service.Storage
	logger  *slog.Logger
}

// NewMachine creates a state machine over the given storage.
func NewMachine(storage service.Storage, logger *slog.Logger) *Machine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Machine{storage: storage, logger: logger}
}

// Advance moves an item to newStatus, applying the payload. It fails with
// ErrInvalidTransition when newStatus is not reachable from the current
// status: backward moves, skipped intermediate states, and moves out of a
// terminal state are all rejected and leave the item unchanged.
// Re-applying the current (status, payload) pair is a no-op.
func (m *Machine) Advance(ctx context.Context, itemID string, newStatus model.ProcessingStatus, payload Payload) (*model.Item, error) {
	item, err := m.storage.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.ProcessingStatus == newStatus && samePayload(item, newStatus, payload) {
		return item, nil
	}

	if err := checkTransition(item.ProcessingStatus, newStatus); err != nil {
		return nil, err
	}

	patch := service.ItemPatch{ProcessingStatus: &newStatus}
	switch newStatus {
	case model.StatusTranscribed:
		patch.RawContent = &payload.Transcript
	case model.StatusSummarized:
		patch.AISummary = &payload.Summary
		confidence := payload.Confidence
		patch.AIConfidence = &confidence
	case model.StatusIndexed:
		// Success terminal: the raw audio reference is no longer needed.
		empty := ""
		patch.PendingAudioPath = &empty
	case model.StatusFailed, model.StatusPending, model.StatusProcessing, model.StatusNone:
	}

	updated, err := m.storage.UpdateItem(ctx, itemID, patch)
	if err != nil {
		return nil, err
	}

	m.logger.Debug("enrichment advanced",
		"item_id", itemID,
		"from", string(item.ProcessingStatus),
		"to", string(newStatus))
	return updated, nil
}

// Fail moves an item from any non-terminal state to the failed terminal.
func (m *Machine) Fail(ctx context.Context, itemID, reason string) (*model.Item, error) {
	item, err := m.storage.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.ProcessingStatus == model.StatusFailed {
		return item, nil
	}
	if item.ProcessingStatus.Terminal() {
		return nil, fmt.Errorf("%w: cannot fail from terminal status %q",
			common.ErrInvalidTransition, item.ProcessingStatus)
	}

	failed := model.StatusFailed
	updated, err := m.storage.UpdateItem(ctx, itemID, service.ItemPatch{ProcessingStatus: &failed})
	if err != nil {
		return nil, err
	}

	m.logger.Warn("enrichment failed",
		"item_id", itemID,
		"from", string(item.ProcessingStatus),
		"reason", reason)
	return updated, nil
}

// Retry resets a failed item back to pending, clearing derived fields so
// the pipeline reprocesses it from scratch. The raw audio reference is kept.
func (m *Machine) Retry(ctx context.Context, itemID string) (*model.Item, error) {
	item, err := m.storage.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.ProcessingStatus != model.StatusFailed {
		return nil, fmt.Errorf("%w: retry requires failed status, item is %q",
			common.ErrInvalidTransition, item.ProcessingStatus)
	}

	pending := model.StatusPending
	empty := ""
	zero := 0.0
	return m.storage.UpdateItem(ctx, itemID, service.ItemPatch{
		ProcessingStatus: &pending,
		AISummary:        &empty,
		AIConfidence:     &zero,
	})
}

// checkTransition enforces the forward ordering. Failed is reachable from
// any non-terminal state; everything else must advance exactly one step.
func checkTransition(from, to model.ProcessingStatus) error {
	if from.Terminal() {
		return fmt.Errorf("%w: %q is terminal", common.ErrInvalidTransition, from)
	}
	if to == model.StatusFailed {
		return nil
	}
	if to.Order() != from.Order()+1 {
		return fmt.Errorf("%w: cannot move from %q to %q", common.ErrInvalidTransition, from, to)
	}
	return nil
}

// samePayload reports whether the item already carries exactly what this
// (status, payload) write would apply, making the write a duplicate.
func samePayload(item *model.Item, status model.ProcessingStatus, payload Payload) bool {
	switch status {
	case model.StatusTranscribed:
		return item.RawContent == payload.Transcript
	case model.StatusSummarized:
		return item.AISummary == payload.Summary && item.AIConfidence == payload.Confidence
	case model.StatusPending, model.StatusProcessing, model.StatusIndexed, model.StatusFailed, model.StatusNone:
		return true
	default:
		return true
	}
}
