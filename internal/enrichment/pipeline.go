package enrichment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tendnotes/tend/internal/common"
	"github.com/tendnotes/tend/internal/model"
	"github.com/tendnotes/tend/internal/service"
)

// Pipeline drives transcribed items through summarization. It is the batch
// writer side of the state machine; reads never wait on it.
type Pipeline struct {
	machine    *Machine
	storage    service.Storage
	compressor service.Compressor
	logger     *slog.Logger
}

// NewPipeline creates a pipeline. compressor may be nil, in which case
// summarization is skipped and transcribed items move straight to indexed.
func NewPipeline(machine *Machine, storage service.Storage, compressor service.Compressor, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		machine:    machine,
		storage:    storage,
		compressor: compressor,
		logger:     logger,
	}
}

// Summarize drives one item through the transcribed→summarized transition
// using the compression capability. A remote failure moves the item to the
// failed terminal, which the UI surfaces as a retryable state, never as an
// error dialog.
func (p *Pipeline) Summarize(ctx context.Context, itemID string) (*model.Item, error) {
	item, err := p.storage.GetItemByID(ctx, itemID)
	if err != nil {
		return nil, err
	}

	if item.ProcessingStatus == model.StatusFailed {
		return nil, fmt.Errorf("item %s: %w", itemID, common.ErrEnrichmentFailed)
	}
	if item.ProcessingStatus != model.StatusTranscribed {
		return nil, fmt.Errorf("summarize requires transcribed status, item is %q", item.ProcessingStatus)
	}

	text := item.RawContent
	if text == "" {
		text = item.Title
	}

	if p.compressor == nil {
		skipped, advErr := p.machine.Advance(ctx, itemID, model.StatusSummarized, Payload{
			Summary:    "",
			Confidence: 0,
		})
		if advErr != nil {
			return nil, advErr
		}
		return skipped, nil
	}

	compression, err := p.compressor.Compress(ctx, text)
	if err != nil {
		p.logger.Warn("compression failed, marking item failed",
			"item_id", itemID,
			"retryable", common.IsRetryable(err),
			"error", err)
		return p.machine.Fail(ctx, itemID, "compression failed")
	}

	return p.machine.Advance(ctx, itemID, model.StatusSummarized, Payload{
		Summary:    compression.Summary,
		Confidence: compression.Confidence,
	})
}

// ProcessPending advances every summarizable item for a user one step:
// transcribed items are summarized, summarized items are indexed. Items
// still pending or processing belong to the transcription worker and are
// left alone. Per-item failures are logged and do not stop the batch.
func (p *Pipeline) ProcessPending(ctx context.Context, userID string) error {
	incomplete := false
	items, err := p.storage.ListItems(ctx, userID, service.ItemFilter{Completed: &incomplete})
	if err != nil {
		return fmt.Errorf("failed to load items: %w", err)
	}

	for _, item := range items {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		switch item.ProcessingStatus {
		case model.StatusTranscribed:
			if _, sumErr := p.Summarize(ctx, item.ID); sumErr != nil {
				p.logger.Error("failed to summarize item", "item_id", item.ID, "error", sumErr)
			}
		case model.StatusSummarized:
			if _, advErr := p.machine.Advance(ctx, item.ID, model.StatusIndexed, Payload{}); advErr != nil {
				p.logger.Error("failed to index item", "item_id", item.ID, "error", advErr)
			}
		case model.StatusNone, model.StatusPending, model.StatusProcessing, model.StatusIndexed, model.StatusFailed:
		}
	}
	return nil
}
