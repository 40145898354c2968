// Package llm provides provider-agnostic access to external language models
// for classification, inbox grouping, and semantic compression.
package llm

import (
	"context"
	"time"
)

// Client defines the interface for LLM providers. One canonical method: a
// prompted completion that must return strict JSON.
type Client interface {
	Complete(ctx context.Context, req CompletionRequest) (CompletionResponse, error)
}

// CompletionRequest is a single prompted call to a provider.
type CompletionRequest struct {
	SystemPrompt string
	Prompt       string
}

// CompletionResponse is the raw text the provider returned.
type CompletionResponse struct {
	Content string
}

// Config holds configuration for LLM providers and adapters.
type Config struct {
	Provider    string
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
	RateLimit   int
	CacheTTL    time.Duration
	// CallTimeout bounds each adapter call so pipeline read paths never
	// block on a slow provider.
	CallTimeout time.Duration
}

// DefaultCallTimeout bounds remote calls when the config leaves it unset.
const DefaultCallTimeout = 10 * time.Second

func (c Config) callTimeout() time.Duration {
	if c.CallTimeout <= 0 {
		return DefaultCallTimeout
	}
	return c.CallTimeout
}
