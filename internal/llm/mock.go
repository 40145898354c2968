package llm

import (
	"context"
	"sync"
)

// MockClient is a deterministic test implementation of the Client interface.
type MockClient struct {
	// Response is returned for every Complete call when Err is nil.
	Response string
	// Err, when set, is returned from every Complete call.
	Err   error
	calls []CompletionRequest
	mu    sync.Mutex
}

// Complete records the request and returns the canned response.
func (m *MockClient) Complete(_ context.Context, req CompletionRequest) (CompletionResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)
	if m.Err != nil {
		return CompletionResponse{}, m.Err
	}
	return CompletionResponse{Content: m.Response}, nil
}

// Calls returns a copy of every recorded request.
func (m *MockClient) Calls() []CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]CompletionRequest, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns how many times Complete was invoked.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
