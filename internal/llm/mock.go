package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one scripted reply: either Content or Err.
type MockResponse struct {
	Content json.RawMessage
	Err     error
}

// MockProvider replays scripted replies in order and records every request.
// Once the script runs out, Generate fails with ErrProviderUnavailable.
type MockProvider struct {
	mu     sync.Mutex
	script []MockResponse
	calls  []Request
}

func NewMockProvider(script ...MockResponse) *MockProvider {
	return &MockProvider{script: script}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = append(m.calls, req)
	if len(m.script) == 0 {
		return nil, &ErrProviderUnavailable{Provider: "mock"}
	}
	next := m.script[0]
	m.script = m.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return &Response{Content: next.Content, Model: "mock", StopReason: StopEnd}, nil
}

func (m *MockProvider) ModelID() string { return "mock" }

// AddResponse appends a reply to the script.
func (m *MockProvider) AddResponse(resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, resp)
}

// CallCount reports how many requests have been made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// LastRequest returns the most recent request, or false if there was none.
func (m *MockProvider) LastRequest() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return Request{}, false
	}
	return m.calls[len(m.calls)-1], true
}
