// Package llmtest provides a scripted Provider for tests.
package llmtest

import (
	"context"
	"fmt"
	"sync"

	"ai-webchat-be/pkg/llm"
)

// MockProvider replays scripted replies in order and records every request
// it receives. When the script is exhausted it returns Err (or a default
// error when Err is nil).
type MockProvider struct {
	mu       sync.Mutex
	Replies  []string
	Err      error
	Requests [][]llm.Message
}

var _ llm.Provider = &MockProvider{}

func (m *MockProvider) Chat(ctx context.Context, history []llm.Message, _ ...llm.Option) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	recorded := make([]llm.Message, len(history))
	copy(recorded, history)
	m.Requests = append(m.Requests, recorded)

	if len(m.Replies) == 0 {
		if m.Err != nil {
			return "", m.Err
		}
		return "", fmt.Errorf("mock provider: no scripted reply")
	}
	reply := m.Replies[0]
	m.Replies = m.Replies[1:]
	return reply, nil
}
