// Package dedup tracks processed message ids so the consumer can treat
// redeliveries as no-ops.
package dedup

import (
	"context"
	"sync"
)

// Recorder stores processed-message markers. Once Mark succeeds for an id,
// Seen must report true for that id until the marker expires.
type Recorder interface {
	Seen(ctx context.Context, messageID string) (bool, error)
	Mark(ctx context.Context, messageID string) error
}

// Memory is a volatile in-process recorder. Markers do not survive a
// restart, so redelivery after a crash can reapply a mutation; use the
// Redis recorder where that matters.
type Memory struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewMemory builds an empty in-process recorder.
func NewMemory() *Memory {
	return &Memory{ids: make(map[string]struct{})}
}

// Seen reports whether the id has been marked.
func (m *Memory) Seen(_ context.Context, messageID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.ids[messageID]
	return ok, nil
}

// Mark records the id as processed.
func (m *Memory) Mark(_ context.Context, messageID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ids[messageID] = struct{}{}
	return nil
}

// Len returns the number of recorded ids.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ids)
}
