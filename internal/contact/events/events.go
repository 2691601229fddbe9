// Package events publishes contact lifecycle changes for downstream consumers.
package events

import (
	"context"
	"sync"
	"time"
)

// Type names a lifecycle change.
type Type string

const (
	ContactCreated Type = "contact_created"
	ContactUpdated Type = "contact_updated"
	ContactDeleted Type = "contact_deleted"
)

// Event is the payload written for every successful mutation.
type Event struct {
	Type       Type      `json:"type"`
	ContactID  int64     `json:"contact_id"`
	Name       string    `json:"name,omitempty"`
	Emails     []string  `json:"emails,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits events. Implementations must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Memory records published events; used when no broker is configured and in tests.
type Memory struct {
	mu     sync.Mutex
	events []Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Publish(_ context.Context, event Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Event(nil), m.events...)
}
