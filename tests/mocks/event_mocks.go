package mocks

import (
	"sync"
)

// PublishedEvent records a single event sent through the mock publisher
type PublishedEvent struct {
	Event   string
	Payload interface{}
}

// MockEventPublisher implements services.EventPublisher and records every
// event for later inspection. Safe for concurrent use: services publish
// from background goroutines.
type MockEventPublisher struct {
	mu     sync.Mutex
	Events []PublishedEvent
}

// NewMockEventPublisher creates a new MockEventPublisher instance
func NewMockEventPublisher() *MockEventPublisher {
	return &MockEventPublisher{Events: make([]PublishedEvent, 0)}
}

// Publish records the event
func (m *MockEventPublisher) Publish(event string, payload interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, PublishedEvent{Event: event, Payload: payload})
}

// Named returns the recorded events with the given name
func (m *MockEventPublisher) Named(event string) []PublishedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []PublishedEvent
	for _, e := range m.Events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}
