// Package notification provides a subscription registry that fans values out
// to observers.
package notification

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// subscription represents a subscriber's subscription.
type subscription[T any] struct {
	id      string
	seq     uint64
	deliver func(T)
}

// Manager manages subscriptions and broadcasting.
//
// Broadcast delivers synchronously on the caller's goroutine, in subscription
// order, so observers see every value in the order it was published.
type Manager[T any] struct {
	mu            sync.RWMutex
	subscriptions map[string]*subscription[T]
	subSeq        uint64
	sequenceNo    uint64
}

// NewManager creates a new notification manager.
func NewManager[T any]() *Manager[T] {
	return &Manager[T]{
		subscriptions: make(map[string]*subscription[T]),
	}
}

// Subscribe adds a new subscription and returns the subscription ID.
func (m *Manager[T]) Subscribe(deliver func(T)) string {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.subSeq++
	id := uuid.New().String()
	m.subscriptions[id] = &subscription[T]{
		id:      id,
		seq:     m.subSeq,
		deliver: deliver,
	}
	return id
}

// Unsubscribe removes a subscription.
func (m *Manager[T]) Unsubscribe(subscriptionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subscriptions, subscriptionID)
}

// Broadcast sends v to all subscribers and returns its sequence number.
func (m *Manager[T]) Broadcast(v T) uint64 {
	m.mu.Lock()
	m.sequenceNo++
	seq := m.sequenceNo
	// Copy subscriptions to avoid holding lock during delivery
	subs := make([]*subscription[T], 0, len(m.subscriptions))
	for _, sub := range m.subscriptions {
		subs = append(subs, sub)
	}
	m.mu.Unlock()

	sort.Slice(subs, func(i, j int) bool { return subs[i].seq < subs[j].seq })
	for _, sub := range subs {
		sub.deliver(v)
	}
	return seq
}

// SequenceNo returns the sequence number of the last broadcast.
func (m *Manager[T]) SequenceNo() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sequenceNo
}

// SubscriberCount returns the number of active subscribers.
func (m *Manager[T]) SubscriberCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subscriptions)
}

// Close removes all subscriptions.
func (m *Manager[T]) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscriptions = make(map[string]*subscription[T])
}
