// Package session implements the stateful request layer between the HTTP API
// and the inference gateway: connectivity tracking, the offline request
// queue, and the per-channel controllers that own submission state.
package session

import (
	"log/slog"
	"sync"
)

// Monitor tracks upstream connectivity as reported by clients and probes.
// The process starts optimistic: online until told otherwise.
type Monitor struct {
	mu     sync.Mutex
	online bool
	subs   []func(online bool)
}

func NewMonitor() *Monitor {
	return &Monitor{online: true}
}

// Online reports the current connectivity state.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// SetOnline records a connectivity change and notifies subscribers. Repeated
// reports of the same state are ignored, so subscribers only see transitions.
// Subscribers are called synchronously, outside the lock, in registration
// order.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	if m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	subs := make([]func(bool), len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()

	slog.Info("connectivity changed", "online", online)
	for _, fn := range subs {
		fn(online)
	}
}

// Subscribe registers a callback for connectivity transitions. Must be called
// during startup wiring, before SetOnline can race it.
func (m *Monitor) Subscribe(fn func(online bool)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs = append(m.subs, fn)
}
