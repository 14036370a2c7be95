package document

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/faizahmd2/realtime-editor/internal/observability"
)

// Manager routes document ids to their actors, spawning them lazily on
// first use. Actors for different ids run fully independently; the mutex
// here only guards the routing map, never document state.
type Manager struct {
	mu     sync.Mutex
	actors map[string]*Actor

	gateway  Gateway
	interval time.Duration
	logger   zerolog.Logger
}

// NewManager creates a manager. interval is passed through to each actor.
func NewManager(gateway Gateway, interval time.Duration, logger zerolog.Logger) *Manager {
	return &Manager{
		actors:   make(map[string]*Actor),
		gateway:  gateway,
		interval: interval,
		logger:   logger,
	}
}

// GetOrCreate returns the live actor for a document id, spawning one if
// none exists. A previously reclaimed id gets a fresh actor, which will
// re-hydrate from storage on its first connection.
func (m *Manager) GetOrCreate(id string) *Actor {
	m.mu.Lock()
	defer m.mu.Unlock()

	if a, ok := m.actors[id]; ok && !a.Stopped() {
		return a
	}

	a := NewActor(id, m.gateway, m.interval, m.logger)
	m.actors[id] = a
	observability.SetActiveDocuments(len(m.actors))
	m.logger.Debug().Str("documentId", id).Msg("Document actor spawned")

	return a
}

// Get returns the live actor for a document id without spawning one.
func (m *Manager) Get(id string) (*Actor, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.actors[id]
	if !ok || a.Stopped() {
		return nil, false
	}
	return a, true
}

// Count returns the number of tracked actors.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.actors)
}

// ReapIdle stops and forgets actors that have no sessions and have been
// inactive longer than maxIdle. Returns how many were reclaimed.
func (m *Manager) ReapIdle(maxIdle time.Duration) int {
	m.mu.Lock()
	var idle []*Actor
	for id, a := range m.actors {
		if a.Idle(maxIdle) {
			idle = append(idle, a)
			delete(m.actors, id)
		}
	}
	remaining := len(m.actors)
	m.mu.Unlock()

	for _, a := range idle {
		a.Stop()
		m.logger.Info().Str("documentId", a.ID()).Msg("Idle document actor reclaimed")
	}

	observability.SetActiveDocuments(remaining)
	observability.DocumentsReaped(len(idle))

	return len(idle)
}

// StopAll shuts every actor down. Used on server shutdown.
func (m *Manager) StopAll() {
	m.mu.Lock()
	actors := make([]*Actor, 0, len(m.actors))
	for id, a := range m.actors {
		actors = append(actors, a)
		delete(m.actors, id)
	}
	m.mu.Unlock()

	for _, a := range actors {
		a.Stop()
	}
	observability.SetActiveDocuments(0)
}
