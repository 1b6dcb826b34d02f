package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/race/scroller/config"
)

// Error definitions
var (
	ErrServerFull      = &SessionError{message: "server is full"}
	ErrSessionNotFound = &SessionError{message: "session not found"}
)

// SessionError represents an error related to session operations.
type SessionError struct {
	message string
}

func (e *SessionError) Error() string {
	return e.message
}

// Registry tracks live sessions
type Registry struct {
	mu       sync.RWMutex
	cfg      *config.ServerConfig
	sessions map[string]*Session
}

// NewRegistry creates an empty registry
func NewRegistry(cfg *config.ServerConfig) *Registry {
	return &Registry{
		cfg:      cfg,
		sessions: make(map[string]*Session),
	}
}

// Create registers a new session for a connection and starts it.
func (r *Registry) Create(conn Connection) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.sessions) >= r.cfg.MaxSessions {
		return nil, ErrServerFull
	}

	id := uuid.NewString()
	s := NewSession(id, conn, r.cfg)
	r.sessions[id] = s
	s.Start()

	return s, nil
}

// Get gets a session by ID
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove stops and removes a session. Unknown IDs are ignored.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	r.mu.Unlock()

	if ok {
		s.Stop()
	}
}

// CleanupIdle removes every session silent for longer than maxIdle
func (r *Registry) CleanupIdle(now time.Time, maxIdle time.Duration) int {
	r.mu.Lock()
	var idle []*Session
	for id, s := range r.sessions {
		if s.IdleFor(now) > maxIdle {
			idle = append(idle, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range idle {
		s.Stop()
	}
	return len(idle)
}

// GetStats returns registry statistics
func (r *Registry) GetStats() RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := RegistryStats{
		TotalSessions: len(r.sessions),
		Sessions:      make([]SessionStats, 0, len(r.sessions)),
	}

	for id, s := range r.sessions {
		simStats := s.Stats()
		stats.TotalTicks += simStats.Ticks
		stats.DroppedTicks += simStats.DroppedTicks
		stats.Sessions = append(stats.Sessions, SessionStats{
			ID:           id,
			Ticks:        simStats.Ticks,
			DroppedTicks: simStats.DroppedTicks,
			Recycled:     simStats.Recycled,
		})
	}

	return stats
}

// RegistryStats contains registry statistics
type RegistryStats struct {
	TotalSessions int
	TotalTicks    uint64
	DroppedTicks  uint64
	Sessions      []SessionStats
}

// SessionStats contains session statistics
type SessionStats struct {
	ID           string
	Ticks        uint64
	DroppedTicks uint64
	Recycled     uint64
}
