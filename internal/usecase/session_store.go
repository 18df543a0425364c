package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/foodlens/catalog/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionStore keeps the explorer sessions of HTTP clients, keyed by a random id.
// Sessions idle for longer than the TTL are closed and removed by Sweep.
type SessionStore struct {
	catalog domain.CatalogClient
	config  SessionConfig
	ttl     time.Duration
	logger  *zap.Logger

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store
func NewSessionStore(catalog domain.CatalogClient, config SessionConfig, ttl time.Duration, logger *zap.Logger) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionStore{
		catalog:  catalog,
		config:   config,
		ttl:      ttl,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Create starts a new session and returns its id
func (st *SessionStore) Create() (string, *Session) {
	id := uuid.NewString()
	s := NewSession(context.Background(), st.catalog, st.config, st.logger.With(zap.String("session", id)))

	st.mu.Lock()
	st.sessions[id] = s
	st.mu.Unlock()

	return id, s
}

// Get returns the session with id
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete closes and removes a session. It reports whether the session existed.
func (st *SessionStore) Delete(id string) bool {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok {
		s.Close()
	}
	return ok
}

// Len returns the number of live sessions
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep closes sessions idle since before now-ttl and returns how many were removed
func (st *SessionStore) Sweep(now time.Time) int {
	var expired []*Session

	st.mu.Lock()
	for id, s := range st.sessions {
		if now.Sub(s.LastAccess()) > st.ttl {
			expired = append(expired, s)
			delete(st.sessions, id)
		}
	}
	st.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		st.logger.Info("expired idle sessions", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// Run sweeps idle sessions every interval until ctx is done, then closes all sessions
func (st *SessionStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			st.closeAll()
			return
		case now := <-ticker.C:
			st.Sweep(now)
		}
	}
}

func (st *SessionStore) closeAll() {
	st.mu.Lock()
	sessions := st.sessions
	st.sessions = make(map[string]*Session)
	st.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}
