// Package session holds per-browser state that never leaves the process:
// revealed secrets and their visibility toggles.
package session

import (
	"context"
	"sync"
	"time"
)

// Session is the server-side state of one browser session. It implements
// ports.RevealCache.
type Session struct {
	id string

	mu       sync.Mutex
	secrets  map[string]string
	visible  map[string]bool
	lastSeen time.Time
}

func newSession(id string, now time.Time) *Session {
	return &Session{
		id:       id,
		secrets:  make(map[string]string),
		visible:  make(map[string]bool),
		lastSeen: now,
	}
}

func (s *Session) ID() string { return s.id }

func (s *Session) Secret(assetID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.secrets[assetID]
	return v, ok
}

func (s *Session) StoreSecret(assetID, secret string) {
	s.mu.Lock()
	s.secrets[assetID] = secret
	s.mu.Unlock()
}

func (s *Session) Visible(assetID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.visible[assetID]
}

func (s *Session) SetVisible(assetID string, visible bool) {
	s.mu.Lock()
	s.visible[assetID] = visible
	s.mu.Unlock()
}

// Revealed returns the secrets currently toggled visible.
func (s *Session) Revealed() map[string]string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]string, len(s.visible))
	for id, on := range s.visible {
		if v, ok := s.secrets[id]; on && ok {
			out[id] = v
		}
	}
	return out
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastSeen)
}

// Store maps session ids to their state and drops sessions idle for
// longer than the TTL.
type Store struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewStore(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = 12 * time.Hour
	}
	return &Store{ttl: ttl, now: time.Now, sessions: make(map[string]*Session)}
}

// Get returns the session for id, creating it on first use.
func (st *Store) Get(id string) *Session {
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok || s.idleSince(now) > st.ttl {
		s = newSession(id, now)
		st.sessions[id] = s
		return s
	}
	s.touch(now)
	return s
}

func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Sweep evicts idle sessions and returns how many were dropped.
func (st *Store) Sweep() int {
	now := st.now()
	st.mu.Lock()
	defer st.mu.Unlock()
	n := 0
	for id, s := range st.sessions {
		if s.idleSince(now) > st.ttl {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// Janitor sweeps every interval until ctx is done.
func (st *Store) Janitor(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			st.Sweep()
		}
	}
}
