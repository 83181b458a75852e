// Package session tracks viewing sessions, each with its own page cursor.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/wonny/stockmarket/internal/pagination"
	"github.com/wonny/stockmarket/pkg/id"
)

// ErrNotFound is returned for unknown or expired session ids
var ErrNotFound = errors.New("session not found")

// Session is one display consumer
type Session struct {
	ID        string
	CreatedAt time.Time
	Pager     *pagination.Pager

	mu       sync.Mutex
	lastSeen time.Time
}

// LastSeen returns the time the session was last used
func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

// Manager owns the sessions over one stock source
// ⭐ SSOT: sessions are created and expired only here
type Manager struct {
	mu       sync.RWMutex
	source   pagination.Source
	pageSize int
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*Session
}

// Option configures a Manager
type Option func(*Manager)

// WithNow replaces the wall clock used for idle tracking
func WithNow(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// NewManager creates a manager. Sessions idle for longer than ttl are
// removed by Expire; ttl 0 keeps them until deleted.
func NewManager(source pagination.Source, pageSize int, ttl time.Duration, opts ...Option) *Manager {
	m := &Manager{
		source:   source,
		pageSize: pageSize,
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create opens a session on page 0
func (m *Manager) Create() *Session {
	now := m.now()
	s := &Session{
		ID:        id.New(),
		CreatedAt: now,
		Pager:     pagination.New(m.source, m.pageSize),
		lastSeen:  now,
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	return s
}

// Get returns a session and marks it as used
func (m *Manager) Get(sessionID string) (*Session, error) {
	if !id.Valid(sessionID) {
		return nil, ErrNotFound
	}

	m.mu.RLock()
	s, ok := m.sessions[sessionID]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	s.touch(m.now())
	return s, nil
}

// Touch marks s as used. Long-lived consumers such as streams call it on
// every exchange so the session outlives the idle ttl.
func (m *Manager) Touch(s *Session) {
	s.touch(m.now())
}

// Delete closes a session
func (m *Manager) Delete(sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[sessionID]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, sessionID)
	return nil
}

// Expire removes sessions idle for longer than the ttl and returns how many
func (m *Manager) Expire() int {
	if m.ttl <= 0 {
		return 0
	}

	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for sid, s := range m.sessions {
		if s.LastSeen().Before(cutoff) {
			delete(m.sessions, sid)
			removed++
		}
	}
	return removed
}

// Len returns the number of open sessions
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
