package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ashureev/talentscout/internal/domain"
)

// Memory is a process-local Repository used by the terminal client and tests.
type Memory struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session
}

// NewMemory creates an empty in-memory repository.
func NewMemory() *Memory {
	return &Memory{sessions: make(map[string]domain.Session)}
}

// GetSession returns a copy of the stored session.
func (m *Memory) GetSession(_ context.Context, sessionID string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	out := s.Clone()
	return &out, nil
}

// SaveSession stores a copy of session.
func (m *Memory) SaveSession(_ context.Context, session *domain.Session) error {
	s := session.Clone()
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = now
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// DeleteSession removes a session.
func (m *Memory) DeleteSession(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, sessionID)
	return nil
}

// ListExpiredSessions returns sessions idle for longer than ttl, oldest first.
func (m *Memory) ListExpiredSessions(_ context.Context, ttl time.Duration) ([]string, error) {
	threshold := time.Now().Add(-ttl)

	m.mu.RLock()
	defer m.mu.RUnlock()

	var expired []domain.Session
	for _, s := range m.sessions {
		if s.UpdatedAt.Before(threshold) {
			expired = append(expired, s)
		}
	}
	sort.Slice(expired, func(i, j int) bool {
		return expired[i].UpdatedAt.Before(expired[j].UpdatedAt)
	})

	ids := make([]string, 0, len(expired))
	for _, s := range expired {
		ids = append(ids, s.ID)
	}
	return ids, nil
}

// Ping always succeeds.
func (m *Memory) Ping(context.Context) error { return nil }

// Close is a no-op.
func (m *Memory) Close() error { return nil }

var _ Repository = (*Memory)(nil)
