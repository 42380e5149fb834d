// Package store provides data persistence interfaces and implementations.
package store

import (
	"context"
	"time"

	"github.com/ashureev/talentscout/internal/domain"
)

// Repository defines the interface for persisting interview sessions.
type Repository interface {
	// GetSession retrieves a session by ID. It returns nil, nil when the
	// session does not exist.
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)

	// SaveSession creates or replaces a session.
	SaveSession(ctx context.Context, session *domain.Session) error

	// DeleteSession removes a session. Deleting a missing session is not an error.
	DeleteSession(ctx context.Context, sessionID string) error

	// ListExpiredSessions returns the IDs of sessions not updated within ttl.
	ListExpiredSessions(ctx context.Context, ttl time.Duration) ([]string, error)

	// Ping verifies database connectivity and returns an error if the database is unreachable.
	Ping(ctx context.Context) error

	// Close closes the database connection.
	Close() error
}
