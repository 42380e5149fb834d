// Package notify hands finished interviews off to downstream systems.
package notify

import (
	"context"
	"errors"

	"github.com/ashureev/talentscout/internal/domain"
)

// Publisher delivers a finished interview somewhere outside the service.
type Publisher interface {
	Publish(ctx context.Context, sub domain.Submission) error
	Close() error
}

// Noop discards submissions.
type Noop struct{}

// Publish implements Publisher.
func (Noop) Publish(context.Context, domain.Submission) error { return nil }

// Close implements Publisher.
func (Noop) Close() error { return nil }

// Multi fans a submission out to several publishers. Every publisher is
// tried; failures are joined.
type Multi []Publisher

// Publish implements Publisher.
func (m Multi) Publish(ctx context.Context, sub domain.Submission) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, sub); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close implements Publisher.
func (m Multi) Close() error {
	var errs []error
	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
