package interview

import (
	"context"
	"log/slog"
	"time"
)

// CleanupCallback is called for every session removed by the sweeper.
type CleanupCallback func(sessionID string)

// StartSweeper runs a background goroutine that periodically deletes
// sessions idle for longer than ttl. It stops when ctx is cancelled.
func StartSweeper(ctx context.Context, svc *Service, ttl, interval time.Duration, onCleanup CleanupCallback) {
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Session sweeper started", "interval", interval, "ttl", ttl)

		for {
			select {
			case <-ticker.C:
				SweepExpired(ctx, svc, ttl, onCleanup)
			case <-ctx.Done():
				slog.Info("Session sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

// SweepExpired deletes every expired session once and returns how many
// were removed.
func SweepExpired(ctx context.Context, svc *Service, ttl time.Duration, onCleanup CleanupCallback) int {
	expired, err := svc.ExpiredSessions(ctx, ttl)
	if err != nil {
		slog.Error("Session sweeper failed to list expired sessions", "error", err)
		return 0
	}
	if len(expired) == 0 {
		return 0
	}

	slog.Info("Session sweeper found expired sessions", "count", len(expired))

	cleaned := 0
	for _, id := range expired {
		if onCleanup != nil {
			onCleanup(id)
		}
		if err := svc.Delete(ctx, id); err != nil {
			slog.Warn("Session sweeper failed to delete session",
				"error", err,
				"session_id", id)
			continue
		}
		cleaned++
	}

	slog.Info("Session sweeper cleanup completed", "cleaned", cleaned)
	return cleaned
}
