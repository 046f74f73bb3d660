package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/herozvz07-ctrl/guilder/internal/services"
)

// StartReconcile runs periodic roster reconciliation until done closes.
// Failures keep the previous snapshot and only log; the next tick retries.
func StartReconcile(svc *services.RosterService, interval time.Duration, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				_, err := svc.ReconcileCurrent(context.Background())
				switch {
				case errors.Is(err, services.ErrNoSourceURL):
					// Nothing to do until an owner sets a source.
				case err != nil:
					slog.Error("scheduled reconcile failed", "error", err)
				}
			case <-done:
				return
			}
		}
	}()
}

// StartInactivitySweep alerts admins about stale members once a day.
func StartInactivitySweep(svc *services.RosterService, thresholdDays int, done chan struct{}) {
	go func() {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				stale, err := svc.CheckInactive(context.Background(), thresholdDays)
				switch {
				case errors.Is(err, services.ErrNoSnapshot):
					// First reconciliation hasn't happened yet.
				case err != nil:
					slog.Error("inactivity sweep failed", "error", err)
				case len(stale) > 0:
					slog.Info("inactivity sweep completed", "stale", len(stale))
				}
			case <-done:
				return
			}
		}
	}()
}
