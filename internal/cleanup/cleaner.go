package cleanup

import (
	"context"
	"log/slog"
	"time"

	"github.com/skillpath/interview-engine/internal/interview"
	"github.com/skillpath/interview-engine/internal/models"
	"github.com/skillpath/interview-engine/internal/storage"
)

// sweeperIdentity is the system principal the sweeper cancels under.
// Cancellation is the only transition admins may perform.
var sweeperIdentity = models.Identity{UserID: "system-sweeper", Role: models.RoleAdmin}

// Cleaner periodically cancels no-show sessions: scheduled sessions
// whose agreed time passed longer than the grace period ago without
// anyone starting them.
type Cleaner struct {
	repo     storage.Repository
	service  interview.Service
	interval time.Duration
	grace    time.Duration
}

// NewCleaner creates a new cleanup worker
func NewCleaner(repo storage.Repository, service interview.Service, interval, grace time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if grace <= 0 {
		grace = 24 * time.Hour
	}

	return &Cleaner{
		repo:     repo,
		service:  service,
		interval: interval,
		grace:    grace,
	}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

// run is the main loop for the cleanup worker
func (c *Cleaner) run(ctx context.Context) {
	slog.Info("cleanup worker started", "interval", c.interval, "grace", c.grace)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	// Run immediately on start
	c.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			c.sweep(ctx)
		}
	}
}

// sweep finds and cancels no-show sessions
func (c *Cleaner) sweep(ctx context.Context) {
	slog.Debug("running cleanup cycle")

	cutoff := time.Now().UTC().Add(-c.grace)
	stale, err := c.repo.GetStaleScheduledSessions(ctx, cutoff)
	if err != nil {
		slog.Error("failed to get stale sessions", "error", err)
		return
	}

	if len(stale) == 0 {
		slog.Debug("no stale sessions found")
		return
	}

	slog.Info("found no-show sessions", "count", len(stale))

	for _, session := range stale {
		slog.Info("cancelling no-show session",
			"id", session.ID,
			"interviewee", session.IntervieweeID,
			"scheduled_at", session.ScheduledAt,
		)

		// Goes through the same conditional transition as API callers,
		// so a session started meanwhile is left alone.
		if _, err := c.service.TransitionSession(ctx, sweeperIdentity, session.ID, models.StatusCancelled); err != nil {
			if interview.IsKind(err, interview.KindInvalidTransition) {
				slog.Debug("session advanced before sweep", "id", session.ID)
				continue
			}
			slog.Error("failed to cancel no-show session", "error", err, "id", session.ID)
			continue
		}

		slog.Info("no-show session cancelled", "id", session.ID)
	}
}
