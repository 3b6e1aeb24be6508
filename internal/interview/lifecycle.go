package interview

import (
	"context"
	"fmt"
	"time"

	"github.com/skillpath/interview-engine/internal/models"
	"github.com/skillpath/interview-engine/internal/storage"
)

// transitions maps each status to the set it may move to. Terminal
// states have no entries.
var transitions = map[models.SessionStatus][]models.SessionStatus{
	models.StatusScheduled:  {models.StatusInProgress, models.StatusCancelled},
	models.StatusInProgress: {models.StatusCompleted, models.StatusCancelled},
}

func transitionAllowed(from, to models.SessionStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Lifecycle validates and applies session state transitions. The actual
// state change is a conditional update in the store, so two racing
// requests from the same prior state cannot both succeed.
type Lifecycle struct {
	repo storage.Repository
	now  func() time.Time
}

// NewLifecycle creates a lifecycle manager over the given repository
func NewLifecycle(repo storage.Repository, now func() time.Time) *Lifecycle {
	if now == nil {
		now = time.Now
	}
	return &Lifecycle{repo: repo, now: now}
}

// canTransition checks the caller's relationship to the session for the
// requested target state. Cancellation is open to admins as well;
// starting or completing belongs to the participants.
func canTransition(s *models.InterviewSession, caller models.Identity, to models.SessionStatus) bool {
	if s.IsParticipant(caller.UserID) {
		return true
	}
	return to == models.StatusCancelled && caller.IsAdmin()
}

// Transition moves the session to the requested status. It validates
// the request against the current state, then applies an atomic
// compare-and-swap; a lost race surfaces as InvalidTransition against
// the state the winner left behind.
func (l *Lifecycle) Transition(ctx context.Context, caller models.Identity, sessionID string, to models.SessionStatus) (*models.InterviewSession, error) {
	if !to.Valid() {
		return nil, Validation("invalid status: %q", to)
	}
	if to == models.StatusScheduled {
		return nil, Validation("cannot transition back to scheduled")
	}

	session, err := l.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if session == nil {
		return nil, NotFound("session not found: %s", sessionID)
	}

	if !canTransition(session, caller, to) {
		return nil, Unauthorized("caller %s may not transition session %s", caller.UserID, sessionID)
	}
	if !transitionAllowed(session.Status, to) {
		return nil, InvalidTransition(session.Status, to)
	}

	ok, err := l.repo.TransitionSession(ctx, sessionID, session.Status, to, l.now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to transition session: %w", err)
	}
	if !ok {
		// Lost the race: someone else moved the session first. Re-read
		// so the error names the state that actually blocked us.
		current, rerr := l.repo.GetSession(ctx, sessionID)
		if rerr != nil || current == nil {
			return nil, InvalidTransition(session.Status, to)
		}
		return nil, InvalidTransition(current.Status, to)
	}

	updated, err := l.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload session: %w", err)
	}
	if updated == nil {
		return nil, NotFound("session not found: %s", sessionID)
	}
	return updated, nil
}
