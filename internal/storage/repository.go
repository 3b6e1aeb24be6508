package storage

import (
	"context"
	"time"

	"github.com/skillpath/interview-engine/internal/models"
)

// SessionPatch carries the non-lifecycle fields an update may touch.
// Nil pointers leave the column unchanged.
type SessionPatch struct {
	InterviewerID *string
	RecordingURL  *string
	Notes         *string
	WorkspaceData []byte
}

// Repository defines the interface for interview persistence
type Repository interface {
	// Sessions
	CreateSession(ctx context.Context, s *models.InterviewSession) error
	GetSession(ctx context.Context, id string) (*models.InterviewSession, error)
	UpdateSessionFields(ctx context.Context, id string, patch SessionPatch) error
	ListSessions(ctx context.Context, filters models.SessionFilters) ([]*models.InterviewSession, error)
	GetStaleScheduledSessions(ctx context.Context, scheduledBefore time.Time) ([]*models.InterviewSession, error)

	// TransitionSession applies "set status to next only if status is
	// prev" atomically, setting started_at/ended_at on first entry.
	// Returns false when no row matched (missing session or lost race).
	TransitionSession(ctx context.Context, id string, prev, next models.SessionStatus, at time.Time) (bool, error)

	// Feedback
	CreateFeedback(ctx context.Context, f *models.InterviewFeedback) error
	GetFeedback(ctx context.Context, id string) (*models.InterviewFeedback, error)
	ListSessionFeedback(ctx context.Context, sessionID string) ([]*models.InterviewFeedback, error)
	ListIntervieweeFeedback(ctx context.Context, userID string) ([]*models.InterviewFeedback, error)

	// Join logs (best-effort auxiliary writes)
	LogSessionJoin(ctx context.Context, entry *models.SessionJoinLog) error

	// Health
	Ping(ctx context.Context) error
	Close() error
}
