package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/skillpath/interview-engine/internal/interview"
	"github.com/skillpath/interview-engine/internal/models"
	"github.com/skillpath/interview-engine/internal/storage"
)

type fakeRepo struct {
	stale []*models.InterviewSession
}

func (f *fakeRepo) GetStaleScheduledSessions(context.Context, time.Time) ([]*models.InterviewSession, error) {
	return f.stale, nil
}

func (f *fakeRepo) CreateSession(context.Context, *models.InterviewSession) error { return nil }
func (f *fakeRepo) GetSession(context.Context, string) (*models.InterviewSession, error) {
	return nil, nil
}
func (f *fakeRepo) UpdateSessionFields(context.Context, string, storage.SessionPatch) error {
	return nil
}
func (f *fakeRepo) ListSessions(context.Context, models.SessionFilters) ([]*models.InterviewSession, error) {
	return nil, nil
}
func (f *fakeRepo) TransitionSession(context.Context, string, models.SessionStatus, models.SessionStatus, time.Time) (bool, error) {
	return false, nil
}
func (f *fakeRepo) CreateFeedback(context.Context, *models.InterviewFeedback) error { return nil }
func (f *fakeRepo) GetFeedback(context.Context, string) (*models.InterviewFeedback, error) {
	return nil, nil
}
func (f *fakeRepo) ListSessionFeedback(context.Context, string) ([]*models.InterviewFeedback, error) {
	return nil, nil
}
func (f *fakeRepo) ListIntervieweeFeedback(context.Context, string) ([]*models.InterviewFeedback, error) {
	return nil, nil
}
func (f *fakeRepo) LogSessionJoin(context.Context, *models.SessionJoinLog) error { return nil }
func (f *fakeRepo) Ping(context.Context) error                                   { return nil }
func (f *fakeRepo) Close() error                                                 { return nil }

type fakeService struct {
	interview.Service
	cancelled []string
	err       error
}

func (f *fakeService) TransitionSession(_ context.Context, caller models.Identity, id string, to models.SessionStatus) (*models.InterviewSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	if to != models.StatusCancelled {
		panic("sweeper must only cancel")
	}
	if !caller.IsAdmin() {
		panic("sweeper must run as admin")
	}
	f.cancelled = append(f.cancelled, id)
	return &models.InterviewSession{ID: id, Status: to}, nil
}

func staleSession(id string) *models.InterviewSession {
	at := time.Now().Add(-48 * time.Hour)
	return &models.InterviewSession{
		ID:            id,
		IntervieweeID: "learner-1",
		Status:        models.StatusScheduled,
		ScheduledAt:   &at,
	}
}

func TestSweepCancelsStaleSessions(t *testing.T) {
	repo := &fakeRepo{stale: []*models.InterviewSession{staleSession("s1"), staleSession("s2")}}
	svc := &fakeService{}
	c := NewCleaner(repo, svc, time.Minute, time.Hour)

	c.sweep(context.Background())

	if len(svc.cancelled) != 2 {
		t.Fatalf("expected 2 cancellations, got %d", len(svc.cancelled))
	}
}

func TestSweepToleratesLostRace(t *testing.T) {
	repo := &fakeRepo{stale: []*models.InterviewSession{staleSession("s1")}}
	svc := &fakeService{err: interview.InvalidTransition(models.StatusInProgress, models.StatusCancelled)}
	c := NewCleaner(repo, svc, time.Minute, time.Hour)

	// Must not panic or retry; the session advanced on its own
	c.sweep(context.Background())

	if len(svc.cancelled) != 0 {
		t.Fatalf("expected no cancellations, got %d", len(svc.cancelled))
	}
}
