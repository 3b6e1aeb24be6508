package interview

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/skillpath/interview-engine/internal/models"
	"github.com/skillpath/interview-engine/internal/storage"
)

// memoryRepo is an in-memory Repository for tests. TransitionSession
// mirrors the store's conditional-update semantics under a lock.
type memoryRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.InterviewSession
	feedback map[string]*models.InterviewFeedback
	joins    []*models.SessionJoinLog

	failJoinLog bool
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		sessions: make(map[string]*models.InterviewSession),
		feedback: make(map[string]*models.InterviewFeedback),
	}
}

func (m *memoryRepo) CreateSession(_ context.Context, s *models.InterviewSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *s
	m.sessions[s.ID] = &clone
	return nil
}

func (m *memoryRepo) GetSession(_ context.Context, id string) (*models.InterviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

func (m *memoryRepo) UpdateSessionFields(_ context.Context, id string, patch storage.SessionPatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return fmt.Errorf("session not found: %s", id)
	}
	if patch.InterviewerID != nil {
		v := *patch.InterviewerID
		s.InterviewerID = &v
	}
	if patch.RecordingURL != nil {
		s.RecordingURL = *patch.RecordingURL
	}
	if patch.Notes != nil {
		s.Notes = *patch.Notes
	}
	if patch.WorkspaceData != nil {
		s.WorkspaceData = append([]byte(nil), patch.WorkspaceData...)
	}
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *memoryRepo) ListSessions(_ context.Context, filters models.SessionFilters) ([]*models.InterviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.InterviewSession
	for _, s := range m.sessions {
		if filters.UserID != "" && !s.IsParticipant(filters.UserID) {
			continue
		}
		if filters.Status != "" && s.Status != filters.Status {
			continue
		}
		clone := *s
		out = append(out, &clone)
	}
	return out, nil
}

func (m *memoryRepo) GetStaleScheduledSessions(_ context.Context, scheduledBefore time.Time) ([]*models.InterviewSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.InterviewSession
	for _, s := range m.sessions {
		if s.Status != models.StatusScheduled || s.ScheduledAt == nil {
			continue
		}
		if s.ScheduledAt.Before(scheduledBefore) {
			clone := *s
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memoryRepo) TransitionSession(_ context.Context, id string, prev, next models.SessionStatus, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok || s.Status != prev {
		return false, nil
	}
	s.Status = next
	if next == models.StatusInProgress && s.StartedAt == nil {
		t := at
		s.StartedAt = &t
	}
	if next.IsTerminal() && s.EndedAt == nil {
		t := at
		s.EndedAt = &t
	}
	s.UpdatedAt = at
	return true, nil
}

func (m *memoryRepo) CreateFeedback(_ context.Context, f *models.InterviewFeedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *f
	m.feedback[f.ID] = &clone
	return nil
}

func (m *memoryRepo) GetFeedback(_ context.Context, id string) (*models.InterviewFeedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f, ok := m.feedback[id]
	if !ok {
		return nil, nil
	}
	clone := *f
	return &clone, nil
}

func (m *memoryRepo) ListSessionFeedback(_ context.Context, sessionID string) ([]*models.InterviewFeedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.InterviewFeedback
	for _, f := range m.feedback {
		if f.SessionID == sessionID {
			clone := *f
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListIntervieweeFeedback(_ context.Context, userID string) ([]*models.InterviewFeedback, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*models.InterviewFeedback
	for _, f := range m.feedback {
		s, ok := m.sessions[f.SessionID]
		if ok && s.IntervieweeID == userID {
			clone := *f
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (m *memoryRepo) LogSessionJoin(_ context.Context, entry *models.SessionJoinLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failJoinLog {
		return context.DeadlineExceeded
	}
	clone := *entry
	m.joins = append(m.joins, &clone)
	return nil
}

func (m *memoryRepo) Ping(_ context.Context) error { return nil }
func (m *memoryRepo) Close() error                 { return nil }

// The postgres store errors when a field update matches no row; the
// fake must behave the same so facade tests exercise that contract.
func TestMemoryRepoUpdateUnknownSession(t *testing.T) {
	repo := newMemoryRepo()
	err := repo.UpdateSessionFields(context.Background(), "no-such-session", storage.SessionPatch{})
	if err == nil {
		t.Fatal("expected error updating unknown session")
	}
}
