package interview

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/skillpath/interview-engine/internal/models"
	"github.com/skillpath/interview-engine/internal/storage"
)

// Service is the access facade: the only surface API routes call.
// Every operation takes the authenticated caller and enforces the
// relationship rules before touching the stores.
type Service interface {
	CreateSession(ctx context.Context, caller models.Identity, req *models.CreateSessionRequest) (*models.InterviewSession, error)
	GetSession(ctx context.Context, caller models.Identity, id string) (*models.InterviewSession, error)
	ListSessions(ctx context.Context, caller models.Identity, filters models.SessionFilters) ([]*models.InterviewSession, error)
	UpdateSession(ctx context.Context, caller models.Identity, id string, req *models.UpdateSessionRequest) (*models.InterviewSession, error)
	AssignInterviewer(ctx context.Context, caller models.Identity, id string, req *models.AssignRequest) (*models.InterviewSession, error)
	TransitionSession(ctx context.Context, caller models.Identity, id string, to models.SessionStatus) (*models.InterviewSession, error)

	SubmitFeedback(ctx context.Context, caller models.Identity, sessionID string, req *models.CreateFeedbackRequest) (*models.InterviewFeedback, error)
	GetSessionFeedback(ctx context.Context, caller models.Identity, sessionID string) (*models.SessionFeedbackView, error)
	GetSessionSummary(ctx context.Context, caller models.Identity, sessionID string) (*models.SessionSummary, error)
	GetUserSummary(ctx context.Context, caller models.Identity, userID string) (*models.UserSummary, error)

	RecordJoin(ctx context.Context, caller models.Identity, sessionID string)
}

// SummaryCache caches computed session summaries. Implementations must
// treat misses as (nil, nil); the facade works without one.
type SummaryCache interface {
	GetSessionSummary(ctx context.Context, sessionID string) (*models.SessionSummary, error)
	SetSessionSummary(ctx context.Context, summary *models.SessionSummary) error
	InvalidateSession(ctx context.Context, sessionID string) error
}

// TypeCatalog resolves per-interview-type defaults
type TypeCatalog interface {
	DefaultDuration(t models.InterviewType) (int, bool)
}

// Config carries the facade's tunables. Passed explicitly at
// construction; the facade reads nothing from the environment.
type Config struct {
	// Fallback session length when neither the request nor the catalog
	// supplies one
	DefaultDurationMin int
}

// Facade implements Service over a repository, an optional summary
// cache, and an optional interview-type catalog.
type Facade struct {
	cfg       Config
	repo      storage.Repository
	lifecycle *Lifecycle
	cache     SummaryCache
	catalog   TypeCatalog
	logger    *slog.Logger
	now       func() time.Time
}

// NewFacade creates the access facade. cache and catalog may be nil.
func NewFacade(cfg Config, repo storage.Repository, cache SummaryCache, catalog TypeCatalog, logger *slog.Logger) *Facade {
	if cfg.DefaultDurationMin <= 0 {
		cfg.DefaultDurationMin = 60
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Facade{
		cfg:       cfg,
		repo:      repo,
		lifecycle: NewLifecycle(repo, nil),
		cache:     cache,
		catalog:   catalog,
		logger:    logger,
		now:       time.Now,
	}
}

// CreateSession creates a scheduled session with the caller as
// interviewee. Duration falls back to the catalog default for the
// interview type.
func (f *Facade) CreateSession(ctx context.Context, caller models.Identity, req *models.CreateSessionRequest) (*models.InterviewSession, error) {
	if !req.InterviewType.Valid() {
		return nil, Validation("invalid interview_type: %q", req.InterviewType)
	}
	if req.Difficulty != nil && !req.Difficulty.Valid() {
		return nil, Validation("invalid difficulty: %q", *req.Difficulty)
	}
	// Zero means "not supplied"; the catalog or config default fills it in
	if req.DurationMin < 0 {
		return nil, Validation("duration_min must not be negative")
	}
	if !models.ValidCommunicationMode(req.CommunicationMode) {
		return nil, Validation("invalid communication_mode: %q", req.CommunicationMode)
	}

	duration := req.DurationMin
	if duration == 0 && f.catalog != nil {
		if d, ok := f.catalog.DefaultDuration(req.InterviewType); ok {
			duration = d
		}
	}
	if duration == 0 {
		duration = f.cfg.DefaultDurationMin
	}

	now := f.now().UTC()
	session := &models.InterviewSession{
		ID:                uuid.New().String(),
		IntervieweeID:     caller.UserID,
		InterviewerID:     req.InterviewerID,
		InterviewType:     req.InterviewType,
		Difficulty:        req.Difficulty,
		Status:            models.StatusScheduled,
		ScheduledAt:       req.ScheduledAt,
		DurationMin:       duration,
		CommunicationMode: req.CommunicationMode,
		WorkspaceData:     req.WorkspaceData,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := f.repo.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	f.logger.Info("session created",
		"session_id", session.ID,
		"interviewee_id", session.IntervieweeID,
		"interview_type", session.InterviewType)

	return session, nil
}

// GetSession returns a session. Participants and admins see the full
// record; other callers get a copy with the private content fields
// cleared.
func (f *Facade) GetSession(ctx context.Context, caller models.Identity, id string) (*models.InterviewSession, error) {
	session, err := f.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, NotFound("session not found: %s", id)
	}
	if session.IsParticipant(caller.UserID) || caller.IsAdmin() {
		return session, nil
	}
	return redactSession(session), nil
}

// redactSession strips the fields only participants may read
func redactSession(s *models.InterviewSession) *models.InterviewSession {
	clone := *s
	clone.WorkspaceData = nil
	clone.RecordingURL = ""
	clone.Notes = ""
	clone.LegacyFeedbackRating = nil
	clone.LegacyFeedbackText = ""
	return &clone
}

// ListSessions lists sessions. Non-admin callers are pinned to their
// own sessions regardless of the requested filter.
func (f *Facade) ListSessions(ctx context.Context, caller models.Identity, filters models.SessionFilters) ([]*models.InterviewSession, error) {
	if !caller.IsAdmin() {
		filters.UserID = caller.UserID
	}
	if filters.Status != "" && !filters.Status.Valid() {
		return nil, Validation("invalid status filter: %q", filters.Status)
	}

	sessions, err := f.repo.ListSessions(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// UpdateSession applies non-lifecycle field changes. Only participants
// may update, and only while the session is not terminal.
func (f *Facade) UpdateSession(ctx context.Context, caller models.Identity, id string, req *models.UpdateSessionRequest) (*models.InterviewSession, error) {
	session, err := f.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, NotFound("session not found: %s", id)
	}
	if !session.IsParticipant(caller.UserID) && !caller.IsAdmin() {
		return nil, Unauthorized("caller %s may not update session %s", caller.UserID, id)
	}
	if session.Status.IsTerminal() {
		return nil, InvalidTransition(session.Status, session.Status)
	}

	patch := storage.SessionPatch{
		RecordingURL: req.RecordingURL,
		Notes:        req.Notes,
	}
	if req.WorkspaceData != nil {
		patch.WorkspaceData = req.WorkspaceData
	}
	if err := f.repo.UpdateSessionFields(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	updated, err := f.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload session: %w", err)
	}
	if updated == nil {
		return nil, NotFound("session not found: %s", id)
	}
	return updated, nil
}

// AssignInterviewer attaches an interviewer to an unassigned scheduled
// session. This is the matcher's entry point, so it is restricted to
// instructors and admins; it is a field update, not a transition.
func (f *Facade) AssignInterviewer(ctx context.Context, caller models.Identity, id string, req *models.AssignRequest) (*models.InterviewSession, error) {
	if req.InterviewerID == "" {
		return nil, Validation("interviewer_id is required")
	}
	if caller.Role != models.RoleInstructor && !caller.IsAdmin() {
		return nil, Unauthorized("caller %s may not assign interviewers", caller.UserID)
	}

	session, err := f.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, NotFound("session not found: %s", id)
	}
	if session.Status != models.StatusScheduled {
		return nil, InvalidTransition(session.Status, session.Status)
	}
	if session.InterviewerID != nil && *session.InterviewerID != req.InterviewerID {
		return nil, Validation("session already has an interviewer")
	}

	patch := storage.SessionPatch{InterviewerID: &req.InterviewerID}
	if err := f.repo.UpdateSessionFields(ctx, id, patch); err != nil {
		return nil, fmt.Errorf("failed to assign interviewer: %w", err)
	}

	f.logger.Info("interviewer assigned",
		"session_id", id,
		"interviewer_id", req.InterviewerID)

	updated, err := f.repo.GetSession(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload session: %w", err)
	}
	if updated == nil {
		return nil, NotFound("session not found: %s", id)
	}
	return updated, nil
}

// TransitionSession delegates to the lifecycle manager
func (f *Facade) TransitionSession(ctx context.Context, caller models.Identity, id string, to models.SessionStatus) (*models.InterviewSession, error) {
	return f.lifecycle.Transition(ctx, caller, id, to)
}

// SubmitFeedback validates and appends a feedback record. The session
// must exist; a peer review must name its reviewer; nobody submits
// learner feedback under another learner's id.
func (f *Facade) SubmitFeedback(ctx context.Context, caller models.Identity, sessionID string, req *models.CreateFeedbackRequest) (*models.InterviewFeedback, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, Validation("rating must be between 1 and 5")
	}
	for name, dim := range map[string]*int{
		"technical_skills": req.TechnicalSkills,
		"communication":    req.Communication,
		"problem_solving":  req.ProblemSolving,
	} {
		if dim != nil && (*dim < 1 || *dim > 5) {
			return nil, Validation("%s must be between 1 and 5", name)
		}
	}

	ftype := req.Type
	if ftype == "" {
		ftype = models.FeedbackLearner
	}
	if !ftype.Valid() {
		return nil, Validation("invalid feedback_type: %q", ftype)
	}

	reviewerID := req.ReviewerID
	switch ftype {
	case models.FeedbackPeer:
		// A peer reviewer must be identified, and it is the caller.
		if reviewerID == nil {
			return nil, Validation("peer_review feedback requires reviewer_id")
		}
		if *reviewerID != caller.UserID {
			return nil, Unauthorized("peer review must carry the caller's reviewer_id")
		}
	case models.FeedbackLearner:
		if reviewerID != nil && *reviewerID != caller.UserID {
			return nil, Unauthorized("cannot submit learner feedback as another user")
		}
	}

	session, err := f.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, FeedbackOrphan(sessionID)
	}

	if ftype == models.FeedbackInstructor && !caller.IsAdmin() {
		if session.InterviewerID == nil || *session.InterviewerID != caller.UserID {
			return nil, Unauthorized("instructor feedback is limited to the assigned interviewer")
		}
	}

	feedback := &models.InterviewFeedback{
		ID:              uuid.New().String(),
		SessionID:       sessionID,
		ReviewerID:      reviewerID,
		BookingID:       req.BookingID,
		LearnerID:       req.LearnerID,
		Type:            ftype,
		Rating:          req.Rating,
		TechnicalSkills: req.TechnicalSkills,
		Communication:   req.Communication,
		ProblemSolving:  req.ProblemSolving,
		FeedbackText:    req.FeedbackText,
		Strengths:       req.Strengths,
		Improvements:    req.Improvements,
		Comments:        req.Comments,
		CreatedAt:       f.now().UTC(),
	}

	if err := f.repo.CreateFeedback(ctx, feedback); err != nil {
		return nil, fmt.Errorf("failed to create feedback: %w", err)
	}

	if f.cache != nil {
		if err := f.cache.InvalidateSession(ctx, sessionID); err != nil {
			f.logger.Warn("failed to invalidate summary cache", "session_id", sessionID, "error", err)
		}
	}

	f.logger.Info("feedback submitted",
		"feedback_id", feedback.ID,
		"session_id", sessionID,
		"feedback_type", feedback.Type)

	return feedback, nil
}

// GetSessionFeedback returns both feedback generations side by side:
// the legacy inline rating and the structured records.
func (f *Facade) GetSessionFeedback(ctx context.Context, caller models.Identity, sessionID string) (*models.SessionFeedbackView, error) {
	session, err := f.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, NotFound("session not found: %s", sessionID)
	}
	if !session.IsParticipant(caller.UserID) && !caller.IsAdmin() {
		return nil, Unauthorized("caller %s may not read feedback for session %s", caller.UserID, sessionID)
	}

	records, err := f.repo.ListSessionFeedback(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	if records == nil {
		records = []*models.InterviewFeedback{}
	}
	return &models.SessionFeedbackView{
		Legacy:  session.Legacy(),
		Records: records,
	}, nil
}

// GetSessionSummary computes (or serves from cache) the aggregate
// summary of a session's feedback
func (f *Facade) GetSessionSummary(ctx context.Context, caller models.Identity, sessionID string) (*models.SessionSummary, error) {
	session, err := f.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, NotFound("session not found: %s", sessionID)
	}
	if !session.IsParticipant(caller.UserID) && !caller.IsAdmin() {
		return nil, Unauthorized("caller %s may not read the summary of session %s", caller.UserID, sessionID)
	}

	if f.cache != nil {
		cached, err := f.cache.GetSessionSummary(ctx, sessionID)
		if err != nil {
			f.logger.Warn("summary cache read failed", "session_id", sessionID, "error", err)
		} else if cached != nil {
			return cached, nil
		}
	}

	records, err := f.repo.ListSessionFeedback(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	summary := SummarizeSession(sessionID, records)

	if f.cache != nil {
		if err := f.cache.SetSessionSummary(ctx, summary); err != nil {
			f.logger.Warn("summary cache write failed", "session_id", sessionID, "error", err)
		}
	}
	return summary, nil
}

// GetUserSummary aggregates feedback across all sessions where the user
// was the interviewee. Callers may read their own; admins anyone's.
func (f *Facade) GetUserSummary(ctx context.Context, caller models.Identity, userID string) (*models.UserSummary, error) {
	if caller.UserID != userID && !caller.IsAdmin() {
		return nil, Unauthorized("caller %s may not read user %s's feedback summary", caller.UserID, userID)
	}

	records, err := f.repo.ListIntervieweeFeedback(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return SummarizeUser(userID, records), nil
}

// RecordJoin logs a participant entering a session. Best-effort: a
// failed write is logged and swallowed so it never blocks the join.
func (f *Facade) RecordJoin(ctx context.Context, caller models.Identity, sessionID string) {
	entry := &models.SessionJoinLog{
		SessionID: sessionID,
		UserID:    caller.UserID,
		Role:      string(caller.Role),
		JoinedAt:  f.now().UTC(),
	}
	if err := f.repo.LogSessionJoin(ctx, entry); err != nil {
		f.logger.Warn("failed to log session join", "session_id", sessionID, "user_id", caller.UserID, "error", err)
	}
}
