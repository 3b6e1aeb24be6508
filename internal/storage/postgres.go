package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skillpath/interview-engine/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 25 // default
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	} else {
		poolConfig.MinConns = 5 // default
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresRepository{pool: pool}, nil
}

// Ping checks database connectivity
func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

const sessionColumns = `id, interviewee_id, interviewer_id, interview_type, difficulty, status,
		scheduled_at, started_at, ended_at, duration_min, communication_mode,
		recording_url, workspace_data, notes, feedback_rating, feedback_text,
		created_at, updated_at`

// CreateSession inserts a new interview session record
func (r *PostgresRepository) CreateSession(ctx context.Context, s *models.InterviewSession) error {
	query := `
		INSERT INTO interview_sessions (id, interviewee_id, interviewer_id, interview_type, difficulty, status,
			scheduled_at, duration_min, communication_mode, recording_url, workspace_data, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $13)
	`

	var difficulty sql.NullString
	if s.Difficulty != nil {
		difficulty = sql.NullString{String: string(*s.Difficulty), Valid: true}
	}

	_, err := r.pool.Exec(ctx, query,
		s.ID,
		s.IntervieweeID,
		nullStringPtr(s.InterviewerID),
		string(s.InterviewType),
		difficulty,
		string(s.Status),
		nullTime(s.ScheduledAt),
		s.DurationMin,
		nullString(s.CommunicationMode),
		nullString(s.RecordingURL),
		jsonOrNil(s.WorkspaceData),
		nullString(s.Notes),
		s.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetSession retrieves a session by ID
func (r *PostgresRepository) GetSession(ctx context.Context, id string) (*models.InterviewSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM interview_sessions WHERE id = $1`, sessionColumns)

	s, err := scanSession(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil // Not found
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return s, nil
}

// UpdateSessionFields applies a non-lifecycle field patch to a session
func (r *PostgresRepository) UpdateSessionFields(ctx context.Context, id string, patch SessionPatch) error {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}
	argNum := 2

	if patch.InterviewerID != nil {
		sets = append(sets, fmt.Sprintf("interviewer_id = $%d", argNum))
		args = append(args, *patch.InterviewerID)
		argNum++
	}
	if patch.RecordingURL != nil {
		sets = append(sets, fmt.Sprintf("recording_url = $%d", argNum))
		args = append(args, *patch.RecordingURL)
		argNum++
	}
	if patch.Notes != nil {
		sets = append(sets, fmt.Sprintf("notes = $%d", argNum))
		args = append(args, *patch.Notes)
		argNum++
	}
	if patch.WorkspaceData != nil {
		sets = append(sets, fmt.Sprintf("workspace_data = $%d", argNum))
		args = append(args, patch.WorkspaceData)
	}

	query := fmt.Sprintf(`UPDATE interview_sessions SET %s WHERE id = $1`, strings.Join(sets, ", "))

	result, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

// TransitionSession performs the conditional status update for a
// lifecycle change. started_at is kept once set; ended_at is written on
// first entry into a terminal state.
func (r *PostgresRepository) TransitionSession(ctx context.Context, id string, prev, next models.SessionStatus, at time.Time) (bool, error) {
	query := `
		UPDATE interview_sessions
		SET status = $3,
		    started_at = CASE WHEN $3 = 'in_progress' THEN COALESCE(started_at, $4) ELSE started_at END,
		    ended_at = CASE WHEN $3 IN ('completed', 'cancelled') THEN COALESCE(ended_at, $4) ELSE ended_at END,
		    updated_at = $4
		WHERE id = $1 AND status = $2
	`

	result, err := r.pool.Exec(ctx, query, id, string(prev), string(next), at)
	if err != nil {
		return false, fmt.Errorf("failed to transition session: %w", err)
	}

	return result.RowsAffected() > 0, nil
}

// ListSessions returns sessions matching filters, newest first
func (r *PostgresRepository) ListSessions(ctx context.Context, filters models.SessionFilters) ([]*models.InterviewSession, error) {
	query := fmt.Sprintf(`SELECT %s FROM interview_sessions WHERE 1=1`, sessionColumns)
	args := make([]interface{}, 0)
	argNum := 1

	if filters.UserID != "" {
		query += fmt.Sprintf(" AND (interviewee_id = $%d OR interviewer_id = $%d)", argNum, argNum)
		args = append(args, filters.UserID)
		argNum++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argNum)
		args = append(args, string(filters.Status))
		argNum++
	}

	query += " ORDER BY created_at DESC"

	if filters.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filters.Limit)
		argNum++
	}

	if filters.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filters.Offset)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.InterviewSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

// GetStaleScheduledSessions returns scheduled sessions whose scheduled
// time passed before the given cutoff without the session starting
func (r *PostgresRepository) GetStaleScheduledSessions(ctx context.Context, scheduledBefore time.Time) ([]*models.InterviewSession, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM interview_sessions
		WHERE status = 'scheduled'
		  AND scheduled_at IS NOT NULL
		  AND scheduled_at < $1
		ORDER BY scheduled_at ASC
	`, sessionColumns)

	rows, err := r.pool.Query(ctx, query, scheduledBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to get stale sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*models.InterviewSession
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}

const feedbackColumns = `id, session_id, reviewer_id, booking_id, learner_id, feedback_type,
		rating, technical_skills, communication, problem_solving,
		feedback_text, strengths, improvements, comments, created_at`

// CreateFeedback inserts a new feedback record
func (r *PostgresRepository) CreateFeedback(ctx context.Context, f *models.InterviewFeedback) error {
	query := `
		INSERT INTO interview_feedback (id, session_id, reviewer_id, booking_id, learner_id, feedback_type,
			rating, technical_skills, communication, problem_solving,
			feedback_text, strengths, improvements, comments, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.pool.Exec(ctx, query,
		f.ID,
		f.SessionID,
		nullStringPtr(f.ReviewerID),
		nullStringPtr(f.BookingID),
		nullStringPtr(f.LearnerID),
		string(f.Type),
		f.Rating,
		nullIntPtr(f.TechnicalSkills),
		nullIntPtr(f.Communication),
		nullIntPtr(f.ProblemSolving),
		nullString(f.FeedbackText),
		nullString(f.Strengths),
		nullString(f.Improvements),
		nullString(f.Comments),
		f.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create feedback: %w", err)
	}

	return nil
}

// GetFeedback retrieves a feedback record by ID
func (r *PostgresRepository) GetFeedback(ctx context.Context, id string) (*models.InterviewFeedback, error) {
	query := fmt.Sprintf(`SELECT %s FROM interview_feedback WHERE id = $1`, feedbackColumns)

	f, err := scanFeedback(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get feedback: %w", err)
	}

	return f, nil
}

// ListSessionFeedback returns all feedback rows for a session
func (r *PostgresRepository) ListSessionFeedback(ctx context.Context, sessionID string) ([]*models.InterviewFeedback, error) {
	query := fmt.Sprintf(`SELECT %s FROM interview_feedback WHERE session_id = $1 ORDER BY created_at ASC`, feedbackColumns)

	return r.listFeedback(ctx, query, sessionID)
}

// ListIntervieweeFeedback returns all feedback rows attached to sessions
// where the user was the interviewee
func (r *PostgresRepository) ListIntervieweeFeedback(ctx context.Context, userID string) ([]*models.InterviewFeedback, error) {
	query := `
		SELECT f.id, f.session_id, f.reviewer_id, f.booking_id, f.learner_id, f.feedback_type,
			f.rating, f.technical_skills, f.communication, f.problem_solving,
			f.feedback_text, f.strengths, f.improvements, f.comments, f.created_at
		FROM interview_feedback f
		JOIN interview_sessions s ON s.id = f.session_id
		WHERE s.interviewee_id = $1
		ORDER BY f.created_at ASC
	`

	return r.listFeedback(ctx, query, userID)
}

func (r *PostgresRepository) listFeedback(ctx context.Context, query string, arg interface{}) ([]*models.InterviewFeedback, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	defer rows.Close()

	var feedback []*models.InterviewFeedback
	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feedback: %w", err)
		}
		feedback = append(feedback, f)
	}

	return feedback, rows.Err()
}

// LogSessionJoin appends a join-log entry
func (r *PostgresRepository) LogSessionJoin(ctx context.Context, entry *models.SessionJoinLog) error {
	query := `
		INSERT INTO session_join_logs (session_id, user_id, user_role, joined_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, entry.SessionID, entry.UserID, entry.Role, entry.JoinedAt)
	if err != nil {
		return fmt.Errorf("failed to log session join: %w", err)
	}

	return nil
}

// --- Scanning helpers ---

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*models.InterviewSession, error) {
	var s models.InterviewSession
	var typeStr, statusStr string
	var interviewerID, difficulty, commMode, recordingURL, notes, feedbackText sql.NullString
	var scheduledAt, startedAt, endedAt sql.NullTime
	var feedbackRating sql.NullInt32
	var workspaceJSON []byte

	err := row.Scan(
		&s.ID,
		&s.IntervieweeID,
		&interviewerID,
		&typeStr,
		&difficulty,
		&statusStr,
		&scheduledAt,
		&startedAt,
		&endedAt,
		&s.DurationMin,
		&commMode,
		&recordingURL,
		&workspaceJSON,
		&notes,
		&feedbackRating,
		&feedbackText,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.InterviewType = models.InterviewType(typeStr)
	s.Status = models.SessionStatus(statusStr)
	s.CommunicationMode = commMode.String
	s.RecordingURL = recordingURL.String
	s.Notes = notes.String
	s.LegacyFeedbackText = feedbackText.String
	s.WorkspaceData = workspaceJSON

	if interviewerID.Valid {
		s.InterviewerID = &interviewerID.String
	}
	if difficulty.Valid {
		d := models.Difficulty(difficulty.String)
		s.Difficulty = &d
	}
	if scheduledAt.Valid {
		s.ScheduledAt = &scheduledAt.Time
	}
	if startedAt.Valid {
		s.StartedAt = &startedAt.Time
	}
	if endedAt.Valid {
		s.EndedAt = &endedAt.Time
	}
	if feedbackRating.Valid {
		v := int(feedbackRating.Int32)
		s.LegacyFeedbackRating = &v
	}

	return &s, nil
}

func scanFeedback(row rowScanner) (*models.InterviewFeedback, error) {
	var f models.InterviewFeedback
	var typeStr string
	var reviewerID, bookingID, learnerID sql.NullString
	var technical, communication, problemSolving sql.NullInt32
	var feedbackText, strengths, improvements, comments sql.NullString

	err := row.Scan(
		&f.ID,
		&f.SessionID,
		&reviewerID,
		&bookingID,
		&learnerID,
		&typeStr,
		&f.Rating,
		&technical,
		&communication,
		&problemSolving,
		&feedbackText,
		&strengths,
		&improvements,
		&comments,
		&f.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	f.Type = models.FeedbackType(typeStr)
	f.FeedbackText = feedbackText.String
	f.Strengths = strengths.String
	f.Improvements = improvements.String
	f.Comments = comments.String

	if reviewerID.Valid {
		f.ReviewerID = &reviewerID.String
	}
	if bookingID.Valid {
		f.BookingID = &bookingID.String
	}
	if learnerID.Valid {
		f.LearnerID = &learnerID.String
	}
	if technical.Valid {
		v := int(technical.Int32)
		f.TechnicalSkills = &v
	}
	if communication.Valid {
		v := int(communication.Int32)
		f.Communication = &v
	}
	if problemSolving.Valid {
		v := int(problemSolving.Int32)
		f.ProblemSolving = &v
	}

	return &f, nil
}

// Helper functions for nullable values

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullIntPtr(v *int) sql.NullInt32 {
	if v == nil {
		return sql.NullInt32{}
	}
	return sql.NullInt32{Int32: int32(*v), Valid: true}
}

func jsonOrNil(b []byte) interface{} {
	if len(b) == 0 {
		return nil
	}
	return b
}
