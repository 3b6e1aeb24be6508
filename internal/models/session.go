package models

import (
	"encoding/json"
	"time"
)

// SessionStatus represents the current state of an interview session
type SessionStatus string

const (
	StatusScheduled  SessionStatus = "scheduled"   // Created, waiting for the agreed time
	StatusInProgress SessionStatus = "in_progress" // Interview running
	StatusCompleted  SessionStatus = "completed"   // Finished normally
	StatusCancelled  SessionStatus = "cancelled"   // Called off before or during
)

// IsTerminal returns true if the status is a final state
func (s SessionStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Valid returns true for a known session status
func (s SessionStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// InterviewType classifies the kind of mock interview
type InterviewType string

const (
	TypeCoding       InterviewType = "coding"
	TypeSystemDesign InterviewType = "system_design"
	TypeBehavioral   InterviewType = "behavioral"
)

// Valid returns true for a known interview type
func (t InterviewType) Valid() bool {
	switch t {
	case TypeCoding, TypeSystemDesign, TypeBehavioral:
		return true
	}
	return false
}

// Difficulty grades a session
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid returns true for a known difficulty
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// ValidCommunicationMode returns true for a known communication mode.
// The empty string is allowed; the mode is optional.
func ValidCommunicationMode(m string) bool {
	switch m {
	case "", "video", "audio", "text":
		return true
	}
	return false
}

// InterviewSession represents one scheduled or executed mock interview.
// The interviewer is optional; unassigned sessions wait for the matcher.
type InterviewSession struct {
	ID                string          `json:"id"`
	IntervieweeID     string          `json:"interviewee_id"`
	InterviewerID     *string         `json:"interviewer_id,omitempty"`
	InterviewType     InterviewType   `json:"interview_type"`
	Difficulty        *Difficulty     `json:"difficulty,omitempty"`
	Status            SessionStatus   `json:"status"`
	ScheduledAt       *time.Time      `json:"scheduled_at,omitempty"`
	StartedAt         *time.Time      `json:"started_at,omitempty"`
	EndedAt           *time.Time      `json:"ended_at,omitempty"`
	DurationMin       int             `json:"duration_min"`
	CommunicationMode string          `json:"communication_mode,omitempty"`
	RecordingURL      string          `json:"recording_url,omitempty"`
	WorkspaceData     json.RawMessage `json:"workspace_data,omitempty"`
	Notes             string          `json:"notes,omitempty"`

	// Legacy inline feedback, predating the feedback table. Read-only
	// compatibility data; new feedback goes through InterviewFeedback.
	LegacyFeedbackRating *int   `json:"feedback_rating,omitempty"`
	LegacyFeedbackText   string `json:"feedback_text,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsParticipant returns true if the user is the interviewee or the
// assigned interviewer.
func (s *InterviewSession) IsParticipant(userID string) bool {
	if s.IntervieweeID == userID {
		return true
	}
	return s.InterviewerID != nil && *s.InterviewerID == userID
}

// LegacyFeedback is the embedded single-value feedback generation,
// kept distinct from structured feedback records.
type LegacyFeedback struct {
	Rating int    `json:"rating"`
	Text   string `json:"text,omitempty"`
}

// Legacy returns the inline feedback branch, or nil when the session
// carries no embedded rating.
func (s *InterviewSession) Legacy() *LegacyFeedback {
	if s.LegacyFeedbackRating == nil {
		return nil
	}
	return &LegacyFeedback{Rating: *s.LegacyFeedbackRating, Text: s.LegacyFeedbackText}
}

// CreateSessionRequest represents a request to create a session
type CreateSessionRequest struct {
	InterviewerID     *string         `json:"interviewer_id,omitempty"`
	InterviewType     InterviewType   `json:"interview_type"`
	Difficulty        *Difficulty     `json:"difficulty,omitempty"`
	ScheduledAt       *time.Time      `json:"scheduled_at,omitempty"`
	DurationMin       int             `json:"duration_min,omitempty"`
	CommunicationMode string          `json:"communication_mode,omitempty"`
	WorkspaceData     json.RawMessage `json:"workspace_data,omitempty"`
}

// UpdateSessionRequest carries the mutable non-lifecycle fields.
// Nil pointers mean "leave unchanged".
type UpdateSessionRequest struct {
	RecordingURL  *string         `json:"recording_url,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	WorkspaceData json.RawMessage `json:"workspace_data,omitempty"`
}

// TransitionRequest asks for a lifecycle change
type TransitionRequest struct {
	Status SessionStatus `json:"status"`
}

// AssignRequest attaches an interviewer to an unassigned session
type AssignRequest struct {
	InterviewerID string `json:"interviewer_id"`
}

// SessionFilters defines filters for listing sessions
type SessionFilters struct {
	UserID string
	Status SessionStatus
	Limit  int
	Offset int
}

// SessionJoinLog records a participant entering a session. Writes are
// best-effort and never block the primary operation.
type SessionJoinLog struct {
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
}
