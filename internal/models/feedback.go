package models

import (
	"time"
)

// FeedbackType tags who produced a feedback record
type FeedbackType string

const (
	FeedbackLearner    FeedbackType = "learner_feedback"  // self-report by the interviewee
	FeedbackInstructor FeedbackType = "instructor_system" // instructor or system generated
	FeedbackPeer       FeedbackType = "peer_review"       // another learner
)

// Valid returns true for a known feedback type
func (t FeedbackType) Valid() bool {
	switch t {
	case FeedbackLearner, FeedbackInstructor, FeedbackPeer:
		return true
	}
	return false
}

// InterviewFeedback is a rating plus narrative commentary attached to a
// session. Rows are append-only; booking_id and learner_id are legacy
// linkage columns kept nullable for feedback not tied to a booking.
type InterviewFeedback struct {
	ID         string       `json:"id"`
	SessionID  string       `json:"session_id"`
	ReviewerID *string      `json:"reviewer_id,omitempty"`
	BookingID  *string      `json:"booking_id,omitempty"`
	LearnerID  *string      `json:"learner_id,omitempty"`
	Type       FeedbackType `json:"feedback_type"`

	Rating          int  `json:"rating"`
	TechnicalSkills *int `json:"technical_skills,omitempty"`
	Communication   *int `json:"communication,omitempty"`
	ProblemSolving  *int `json:"problem_solving,omitempty"`

	FeedbackText string `json:"feedback_text,omitempty"`
	Strengths    string `json:"strengths,omitempty"`
	Improvements string `json:"improvements,omitempty"`
	Comments     string `json:"comments,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// CreateFeedbackRequest represents a feedback submission
type CreateFeedbackRequest struct {
	ReviewerID *string      `json:"reviewer_id,omitempty"`
	BookingID  *string      `json:"booking_id,omitempty"`
	LearnerID  *string      `json:"learner_id,omitempty"`
	Type       FeedbackType `json:"feedback_type,omitempty"`

	Rating          int  `json:"rating"`
	TechnicalSkills *int `json:"technical_skills,omitempty"`
	Communication   *int `json:"communication,omitempty"`
	ProblemSolving  *int `json:"problem_solving,omitempty"`

	FeedbackText string `json:"feedback_text,omitempty"`
	Strengths    string `json:"strengths,omitempty"`
	Improvements string `json:"improvements,omitempty"`
	Comments     string `json:"comments,omitempty"`
}

// SessionFeedbackView separates the two feedback generations instead of
// merging them: the legacy inline rating and the structured records.
type SessionFeedbackView struct {
	Legacy  *LegacyFeedback      `json:"legacy,omitempty"`
	Records []*InterviewFeedback `json:"records"`
}

// DimensionMeans holds per-dimension averages, each computed only over
// rows where the dimension is present. Nil means no contributing rows.
type DimensionMeans struct {
	TechnicalSkills *float64 `json:"technical_skills,omitempty"`
	Communication   *float64 `json:"communication,omitempty"`
	ProblemSolving  *float64 `json:"problem_solving,omitempty"`
}

// SessionSummary aggregates the feedback rows of one session
type SessionSummary struct {
	SessionID  string               `json:"session_id"`
	Count      int                  `json:"count"`
	MeanRating *float64             `json:"mean_rating,omitempty"`
	Dimensions DimensionMeans       `json:"dimensions"`
	Records    []*InterviewFeedback `json:"records"`
}

// TypeSummary aggregates rows of one feedback type for a user
type TypeSummary struct {
	Count      int            `json:"count"`
	MeanRating *float64       `json:"mean_rating,omitempty"`
	Dimensions DimensionMeans `json:"dimensions"`
}

// UserSummary aggregates feedback across all sessions where the user was
// the interviewee, grouped by feedback type to keep self-reports apart
// from instructor and peer assessments.
type UserSummary struct {
	UserID string                        `json:"user_id"`
	Count  int                           `json:"count"`
	ByType map[FeedbackType]*TypeSummary `json:"by_type"`
}
