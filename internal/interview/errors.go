package interview

import (
	"errors"
	"fmt"

	"github.com/skillpath/interview-engine/internal/models"
)

// Kind classifies a core error for the API layer
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindInvalidTransition Kind = "invalid_transition"
	KindUnauthorized      Kind = "unauthorized"
	KindValidation        Kind = "validation_error"
	KindFeedbackOrphan    Kind = "feedback_orphan"
)

// Error is the typed error returned by the core. Store failures are
// wrapped with %w instead and carry no Kind.
type Error struct {
	Kind    Kind
	Message string

	// Populated for KindInvalidTransition
	From models.SessionStatus
	To   models.SessionStatus
}

func (e *Error) Error() string {
	if e.Kind == KindInvalidTransition && e.From != "" {
		return fmt.Sprintf("%s: %s (from %q to %q)", e.Kind, e.Message, e.From, e.To)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NotFound reports a missing session or feedback record
func NotFound(format string, args ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

// InvalidTransition reports a lifecycle change not permitted from the
// current state
func InvalidTransition(from, to models.SessionStatus) *Error {
	msg := "transition not permitted"
	if from.IsTerminal() {
		msg = "session is terminal"
	}
	return &Error{Kind: KindInvalidTransition, Message: msg, From: from, To: to}
}

// Unauthorized reports a caller lacking the required relationship
func Unauthorized(format string, args ...interface{}) *Error {
	return &Error{Kind: KindUnauthorized, Message: fmt.Sprintf(format, args...)}
}

// Validation reports a bad field in a request
func Validation(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// FeedbackOrphan reports feedback referencing a nonexistent session
func FeedbackOrphan(sessionID string) *Error {
	return &Error{Kind: KindFeedbackOrphan, Message: fmt.Sprintf("session not found: %s", sessionID)}
}

// KindOf returns the Kind of a core error, or "" for other errors
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is a core error of the given kind
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
