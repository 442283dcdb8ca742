package service

import (
	"errors"
	"fmt"
)

// Submission error kinds. Every failed SubmitAttempt returns a
// *SubmissionError that matches exactly one of these with errors.Is.
var (
	ErrInvalidSubmission    = errors.New("invalid submission")
	ErrResourceTimeout      = errors.New("resource timeout")
	ErrReferenceUnavailable = errors.New("grading reference unavailable")
	ErrGradingFailed        = errors.New("grading failed")
	ErrPersistFailed        = errors.New("persisting attempt failed")

	ErrQuizNotFound    = errors.New("quiz not found")
	ErrAttemptNotFound = errors.New("attempt not found")
)

// Stage names where a submission can stop.
type Stage string

const (
	StageValidate   Stage = "validate"
	StageAcquire    Stage = "acquire"
	StageCreate     Stage = "create_attempt"
	StageReferences Stage = "load_references"
	StageGrading    Stage = "grading"
	StagePersist    Stage = "persist"
	StageCommit     Stage = "commit"
)

type SubmissionError struct {
	Stage     Stage
	Kind      error
	AttemptID uint // zero when no attempt row was inserted
	Err       error
}

func (e *SubmissionError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("submit attempt (%s): %v", e.Stage, e.Kind)
	}
	return fmt.Sprintf("submit attempt (%s): %v: %v", e.Stage, e.Kind, e.Err)
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *SubmissionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newSubmissionError(stage Stage, kind error, attemptID uint, err error) *SubmissionError {
	return &SubmissionError{Stage: stage, Kind: kind, AttemptID: attemptID, Err: err}
}

// outcomeLabel names the terminal outcome for metrics and events.
func outcomeLabel(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, ErrInvalidSubmission):
		return "invalid_submission"
	case errors.Is(err, ErrResourceTimeout):
		return "resource_timeout"
	case errors.Is(err, ErrReferenceUnavailable):
		return "reference_unavailable"
	case errors.Is(err, ErrGradingFailed):
		return "grading_failed"
	case errors.Is(err, ErrPersistFailed):
		return "persist_failed"
	default:
		return "internal"
	}
}
