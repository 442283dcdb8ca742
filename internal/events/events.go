package events

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	AttemptCompleted EventType = "attempt.completed"
	AttemptFailed    EventType = "attempt.failed"
)

const (
	eventSource  = "quizgrader"
	eventVersion = "1.0"
)

// AttemptEvent reports the terminal outcome of one submission.
type AttemptEvent struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	Source      string    `json:"source"`
	Version     string    `json:"version"`
	Timestamp   time.Time `json:"timestamp"`
	AttemptID   uint      `json:"attempt_id,omitempty"`
	UserID      uint      `json:"user_id"`
	QuizID      uint      `json:"quiz_id"`
	FinalScore  *float64  `json:"final_score,omitempty"`
	GradedCount int       `json:"graded_count"`
	Outcome     string    `json:"outcome"`
	Stage       string    `json:"stage,omitempty"`
}

func NewAttemptCompletedEvent(attemptID, userID, quizID uint, finalScore float64, gradedCount int) *AttemptEvent {
	ev := newAttemptEvent(AttemptCompleted, userID, quizID)
	ev.AttemptID = attemptID
	ev.FinalScore = &finalScore
	ev.GradedCount = gradedCount
	ev.Outcome = "completed"
	return ev
}

// NewAttemptFailedEvent carries the attempt id even though the row was rolled
// back, so consumers can correlate it with logs.
func NewAttemptFailedEvent(attemptID, userID, quizID uint, outcome, stage string) *AttemptEvent {
	ev := newAttemptEvent(AttemptFailed, userID, quizID)
	ev.AttemptID = attemptID
	ev.Outcome = outcome
	ev.Stage = stage
	return ev
}

func newAttemptEvent(t EventType, userID, quizID uint) *AttemptEvent {
	return &AttemptEvent{
		ID:        uuid.NewString(),
		Type:      t,
		Source:    eventSource,
		Version:   eventVersion,
		Timestamp: time.Now().UTC(),
		UserID:    userID,
		QuizID:    quizID,
	}
}
