package model

import (
	"time"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptCompleted  AttemptStatus = "completed"
)

// Attempt is one user's run of one quiz. It is inserted in_progress and moves
// to completed exactly once, inside the same transaction.
type Attempt struct {
	ID            uint           `gorm:"primarykey" json:"id"`
	UserID        uint           `json:"user_id" gorm:"not null;index:idx_attempt_user_quiz"`
	QuizID        uint           `json:"quiz_id" gorm:"not null;index:idx_attempt_user_quiz"`
	Quiz          Quiz           `json:"quiz,omitempty" gorm:"foreignKey:QuizID"`
	Status        AttemptStatus  `json:"status" gorm:"type:varchar(16);not null;default:'in_progress'"`
	StartTime     time.Time      `json:"start_time" gorm:"not null"`
	EndTime       *time.Time     `json:"end_time,omitempty"`
	FinalScore    *float64       `json:"final_score,omitempty"`
	GradedAnswers []GradedAnswer `json:"graded_answers,omitempty" gorm:"foreignKey:AttemptID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
}
