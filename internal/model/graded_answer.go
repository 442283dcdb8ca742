package model

import (
	"time"
)

type GradedAnswer struct {
	ID             uint      `gorm:"primarykey" json:"id"`
	AttemptID      uint      `json:"attempt_id" gorm:"not null;index"`
	QuestionID     uint      `json:"question_id" gorm:"not null;index"`
	Question       Question  `json:"question,omitempty" gorm:"foreignKey:QuestionID"`
	OptionID       *string   `json:"option_id,omitempty"`
	AnswerText     *string   `json:"answer_text,omitempty" gorm:"type:text"`
	AnswerMediaRef *string   `json:"answer_media_ref,omitempty" gorm:"type:text"`
	IsCorrect      *bool     `json:"is_correct,omitempty"`
	AIScore        float64   `json:"ai_score" gorm:"not null;default:0"`
	AIFeedback     *string   `json:"ai_feedback,omitempty" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
}
