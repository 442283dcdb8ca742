package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type QuestionKind string

const (
	KindMultipleChoice QuestionKind = "multiple_choice"
	KindFillBlank      QuestionKind = "fill_blank"
	KindEssay          QuestionKind = "essay"
	KindSpeaking       QuestionKind = "speaking"
)

// QuestionOption is one selectable choice of a multiple_choice question.
type QuestionOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

type Question struct {
	ID              uint                                `gorm:"primarykey" json:"id"`
	QuizID          uint                                `json:"quiz_id" gorm:"not null;index"`
	Kind            QuestionKind                        `json:"kind" gorm:"type:varchar(32);not null"`
	Prompt          string                              `json:"prompt" gorm:"type:text;not null"`
	OrderInQuiz     int                                 `json:"order_in_quiz" gorm:"not null"`
	Options         datatypes.JSONSlice[QuestionOption] `json:"options,omitempty"`
	CorrectOptionID *string                             `json:"-"` // answer key, never sent to learners
	CorrectText     *string                             `json:"-" gorm:"type:text"`
	CreatedAt       time.Time                           `json:"created_at"`
	UpdatedAt       time.Time                           `json:"updated_at"`
	DeletedAt       gorm.DeletedAt                      `gorm:"index" json:"-"`
}

// Reference projects the answer key used for grading.
func (q *Question) Reference() GradingReference {
	return GradingReference{
		QuestionID:      q.ID,
		Kind:            q.Kind,
		Prompt:          q.Prompt,
		CorrectOptionID: q.CorrectOptionID,
		CorrectText:     q.CorrectText,
	}
}
