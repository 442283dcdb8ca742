package dto

import "time"

// AnswerSubmitDTO carries at most one of option_id, answer_text or
// answer_media_ref, depending on the question kind.
type AnswerSubmitDTO struct {
	QuestionID     uint    `json:"question_id" binding:"required"`
	OptionID       *string `json:"option_id,omitempty"`
	AnswerText     *string `json:"answer_text,omitempty"`
	AnswerMediaRef *string `json:"answer_media_ref,omitempty"`
}

// AttemptSubmitDTO is the request DTO for a user submitting all answers for a quiz.
type AttemptSubmitDTO struct {
	UserID  uint              `json:"user_id" binding:"required"` // Temporary, until auth provides it
	Answers []AnswerSubmitDTO `json:"answers" binding:"required"`
}

type AttemptResultDTO struct {
	AttemptID   uint    `json:"attempt_id"`
	FinalScore  float64 `json:"final_score"`
	GradedCount int     `json:"graded_count"`
}

type GradedAnswerResponseDTO struct {
	ID             uint                `json:"id"`
	QuestionID     uint                `json:"question_id"`
	Question       QuestionResponseDTO `json:"question" copier:"-"`
	OptionID       *string             `json:"option_id,omitempty"`
	AnswerText     *string             `json:"answer_text,omitempty"`
	AnswerMediaRef *string             `json:"answer_media_ref,omitempty"`
	IsCorrect      *bool               `json:"is_correct,omitempty"`
	AIScore        float64             `json:"ai_score"`
	AIFeedback     *string             `json:"ai_feedback,omitempty"`
}

// AttemptDetailDTO is the full view of one attempt with its graded answers.
type AttemptDetailDTO struct {
	ID         uint                      `json:"id"`
	UserID     uint                      `json:"user_id"`
	QuizID     uint                      `json:"quiz_id"`
	QuizTitle  string                    `json:"quiz_title"`
	Status     string                    `json:"status"`
	StartTime  time.Time                 `json:"start_time"`
	EndTime    *time.Time                `json:"end_time,omitempty"`
	FinalScore *float64                  `json:"final_score,omitempty"`
	Answers    []GradedAnswerResponseDTO `json:"answers" copier:"-"`
}

type AttemptSummaryDTO struct {
	ID         uint       `json:"id"`
	UserID     uint       `json:"user_id"`
	QuizID     uint       `json:"quiz_id"`
	Status     string     `json:"status"`
	StartTime  time.Time  `json:"start_time"`
	EndTime    *time.Time `json:"end_time,omitempty"`
	FinalScore *float64   `json:"final_score,omitempty"`
}
