package dto

import "time"

// QuestionResponseDTO is a question as shown to learners, without the answer key.
type QuestionResponseDTO struct {
	ID          uint                `json:"id"`
	QuizID      uint                `json:"quiz_id"`
	Kind        string              `json:"kind"`
	Prompt      string              `json:"prompt"`
	OrderInQuiz int                 `json:"order_in_quiz"`
	Options     []QuestionOptionDTO `json:"options,omitempty" copier:"-"`
}

// QuizResponseDTO is used for displaying full quiz details to users.
type QuizResponseDTO struct {
	ID          uint                  `json:"id"`
	Title       string                `json:"title"`
	Description string                `json:"description,omitempty"`
	Questions   []QuestionResponseDTO `json:"questions,omitempty" copier:"-"`
	CreatedAt   time.Time             `json:"created_at"`
}

// QuizSummaryDTO is used for listing quizzes available to users.
type QuizSummaryDTO struct {
	ID            uint      `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
}
