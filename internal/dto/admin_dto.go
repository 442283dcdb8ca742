package dto

// QuestionOptionDTO is one choice of a multiple_choice question.
type QuestionOptionDTO struct {
	ID   string `json:"id" binding:"required"`
	Text string `json:"text" binding:"required"`
}

// QuestionCreateDTO is used within QuizCreateDTO for admin quiz creation.
// CorrectOptionID is required for multiple_choice, CorrectText for fill_blank.
type QuestionCreateDTO struct {
	Kind            string              `json:"kind" binding:"required,oneof=multiple_choice fill_blank essay speaking"`
	Prompt          string              `json:"prompt" binding:"required"`
	OrderInQuiz     int                 `json:"order_in_quiz" binding:"required,min=1"`
	Options         []QuestionOptionDTO `json:"options" binding:"omitempty,dive"`
	CorrectOptionID *string             `json:"correct_option_id"`
	CorrectText     *string             `json:"correct_text"`
}

// QuizCreateDTO is for admin to create a new quiz with all its questions.
type QuizCreateDTO struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description,omitempty"`
	Questions   []QuestionCreateDTO `json:"questions" binding:"required,min=1,dive"`
}

// AdminQuestionResponseDTO includes the answer key.
type AdminQuestionResponseDTO struct {
	QuestionResponseDTO
	CorrectOptionID *string `json:"correct_option_id,omitempty"`
	CorrectText     *string `json:"correct_text,omitempty"`
}

type AdminQuizResponseDTO struct {
	ID          uint                       `json:"id"`
	Title       string                     `json:"title"`
	Description string                     `json:"description,omitempty"`
	Questions   []AdminQuestionResponseDTO `json:"questions" copier:"-"`
}
