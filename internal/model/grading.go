package model

// GradingReference is the answer key for one question, read once before
// grading starts and never mutated during a submission.
type GradingReference struct {
	QuestionID      uint
	Kind            QuestionKind
	Prompt          string
	CorrectOptionID *string
	CorrectText     *string
}

// AnswerSubmission is a caller-supplied answer. At most one of the answer
// fields is set, depending on the question kind.
type AnswerSubmission struct {
	QuestionID     uint
	OptionID       *string
	AnswerText     *string
	AnswerMediaRef *string
}
