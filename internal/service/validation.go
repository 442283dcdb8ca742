package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lshigami/quizgrader/internal/model"
)

// SubmitAttemptInput is the inbound submitAttempt call.
type SubmitAttemptInput struct {
	UserID      uint                     `validate:"required"`
	QuizID      uint                     `validate:"required"`
	Submissions []model.AnswerSubmission `validate:"required,min=1,unique=QuestionID,dive"`
}

// SubmissionValidator rejects malformed submissions before any resource is touched.
type SubmissionValidator struct {
	validate *validator.Validate
}

func NewSubmissionValidator() *SubmissionValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateAnswerSubmission, model.AnswerSubmission{})
	return &SubmissionValidator{validate: v}
}

func (v *SubmissionValidator) Validate(in SubmitAttemptInput) error {
	err := v.validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func validateAnswerSubmission(sl validator.StructLevel) {
	sub := sl.Current().Interface().(model.AnswerSubmission)
	if sub.QuestionID == 0 {
		sl.ReportError(sub.QuestionID, "QuestionID", "QuestionID", "required", "")
	}
	set := 0
	for _, f := range []*string{sub.OptionID, sub.AnswerText, sub.AnswerMediaRef} {
		if f != nil {
			set++
		}
	}
	if set > 1 {
		sl.ReportError(sub, "Answer", "Answer", "single_answer", "")
	}
}
