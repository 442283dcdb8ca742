package service

import (
	"github.com/jinzhu/copier"
	"github.com/lshigami/quizgrader/internal/dto"
	"github.com/lshigami/quizgrader/internal/model"
)

func toOptionDTOs(opts []model.QuestionOption) []dto.QuestionOptionDTO {
	if len(opts) == 0 {
		return nil
	}
	out := make([]dto.QuestionOptionDTO, len(opts))
	for i, o := range opts {
		out[i] = dto.QuestionOptionDTO{ID: o.ID, Text: o.Text}
	}
	return out
}

// toQuestionDTO never carries the answer key.
func toQuestionDTO(q *model.Question) dto.QuestionResponseDTO {
	return dto.QuestionResponseDTO{
		ID:          q.ID,
		QuizID:      q.QuizID,
		Kind:        string(q.Kind),
		Prompt:      q.Prompt,
		OrderInQuiz: q.OrderInQuiz,
		Options:     toOptionDTOs(q.Options),
	}
}

func toAdminQuestionDTO(q *model.Question) dto.AdminQuestionResponseDTO {
	return dto.AdminQuestionResponseDTO{
		QuestionResponseDTO: toQuestionDTO(q),
		CorrectOptionID:     q.CorrectOptionID,
		CorrectText:         q.CorrectText,
	}
}

func toQuizDTO(quiz *model.Quiz) (*dto.QuizResponseDTO, error) {
	var resp dto.QuizResponseDTO
	if err := copier.Copy(&resp, quiz); err != nil {
		return nil, err
	}
	resp.Questions = make([]dto.QuestionResponseDTO, len(quiz.Questions))
	for i := range quiz.Questions {
		resp.Questions[i] = toQuestionDTO(&quiz.Questions[i])
	}
	return &resp, nil
}

func toAttemptDetailDTO(attempt *model.Attempt) (*dto.AttemptDetailDTO, error) {
	var resp dto.AttemptDetailDTO
	if err := copier.Copy(&resp, attempt); err != nil {
		return nil, err
	}
	resp.QuizTitle = attempt.Quiz.Title

	resp.Answers = make([]dto.GradedAnswerResponseDTO, len(attempt.GradedAnswers))
	for i := range attempt.GradedAnswers {
		ans := &attempt.GradedAnswers[i]
		var ansDTO dto.GradedAnswerResponseDTO
		if err := copier.Copy(&ansDTO, ans); err != nil {
			return nil, err
		}
		if ans.Question.ID != 0 {
			ansDTO.Question = toQuestionDTO(&ans.Question)
		}
		resp.Answers[i] = ansDTO
	}
	return &resp, nil
}
