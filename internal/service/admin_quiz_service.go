package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lshigami/quizgrader/internal/dto"
	"github.com/lshigami/quizgrader/internal/model"
	"github.com/lshigami/quizgrader/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

var (
	ErrInvalidQuiz    = errors.New("invalid quiz")
	ErrQuizTitleTaken = errors.New("a quiz with this title already exists")
)

type AdminQuizService interface {
	CreateQuiz(ctx context.Context, req dto.QuizCreateDTO) (*dto.AdminQuizResponseDTO, error)
}

type adminQuizService struct {
	quizRepo repository.QuizRepository
}

func NewAdminQuizService(quizRepo repository.QuizRepository) AdminQuizService {
	return &adminQuizService{quizRepo: quizRepo}
}

func (s *adminQuizService) CreateQuiz(ctx context.Context, req dto.QuizCreateDTO) (*dto.AdminQuizResponseDTO, error) {
	if len(req.Questions) == 0 {
		return nil, fmt.Errorf("%w: a quiz needs at least one question", ErrInvalidQuiz)
	}

	orderMap := make(map[int]bool)
	questions := make([]model.Question, 0, len(req.Questions))
	for _, qDto := range req.Questions {
		if orderMap[qDto.OrderInQuiz] {
			return nil, fmt.Errorf("%w: duplicate order_in_quiz %d", ErrInvalidQuiz, qDto.OrderInQuiz)
		}
		orderMap[qDto.OrderInQuiz] = true

		q, err := buildQuestion(qDto)
		if err != nil {
			return nil, err
		}
		questions = append(questions, q)
	}

	quiz := model.Quiz{
		Title:       req.Title,
		Description: req.Description,
		Questions:   questions,
	}
	if err := s.quizRepo.Create(ctx, &quiz); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %q", ErrQuizTitleTaken, req.Title)
		}
		log.Error().Err(err).Msg("Failed to create quiz in database")
		return nil, fmt.Errorf("database error creating quiz: %w", err)
	}
	log.Info().Uint("quizID", quiz.ID).Int("questions", len(quiz.Questions)).Msg("Quiz created")

	resp := &dto.AdminQuizResponseDTO{
		ID:          quiz.ID,
		Title:       quiz.Title,
		Description: quiz.Description,
		Questions:   make([]dto.AdminQuestionResponseDTO, len(quiz.Questions)),
	}
	for i := range quiz.Questions {
		resp.Questions[i] = toAdminQuestionDTO(&quiz.Questions[i])
	}
	return resp, nil
}

// buildQuestion checks that the answer key matches the question kind.
func buildQuestion(qDto dto.QuestionCreateDTO) (model.Question, error) {
	q := model.Question{
		Kind:        model.QuestionKind(qDto.Kind),
		Prompt:      qDto.Prompt,
		OrderInQuiz: qDto.OrderInQuiz,
	}

	switch q.Kind {
	case model.KindMultipleChoice:
		if len(qDto.Options) < 2 {
			return q, fmt.Errorf("%w: question %d needs at least two options", ErrInvalidQuiz, qDto.OrderInQuiz)
		}
		if qDto.CorrectOptionID == nil {
			return q, fmt.Errorf("%w: question %d needs correct_option_id", ErrInvalidQuiz, qDto.OrderInQuiz)
		}
		seen := make(map[string]bool, len(qDto.Options))
		for _, o := range qDto.Options {
			if seen[o.ID] {
				return q, fmt.Errorf("%w: question %d has duplicate option id %q", ErrInvalidQuiz, qDto.OrderInQuiz, o.ID)
			}
			seen[o.ID] = true
			q.Options = append(q.Options, model.QuestionOption{ID: o.ID, Text: o.Text})
		}
		if !seen[*qDto.CorrectOptionID] {
			return q, fmt.Errorf("%w: question %d correct_option_id %q is not one of its options", ErrInvalidQuiz, qDto.OrderInQuiz, *qDto.CorrectOptionID)
		}
		q.CorrectOptionID = qDto.CorrectOptionID
	case model.KindFillBlank:
		if qDto.CorrectText == nil || strings.TrimSpace(*qDto.CorrectText) == "" {
			return q, fmt.Errorf("%w: question %d needs correct_text", ErrInvalidQuiz, qDto.OrderInQuiz)
		}
		q.CorrectText = qDto.CorrectText
	case model.KindEssay, model.KindSpeaking:
		if qDto.CorrectOptionID != nil || qDto.CorrectText != nil {
			return q, fmt.Errorf("%w: question %d of kind %s takes no answer key", ErrInvalidQuiz, qDto.OrderInQuiz, q.Kind)
		}
	default:
		return q, fmt.Errorf("%w: unknown question kind %q", ErrInvalidQuiz, qDto.Kind)
	}
	return q, nil
}
