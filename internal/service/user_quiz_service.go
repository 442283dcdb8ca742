package service

import (
	"context"
	"fmt"

	"github.com/lshigami/quizgrader/internal/dto"
	"github.com/lshigami/quizgrader/internal/repository"
	"github.com/rs/zerolog/log"
)

type UserQuizService interface {
	GetAllQuizzes(ctx context.Context) ([]dto.QuizSummaryDTO, error)
	GetQuizDetails(ctx context.Context, quizID uint) (*dto.QuizResponseDTO, error)
}

type userQuizService struct {
	quizRepo repository.QuizRepository
}

func NewUserQuizService(quizRepo repository.QuizRepository) UserQuizService {
	return &userQuizService{quizRepo: quizRepo}
}

func (s *userQuizService) GetAllQuizzes(ctx context.Context) ([]dto.QuizSummaryDTO, error) {
	quizzes, err := s.quizRepo.FindAllWithQuestionCount(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to get all quizzes with question count from repository")
		return nil, fmt.Errorf("error fetching quizzes: %w", err)
	}

	dtos := make([]dto.QuizSummaryDTO, 0, len(quizzes))
	for _, qwc := range quizzes {
		dtos = append(dtos, dto.QuizSummaryDTO{
			ID:            qwc.Quiz.ID,
			Title:         qwc.Quiz.Title,
			Description:   qwc.Quiz.Description,
			QuestionCount: qwc.QuestionCount,
			CreatedAt:     qwc.Quiz.CreatedAt,
		})
	}
	return dtos, nil
}

func (s *userQuizService) GetQuizDetails(ctx context.Context, quizID uint) (*dto.QuizResponseDTO, error) {
	quiz, err := s.quizRepo.FindByIDWithQuestions(ctx, quizID)
	if err != nil {
		if repository.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: id %d", ErrQuizNotFound, quizID)
		}
		log.Error().Err(err).Uint("quizID", quizID).Msg("Failed to get quiz details from repository")
		return nil, fmt.Errorf("error fetching quiz %d: %w", quizID, err)
	}

	resp, err := toQuizDTO(quiz)
	if err != nil {
		log.Error().Err(err).Msg("Failed to copy Quiz model to QuizResponseDTO")
		return nil, fmt.Errorf("error preparing quiz details response: %w", err)
	}
	return resp, nil
}
