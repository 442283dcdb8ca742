package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/jinzhu/copier"
	"github.com/lshigami/quizgrader/internal/cache"
	"github.com/lshigami/quizgrader/internal/dto"
	"github.com/lshigami/quizgrader/internal/model"
	"github.com/lshigami/quizgrader/internal/repository"
	"github.com/rs/zerolog/log"
)

// AttemptQueryService serves attempt history. Completed attempts are
// immutable and are cached after the first read.
type AttemptQueryService interface {
	GetAttemptDetails(ctx context.Context, attemptID uint) (*dto.AttemptDetailDTO, error)
	GetUserAttemptsForQuiz(ctx context.Context, quizID uint, userID *uint) ([]dto.AttemptSummaryDTO, error)
}

type attemptQueryService struct {
	attemptRepo repository.AttemptRepository
	cache       cache.AttemptCache
}

func NewAttemptQueryService(attemptRepo repository.AttemptRepository, attemptCache cache.AttemptCache) AttemptQueryService {
	return &attemptQueryService{attemptRepo: attemptRepo, cache: attemptCache}
}

func (s *attemptQueryService) GetAttemptDetails(ctx context.Context, attemptID uint) (*dto.AttemptDetailDTO, error) {
	var cached dto.AttemptDetailDTO
	hit, err := s.cache.Get(ctx, attemptID, &cached)
	if err != nil {
		log.Warn().Err(err).Uint("attemptID", attemptID).Msg("GetAttemptDetails: Cache read failed, falling back to database.")
	}
	if hit {
		return &cached, nil
	}

	attempt, err := s.attemptRepo.FindByIDWithDetails(ctx, attemptID)
	if err != nil {
		if repository.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: id %d", ErrAttemptNotFound, attemptID)
		}
		log.Error().Err(err).Uint("attemptID", attemptID).Msg("GetAttemptDetails: Failed to find attempt by ID.")
		return nil, fmt.Errorf("error fetching attempt %d: %w", attemptID, err)
	}

	sort.SliceStable(attempt.GradedAnswers, func(i, j int) bool {
		return attempt.GradedAnswers[i].Question.OrderInQuiz < attempt.GradedAnswers[j].Question.OrderInQuiz
	})

	resp, err := toAttemptDetailDTO(attempt)
	if err != nil {
		log.Error().Err(err).Msg("GetAttemptDetails: Failed to copy attempt model to DTO.")
		return nil, fmt.Errorf("error preparing response data: %w", err)
	}

	if attempt.Status == model.AttemptCompleted {
		if err := s.cache.Set(ctx, attemptID, resp); err != nil {
			log.Warn().Err(err).Uint("attemptID", attemptID).Msg("GetAttemptDetails: Failed to cache attempt details.")
		}
	}
	return resp, nil
}

func (s *attemptQueryService) GetUserAttemptsForQuiz(ctx context.Context, quizID uint, userID *uint) ([]dto.AttemptSummaryDTO, error) {
	attempts, err := s.attemptRepo.FindAllByQuizAndUser(ctx, quizID, userID)
	if err != nil {
		log.Error().Err(err).Uint("quizID", quizID).Interface("userID", userID).Msg("GetUserAttemptsForQuiz: Failed to find attempts from repository.")
		return nil, fmt.Errorf("error fetching attempts for quiz %d: %w", quizID, err)
	}

	dtos := make([]dto.AttemptSummaryDTO, 0, len(attempts))
	for i := range attempts {
		var summary dto.AttemptSummaryDTO
		if errCp := copier.Copy(&summary, &attempts[i]); errCp != nil {
			log.Error().Err(errCp).Uint("attemptID", attempts[i].ID).Msg("GetUserAttemptsForQuiz: Error copying attempt to summary DTO")
			continue
		}
		dtos = append(dtos, summary)
	}
	return dtos, nil
}
