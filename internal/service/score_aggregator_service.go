package service

import (
	"math"
	"sort"

	"github.com/lshigami/quizgrader/internal/model"
)

const MaxAnswerScore float64 = 100.0

type ScoreAggregatorService interface {
	FinalScore(answers []model.GradedAnswer) float64
}

type scoreAggregatorServiceImpl struct{}

func NewScoreAggregatorService() ScoreAggregatorService {
	return &scoreAggregatorServiceImpl{}
}

// FinalScore is the mean AIScore of the given answers, rounded to two
// decimals, or 0 for an empty set. Scores are summed in sorted order so the
// result does not depend on the order grading finished in.
func (s *scoreAggregatorServiceImpl) FinalScore(answers []model.GradedAnswer) float64 {
	if len(answers) == 0 {
		return 0
	}

	scores := make([]float64, len(answers))
	for i, a := range answers {
		scores[i] = a.AIScore
	}
	sort.Float64s(scores)

	total := 0.0
	for _, sc := range scores {
		total += sc
	}
	mean := total / float64(len(scores))

	if mean > MaxAnswerScore {
		mean = MaxAnswerScore
	}
	if mean < 0 {
		mean = 0
	}
	return math.Round(mean*100) / 100
}
