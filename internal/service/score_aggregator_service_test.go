package service

import (
	"math/rand"
	"testing"

	"github.com/lshigami/quizgrader/internal/model"
	"github.com/stretchr/testify/assert"
)

func answersWithScores(scores ...float64) []model.GradedAnswer {
	answers := make([]model.GradedAnswer, len(scores))
	for i, s := range scores {
		answers[i] = model.GradedAnswer{AIScore: s}
	}
	return answers
}

func TestFinalScore(t *testing.T) {
	agg := NewScoreAggregatorService()

	tests := []struct {
		name   string
		scores []float64
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []float64{87.5}, 87.5},
		{"half correct", []float64{100, 0}, 50},
		{"rounds to two decimals", []float64{100, 0, 0}, 33.33},
		{"rounds up", []float64{100, 100, 0}, 66.67},
		{"all zero", []float64{0, 0, 0, 0}, 0},
		{"all full", []float64{100, 100}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, agg.FinalScore(answersWithScores(tt.scores...)), 0.0001)
		})
	}
}

func TestFinalScore_OrderIndependent(t *testing.T) {
	agg := NewScoreAggregatorService()
	scores := []float64{0.1, 0.2, 0.3, 99.99, 33.333, 12.345, 87.65, 45.5, 1e-9, 64.0}
	want := agg.FinalScore(answersWithScores(scores...))

	r := rand.New(rand.NewSource(42))
	for i := 0; i < 50; i++ {
		shuffled := append([]float64(nil), scores...)
		r.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, agg.FinalScore(answersWithScores(shuffled...)))
	}
}
