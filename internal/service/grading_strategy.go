package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/lshigami/quizgrader/internal/metrics"
	"github.com/lshigami/quizgrader/internal/model"
	"golang.org/x/text/cases"
)

// NoSubmissionFeedback marks an AI-graded answer that was left empty.
const NoSubmissionFeedback = "No answer submitted."

const (
	fullScore = 100.0
	zeroScore = 0.0
)

// GradeOutcome is the result of grading one answer. IsCorrect is only set
// for deterministic kinds.
type GradeOutcome struct {
	Score     float64
	IsCorrect *bool
	Feedback  *string
}

type GradingStrategy interface {
	Grade(ctx context.Context, ref model.GradingReference, sub model.AnswerSubmission) (GradeOutcome, error)
}

// StrategySet routes a question kind to its strategy. Kinds without an
// entry are not scorable.
type StrategySet struct {
	strategies map[model.QuestionKind]GradingStrategy
}

func NewStrategySet(ai AIGrader) *StrategySet {
	return &StrategySet{
		strategies: map[model.QuestionKind]GradingStrategy{
			model.KindMultipleChoice: multipleChoiceStrategy{},
			model.KindFillBlank:      fillBlankStrategy{},
			model.KindEssay:          essayStrategy{ai: ai},
			model.KindSpeaking:       speakingStrategy{ai: ai},
		},
	}
}

func (s *StrategySet) Lookup(kind model.QuestionKind) (GradingStrategy, bool) {
	st, ok := s.strategies[kind]
	return st, ok
}

func (s *StrategySet) Grade(ctx context.Context, ref model.GradingReference, sub model.AnswerSubmission) (GradeOutcome, error) {
	st, ok := s.Lookup(ref.Kind)
	if !ok {
		return GradeOutcome{}, fmt.Errorf("no grading strategy for question kind %q", ref.Kind)
	}
	return st.Grade(ctx, ref, sub)
}

type multipleChoiceStrategy struct{}

func (multipleChoiceStrategy) Grade(_ context.Context, ref model.GradingReference, sub model.AnswerSubmission) (GradeOutcome, error) {
	correct := sub.OptionID != nil && ref.CorrectOptionID != nil && *sub.OptionID == *ref.CorrectOptionID
	return deterministicOutcome(correct), nil
}

type fillBlankStrategy struct{}

func (fillBlankStrategy) Grade(_ context.Context, ref model.GradingReference, sub model.AnswerSubmission) (GradeOutcome, error) {
	correct := sub.AnswerText != nil && ref.CorrectText != nil &&
		foldText(*sub.AnswerText) == foldText(*ref.CorrectText)
	return deterministicOutcome(correct), nil
}

// foldText trims and applies full Unicode case folding, so "Straße" matches
// "STRASSE". A Caser is not safe for concurrent use; one is built per call.
func foldText(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func deterministicOutcome(correct bool) GradeOutcome {
	score := zeroScore
	if correct {
		score = fullScore
	}
	return GradeOutcome{Score: score, IsCorrect: &correct}
}

type essayStrategy struct {
	ai AIGrader
}

func (s essayStrategy) Grade(ctx context.Context, ref model.GradingReference, sub model.AnswerSubmission) (GradeOutcome, error) {
	if isBlank(sub.AnswerText) {
		return noSubmissionOutcome(), nil
	}
	return callAIGrader(ctx, "writing", func(ctx context.Context) (AIGrade, error) {
		return s.ai.GradeWriting(ctx, ref.Prompt, *sub.AnswerText)
	})
}

type speakingStrategy struct {
	ai AIGrader
}

func (s speakingStrategy) Grade(ctx context.Context, ref model.GradingReference, sub model.AnswerSubmission) (GradeOutcome, error) {
	if isBlank(sub.AnswerMediaRef) {
		return noSubmissionOutcome(), nil
	}
	return callAIGrader(ctx, "speaking", func(ctx context.Context) (AIGrade, error) {
		return s.ai.GradeSpeaking(ctx, ref.Prompt, strings.TrimSpace(*sub.AnswerMediaRef))
	})
}

func callAIGrader(ctx context.Context, kind string, call func(context.Context) (AIGrade, error)) (GradeOutcome, error) {
	start := time.Now()
	grade, err := call(ctx)
	metrics.AIGradingDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.AIGradingCalls.WithLabelValues(kind, "failure").Inc()
		return GradeOutcome{}, fmt.Errorf("ai %s grading: %w", kind, err)
	}
	metrics.AIGradingCalls.WithLabelValues(kind, "success").Inc()

	feedback := grade.Feedback
	return GradeOutcome{Score: grade.Score, Feedback: &feedback}, nil
}

func noSubmissionOutcome() GradeOutcome {
	feedback := NoSubmissionFeedback
	return GradeOutcome{Score: zeroScore, Feedback: &feedback}
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}
