package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/lshigami/quizgrader/config"
	"github.com/lshigami/quizgrader/internal/database"
	"github.com/lshigami/quizgrader/internal/events"
	"github.com/lshigami/quizgrader/internal/metrics"
	"github.com/lshigami/quizgrader/internal/model"
	"github.com/lshigami/quizgrader/internal/repository"
	"github.com/rs/zerolog/log"
)

// AttemptSubmissionService grades a whole attempt in one call and persists it
// all-or-nothing.
type AttemptSubmissionService interface {
	SubmitAttempt(ctx context.Context, in SubmitAttemptInput) (*SubmitResult, error)
}

type SubmitResult struct {
	AttemptID   uint
	FinalScore  float64
	GradedCount int
}

const defaultReferenceTimeout = 10 * time.Second

type attemptSubmissionService struct {
	referenceTimeout time.Duration
	txManager        *database.TxManager
	questionRepo     repository.QuestionRepository
	attemptRepo      repository.AttemptRepository
	answerRepo       repository.GradedAnswerRepository
	strategies       *StrategySet
	aggregator       ScoreAggregatorService
	validator        *SubmissionValidator
	publisher        events.Publisher
}

func NewAttemptSubmissionService(
	cfg *config.Config,
	txManager *database.TxManager,
	questionRepo repository.QuestionRepository,
	attemptRepo repository.AttemptRepository,
	answerRepo repository.GradedAnswerRepository,
	strategies *StrategySet,
	aggregator ScoreAggregatorService,
	validator *SubmissionValidator,
	publisher events.Publisher,
) AttemptSubmissionService {
	referenceTimeout := cfg.Database.ReferenceTimeout
	if referenceTimeout <= 0 {
		referenceTimeout = defaultReferenceTimeout
	}
	return &attemptSubmissionService{
		referenceTimeout: referenceTimeout,
		txManager:        txManager,
		questionRepo:     questionRepo,
		attemptRepo:      attemptRepo,
		answerRepo:       answerRepo,
		strategies:       strategies,
		aggregator:       aggregator,
		validator:        validator,
		publisher:        publisher,
	}
}

// gradingJob pairs a submission with the reference it is graded against.
type gradingJob struct {
	ref model.GradingReference
	sub model.AnswerSubmission
}

type gradingResult struct {
	answer model.GradedAnswer
	index  int
	err    error
}

// SubmitAttempt runs the whole submission to commit or rollback. Caller
// cancellation is ignored once the call starts.
func (s *attemptSubmissionService) SubmitAttempt(ctx context.Context, in SubmitAttemptInput) (*SubmitResult, error) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()

	res, err := s.submit(ctx, in)
	s.reportOutcome(ctx, in, res, err, time.Since(start))
	return res, err
}

func (s *attemptSubmissionService) submit(ctx context.Context, in SubmitAttemptInput) (*SubmitResult, error) {
	if err := s.validator.Validate(in); err != nil {
		return nil, newSubmissionError(StageValidate, ErrInvalidSubmission, 0, err)
	}

	tx, err := s.txManager.Acquire(ctx)
	if err != nil {
		if errors.Is(err, database.ErrAcquireTimeout) {
			return nil, newSubmissionError(StageAcquire, ErrResourceTimeout, 0, err)
		}
		return nil, newSubmissionError(StageAcquire, ErrPersistFailed, 0, err)
	}
	defer tx.Close()

	attempt, err := s.createAttempt(ctx, tx, in)
	if err != nil {
		return nil, s.abort(tx, newSubmissionError(StageCreate, ErrPersistFailed, 0, err))
	}

	jobs, err := s.loadJobs(ctx, attempt.QuizID, in.Submissions)
	if err != nil {
		return nil, s.abort(tx, newSubmissionError(StageReferences, ErrReferenceUnavailable, attempt.ID, err))
	}

	graded, err := s.gradeAll(ctx, attempt.ID, jobs)
	if err != nil {
		return nil, s.abort(tx, newSubmissionError(StageGrading, ErrGradingFailed, attempt.ID, err))
	}

	finalScore := s.aggregator.FinalScore(graded)

	if err := s.persistResults(ctx, tx, attempt.ID, graded, finalScore); err != nil {
		return nil, s.abort(tx, newSubmissionError(StagePersist, ErrPersistFailed, attempt.ID, err))
	}

	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Uint("attemptID", attempt.ID).Msg("SubmitAttempt: Commit failed")
		return nil, newSubmissionError(StageCommit, ErrPersistFailed, attempt.ID, err)
	}

	return &SubmitResult{
		AttemptID:   attempt.ID,
		FinalScore:  finalScore,
		GradedCount: len(graded),
	}, nil
}

// createAttempt is the only write made before grading.
func (s *attemptSubmissionService) createAttempt(ctx context.Context, tx *database.Tx, in SubmitAttemptInput) (*model.Attempt, error) {
	attempt := &model.Attempt{
		UserID:    in.UserID,
		QuizID:    in.QuizID,
		Status:    model.AttemptInProgress,
		StartTime: time.Now(),
	}
	if err := s.attemptRepo.Create(ctx, tx.DB(), attempt); err != nil {
		return nil, fmt.Errorf("failed to create attempt record: %w", err)
	}
	return attempt, nil
}

// loadJobs reads the answer key on the read pool and keeps only submissions
// for known questions whose kind has a strategy. The read is bounded so an
// exhausted pool cannot keep the write transaction open.
func (s *attemptSubmissionService) loadJobs(ctx context.Context, quizID uint, subs []model.AnswerSubmission) ([]gradingJob, error) {
	readCtx, cancel := context.WithTimeout(ctx, s.referenceTimeout)
	defer cancel()
	refs, err := s.questionRepo.FetchReferences(readCtx, quizID)
	if err != nil {
		return nil, err
	}

	jobs := make([]gradingJob, 0, len(subs))
	for _, sub := range subs {
		ref, ok := refs[sub.QuestionID]
		if !ok {
			log.Warn().Uint("questionID", sub.QuestionID).Uint("quizID", quizID).Msg("SubmitAttempt: Answer for a question not part of this quiz, skipping.")
			continue
		}
		if _, ok := s.strategies.Lookup(ref.Kind); !ok {
			log.Warn().Uint("questionID", ref.QuestionID).Str("kind", string(ref.Kind)).Msg("SubmitAttempt: Question kind is not scorable, skipping.")
			continue
		}
		jobs = append(jobs, gradingJob{ref: ref, sub: sub})
	}
	return jobs, nil
}

// gradeAll grades every job concurrently and waits for all of them. Any
// failure discards every result.
func (s *attemptSubmissionService) gradeAll(ctx context.Context, attemptID uint, jobs []gradingJob) ([]model.GradedAnswer, error) {
	var wg sync.WaitGroup
	resultsChan := make(chan gradingResult, len(jobs))

	for i, job := range jobs {
		wg.Add(1)
		go func(idx int, job gradingJob) {
			defer wg.Done()
			resultsChan <- s.gradeOne(ctx, attemptID, idx, job)
		}(i, job)
	}
	wg.Wait()
	close(resultsChan)

	graded := make([]model.GradedAnswer, len(jobs))
	var errs []error
	for result := range resultsChan {
		if result.err != nil {
			errs = append(errs, result.err)
			continue
		}
		graded[result.index] = result.answer
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return graded, nil
}

func (s *attemptSubmissionService) gradeOne(ctx context.Context, attemptID uint, idx int, job gradingJob) (result gradingResult) {
	result.index = idx
	defer func() {
		if r := recover(); r != nil {
			result.err = fmt.Errorf("question %d: grading panicked: %v", job.ref.QuestionID, r)
		}
	}()

	outcome, err := s.strategies.Grade(ctx, job.ref, job.sub)
	if err != nil {
		log.Error().Err(err).Uint("attemptID", attemptID).Uint("questionID", job.ref.QuestionID).Str("kind", string(job.ref.Kind)).Msg("SubmitAttempt: Grading failed for answer.")
		result.err = fmt.Errorf("question %d: %w", job.ref.QuestionID, err)
		return result
	}

	result.answer = model.GradedAnswer{
		AttemptID:      attemptID,
		QuestionID:     job.ref.QuestionID,
		OptionID:       job.sub.OptionID,
		AnswerText:     job.sub.AnswerText,
		AnswerMediaRef: job.sub.AnswerMediaRef,
		IsCorrect:      outcome.IsCorrect,
		AIScore:        outcome.Score,
		AIFeedback:     outcome.Feedback,
	}
	return result
}

// persistResults writes the answers and then completes the attempt, both
// inside the submission's transaction.
func (s *attemptSubmissionService) persistResults(ctx context.Context, tx *database.Tx, attemptID uint, graded []model.GradedAnswer, finalScore float64) error {
	if err := s.answerRepo.BulkCreate(ctx, tx.DB(), graded); err != nil {
		return fmt.Errorf("failed to insert graded answers: %w", err)
	}
	if err := s.attemptRepo.MarkCompleted(ctx, tx.DB(), attemptID, finalScore, time.Now()); err != nil {
		return fmt.Errorf("failed to complete attempt: %w", err)
	}
	return nil
}

func (s *attemptSubmissionService) abort(tx *database.Tx, serr *SubmissionError) error {
	if err := tx.Rollback(); err != nil && !errors.Is(err, database.ErrTxDone) {
		log.Error().Err(err).Uint("attemptID", serr.AttemptID).Str("stage", string(serr.Stage)).Msg("SubmitAttempt: Rollback failed")
	}
	return serr
}

// reportOutcome records metrics and publishes the outcome event. It never
// changes the result returned to the caller.
func (s *attemptSubmissionService) reportOutcome(ctx context.Context, in SubmitAttemptInput, res *SubmitResult, err error, elapsed time.Duration) {
	outcome := outcomeLabel(err)
	metrics.SubmissionsTotal.WithLabelValues(outcome).Inc()
	metrics.SubmissionDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())

	var event *events.AttemptEvent
	if err == nil {
		log.Info().
			Uint("attemptID", res.AttemptID).
			Uint("userID", in.UserID).
			Uint("quizID", in.QuizID).
			Float64("finalScore", res.FinalScore).
			Int("gradedCount", res.GradedCount).
			Dur("elapsed", elapsed).
			Msg("SubmitAttempt: Attempt completed")
		event = events.NewAttemptCompletedEvent(res.AttemptID, in.UserID, in.QuizID, res.FinalScore, res.GradedCount)
	} else {
		var serr *SubmissionError
		var attemptID uint
		stage := ""
		if errors.As(err, &serr) {
			attemptID = serr.AttemptID
			stage = string(serr.Stage)
		}
		log.Warn().
			Err(err).
			Uint("attemptID", attemptID).
			Uint("userID", in.UserID).
			Uint("quizID", in.QuizID).
			Str("stage", stage).
			Str("outcome", outcome).
			Dur("elapsed", elapsed).
			Msg("SubmitAttempt: Submission failed")
		event = events.NewAttemptFailedEvent(attemptID, in.UserID, in.QuizID, outcome, stage)
	}

	if perr := s.publisher.PublishAttemptEvent(ctx, event); perr != nil {
		log.Warn().Err(perr).Str("eventType", string(event.Type)).Msg("SubmitAttempt: Failed to publish outcome event")
	}
}
