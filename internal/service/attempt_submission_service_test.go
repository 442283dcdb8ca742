package service

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/lshigami/quizgrader/internal/events"
	"github.com/lshigami/quizgrader/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func submission(questionID uint) model.AnswerSubmission {
	return model.AnswerSubmission{QuestionID: questionID}
}

func withOption(questionID uint, option string) model.AnswerSubmission {
	s := submission(questionID)
	s.OptionID = strPtr(option)
	return s
}

func withText(questionID uint, text string) model.AnswerSubmission {
	s := submission(questionID)
	s.AnswerText = strPtr(text)
	return s
}

func withMedia(questionID uint, ref string) model.AnswerSubmission {
	s := submission(questionID)
	s.AnswerMediaRef = strPtr(ref)
	return s
}

func TestSubmitAttempt_MultipleChoiceMean(t *testing.T) {
	f := newSubmissionFixture(t, time.Second)
	quiz := f.createQuiz(t, "mc", mcQuestion("A", "A", "B", "C"), mcQuestion("B", "A", "B", "C"))

	res, err := f.svc.SubmitAttempt(context.Background(), SubmitAttemptInput{
		UserID: 7,
		QuizID: quiz.ID,
		Submissions: []model.AnswerSubmission{
			withOption(quiz.Questions[0].ID, "A"),
			withOption(quiz.Questions[1].ID, "A"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, res.FinalScore)
	assert.Equal(t, 2, res.GradedCount)

	var attempt model.Attempt
	require.NoError(t, f.db.Preload("GradedAnswers").First(&attempt, res.AttemptID).Error)
	assert.Equal(t, model.AttemptCompleted, attempt.Status)
	require.NotNil(t, attempt.FinalScore)
	assert.Equal(t, 50.0, *attempt.FinalScore)
	assert.NotNil(t, attempt.EndTime)
	require.Len(t, attempt.GradedAnswers, 2)
	for _, ans := range attempt.GradedAnswers {
		require.NotNil(t, ans.IsCorrect)
		assert.Nil(t, ans.AIFeedback)
	}

	f.ai.AssertNotCalled(t, "GradeWriting", mock.Anything, mock.Anything, mock.Anything)
	assert.Equal(t, int64(0), f.txManager.InUse())

	evs := f.publisher.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.AttemptCompleted, evs[0].Type)
	assert.Equal(t, res.AttemptID, evs[0].AttemptID)
}

func TestSubmitAttempt_FillBlankNormalizesText(t *testing.T) {
	f := newSubmissionFixture(t, time.Second)
	quiz := f.createQuiz(t, "fill", fillBlankQuestion("Paris"), fillBlankQuestion("Rome"), mcQuestion("A", "A", "B"))

	res, err := f.svc.SubmitAttempt(context.Background(), SubmitAttemptInput{
		UserID: 1,
		QuizID: quiz.ID,
		Submissions: []model.AnswerSubmission{
			withText(quiz.Questions[0].ID, "  pARIS "),
			withText(quiz.Questions[1].ID, "Milan"),
			withOption(quiz.Questions[2].ID, "A"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 66.67, res.FinalScore)
	assert.Equal(t, 3, res.GradedCount)
}

func TestSubmitAttempt_EssayUsesAIScore(t *testing.T) {
	f := newSubmissionFixture(t, time.Second)
	quiz := f.createQuiz(t, "essay", essayQuestion("Describe your hometown."))
	f.ai.On("GradeWriting", mock.Anything, "Describe your hometown.", "It is by the sea.").
		Return(AIGrade{Score: 80, Feedback: "Good"}, nil).Once()

	res, err := f.svc.SubmitAttempt(context.Background(), SubmitAttemptInput{
		UserID:      2,
		QuizID:      quiz.ID,
		Submissions: []model.AnswerSubmission{withText(quiz.Questions[0].ID, "It is by the sea.")},
	})
	require.NoError(t, err)
	assert.Equal(t, 80.0, res.FinalScore)

	var ans model.GradedAnswer
	require.NoError(t, f.db.Where("attempt_id = ?", res.AttemptID).First(&ans).Error)
	assert.Nil(t, ans.IsCorrect)
	require.NotNil(t, ans.AIFeedback)
	assert.Equal(t, "Good", *ans.AIFeedback)
	f.ai.AssertExpectations(t)
}

func TestSubmitAttempt_SpeakingFailureRollsBackEverything(t *testing.T) {
	f := newSubmissionFixture(t, time.Second)
	quiz := f.createQuiz(t, "mixed", essayQuestion("Write."), speakingQuestion("Speak."))
	f.ai.On("GradeWriting", mock.Anything, "Write.", "words").Return(AIGrade{Score: 90, Feedback: "Nice"}, nil)
	f.ai.On("GradeSpeaking", mock.Anything, "Speak.", "https://storage.example/a.mp3").
		Return(AIGrade{}, errors.New("quota exceeded"))

	res, err := f.svc.SubmitAttempt(context.Background(), SubmitAttemptInput{
		UserID: 3,
		QuizID: quiz.ID,
		Submissions: []model.AnswerSubmission{
			withText(quiz.Questions[0].ID, "words"),
			withMedia(quiz.Questions[1].ID, "https://storage.example/a.mp3"),
		},
	})
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrGradingFailed)

	var serr *SubmissionError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, StageGrading, serr.Stage)
	assert.NotZero(t, serr.AttemptID)

	attempts, answers := f.counts(t)
	assert.Zero(t, attempts)
	assert.Zero(t, answers)
	assert.Equal(t, int64(0), f.txManager.InUse())

	evs := f.publisher.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, events.AttemptFailed, evs[0].Type)
	assert.Equal(t, "grading_failed", evs[0].Outcome)
}

func TestSubmitAttempt_UnknownQuestionsAreDropped(t *testing.T) {
	f := newSubmissionFixture(t, time.Second)
	quiz := f.createQuiz(t, "drop", mcQuestion("A", "A", "B"))

	res, err := f.svc.SubmitAttempt(context.Background(), SubmitAttemptInput{
		UserID: 4,
		QuizID: quiz.ID,
		Submissions: []model.AnswerSubmission{
			withOption(quiz.Questions[0].ID, "A"),
			withOption(99999, "B"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.GradedCount)
	assert.Equal(t, 100.0, res.FinalScore)

	var rows []model.GradedAnswer
	require.NoError(t, f.db.Where("attempt_id = ?", res.AttemptID).Find(&rows).Error)
	require.Len(t, rows, 1)
	assert.Equal(t, quiz.Questions[0].ID, rows[0].QuestionID)
}

func TestSubmitAttempt_AllDroppedCompletesWithZero(t *testing.T) {
	f := newSubmissionFixture(t, time.Second)
	quiz := f.createQuiz(t, "none", mcQuestion("A", "A", "B"))

	res, err := f.svc.SubmitAttempt(context.Background(), SubmitAttemptInput{
		UserID:      5,
		QuizID:      quiz.ID,
		Submissions: []model.AnswerSubmission{withOption(424242, "A")},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.FinalScore)
	assert.Equal(t, 0, res.GradedCount)

	attempts, answers := f.counts(t)
	assert.Equal(t, int64(1), attempts)
	assert.Zero(t, answers)
}

func TestSubmitAttempt_UnscorableKindIsNeverPersisted(t *testing.T) {
	f := newSubmissionFixture(t, time.Second)
	quiz := f.createQuiz(t, "legacy",
		mcQuestion("A", "A", "B"),
		model.Question{Kind: model.QuestionKind("matching"), Prompt: "Match the pairs"},
	)

	res, err := f.svc.SubmitAttempt(context.Background(), SubmitAttemptInput{
		UserID: 6,
		QuizID: quiz.ID,
		Submissions: []model.AnswerSubmission{
			withOption(quiz.Questions[0].ID, "B"),
			withText(quiz.Questions[1].ID, "1-a, 2-b"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.GradedCount)
	assert.Equal(t, 0.0, res.FinalScore)

	var n int64
	require.NoError(t, f.db.Model(&model.GradedAnswer{}).Where("question_id = ?", quiz.Questions[1].ID).Count(&n).Error)
	assert.Zero(t, n)
}

func TestSubmitAttempt_BlankOpenAnswersSkipAI(t *testing.T) {
	f := newSubmissionFixture(t, time.Second)
	quiz := f.createQuiz(t, "blank", essayQuestion("Write."), speakingQuestion("Speak."))

	res, err := f.svc.SubmitAttempt(context.Background(), SubmitAttemptInput{
		UserID: 8,
		QuizID: quiz.ID,
		Submissions: []model.AnswerSubmission{
			withText(quiz.Questions[0].ID, "   "),
			submission(quiz.Questions[1].ID),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.FinalScore)
	assert.Equal(t, 2, res.GradedCount)

	var rows []model.GradedAnswer
	require.NoError(t, f.db.Where("attempt_id = ?", res.AttemptID).Find(&rows).Error)
	for _, r := range rows {
		require.NotNil(t, r.AIFeedback)
		assert.Equal(t, NoSubmissionFeedback, *r.AIFeedback)
		assert.Nil(t, r.IsCorrect)
	}
	f.ai.AssertNotCalled(t, "GradeWriting", mock.Anything, mock.Anything, mock.Anything)
	f.ai.AssertNotCalled(t, "GradeSpeaking", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitAttempt_ScoreIndependentOfCompletionOrder(t *testing.T) {
	f := newSubmissionFixture(t, time.Second)
	scores := []float64{12.5, 99.9, 33.3, 66.7, 0.1, 71.25, 48.05, 5.5}

	questions := make([]model.Question, len(scores))
	for i := range questions {
		questions[i] = essayQuestion("Essay prompt")
	}
	quiz := f.createQuiz(t, "order", questions...)

	subs := make([]model.AnswerSubmission, len(scores))
	for i, q := range quiz.Questions {
		answer := "answer " + string(rune('a'+i))
		subs[i] = withText(q.ID, answer)
		f.ai.On("GradeWriting", mock.Anything, "Essay prompt", answer).
			Run(func(mock.Arguments) {
				time.Sleep(time.Duration(rand.Intn(20)) * time.Millisecond)
			}).
			Return(AIGrade{Score: scores[i], Feedback: "ok"}, nil)
	}

	var first float64
	for run := 0; run < 5; run++ {
		res, err := f.svc.SubmitAttempt(context.Background(), SubmitAttemptInput{UserID: 9, QuizID: quiz.ID, Submissions: subs})
		require.NoError(t, err)
		if run == 0 {
			first = res.FinalScore
			continue
		}
		assert.Equal(t, first, res.FinalScore, "run %d", run)
	}
	assert.Equal(t, 42.16, first)
}

func TestSubmitAttempt_PoolExhaustedTimesOut(t *testing.T) {
	f := newSubmissionFixture(t, 100*time.Millisecond)
	quiz := f.createQuiz(t, "busy", mcQuestion("A", "A", "B"))

	held, err := f.txManager.Acquire(context.Background())
	require.NoError(t, err)

	start := time.Now()
	_, err = f.svc.SubmitAttempt(context.Background(), SubmitAttemptInput{
		UserID:      10,
		QuizID:      quiz.ID,
		Submissions: []model.AnswerSubmission{withOption(quiz.Questions[0].ID, "A")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResourceTimeout)
	assert.Less(t, time.Since(start), 2*time.Second)

	require.NoError(t, held.Rollback())
	attempts, answers := f.counts(t)
	assert.Zero(t, attempts)
	assert.Zero(t, answers)
}

func TestSubmitAttempt_InvalidInputNeverTouchesThePool(t *testing.T) {
	f := newSubmissionFixture(t, 5*time.Second)
	quiz := f.createQuiz(t, "invalid", mcQuestion("A", "A", "B"))
	qid := quiz.Questions[0].ID

	// With the only slot held, any call that reached acquisition would block.
	held, err := f.txManager.Acquire(context.Background())
	require.NoError(t, err)
	defer held.Close()

	two := withOption(qid, "A")
	two.AnswerText = strPtr("also text")

	tests := []struct {
		name string
		in   SubmitAttemptInput
	}{
		{"no submissions", SubmitAttemptInput{UserID: 1, QuizID: quiz.ID}},
		{"missing user", SubmitAttemptInput{QuizID: quiz.ID, Submissions: []model.AnswerSubmission{withOption(qid, "A")}}},
		{"missing quiz", SubmitAttemptInput{UserID: 1, Submissions: []model.AnswerSubmission{withOption(qid, "A")}}},
		{"zero question id", SubmitAttemptInput{UserID: 1, QuizID: quiz.ID, Submissions: []model.AnswerSubmission{withOption(0, "A")}}},
		{"duplicate question", SubmitAttemptInput{UserID: 1, QuizID: quiz.ID, Submissions: []model.AnswerSubmission{withOption(qid, "A"), withOption(qid, "B")}}},
		{"two answer fields", SubmitAttemptInput{UserID: 1, QuizID: quiz.ID, Submissions: []model.AnswerSubmission{two}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			_, err := f.svc.SubmitAttempt(context.Background(), tt.in)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSubmission)
			assert.Less(t, time.Since(start), time.Second)
			assert.Equal(t, int64(1), f.txManager.InUse())
		})
	}
}

func TestSubmitAttempt_ReferencesUnavailable(t *testing.T) {
	f := newSubmissionFixture(t, time.Second)
	empty := f.createQuiz(t, "empty")

	tests := []struct {
		name   string
		quizID uint
	}{
		{"quiz without questions", empty.ID},
		{"unknown quiz", empty.ID + 1000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.SubmitAttempt(context.Background(), SubmitAttemptInput{
				UserID:      11,
				QuizID:      tt.quizID,
				Submissions: []model.AnswerSubmission{withOption(1, "A")},
			})
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrReferenceUnavailable)

			attempts, _ := f.counts(t)
			assert.Zero(t, attempts)
			assert.Equal(t, int64(0), f.txManager.InUse())
		})
	}
}

func TestSubmitAttempt_CallerCancellationDoesNotAbort(t *testing.T) {
	f := newSubmissionFixture(t, time.Second)
	quiz := f.createQuiz(t, "cancel", essayQuestion("Write."))

	ctx, cancel := context.WithCancel(context.Background())
	f.ai.On("GradeWriting", mock.Anything, "Write.", "text").
		Run(func(args mock.Arguments) {
			cancel()
			assert.NoError(t, args.Get(0).(context.Context).Err())
		}).
		Return(AIGrade{Score: 70, Feedback: "fine"}, nil)

	res, err := f.svc.SubmitAttempt(ctx, SubmitAttemptInput{
		UserID:      12,
		QuizID:      quiz.ID,
		Submissions: []model.AnswerSubmission{withText(quiz.Questions[0].ID, "text")},
	})
	require.NoError(t, err)
	assert.Equal(t, 70.0, res.FinalScore)
}

func TestSubmitAttempt_ConcurrentSubmissionsEachCreateAnAttempt(t *testing.T) {
	f := newSubmissionFixture(t, 5*time.Second)
	quiz := f.createQuiz(t, "concurrent", mcQuestion("A", "A", "B"))

	const n = 4
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func() {
			_, err := f.svc.SubmitAttempt(context.Background(), SubmitAttemptInput{
				UserID:      13,
				QuizID:      quiz.ID,
				Submissions: []model.AnswerSubmission{withOption(quiz.Questions[0].ID, "A")},
			})
			errs <- err
		}()
	}
	for i := 0; i < n; i++ {
		require.NoError(t, <-errs)
	}

	attempts, answers := f.counts(t)
	assert.Equal(t, int64(n), attempts)
	assert.Equal(t, int64(n), answers)
}

func TestSubmitAttempt_StarvedReferenceReadIsBounded(t *testing.T) {
	// Two connections: the write transaction takes one, the test holds the other.
	db := newTestDBWithPool(t, 2)
	cfg := testConfig(1, time.Second)
	cfg.Database.ReferenceTimeout = 200 * time.Millisecond
	f := newSubmissionFixtureWith(t, db, cfg)
	quiz := f.createQuiz(t, "starved", mcQuestion("A", "A", "B"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	held, err := sqlDB.Conn(context.Background())
	require.NoError(t, err)

	start := time.Now()
	_, err = f.svc.SubmitAttempt(context.Background(), SubmitAttemptInput{
		UserID:      14,
		QuizID:      quiz.ID,
		Submissions: []model.AnswerSubmission{withOption(quiz.Questions[0].ID, "A")},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrReferenceUnavailable)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	var subErr *SubmissionError
	require.True(t, errors.As(err, &subErr))
	assert.Equal(t, StageReferences, subErr.Stage)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, int64(0), f.txManager.InUse())

	require.NoError(t, held.Close())
	attempts, answers := f.counts(t)
	assert.Zero(t, attempts)
	assert.Zero(t, answers)
}

func slowEssay(f *submissionFixture, delay time.Duration) {
	f.ai.On("GradeWriting", mock.Anything, "Write.", mock.Anything).
		Run(func(mock.Arguments) { time.Sleep(delay) }).
		Return(AIGrade{Score: 80, Feedback: "ok"}, nil)
}

func submitConcurrently(f *submissionFixture, quiz *model.Quiz, n int) []error {
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		go func(user uint) {
			_, err := f.svc.SubmitAttempt(context.Background(), SubmitAttemptInput{
				UserID:      user,
				QuizID:      quiz.ID,
				Submissions: []model.AnswerSubmission{withText(quiz.Questions[0].ID, "an essay")},
			})
			errs <- err
		}(uint(20 + i))
	}
	out := make([]error, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, <-errs)
	}
	return out
}

func TestSubmitAttempt_SqliteWritersQueue(t *testing.T) {
	f := newSubmissionFixtureWith(t, newTestDB(t), testConfig(4, 5*time.Second))
	require.Equal(t, int64(1), f.txManager.Capacity())
	quiz := f.createQuiz(t, "sqlite queue", essayQuestion("Write."))
	slowEssay(f, 300*time.Millisecond)

	for _, err := range submitConcurrently(f, quiz, 2) {
		require.NoError(t, err)
	}
	attempts, answers := f.counts(t)
	assert.Equal(t, int64(2), attempts)
	assert.Equal(t, int64(2), answers)
}

func TestSubmitAttempt_SqliteWriterBusyTimesOut(t *testing.T) {
	f := newSubmissionFixtureWith(t, newTestDB(t), testConfig(4, 100*time.Millisecond))
	quiz := f.createQuiz(t, "sqlite busy", essayQuestion("Write."))
	slowEssay(f, 600*time.Millisecond)

	var ok, timedOut int
	for _, err := range submitConcurrently(f, quiz, 2) {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrResourceTimeout):
			timedOut++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, timedOut)

	attempts, _ := f.counts(t)
	assert.Equal(t, int64(1), attempts)
}
