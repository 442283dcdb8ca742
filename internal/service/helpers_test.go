package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/lshigami/quizgrader/config"
	"github.com/lshigami/quizgrader/internal/database"
	"github.com/lshigami/quizgrader/internal/events"
	"github.com/lshigami/quizgrader/internal/model"
	"github.com/lshigami/quizgrader/internal/repository"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockAIGrader struct {
	mock.Mock
}

func (m *mockAIGrader) GradeWriting(ctx context.Context, prompt, answer string) (AIGrade, error) {
	args := m.Called(ctx, prompt, answer)
	return args.Get(0).(AIGrade), args.Error(1)
}

func (m *mockAIGrader) GradeSpeaking(ctx context.Context, prompt, audioRef string) (AIGrade, error) {
	args := m.Called(ctx, prompt, audioRef)
	return args.Get(0).(AIGrade), args.Error(1)
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.AttemptEvent
}

func (p *recordingPublisher) PublishAttemptEvent(_ context.Context, ev *events.AttemptEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, *ev)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) Events() []events.AttemptEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]events.AttemptEvent(nil), p.events...)
}

func newTestDB(t *testing.T) *gorm.DB {
	return newTestDBWithPool(t, 4)
}

func newTestDBWithPool(t *testing.T, maxOpenConns int) *gorm.DB {
	t.Helper()
	cfg := &config.Config{
		Server: config.Server{Environment: "test"},
		Database: config.Database{
			Driver:       "sqlite",
			SQLitePath:   filepath.Join(t.TempDir(), "quizgrader.db"),
			MaxOpenConns: maxOpenConns,
		},
	}
	db, err := database.NewDatabase(cfg)
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

type submissionFixture struct {
	db        *gorm.DB
	txManager *database.TxManager
	ai        *mockAIGrader
	publisher *recordingPublisher
	svc       AttemptSubmissionService
}

func testConfig(writeSlots int, acquireTimeout time.Duration) *config.Config {
	return &config.Config{
		Server: config.Server{Environment: "test"},
		Database: config.Database{
			Driver:           "sqlite",
			WriteSlots:       writeSlots,
			AcquireTimeout:   acquireTimeout,
			ReferenceTimeout: 2 * time.Second,
		},
	}
}

func newSubmissionFixture(t *testing.T, acquireTimeout time.Duration) *submissionFixture {
	t.Helper()
	return newSubmissionFixtureWith(t, newTestDB(t), testConfig(1, acquireTimeout))
}

// newSubmissionFixtureWith builds the service the way main.go does, from cfg.
func newSubmissionFixtureWith(t *testing.T, db *gorm.DB, cfg *config.Config) *submissionFixture {
	t.Helper()
	txManager, err := database.NewTxManager(db, cfg)
	require.NoError(t, err)

	f := &submissionFixture{
		db:        db,
		txManager: txManager,
		ai:        &mockAIGrader{},
		publisher: &recordingPublisher{},
	}
	f.svc = NewAttemptSubmissionService(
		cfg,
		f.txManager,
		repository.NewQuestionRepository(db),
		repository.NewAttemptRepository(db),
		repository.NewGradedAnswerRepository(db),
		NewStrategySet(f.ai),
		NewScoreAggregatorService(),
		NewSubmissionValidator(),
		f.publisher,
	)
	return f
}

func (f *submissionFixture) createQuiz(t *testing.T, title string, questions ...model.Question) *model.Quiz {
	t.Helper()
	for i := range questions {
		questions[i].OrderInQuiz = i + 1
	}
	quiz := &model.Quiz{Title: title, Questions: questions}
	require.NoError(t, repository.NewQuizRepository(f.db).Create(context.Background(), quiz))
	return quiz
}

func (f *submissionFixture) counts(t *testing.T) (attempts, answers int64) {
	t.Helper()
	require.NoError(t, f.db.Model(&model.Attempt{}).Count(&attempts).Error)
	require.NoError(t, f.db.Model(&model.GradedAnswer{}).Count(&answers).Error)
	return attempts, answers
}

func strPtr(s string) *string { return &s }

func mcQuestion(correct string, options ...string) model.Question {
	q := model.Question{Kind: model.KindMultipleChoice, Prompt: "Pick one", CorrectOptionID: strPtr(correct)}
	for _, o := range options {
		q.Options = append(q.Options, model.QuestionOption{ID: o, Text: "option " + o})
	}
	return q
}

func fillBlankQuestion(correct string) model.Question {
	return model.Question{Kind: model.KindFillBlank, Prompt: "The capital of France is ___.", CorrectText: strPtr(correct)}
}

func essayQuestion(prompt string) model.Question {
	return model.Question{Kind: model.KindEssay, Prompt: prompt}
}

func speakingQuestion(prompt string) model.Question {
	return model.Question{Kind: model.KindSpeaking, Prompt: prompt}
}
