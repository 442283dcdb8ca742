package repository

import (
	"context"
	"fmt"

	"github.com/lshigami/quizgrader/internal/model"
	"gorm.io/gorm"
)

// QuestionRepository is the read side of the answer key. It always runs on
// the general read pool, never inside a submission's write transaction.
type QuestionRepository interface {
	FindByQuizID(ctx context.Context, quizID uint) ([]model.Question, error)
	FetchReferences(ctx context.Context, quizID uint) (map[uint]model.GradingReference, error)
}

type questionRepository struct {
	db *gorm.DB
}

func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &questionRepository{db: db}
}

func (r *questionRepository) FindByQuizID(ctx context.Context, quizID uint) ([]model.Question, error) {
	var questions []model.Question
	if err := r.db.WithContext(ctx).Where("quiz_id = ?", quizID).Order("order_in_quiz ASC").Find(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

func (r *questionRepository) FetchReferences(ctx context.Context, quizID uint) (map[uint]model.GradingReference, error) {
	questions, err := r.FindByQuizID(ctx, quizID)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions for quiz %d: %w", quizID, err)
	}
	if len(questions) == 0 {
		return nil, fmt.Errorf("quiz %d: %w", quizID, ErrNoQuestions)
	}

	refs := make(map[uint]model.GradingReference, len(questions))
	for i := range questions {
		refs[questions[i].ID] = questions[i].Reference()
	}
	return refs, nil
}
