package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNoQuestions       = errors.New("quiz has no questions")
	ErrAttemptNotPending = errors.New("attempt is not in progress")
)

// IsNotFoundError reports whether err is a missing-row error from gorm.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
