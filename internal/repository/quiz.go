package repository

import (
	"context"

	"github.com/ErlanBelekov/geoquiz/internal/domain"
)

// QuizRepository persists quizzes with their embedded questions.
// Ownership is verified by the caller before AppendQuestion or Delete.
type QuizRepository interface {
	Create(ctx context.Context, quiz *domain.Quiz) error
	GetByID(ctx context.Context, id string) (*domain.Quiz, error)
	// List returns every quiz summary. There is no pagination.
	List(ctx context.Context) ([]domain.QuizSummary, error)
	// AppendQuestion adds q to the end of the quiz's question list in a
	// single atomic store operation. Returns domain.ErrQuizNotFound if the
	// quiz does not exist.
	AppendQuestion(ctx context.Context, quizID string, q domain.Question) error
	// Delete removes the quiz and its questions. Returns
	// domain.ErrQuizNotFound if nothing was deleted.
	Delete(ctx context.Context, id string) error
}
