package memory

import (
	"context"

	"github.com/ErlanBelekov/geoquiz/internal/domain"
	"github.com/ErlanBelekov/geoquiz/internal/infrastructure/document"
)

type QuizRepository struct {
	store *Store
}

func NewQuizRepository(store *Store) *QuizRepository {
	return &QuizRepository{store: store}
}

func (r *QuizRepository) Create(_ context.Context, quiz *domain.Quiz) error {
	rec := document.FromQuiz(quiz)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.quiz[document.QuizKey(quiz.ID)] = rec
	return nil
}

func (r *QuizRepository) GetByID(_ context.Context, id string) (*domain.Quiz, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	rec, ok := r.store.quiz[document.QuizKey(id)]
	if !ok {
		return nil, domain.ErrQuizNotFound
	}
	// ToDomain copies the question slice, so callers never alias stored state.
	return rec.ToDomain(), nil
}

func (r *QuizRepository) List(_ context.Context) ([]domain.QuizSummary, error) {
	recs := r.store.quizRecords()
	out := make([]domain.QuizSummary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Summary())
	}
	return out, nil
}

func (r *QuizRepository) AppendQuestion(_ context.Context, quizID string, q domain.Question) error {
	key := document.QuizKey(quizID)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	rec, ok := r.store.quiz[key]
	if !ok {
		return domain.ErrQuizNotFound
	}
	questions := make([]document.QuestionRecord, len(rec.Questions), len(rec.Questions)+1)
	copy(questions, rec.Questions)
	rec.Questions = append(questions, document.FromQuestion(q))
	r.store.quiz[key] = rec
	return nil
}

func (r *QuizRepository) Delete(_ context.Context, id string) error {
	key := document.QuizKey(id)

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.quiz[key]; !ok {
		return domain.ErrQuizNotFound
	}
	delete(r.store.quiz, key)
	return nil
}
