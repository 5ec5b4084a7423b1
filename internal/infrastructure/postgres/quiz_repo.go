package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/geoquiz/internal/domain"
	"github.com/ErlanBelekov/geoquiz/internal/infrastructure/document"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type QuizRepository struct {
	pool *pgxpool.Pool
}

func NewQuizRepository(pool *pgxpool.Pool) *QuizRepository {
	return &QuizRepository{pool: pool}
}

func (r *QuizRepository) Create(ctx context.Context, quiz *domain.Quiz) error {
	rec := document.FromQuiz(quiz)

	_, err := r.pool.Exec(ctx,
		`INSERT INTO items (pk, sk, data, created_at) VALUES ($1, $2, $3, $4)`,
		rec.PK, rec.SK, rec, rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (r *QuizRepository) GetByID(ctx context.Context, id string) (*domain.Quiz, error) {
	k := document.QuizKey(id)

	var rec document.QuizRecord
	err := r.pool.QueryRow(ctx, `SELECT data FROM items WHERE pk = $1 AND sk = $2`, k.PK, k.SK).Scan(&rec)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrQuizNotFound
		}
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	return rec.ToDomain(), nil
}

func (r *QuizRepository) List(ctx context.Context) ([]domain.QuizSummary, error) {
	query := `
		SELECT data ->> 'quizId', data ->> 'title', COALESCE(data ->> 'createdByEmail', '')
		FROM items
		WHERE sk = $1 AND pk LIKE $2
		ORDER BY created_at ASC, pk ASC`

	rows, err := r.pool.Query(ctx, query, document.SKMetadata, document.QuizPrefix+"%")
	if err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}
	defer rows.Close()

	summaries := []domain.QuizSummary{}
	for rows.Next() {
		var s domain.QuizSummary
		if err := rows.Scan(&s.ID, &s.Title, &s.OwnerEmail); err != nil {
			return nil, fmt.Errorf("scan quiz summary: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate quizzes: %w", err)
	}
	return summaries, nil
}

// AppendQuestion concatenates onto the stored array inside a single UPDATE,
// so the row lock serializes concurrent appends.
func (r *QuizRepository) AppendQuestion(ctx context.Context, quizID string, q domain.Question) error {
	k := document.QuizKey(quizID)

	tag, err := r.pool.Exec(ctx, `
		UPDATE items
		SET data = jsonb_set(data, '{questions}', COALESCE(data -> 'questions', '[]'::jsonb) || $3::jsonb)
		WHERE pk = $1 AND sk = $2`,
		k.PK, k.SK, []document.QuestionRecord{document.FromQuestion(q)},
	)
	if err != nil {
		return fmt.Errorf("append question: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	k := document.QuizKey(id)

	tag, err := r.pool.Exec(ctx, `DELETE FROM items WHERE pk = $1 AND sk = $2`, k.PK, k.SK)
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}
