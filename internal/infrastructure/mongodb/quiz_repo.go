package mongodb

import (
	"context"
	"errors"
	"fmt"

	"github.com/ErlanBelekov/geoquiz/internal/domain"
	"github.com/ErlanBelekov/geoquiz/internal/infrastructure/document"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type QuizRepository struct {
	store *Store
}

func NewQuizRepository(store *Store) *QuizRepository {
	return &QuizRepository{store: store}
}

func (r *QuizRepository) Create(ctx context.Context, quiz *domain.Quiz) error {
	if _, err := r.store.items.InsertOne(ctx, document.FromQuiz(quiz)); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (r *QuizRepository) GetByID(ctx context.Context, id string) (*domain.Quiz, error) {
	var rec document.QuizRecord
	if err := r.store.items.FindOne(ctx, keyFilter(document.QuizKey(id))).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrQuizNotFound
		}
		return nil, fmt.Errorf("find quiz: %w", err)
	}
	return rec.ToDomain(), nil
}

func (r *QuizRepository) List(ctx context.Context) ([]domain.QuizSummary, error) {
	filter := bson.D{
		{Key: document.AttrSK, Value: document.SKMetadata},
		{Key: document.AttrPK, Value: bson.D{{Key: "$regex", Value: "^" + document.QuizPrefix}}},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: document.AttrPK, Value: 1}}).
		SetProjection(bson.D{
			{Key: "quizId", Value: 1},
			{Key: "title", Value: 1},
			{Key: "createdByEmail", Value: 1},
		})

	cur, err := r.store.items.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find quizzes: %w", err)
	}
	defer cur.Close(ctx)

	summaries := []domain.QuizSummary{}
	for cur.Next(ctx) {
		var rec document.QuizRecord
		if err := cur.Decode(&rec); err != nil {
			return nil, fmt.Errorf("decode quiz: %w", err)
		}
		summaries = append(summaries, rec.Summary())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate quizzes: %w", err)
	}
	return summaries, nil
}

// AppendQuestion pushes server-side so concurrent appends are applied in
// turn by the document lock.
func (r *QuizRepository) AppendQuestion(ctx context.Context, quizID string, q domain.Question) error {
	update := bson.D{{Key: "$push", Value: bson.D{
		{Key: document.AttrQuestions, Value: document.FromQuestion(q)},
	}}}

	res, err := r.store.items.UpdateOne(ctx, keyFilter(document.QuizKey(quizID)), update)
	if err != nil {
		return fmt.Errorf("append question: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	res, err := r.store.items.DeleteOne(ctx, keyFilter(document.QuizKey(id)))
	if err != nil {
		return fmt.Errorf("delete quiz: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}
