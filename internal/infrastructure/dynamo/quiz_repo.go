package dynamo

import (
	"context"
	"fmt"

	"github.com/ErlanBelekov/geoquiz/internal/domain"
	"github.com/ErlanBelekov/geoquiz/internal/infrastructure/document"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

type QuizRepository struct {
	table *Table
}

func NewQuizRepository(table *Table) *QuizRepository {
	return &QuizRepository{table: table}
}

func (r *QuizRepository) Create(ctx context.Context, quiz *domain.Quiz) error {
	item, err := attributevalue.MarshalMap(document.FromQuiz(quiz))
	if err != nil {
		return fmt.Errorf("marshal quiz: %w", err)
	}

	_, err = r.table.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.table.name),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("put quiz: %w", err)
	}
	return nil
}

func (r *QuizRepository) GetByID(ctx context.Context, id string) (*domain.Quiz, error) {
	k := document.QuizKey(id)
	out, err := r.table.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table.name),
		Key:       keyOf(k.PK, k.SK),
	})
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	if out.Item == nil {
		return nil, domain.ErrQuizNotFound
	}

	var rec document.QuizRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal quiz: %w", err)
	}
	return rec.ToDomain(), nil
}

// List scans the whole table for quiz metadata records, following
// pagination until the scan is exhausted.
func (r *QuizRepository) List(ctx context.Context) ([]domain.QuizSummary, error) {
	p := dynamodb.NewScanPaginator(r.table.api, &dynamodb.ScanInput{
		TableName:        aws.String(r.table.name),
		FilterExpression: aws.String("begins_with(PK, :pk) AND SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: document.QuizPrefix},
			":sk": &types.AttributeValueMemberS{Value: document.SKMetadata},
		},
		ProjectionExpression: aws.String("quizId, title, createdByEmail"),
	})

	summaries := []domain.QuizSummary{}
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("scan quizzes: %w", err)
		}

		var recs []document.QuizRecord
		if err := attributevalue.UnmarshalListOfMaps(page.Items, &recs); err != nil {
			return nil, fmt.Errorf("unmarshal quizzes: %w", err)
		}
		for _, rec := range recs {
			summaries = append(summaries, rec.Summary())
		}
	}
	return summaries, nil
}

// AppendQuestion uses list_append so concurrent appends to the same quiz
// never overwrite each other. The condition turns a missing quiz into
// ErrQuizNotFound instead of creating a stub item.
func (r *QuizRepository) AppendQuestion(ctx context.Context, quizID string, q domain.Question) error {
	questions, err := attributevalue.MarshalList([]document.QuestionRecord{document.FromQuestion(q)})
	if err != nil {
		return fmt.Errorf("marshal question: %w", err)
	}

	k := document.QuizKey(quizID)
	_, err = r.table.api.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:           aws.String(r.table.name),
		Key:                 keyOf(k.PK, k.SK),
		UpdateExpression:    aws.String("SET questions = list_append(if_not_exists(questions, :empty), :q)"),
		ConditionExpression: aws.String("attribute_exists(PK)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":q":     &types.AttributeValueMemberL{Value: questions},
			":empty": &types.AttributeValueMemberL{Value: []types.AttributeValue{}},
		},
	})
	if err != nil {
		if isConditionFailed(err) {
			return domain.ErrQuizNotFound
		}
		return fmt.Errorf("append question: %w", err)
	}
	return nil
}

func (r *QuizRepository) Delete(ctx context.Context, id string) error {
	k := document.QuizKey(id)
	_, err := r.table.api.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:           aws.String(r.table.name),
		Key:                 keyOf(k.PK, k.SK),
		ConditionExpression: aws.String("attribute_exists(PK)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return domain.ErrQuizNotFound
		}
		return fmt.Errorf("delete quiz: %w", err)
	}
	return nil
}
