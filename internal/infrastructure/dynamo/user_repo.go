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

type UserRepository struct {
	table       *Table
	userIDIndex string
}

// NewUserRepository expects a global secondary index named userIDIndex with
// userId as its partition key.
func NewUserRepository(table *Table, userIDIndex string) *UserRepository {
	return &UserRepository{table: table, userIDIndex: userIDIndex}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	item, err := attributevalue.MarshalMap(document.FromUser(user))
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	_, err = r.table.api.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.table.name),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		if isConditionFailed(err) {
			return domain.ErrUserExists
		}
		return fmt.Errorf("put user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	k := document.UserKey(email)
	out, err := r.table.api.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.table.name),
		Key:       keyOf(k.PK, k.SK),
	})
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if out.Item == nil {
		return nil, domain.ErrUserNotFound
	}
	return unmarshalUser(out.Item)
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	out, err := r.table.api.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.table.name),
		IndexName:              aws.String(r.userIDIndex),
		KeyConditionExpression: aws.String("userId = :id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":id": &types.AttributeValueMemberS{Value: id},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query user by id: %w", err)
	}
	if len(out.Items) == 0 {
		return nil, domain.ErrUserNotFound
	}
	return unmarshalUser(out.Items[0])
}

func unmarshalUser(item map[string]types.AttributeValue) (*domain.User, error) {
	var rec document.UserRecord
	if err := attributevalue.UnmarshalMap(item, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal user: %w", err)
	}
	return rec.ToDomain(), nil
}
