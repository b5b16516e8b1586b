package dynamo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/commission-api/internal/domain"
)

type SupportRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewSupportRepo(client *dynamodb.Client, tableName string) *SupportRepo {
	return &SupportRepo{client: client, tableName: tableName}
}

func (r *SupportRepo) Put(ctx context.Context, t *domain.SupportTicket) error {
	item, err := attributevalue.MarshalMap(t)
	if err != nil {
		return fmt.Errorf("marshal support ticket: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *SupportRepo) Get(ctx context.Context, ticketID string) (*domain.SupportTicket, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("ticket_id", ticketID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("support ticket %s: %w", ticketID, domain.ErrNotFound)
	}
	var t domain.SupportTicket
	if err := attributevalue.UnmarshalMap(out.Item, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *SupportRepo) Update(ctx context.Context, ticketID string, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	return updateExisting(ctx, r.client, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       strKey("ticket_id", ticketID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	}, "ticket_id", "support ticket "+ticketID)
}

// ListByAuthor returns the author's tickets, newest first.
func (r *SupportRepo) ListByAuthor(ctx context.Context, authorID string) ([]domain.SupportTicket, error) {
	items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexTicketAuthor),
		KeyConditionExpression: aws.String("author_id = :a"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a": &types.AttributeValueMemberS{Value: authorID},
		},
	})
	if err != nil {
		return nil, err
	}
	var tickets []domain.SupportTicket
	if err := attributevalue.UnmarshalListOfMaps(items, &tickets); err != nil {
		return nil, err
	}
	sort.Slice(tickets, func(i, j int) bool { return tickets[i].CreatedAt.After(tickets[j].CreatedAt) })
	return tickets, nil
}
