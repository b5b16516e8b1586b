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

// OfferRepo provides typed DynamoDB operations for the offers table.
type OfferRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewOfferRepo(client *dynamodb.Client, tableName string) *OfferRepo {
	return &OfferRepo{client: client, tableName: tableName}
}

func (r *OfferRepo) Put(ctx context.Context, o *domain.Offer) error {
	item, err := attributevalue.MarshalMap(o)
	if err != nil {
		return fmt.Errorf("marshal offer: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *OfferRepo) Get(ctx context.Context, offerID int64) (*domain.Offer, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       numKey("offer_id", offerID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("offer %d: %w", offerID, domain.ErrNotFound)
	}
	var o domain.Offer
	if err := attributevalue.UnmarshalMap(out.Item, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// ListByAuthor returns the author's offers, newest first.
func (r *OfferRepo) ListByAuthor(ctx context.Context, authorID string) ([]domain.Offer, error) {
	items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexOfferAuthor),
		KeyConditionExpression: aws.String("author_id = :a"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":a": &types.AttributeValueMemberS{Value: authorID},
		},
	})
	if err != nil {
		return nil, err
	}
	var offers []domain.Offer
	if err := attributevalue.UnmarshalListOfMaps(items, &offers); err != nil {
		return nil, err
	}
	sort.Slice(offers, func(i, j int) bool { return offers[i].CreatedAt.After(offers[j].CreatedAt) })
	return offers, nil
}

func (r *OfferRepo) Update(ctx context.Context, offerID int64, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	return updateExisting(ctx, r.client, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       numKey("offer_id", offerID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	}, "offer_id", fmt.Sprintf("offer %d", offerID))
}

func (r *OfferRepo) Delete(ctx context.Context, offerID int64) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       numKey("offer_id", offerID),
	})
	return err
}

func (r *OfferRepo) CountOpenByAuthor(ctx context.Context, authorID string, now time.Time) (int, error) {
	offers, err := r.ListByAuthor(ctx, authorID)
	if err != nil {
		return 0, err
	}
	n := 0
	for i := range offers {
		if !offers[i].IsClosed(now) {
			n++
		}
	}
	return n, nil
}

func (r *OfferRepo) LatestCreatedByAuthor(ctx context.Context, authorID string) (time.Time, bool, error) {
	return latestCreated(ctx, r.client, r.tableName, indexOfferAuthor, "author_id", authorID)
}

// latestCreated reads the newest created_at on a <hash>-created_at index.
func latestCreated(ctx context.Context, client *dynamodb.Client, table, index, hashAttr, value string) (time.Time, bool, error) {
	out, err := client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(table),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    aws.String("#h = :v"),
		ExpressionAttributeNames:  map[string]string{"#h": hashAttr, "#c": "created_at"},
		ExpressionAttributeValues: map[string]types.AttributeValue{":v": &types.AttributeValueMemberS{Value: value}},
		ProjectionExpression:      aws.String("#c"),
		ScanIndexForward:          aws.Bool(false),
		Limit:                     aws.Int32(1),
	})
	if err != nil {
		return time.Time{}, false, err
	}
	if len(out.Items) == 0 {
		return time.Time{}, false, nil
	}
	var row struct {
		CreatedAt time.Time `dynamodbav:"created_at"`
	}
	if err := attributevalue.UnmarshalMap(out.Items[0], &row); err != nil {
		return time.Time{}, false, err
	}
	return row.CreatedAt, true, nil
}
