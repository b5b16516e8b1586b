package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/commission-api/internal/domain"
)

// FollowRepo stores follow edges keyed by (follower_id, followed_id).
type FollowRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewFollowRepo(client *dynamodb.Client, tableName string) *FollowRepo {
	return &FollowRepo{client: client, tableName: tableName}
}

// Put stores the edge unless it already exists. created is false for a repeat follow.
func (r *FollowRepo) Put(ctx context.Context, f *domain.UserFollowingUser) (bool, error) {
	item, err := attributevalue.MarshalMap(f)
	if err != nil {
		return false, fmt.Errorf("marshal follow: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(follower_id)"),
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return false, nil
	}
	return err == nil, err
}

func (r *FollowRepo) Delete(ctx context.Context, followerID, followedID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       compositeKey("follower_id", followerID, "followed_id", followedID),
	})
	return err
}

func (r *FollowRepo) ListFollowers(ctx context.Context, followedID string) ([]string, error) {
	items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexFollowed),
		KeyConditionExpression: aws.String("followed_id = :f"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":f": &types.AttributeValueMemberS{Value: followedID},
		},
	})
	if err != nil {
		return nil, err
	}
	var edges []domain.UserFollowingUser
	if err := attributevalue.UnmarshalListOfMaps(items, &edges); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.FollowerID)
	}
	sort.Strings(out)
	return out, nil
}
