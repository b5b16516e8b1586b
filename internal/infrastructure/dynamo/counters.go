package dynamo

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// CounterRepo hands out increasing integer ids from one atomic counter item per name.
type CounterRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCounterRepo(client *dynamodb.Client, tableName string) *CounterRepo {
	return &CounterRepo{client: client, tableName: tableName}
}

func (r *CounterRepo) Next(ctx context.Context, name string) (int64, error) {
	out, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tableName),
		Key:                      strKey("name", name),
		UpdateExpression:         aws.String("ADD #v :one"),
		ExpressionAttributeNames: map[string]string{"#v": "value"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		return 0, fmt.Errorf("advance counter %s: %w", name, err)
	}
	v, ok := out.Attributes["value"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("counter %s returned no value", name)
	}
	return strconv.ParseInt(v.Value, 10, 64)
}
