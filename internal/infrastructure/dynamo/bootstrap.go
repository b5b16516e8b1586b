package dynamo

import (
	"context"
	"errors"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/commission-api/internal/config"
)

// Bootstrap creates all DynamoDB tables and GSIs if they don't already exist.
func Bootstrap(ctx context.Context, client *dynamodb.Client, tables config.DynamoTables) {
	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Users),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			attr("user_id", types.ScalarAttributeTypeS),
			attr(fieldUsernameKey, types.ScalarAttributeTypeS),
			attr(fieldEmailKey, types.ScalarAttributeTypeS),
		},
		KeySchema: hashKey("user_id"),
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexUsername, fieldUsernameKey, ""),
			gsi(indexEmail, fieldEmailKey, ""),
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Offers),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			attr("offer_id", types.ScalarAttributeTypeN),
			attr("author_id", types.ScalarAttributeTypeS),
			attr("created_at", types.ScalarAttributeTypeS),
		},
		KeySchema: hashKey("offer_id"),
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexOfferAuthor, "author_id", "created_at"),
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Commissions),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			attr("commission_id", types.ScalarAttributeTypeN),
			attr("offer_id", types.ScalarAttributeTypeN),
			attr("commissioner_id", types.ScalarAttributeTypeS),
			attr("offer_author_id", types.ScalarAttributeTypeS),
			attr("updated_at", types.ScalarAttributeTypeS),
		},
		KeySchema: hashKey("commission_id"),
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexCommissionOffer, "offer_id", ""),
			gsi(indexCommissionCommissioner, "commissioner_id", "updated_at"),
			gsi(indexCommissionAuthor, "offer_author_id", "updated_at"),
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:            aws.String(tables.Chats),
		BillingMode:          types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{attr("chat_id", types.ScalarAttributeTypeS)},
		KeySchema:            hashKey("chat_id"),
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.ChatMessages),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			attr("message_id", types.ScalarAttributeTypeS),
			attr("chat_id", types.ScalarAttributeTypeS),
			attr("author_id", types.ScalarAttributeTypeS),
			attr("created_at", types.ScalarAttributeTypeS),
		},
		KeySchema: hashKey("message_id"),
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexMessageChat, "chat_id", "created_at"),
			gsi(indexMessageAuthor, "author_id", "created_at"),
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Follows),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			attr("follower_id", types.ScalarAttributeTypeS),
			attr("followed_id", types.ScalarAttributeTypeS),
		},
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("follower_id"), KeyType: types.KeyTypeHash},
			{AttributeName: aws.String("followed_id"), KeyType: types.KeyTypeRange},
		},
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexFollowed, "followed_id", ""),
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.SupportTickets),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			attr("ticket_id", types.ScalarAttributeTypeS),
			attr("author_id", types.ScalarAttributeTypeS),
			attr("created_at", types.ScalarAttributeTypeS),
		},
		KeySchema: hashKey("ticket_id"),
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexTicketAuthor, "author_id", "created_at"),
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Notifications),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			attr("notification_id", types.ScalarAttributeTypeS),
			attr("recipient_id", types.ScalarAttributeTypeS),
			attr("created_at", types.ScalarAttributeTypeS),
		},
		KeySchema: hashKey("notification_id"),
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexRecipient, "recipient_id", "created_at"),
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:            aws.String(tables.NotificationPayloads),
		BillingMode:          types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{attr("notification_id", types.ScalarAttributeTypeS)},
		KeySchema:            hashKey("notification_id"),
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:            aws.String(tables.Counters),
		BillingMode:          types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{attr("name", types.ScalarAttributeTypeS)},
		KeySchema:            hashKey("name"),
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:   aws.String(tables.Tags),
		BillingMode: types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{
			attr("tag_name", types.ScalarAttributeTypeS),
			attr("category_name", types.ScalarAttributeTypeS),
		},
		KeySchema: hashKey("tag_name"),
		GlobalSecondaryIndexes: []types.GlobalSecondaryIndex{
			gsi(indexTagCategory, "category_name", ""),
		},
	})

	createTable(ctx, client, &dynamodb.CreateTableInput{
		TableName:            aws.String(tables.TagCategories),
		BillingMode:          types.BillingModePayPerRequest,
		AttributeDefinitions: []types.AttributeDefinition{attr("category_name", types.ScalarAttributeTypeS)},
		KeySchema:            hashKey("category_name"),
	})
}

func attr(name string, t types.ScalarAttributeType) types.AttributeDefinition {
	return types.AttributeDefinition{AttributeName: aws.String(name), AttributeType: t}
}

func hashKey(name string) []types.KeySchemaElement {
	return []types.KeySchemaElement{{AttributeName: aws.String(name), KeyType: types.KeyTypeHash}}
}

// gsi builds a GSI descriptor. If sortKey is empty, only a hash key is added.
func gsi(indexName, hashKey, sortKey string) types.GlobalSecondaryIndex {
	ks := []types.KeySchemaElement{
		{AttributeName: aws.String(hashKey), KeyType: types.KeyTypeHash},
	}
	if sortKey != "" {
		ks = append(ks, types.KeySchemaElement{
			AttributeName: aws.String(sortKey), KeyType: types.KeyTypeRange,
		})
	}
	return types.GlobalSecondaryIndex{
		IndexName:  aws.String(indexName),
		KeySchema:  ks,
		Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
	}
}

func createTable(ctx context.Context, client *dynamodb.Client, input *dynamodb.CreateTableInput) {
	_, err := client.CreateTable(ctx, input)
	if err != nil {
		// ResourceInUseException means the table already exists.
		var riue *types.ResourceInUseException
		if !errors.As(err, &riue) {
			slog.Warn("could not create table", "table", *input.TableName, "err", err)
		}
	} else {
		slog.Info("created table", "table", *input.TableName)
	}
}
