package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/commission-api/internal/domain"
)

// ChatRepo covers the chats and chat_messages tables.
type ChatRepo struct {
	client        *dynamodb.Client
	chatTable     string
	messagesTable string
}

func NewChatRepo(client *dynamodb.Client, chatTable, messagesTable string) *ChatRepo {
	return &ChatRepo{client: client, chatTable: chatTable, messagesTable: messagesTable}
}

func (r *ChatRepo) PutChat(ctx context.Context, c *domain.Chat) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal chat: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.chatTable),
		Item:      item,
	})
	return err
}

func (r *ChatRepo) GetChat(ctx context.Context, chatID string) (*domain.Chat, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.chatTable),
		Key:       strKey("chat_id", chatID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	var c domain.Chat
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ChatRepo) DeleteChat(ctx context.Context, chatID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.chatTable),
		Key:       strKey("chat_id", chatID),
	})
	return err
}

func (r *ChatRepo) PutMessage(ctx context.Context, m *domain.ChatMessage) error {
	item, err := attributevalue.MarshalMap(m)
	if err != nil {
		return fmt.Errorf("marshal chat message: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.messagesTable),
		Item:      item,
	})
	return err
}

func (r *ChatRepo) DeleteMessage(ctx context.Context, messageID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.messagesTable),
		Key:       strKey("message_id", messageID),
	})
	return err
}

// ListMessages returns the chat's messages, oldest first.
func (r *ChatRepo) ListMessages(ctx context.Context, chatID string) ([]domain.ChatMessage, error) {
	items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.messagesTable),
		IndexName:              aws.String(indexMessageChat),
		KeyConditionExpression: aws.String("chat_id = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: chatID},
		},
		ScanIndexForward: aws.Bool(true),
	})
	if err != nil {
		return nil, err
	}
	var msgs []domain.ChatMessage
	if err := attributevalue.UnmarshalListOfMaps(items, &msgs); err != nil {
		return nil, err
	}
	return msgs, nil
}

func (r *ChatRepo) LatestMessageByAuthor(ctx context.Context, authorID string) (time.Time, bool, error) {
	return latestCreated(ctx, r.client, r.messagesTable, indexMessageAuthor, "author_id", authorID)
}
