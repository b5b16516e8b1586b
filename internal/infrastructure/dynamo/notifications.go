package dynamo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/commission-api/internal/domain"
)

// pairsPerTransaction keeps each TransactWriteItems call under the 100 item limit.
const pairsPerTransaction = 50

// NotificationRepo stores the generic notification rows and their payload rows in two tables.
type NotificationRepo struct {
	client        *dynamodb.Client
	tableName     string
	payloadsTable string
}

func NewNotificationRepo(client *dynamodb.Client, tableName, payloadsTable string) *NotificationRepo {
	return &NotificationRepo{client: client, tableName: tableName, payloadsTable: payloadsTable}
}

// CreateNotifications writes each base row together with its payload row.
// Batches larger than one transaction are written chunk by chunk; when a chunk fails
// the chunks already committed are deleted again.
func (r *NotificationRepo) CreateNotifications(ctx context.Context, ns []domain.Notification) error {
	items := make([]types.TransactWriteItem, 0, 2*len(ns))
	for i := range ns {
		base, err := attributevalue.MarshalMap(ns[i])
		if err != nil {
			return fmt.Errorf("marshal notification: %w", err)
		}
		rec, err := domain.EncodePayload(ns[i].NotificationID, ns[i].Payload)
		if err != nil {
			return err
		}
		payload, err := attributevalue.MarshalMap(rec)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		items = append(items,
			types.TransactWriteItem{Put: &types.Put{
				TableName:           aws.String(r.tableName),
				Item:                base,
				ConditionExpression: aws.String("attribute_not_exists(notification_id)"),
			}},
			types.TransactWriteItem{Put: &types.Put{
				TableName: aws.String(r.payloadsTable),
				Item:      payload,
			}},
		)
	}

	for start := 0; start < len(ns); start += pairsPerTransaction {
		end := min(start+pairsPerTransaction, len(ns))
		_, err := r.client.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
			TransactItems: items[2*start : 2*end],
		})
		if err != nil {
			r.undo(ctx, ns[:start])
			var tce *types.TransactionCanceledException
			if errors.As(err, &tce) {
				return fmt.Errorf("write notifications: %s: %w", aws.ToString(tce.Message), domain.ErrConflict)
			}
			return fmt.Errorf("write notifications: %w", err)
		}
	}
	return nil
}

// undo removes pairs that were committed before a later chunk failed.
func (r *NotificationRepo) undo(ctx context.Context, ns []domain.Notification) {
	for _, n := range ns {
		if _, err := r.DeletePayload(ctx, n.NotificationID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			slog.Error("notification undo failed", "notification_id", n.NotificationID, "err", err)
		}
		if err := r.DeleteBase(ctx, n.NotificationID); err != nil {
			slog.Error("notification undo failed", "notification_id", n.NotificationID, "err", err)
		}
	}
}

func (r *NotificationRepo) Get(ctx context.Context, notificationID string) (*domain.Notification, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("notification_id", notificationID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("notification %s: %w", notificationID, domain.ErrNotFound)
	}
	var n domain.Notification
	if err := attributevalue.UnmarshalMap(out.Item, &n); err != nil {
		return nil, err
	}
	ns := []domain.Notification{n}
	if err := r.attach(ctx, ns); err != nil {
		return nil, err
	}
	return &ns[0], nil
}

// ListByRecipient returns the recipient's notifications, newest first.
func (r *NotificationRepo) ListByRecipient(ctx context.Context, recipientID string, includeSeen bool) ([]domain.Notification, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		IndexName:              aws.String(indexRecipient),
		KeyConditionExpression: aws.String("recipient_id = :r"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":r": &types.AttributeValueMemberS{Value: recipientID},
		},
		ScanIndexForward: aws.Bool(false),
	}
	if !includeSeen {
		input.FilterExpression = aws.String("#s = :f")
		input.ExpressionAttributeNames = map[string]string{"#s": fieldSeen}
		input.ExpressionAttributeValues[":f"] = &types.AttributeValueMemberBOOL{Value: false}
	}
	items, err := queryAll(ctx, r.client, input)
	if err != nil {
		return nil, err
	}
	var ns []domain.Notification
	if err := attributevalue.UnmarshalListOfMaps(items, &ns); err != nil {
		return nil, err
	}
	sort.SliceStable(ns, func(i, j int) bool {
		if ns[i].CreatedAt.Equal(ns[j].CreatedAt) {
			return ns[i].NotificationID > ns[j].NotificationID
		}
		return ns[i].CreatedAt.After(ns[j].CreatedAt)
	})
	if err := r.attach(ctx, ns); err != nil {
		return nil, err
	}
	return ns, nil
}

func (r *NotificationRepo) CountUnseen(ctx context.Context, recipientID string) (int, error) {
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                aws.String(r.tableName),
		IndexName:                aws.String(indexRecipient),
		KeyConditionExpression:   aws.String("recipient_id = :r"),
		FilterExpression:         aws.String("#s = :f"),
		ExpressionAttributeNames: map[string]string{"#s": fieldSeen},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":r": &types.AttributeValueMemberS{Value: recipientID},
			":f": &types.AttributeValueMemberBOOL{Value: false},
		},
		Select: types.SelectCount,
	})
	n := 0
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return 0, err
		}
		n += int(page.Count)
	}
	return n, nil
}

// MarkSeen flags the given notifications as seen. Ids that no longer exist are skipped.
func (r *NotificationRepo) MarkSeen(ctx context.Context, notificationIDs ...string) error {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldSeen: true})
	if err != nil {
		return err
	}
	for _, nid := range notificationIDs {
		err := updateExisting(ctx, r.client, &dynamodb.UpdateItemInput{
			TableName:                 aws.String(r.tableName),
			Key:                       strKey("notification_id", nid),
			UpdateExpression:          aws.String(ue.Expr),
			ExpressionAttributeNames:  copyNames(ue.Names),
			ExpressionAttributeValues: ue.Values,
		}, "notification_id", "notification "+nid)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
	}
	return nil
}

// DeletePayload removes the payload record and returns what was stored.
func (r *NotificationRepo) DeletePayload(ctx context.Context, notificationID string) (*domain.PayloadRecord, error) {
	out, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:    aws.String(r.payloadsTable),
		Key:          strKey("notification_id", notificationID),
		ReturnValues: types.ReturnValueAllOld,
	})
	if err != nil {
		return nil, err
	}
	if len(out.Attributes) == 0 {
		return nil, fmt.Errorf("payload %s: %w", notificationID, domain.ErrNotFound)
	}
	var rec domain.PayloadRecord
	if err := attributevalue.UnmarshalMap(out.Attributes, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *NotificationRepo) DeleteBase(ctx context.Context, notificationID string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       strKey("notification_id", notificationID),
	})
	return err
}

// attach loads and decodes the payload of every notification in ns.
func (r *NotificationRepo) attach(ctx context.Context, ns []domain.Notification) error {
	byID := make(map[string]*domain.Notification, len(ns))
	for i := range ns {
		byID[ns[i].NotificationID] = &ns[i]
	}
	for start := 0; start < len(ns); start += batchGetLimit {
		end := min(start+batchGetLimit, len(ns))
		keys := make([]map[string]types.AttributeValue, 0, end-start)
		for _, n := range ns[start:end] {
			keys = append(keys, strKey("notification_id", n.NotificationID))
		}
		items, err := batchGet(ctx, r.client, r.payloadsTable, keys)
		if err != nil {
			return err
		}
		var recs []domain.PayloadRecord
		if err := attributevalue.UnmarshalListOfMaps(items, &recs); err != nil {
			return err
		}
		for _, rec := range recs {
			p, err := rec.Decode()
			if err != nil {
				return err
			}
			if n, ok := byID[rec.NotificationID]; ok {
				n.Payload = p
			}
		}
	}
	return nil
}

func copyNames(names map[string]string) map[string]string {
	out := make(map[string]string, len(names)+1)
	for k, v := range names {
		out[k] = v
	}
	return out
}
