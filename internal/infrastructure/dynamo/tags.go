package dynamo

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/commission-api/internal/domain"
)

// TagRepo covers the tags and tag_categories tables.
type TagRepo struct {
	client          *dynamodb.Client
	tagTable        string
	categoriesTable string
}

func NewTagRepo(client *dynamodb.Client, tagTable, categoriesTable string) *TagRepo {
	return &TagRepo{client: client, tagTable: tagTable, categoriesTable: categoriesTable}
}

// CreateTag fails with ErrConflict when the name is taken.
func (r *TagRepo) CreateTag(ctx context.Context, t *domain.Tag) error {
	return r.putNew(ctx, r.tagTable, "tag_name", t, "tag "+t.Name)
}

func (r *TagRepo) GetTag(ctx context.Context, name string) (*domain.Tag, error) {
	var t domain.Tag
	if err := r.get(ctx, r.tagTable, "tag_name", name, &t, "tag "+name); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTags returns every tag ordered by name.
func (r *TagRepo) ListTags(ctx context.Context) ([]domain.Tag, error) {
	var tags []domain.Tag
	if err := r.scanAll(ctx, r.tagTable, &tags); err != nil {
		return nil, err
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (r *TagRepo) ListTagsByCategory(ctx context.Context, category string) ([]domain.Tag, error) {
	items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:              aws.String(r.tagTable),
		IndexName:              aws.String(indexTagCategory),
		KeyConditionExpression: aws.String("category_name = :c"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":c": &types.AttributeValueMemberS{Value: category},
		},
	})
	if err != nil {
		return nil, err
	}
	var tags []domain.Tag
	if err := attributevalue.UnmarshalListOfMaps(items, &tags); err != nil {
		return nil, err
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Name < tags[j].Name })
	return tags, nil
}

func (r *TagRepo) UpdateTag(ctx context.Context, name string, updates map[string]interface{}) error {
	return r.update(ctx, r.tagTable, "tag_name", name, updates, "tag "+name)
}

// ClearTagCategory removes the tag from its category. The attribute is removed rather than
// blanked because it keys the category index.
func (r *TagRepo) ClearTagCategory(ctx context.Context, name string) error {
	return updateExisting(ctx, r.client, &dynamodb.UpdateItemInput{
		TableName:                aws.String(r.tagTable),
		Key:                      strKey("tag_name", name),
		UpdateExpression:         aws.String("REMOVE #c SET #u = :u"),
		ExpressionAttributeNames: map[string]string{"#c": "category_name", "#u": fieldUpdatedAt},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":u": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339Nano)},
		},
	}, "tag_name", "tag "+name)
}

func (r *TagRepo) DeleteTag(ctx context.Context, name string) error {
	return r.delete(ctx, r.tagTable, "tag_name", name)
}

func (r *TagRepo) CreateCategory(ctx context.Context, c *domain.TagCategory) error {
	return r.putNew(ctx, r.categoriesTable, "category_name", c, "tag category "+c.Name)
}

func (r *TagRepo) GetCategory(ctx context.Context, name string) (*domain.TagCategory, error) {
	var c domain.TagCategory
	if err := r.get(ctx, r.categoriesTable, "category_name", name, &c, "tag category "+name); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *TagRepo) ListCategories(ctx context.Context) ([]domain.TagCategory, error) {
	var cats []domain.TagCategory
	if err := r.scanAll(ctx, r.categoriesTable, &cats); err != nil {
		return nil, err
	}
	sort.Slice(cats, func(i, j int) bool { return cats[i].Name < cats[j].Name })
	return cats, nil
}

func (r *TagRepo) UpdateCategory(ctx context.Context, name string, updates map[string]interface{}) error {
	return r.update(ctx, r.categoriesTable, "category_name", name, updates, "tag category "+name)
}

func (r *TagRepo) DeleteCategory(ctx context.Context, name string) error {
	return r.delete(ctx, r.categoriesTable, "category_name", name)
}

func (r *TagRepo) putNew(ctx context.Context, table, pk string, v interface{}, what string) error {
	item, err := attributevalue.MarshalMap(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", what, err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                aws.String(table),
		Item:                     item,
		ConditionExpression:      aws.String("attribute_not_exists(#pk)"),
		ExpressionAttributeNames: map[string]string{"#pk": pk},
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return fmt.Errorf("%s: %w", what, domain.ErrConflict)
	}
	return err
}

func (r *TagRepo) get(ctx context.Context, table, pk, value string, out interface{}, what string) error {
	res, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(table),
		Key:       strKey(pk, value),
	})
	if err != nil {
		return err
	}
	if res.Item == nil {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return attributevalue.UnmarshalMap(res.Item, out)
}

func (r *TagRepo) update(ctx context.Context, table, pk, value string, updates map[string]interface{}, what string) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	return updateExisting(ctx, r.client, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(table),
		Key:                       strKey(pk, value),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	}, pk, what)
}

func (r *TagRepo) delete(ctx context.Context, table, pk, value string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(table),
		Key:       strKey(pk, value),
	})
	return err
}

// scanAll reads a whole table. The catalogue is small and staff-curated.
func (r *TagRepo) scanAll(ctx context.Context, table string, out interface{}) error {
	var items []map[string]types.AttributeValue
	p := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{TableName: aws.String(table)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return err
		}
		items = append(items, page.Items...)
	}
	return attributevalue.UnmarshalListOfMaps(items, out)
}
