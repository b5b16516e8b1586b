package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/commission-api/internal/domain"
	"golang.org/x/sync/errgroup"
)

// CommissionRepo provides typed DynamoDB operations for the commissions table.
type CommissionRepo struct {
	client    *dynamodb.Client
	tableName string
}

func NewCommissionRepo(client *dynamodb.Client, tableName string) *CommissionRepo {
	return &CommissionRepo{client: client, tableName: tableName}
}

func (r *CommissionRepo) Put(ctx context.Context, c *domain.Commission) error {
	item, err := attributevalue.MarshalMap(c)
	if err != nil {
		return fmt.Errorf("marshal commission: %w", err)
	}
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	return err
}

func (r *CommissionRepo) Get(ctx context.Context, commissionID int64) (*domain.Commission, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key:       numKey("commission_id", commissionID),
	})
	if err != nil {
		return nil, err
	}
	if out.Item == nil {
		return nil, fmt.Errorf("commission %d: %w", commissionID, domain.ErrNotFound)
	}
	var c domain.Commission
	if err := attributevalue.UnmarshalMap(out.Item, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CommissionRepo) Update(ctx context.Context, commissionID int64, updates map[string]interface{}) error {
	updates[fieldUpdatedAt] = time.Now().UTC()
	ue, err := buildUpdateExpr(updates)
	if err != nil {
		return err
	}
	return updateExisting(ctx, r.client, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       numKey("commission_id", commissionID),
		UpdateExpression:          aws.String(ue.Expr),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	}, "commission_id", fmt.Sprintf("commission %d", commissionID))
}

func (r *CommissionRepo) Delete(ctx context.Context, commissionID int64) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       numKey("commission_id", commissionID),
	})
	return err
}

// CountByOffer counts the offer's commissions in any of states, or in every state when none are given.
func (r *CommissionRepo) CountByOffer(ctx context.Context, offerID int64, states ...domain.CommissionState) (int, error) {
	b := expression.NewBuilder().WithKeyCondition(expression.Key("offer_id").Equal(expression.Value(offerID)))
	if len(states) > 0 {
		b = b.WithFilter(stateIn(states))
	}
	return r.count(ctx, indexCommissionOffer, b)
}

func (r *CommissionRepo) CountByCommissionerOnOffer(ctx context.Context, offerID int64, commissionerID string) (int, error) {
	b := expression.NewBuilder().
		WithKeyCondition(expression.Key("commissioner_id").Equal(expression.Value(commissionerID))).
		WithFilter(expression.Name("offer_id").Equal(expression.Value(offerID)))
	return r.count(ctx, indexCommissionCommissioner, b)
}

// LatestCreatedByCommissioner scans the commissioner's rows; the index is ordered by updated_at.
func (r *CommissionRepo) LatestCreatedByCommissioner(ctx context.Context, commissionerID string) (time.Time, bool, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("commissioner_id").Equal(expression.Value(commissionerID))).
		WithProjection(expression.NamesList(expression.Name("created_at"))).
		Build()
	if err != nil {
		return time.Time{}, false, err
	}
	items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexCommissionCommissioner),
		KeyConditionExpression:    expr.KeyCondition(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return time.Time{}, false, err
	}
	var rows []struct {
		CreatedAt time.Time `dynamodbav:"created_at"`
	}
	if err := attributevalue.UnmarshalListOfMaps(items, &rows); err != nil {
		return time.Time{}, false, err
	}
	var latest time.Time
	for _, row := range rows {
		if row.CreatedAt.After(latest) {
			latest = row.CreatedAt
		}
	}
	return latest, len(rows) > 0, nil
}

// Search reads the viewer's commissions from both party indexes concurrently,
// pushes the filter down to DynamoDB, then merges and orders the result.
func (r *CommissionRepo) Search(ctx context.Context, f domain.CommissionFilter) ([]domain.Commission, error) {
	if f.MatchNone {
		return nil, nil
	}
	filter, hasFilter := searchFilter(f)

	var asCommissioner, asAuthor []domain.Commission
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		asCommissioner, err = r.queryParty(gctx, indexCommissionCommissioner, "commissioner_id", f.ViewerID, filter, hasFilter)
		return err
	})
	g.Go(func() error {
		var err error
		asAuthor, err = r.queryParty(gctx, indexCommissionAuthor, "offer_author_id", f.ViewerID, filter, hasFilter)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[int64]struct{}, len(asCommissioner)+len(asAuthor))
	merged := make([]domain.Commission, 0, len(asCommissioner)+len(asAuthor))
	for _, c := range append(asCommissioner, asAuthor...) {
		if _, dup := seen[c.CommissionID]; dup {
			continue
		}
		seen[c.CommissionID] = struct{}{}
		merged = append(merged, c)
	}
	return f.Apply(merged), nil
}

func (r *CommissionRepo) queryParty(ctx context.Context, index, attr, viewerID string, filter expression.ConditionBuilder, hasFilter bool) ([]domain.Commission, error) {
	b := expression.NewBuilder().WithKeyCondition(expression.Key(attr).Equal(expression.Value(viewerID)))
	if hasFilter {
		b = b.WithFilter(filter)
	}
	expr, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build search expression: %w", err)
	}
	items, err := queryAll(ctx, r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, err
	}
	var out []domain.Commission
	if err := attributevalue.UnmarshalListOfMaps(items, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CommissionRepo) count(ctx context.Context, index string, b expression.Builder) (int, error) {
	expr, err := b.Build()
	if err != nil {
		return 0, err
	}
	p := dynamodb.NewQueryPaginator(r.client, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(index),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Select:                    types.SelectCount,
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

// searchFilter compiles everything in f except the viewer scope into a filter expression.
func searchFilter(f domain.CommissionFilter) (expression.ConditionBuilder, bool) {
	var conds []expression.ConditionBuilder
	if len(f.States) > 0 {
		conds = append(conds, stateIn(f.States))
	}
	if f.OfferID != nil {
		conds = append(conds, expression.Name("offer_id").Equal(expression.Value(*f.OfferID)))
	}
	if f.CommissionerID != nil {
		conds = append(conds, expression.Name("commissioner_id").Equal(expression.Value(*f.CommissionerID)))
	}
	if f.OfferAuthorID != nil {
		conds = append(conds, expression.Name("offer_author_id").Equal(expression.Value(*f.OfferAuthorID)))
	}
	if f.SelfManaged != nil {
		if *f.SelfManaged {
			conds = append(conds, expression.Name("commissioner_id").Equal(expression.Name("offer_author_id")))
		} else {
			conds = append(conds, expression.Name("commissioner_id").NotEqual(expression.Name("offer_author_id")))
		}
	}
	switch len(conds) {
	case 0:
		return expression.ConditionBuilder{}, false
	case 1:
		return conds[0], true
	}
	return expression.And(conds[0], conds[1], conds[2:]...), true
}

func stateIn(states []domain.CommissionState) expression.ConditionBuilder {
	if len(states) == 1 {
		return expression.Name("state").Equal(expression.Value(string(states[0])))
	}
	rest := make([]expression.OperandBuilder, 0, len(states)-1)
	for _, st := range states[1:] {
		rest = append(rest, expression.Value(string(st)))
	}
	return expression.Name("state").In(expression.Value(string(states[0])), rest...)
}
