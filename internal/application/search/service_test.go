package search

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/commission-api/internal/domain"
	"github.com/commission-api/internal/infrastructure/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockUserResolver struct{ mock.Mock }

func (m *mockUserResolver) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if u, _ := args.Get(0).(*domain.User); u != nil {
		return u, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- Compile ---

func TestCompile_Defaults(t *testing.T) {
	svc := NewService(ServiceDeps{Users: &mockUserResolver{}})
	f, err := svc.Compile(context.Background(), Parse(""), "viewer")
	require.NoError(t, err)

	assert.Equal(t, "viewer", f.ViewerID)
	assert.Equal(t, domain.CommissionStates, f.States)
	assert.Equal(t, domain.SortByUpdatedDate, f.Sort)
	assert.True(t, f.Descending)
	assert.Nil(t, f.SelfManaged)
	assert.Nil(t, f.OfferID)
	assert.False(t, f.MatchNone)
}

func TestCompile_FinishedMeansClosed(t *testing.T) {
	svc := NewService(ServiceDeps{Users: &mockUserResolver{}})
	f, err := svc.Compile(context.Background(), Parse("state:finished state:review order:a sort:created_date"), "viewer")
	require.NoError(t, err)
	assert.Equal(t, []domain.CommissionState{domain.CommissionStateReview, domain.CommissionStateClosed}, f.States)
	assert.False(t, f.Descending)
	assert.Equal(t, domain.SortByCreatedDate, f.Sort)
}

func TestCompile_ResolvesUsernames(t *testing.T) {
	users := &mockUserResolver{}
	users.On("GetByUsername", mock.Anything, "Alice").Return(&domain.User{UserID: "u-alice"}, nil)
	users.On("GetByUsername", mock.Anything, "bob").Return(&domain.User{UserID: "u-bob"}, nil)

	f, err := NewService(ServiceDeps{Users: users}).Compile(context.Background(), Parse("commissioner:Alice creator:bob"), "viewer")
	require.NoError(t, err)
	require.NotNil(t, f.CommissionerID)
	require.NotNil(t, f.OfferAuthorID)
	assert.Equal(t, "u-alice", *f.CommissionerID)
	assert.Equal(t, "u-bob", *f.OfferAuthorID)
}

func TestCompile_UnknownUsernameMatchesNothing(t *testing.T) {
	users := &mockUserResolver{}
	users.On("GetByUsername", mock.Anything, "ghost").Return(nil, fmt.Errorf("user: %w", domain.ErrNotFound))

	f, err := NewService(ServiceDeps{Users: users}).Compile(context.Background(), Parse("creator:ghost"), "viewer")
	require.NoError(t, err)
	assert.True(t, f.MatchNone)
}

func TestCompile_ResolverErrorPropagates(t *testing.T) {
	users := &mockUserResolver{}
	users.On("GetByUsername", mock.Anything, "alice").Return(nil, errors.New("timeout"))

	_, err := NewService(ServiceDeps{Users: users}).Compile(context.Background(), Parse("creator:alice"), "viewer")
	assert.EqualError(t, err, "timeout")
}

// --- Search against the memory store ---

func seed(t *testing.T) (Service, *memory.DB) {
	t.Helper()
	db := memory.NewDB()
	ctx := context.Background()
	users := memory.NewUserRepo(db)
	for _, u := range []domain.User{{UserID: "u1", Username: "alice"}, {UserID: "u2", Username: "bob"}, {UserID: "u3", Username: "carol"}} {
		require.NoError(t, users.Put(ctx, &u))
	}
	commissions := memory.NewCommissionRepo(db)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := []domain.Commission{
		{CommissionID: 1, OfferID: 10, CommissionerID: "u1", OfferAuthorID: "u2", State: domain.CommissionStateReview},
		{CommissionID: 2, OfferID: 10, CommissionerID: "u3", OfferAuthorID: "u2", State: domain.CommissionStateAccepted},
		{CommissionID: 3, OfferID: 11, CommissionerID: "u1", OfferAuthorID: "u1", State: domain.CommissionStateClosed},
		{CommissionID: 4, OfferID: 12, CommissionerID: "u2", OfferAuthorID: "u3", State: domain.CommissionStateRejected},
	}
	for i := range rows {
		rows[i].CreatedAt = base.Add(time.Duration(i) * time.Hour)
		rows[i].UpdatedAt = base.Add(time.Duration(10-i) * time.Hour)
		require.NoError(t, commissions.Put(ctx, &rows[i]))
	}
	return NewService(ServiceDeps{Users: users, Commissions: commissions}), db
}

func commissionIDs(cs []domain.Commission) []int64 {
	out := make([]int64, len(cs))
	for i := range cs {
		out[i] = cs[i].CommissionID
	}
	return out
}

func TestSearch_ScopedToViewer(t *testing.T) {
	svc, _ := seed(t)
	res, err := svc.Search(context.Background(), "u1", "", 1, 20)
	require.NoError(t, err)
	// u1 is commissioner of 1 and 3 and author of 3; updated_date descending.
	assert.Equal(t, []int64{1, 3}, commissionIDs(res.Commissions))
}

func TestSearch_FiltersCombine(t *testing.T) {
	svc, _ := seed(t)
	res, err := svc.Search(context.Background(), "u2", "offer:10 state:accepted creator:bob", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, []int64{2}, commissionIDs(res.Commissions))
	assert.Equal(t, "state:accepted offer:10 creator:bob", res.Query)
}

func TestSearch_SelfManaged(t *testing.T) {
	svc, _ := seed(t)
	res, err := svc.Search(context.Background(), "u1", "self_managed:true", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, []int64{3}, commissionIDs(res.Commissions))
}

func TestSearch_SortCreatedAscending(t *testing.T) {
	svc, _ := seed(t)
	res, err := svc.Search(context.Background(), "u2", "sort:created_date order:a", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 4}, commissionIDs(res.Commissions))
}

func TestSearch_UnknownCreatorIsEmpty(t *testing.T) {
	svc, _ := seed(t)
	res, err := svc.Search(context.Background(), "u2", "creator:nobody", 1, 20)
	require.NoError(t, err)
	assert.Empty(t, res.Commissions)
	assert.Equal(t, 0, res.Total)
}

func TestSearch_Pagination(t *testing.T) {
	svc, _ := seed(t)
	res, err := svc.Search(context.Background(), "u2", "", 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 2, res.MaxPage)
	assert.Len(t, res.Commissions, 1)

	res, err = svc.Search(context.Background(), "u2", "", 9, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, res.ActualPage)
	assert.Equal(t, []int64{4}, commissionIDs(res.Commissions))
}

func TestSearch_HugePageClampsToLast(t *testing.T) {
	svc, _ := seed(t)
	res, err := svc.Search(context.Background(), "u2", "", 500000000000000000, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ActualPage)
	assert.Len(t, res.Commissions, 3)
}

func TestSearch_EmptyResultStaysOnFirstPage(t *testing.T) {
	svc, _ := seed(t)
	res, err := svc.Search(context.Background(), "u2", "creator:nobody", 7, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, res.ActualPage)
	assert.Equal(t, 1, res.MaxPage)
	assert.Empty(t, res.Commissions)
}

func TestShareURL(t *testing.T) {
	svc := NewService(ServiceDeps{})
	assert.Equal(t, "/v1/commissions", svc.ShareURL(Parse("")))
	assert.Equal(t, "/v1/commissions?search=state%3Areview+order%3Aa", svc.ShareURL(Parse("order:a state:review")))
}
