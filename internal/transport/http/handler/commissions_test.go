package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/commission-api/internal/application/search"
	"github.com/commission-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockCommissionSvc struct{ mock.Mock }

func (m *mockCommissionSvc) Create(ctx context.Context, commissionerID string, offerID int64, req domain.CreateCommissionRequest) (*domain.Commission, error) {
	args := m.Called(ctx, commissionerID, offerID, req)
	c, _ := args.Get(0).(*domain.Commission)
	return c, args.Error(1)
}

func (m *mockCommissionSvc) Get(ctx context.Context, viewerID string, commissionID int64) (*domain.Commission, error) {
	args := m.Called(ctx, viewerID, commissionID)
	c, _ := args.Get(0).(*domain.Commission)
	return c, args.Error(1)
}

func (m *mockCommissionSvc) UpdateState(ctx context.Context, actorID string, commissionID int64, state domain.CommissionState) (*domain.Commission, error) {
	args := m.Called(ctx, actorID, commissionID, state)
	c, _ := args.Get(0).(*domain.Commission)
	return c, args.Error(1)
}

type mockSearchSvc struct{ mock.Mock }

func (m *mockSearchSvc) Search(ctx context.Context, viewerID, raw string, page, perPage int) (*search.Result, error) {
	args := m.Called(ctx, viewerID, raw, page, perPage)
	res, _ := args.Get(0).(*search.Result)
	return res, args.Error(1)
}

func (m *mockSearchSvc) Compile(ctx context.Context, q search.CommissionsSearchQuery, viewerID string) (domain.CommissionFilter, error) {
	args := m.Called(ctx, q, viewerID)
	return args.Get(0).(domain.CommissionFilter), args.Error(1)
}

func (m *mockSearchSvc) ShareURL(q search.CommissionsSearchQuery) string {
	return m.Called(q).String(0)
}

func (m *mockSearchSvc) OfferCommissionsURL(offerID int64) string {
	return m.Called(offerID).String(0)
}

func (m *mockSearchSvc) Dashboard(ctx context.Context, creatorID string, offerID *int64) (*search.Dashboard, error) {
	args := m.Called(ctx, creatorID, offerID)
	d, _ := args.Get(0).(*search.Dashboard)
	return d, args.Error(1)
}

func TestCreateCommission_OfferFull(t *testing.T) {
	svc := &mockCommissionSvc{}
	svc.On("Create", mock.Anything, "buyer", int64(7), domain.CreateCommissionRequest{InitialRequestText: "a fox"}).
		Return(nil, domain.ErrOfferFull)
	h := NewCommissionHandler(svc, &mockSearchSvc{})

	r := withParams(authedReq(http.MethodPost, "/v1/offers/7/commissions", "buyer", domain.RoleBuyer,
		[]byte(`{"initial_request_text":"a fox"}`)), "id", "7")
	rr := httptest.NewRecorder()
	h.Create(rr, r)

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Contains(t, rr.Body.String(), `"code":"offer_full"`)
	svc.AssertExpectations(t)
}

func TestCreateCommission_Cooldown(t *testing.T) {
	svc := &mockCommissionSvc{}
	svc.On("Create", mock.Anything, "buyer", int64(7), mock.Anything).Return(nil, domain.ErrRateLimited)
	h := NewCommissionHandler(svc, &mockSearchSvc{})

	r := withParams(authedReq(http.MethodPost, "/v1/offers/7/commissions", "buyer", domain.RoleBuyer,
		[]byte(`{"initial_request_text":"a fox"}`)), "id", "7")
	rr := httptest.NewRecorder()
	h.Create(rr, r)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
}

func TestCreateCommission_MissingText(t *testing.T) {
	h := NewCommissionHandler(&mockCommissionSvc{}, &mockSearchSvc{})
	r := withParams(authedReq(http.MethodPost, "/v1/offers/7/commissions", "buyer", domain.RoleBuyer, []byte(`{}`)), "id", "7")
	rr := httptest.NewRecorder()
	h.Create(rr, r)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestUpdateCommissionState_HappyPath(t *testing.T) {
	svc := &mockCommissionSvc{}
	svc.On("UpdateState", mock.Anything, "artist", int64(3), domain.CommissionStateAccepted).
		Return(&domain.Commission{CommissionID: 3, State: domain.CommissionStateAccepted}, nil)
	h := NewCommissionHandler(svc, &mockSearchSvc{})

	r := withParams(authedReq(http.MethodPut, "/v1/commissions/3/state", "artist", domain.RoleCreator,
		[]byte(`{"state":"ACCEPTED"}`)), "id", "3")
	rr := httptest.NewRecorder()
	h.UpdateState(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var c domain.Commission
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&c))
	assert.Equal(t, domain.CommissionStateAccepted, c.State)
	svc.AssertExpectations(t)
}

func TestSearchCommissions_PassesQueryAndPaging(t *testing.T) {
	ss := &mockSearchSvc{}
	ss.On("Search", mock.Anything, "buyer", "state:review sort:created_date", 2, 10).
		Return(&search.Result{Query: "sort:created_date state:review", ActualPage: 2, PerPage: 10}, nil)
	h := NewCommissionHandler(&mockCommissionSvc{}, ss)

	r := authedReq(http.MethodGet, "/v1/commissions?search=state%3Areview+sort%3Acreated_date&page=2&per_page=10",
		"buyer", domain.RoleBuyer, nil)
	rr := httptest.NewRecorder()
	h.Search(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var res search.Result
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
	assert.Equal(t, "sort:created_date state:review", res.Query)
	assert.NotNil(t, res.Commissions)
	ss.AssertExpectations(t)
}

func TestShareCommissions_Canonicalizes(t *testing.T) {
	h := NewCommissionHandler(&mockCommissionSvc{}, search.NewService(search.ServiceDeps{}))

	r := authedReq(http.MethodGet, "/v1/commissions/share?search=STATE%3Areview+bogus+sort%3Acreated_date",
		"buyer", domain.RoleBuyer, nil)
	rr := httptest.NewRecorder()
	h.Share(rr, r)

	assert.Equal(t, http.StatusOK, rr.Code)
	var env ShareEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.Equal(t, "sort:created_date state:review", env.Query)
	assert.Equal(t, "/v1/commissions?search=sort%3Acreated_date+state%3Areview", env.ShareURL)
}

func TestGetCommission_IncludesCounterpart(t *testing.T) {
	svc := &mockCommissionSvc{}
	svc.On("Get", mock.Anything, "buyer", int64(3)).
		Return(&domain.Commission{CommissionID: 3, CommissionerID: "buyer", OfferAuthorID: "artist"}, nil)
	h := NewCommissionHandler(svc, &mockSearchSvc{})

	rr := httptest.NewRecorder()
	h.Get(rr, withParams(authedReq(http.MethodGet, "/v1/commissions/3", "buyer", domain.RoleBuyer, nil), "id", "3"))

	assert.Equal(t, http.StatusOK, rr.Code)
	var env struct {
		ID            int64  `json:"id"`
		CounterpartID string `json:"counterpart_id"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&env))
	assert.Equal(t, int64(3), env.ID)
	assert.Equal(t, "artist", env.CounterpartID)
}

func TestDashboard_PassesSelectedOffer(t *testing.T) {
	ss := &mockSearchSvc{}
	offerID := int64(11)
	ss.On("Dashboard", mock.Anything, "artist", &offerID).Return(&search.Dashboard{OfferID: &offerID}, nil)
	h := NewCommissionHandler(&mockCommissionSvc{}, ss)

	rr := httptest.NewRecorder()
	h.Dashboard(rr, authedReq(http.MethodGet, "/v1/dashboard?offer=11", "artist", domain.RoleCreator, nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"offer_id":11`)
	ss.AssertExpectations(t)
}

func TestDashboard_NoOffer(t *testing.T) {
	ss := &mockSearchSvc{}
	ss.On("Dashboard", mock.Anything, "artist", (*int64)(nil)).Return(&search.Dashboard{}, nil)
	h := NewCommissionHandler(&mockCommissionSvc{}, ss)

	rr := httptest.NewRecorder()
	h.Dashboard(rr, authedReq(http.MethodGet, "/v1/dashboard", "artist", domain.RoleCreator, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	ss.AssertExpectations(t)
}

func TestDashboard_BadOffer(t *testing.T) {
	h := NewCommissionHandler(&mockCommissionSvc{}, &mockSearchSvc{})
	rr := httptest.NewRecorder()
	h.Dashboard(rr, authedReq(http.MethodGet, "/v1/dashboard?offer=abc", "artist", domain.RoleCreator, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
