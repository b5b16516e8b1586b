package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/commission-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// --- mocks ---

type mockSupportSvc struct{ mock.Mock }

func (m *mockSupportSvc) Create(ctx context.Context, authorID string, req domain.CreateSupportTicketRequest) (*domain.SupportTicket, error) {
	args := m.Called(ctx, authorID, req)
	t, _ := args.Get(0).(*domain.SupportTicket)
	return t, args.Error(1)
}

func (m *mockSupportSvc) Get(ctx context.Context, viewerID string, staff bool, ticketID string) (*domain.SupportTicket, error) {
	args := m.Called(ctx, viewerID, staff, ticketID)
	t, _ := args.Get(0).(*domain.SupportTicket)
	return t, args.Error(1)
}

func (m *mockSupportSvc) ListByAuthor(ctx context.Context, authorID string) ([]domain.SupportTicket, error) {
	args := m.Called(ctx, authorID)
	ts, _ := args.Get(0).([]domain.SupportTicket)
	return ts, args.Error(1)
}

func (m *mockSupportSvc) UpdateState(ctx context.Context, ticketID string, state domain.SupportTicketState) (*domain.SupportTicket, error) {
	args := m.Called(ctx, ticketID, state)
	t, _ := args.Get(0).(*domain.SupportTicket)
	return t, args.Error(1)
}

func TestGetTicket_PassesStaffFlag(t *testing.T) {
	svc := &mockSupportSvc{}
	svc.On("Get", mock.Anything, "staff1", true, "t1").Return(&domain.SupportTicket{TicketID: "t1"}, nil)
	h := NewSupportHandler(svc)

	r := withParams(authedReq(http.MethodGet, "/v1/support/t1", "staff1", domain.RoleStaff, nil), "id", "t1")
	rr := httptest.NewRecorder()
	h.Get(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}

func TestUpdateTicketState_InvalidState(t *testing.T) {
	h := NewSupportHandler(&mockSupportSvc{})
	r := withParams(authedReq(http.MethodPut, "/v1/support/t1/state", "staff1", domain.RoleStaff,
		[]byte(`{"state":"ESCALATED"}`)), "id", "t1")
	rr := httptest.NewRecorder()
	h.UpdateState(rr, r)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestUpdateTicketState_HappyPath(t *testing.T) {
	svc := &mockSupportSvc{}
	svc.On("UpdateState", mock.Anything, "t1", domain.SupportTicketStateInvestigating).
		Return(&domain.SupportTicket{TicketID: "t1", State: domain.SupportTicketStateInvestigating}, nil)
	h := NewSupportHandler(svc)

	r := withParams(authedReq(http.MethodPut, "/v1/support/t1/state", "staff1", domain.RoleStaff,
		[]byte(`{"state":"INVESTIGATING"}`)), "id", "t1")
	rr := httptest.NewRecorder()
	h.UpdateState(rr, r)
	assert.Equal(t, http.StatusOK, rr.Code)
	svc.AssertExpectations(t)
}
