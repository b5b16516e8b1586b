package handler

import (
	"net/http"
	"strconv"

	"github.com/commission-api/internal/application/commission"
	"github.com/commission-api/internal/application/search"
	"github.com/commission-api/internal/domain"
)

// ShareEnvelope is the canonical form of a search and the listing link that reproduces it.
type ShareEnvelope struct {
	Query    string `json:"query"`
	ShareURL string `json:"share_url"`
}

// CommissionEnvelope is a commission as one of its parties sees it.
type CommissionEnvelope struct {
	*domain.Commission
	CounterpartID string `json:"counterpart_id"`
}

type CommissionHandler struct {
	svc    commission.Service
	search search.Service
}

func NewCommissionHandler(svc commission.Service, searchSvc search.Service) *CommissionHandler {
	return &CommissionHandler{svc: svc, search: searchSvc}
}

// Create places a commission on the offer in the path.
func (h *CommissionHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	offerID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.CreateCommissionRequest
	if !decode(w, r, &req) {
		return
	}
	cm, err := h.svc.Create(r.Context(), c.UserID, offerID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, cm)
}

func (h *CommissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	commissionID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	cm, err := h.svc.Get(r.Context(), c.UserID, commissionID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, CommissionEnvelope{Commission: cm, CounterpartID: commission.OtherParticipant(c.UserID, cm)})
}

func (h *CommissionHandler) UpdateState(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	commissionID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateCommissionStateRequest
	if !decode(w, r, &req) {
		return
	}
	cm, err := h.svc.UpdateState(r.Context(), c.UserID, commissionID, req.State)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cm)
}

// Search lists the viewer's commissions matching the search query parameter.
func (h *CommissionHandler) Search(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	page, perPage := parsePagination(r)
	res, err := h.search.Search(r.Context(), c.UserID, r.URL.Query().Get("search"), page, perPage)
	if err != nil {
		httpError(w, err)
		return
	}
	if res.Commissions == nil {
		res.Commissions = []domain.Commission{}
	}
	writeJSON(w, http.StatusOK, res)
}

// Share normalizes a search string without running it.
func (h *CommissionHandler) Share(w http.ResponseWriter, r *http.Request) {
	q := search.Parse(r.URL.Query().Get("search"))
	writeJSON(w, http.StatusOK, ShareEnvelope{Query: q.String(), ShareURL: h.search.ShareURL(q)})
}

// Dashboard shows the caller's active commissions on their own offers, optionally narrowed by ?offer=.
func (h *CommissionHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	var offerID *int64
	if raw := r.URL.Query().Get("offer"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v <= 0 {
			writeError(w, http.StatusBadRequest, "invalid offer")
			return
		}
		offerID = &v
	}
	d, err := h.search.Dashboard(r.Context(), c.UserID, offerID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, d)
}
