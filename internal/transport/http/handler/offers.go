package handler

import (
	"net/http"

	"github.com/commission-api/internal/application/offer"
	"github.com/commission-api/internal/application/search"
	"github.com/commission-api/internal/domain"
	"github.com/go-chi/chi/v5"
)

// OfferEnvelope is an offer plus the link listing the viewer's commissions on it.
type OfferEnvelope struct {
	*domain.Offer
	SeeCommissionsURL string `json:"see_commissions_url"`
}

type OfferHandler struct {
	svc    offer.Service
	search search.Service
}

func NewOfferHandler(svc offer.Service, searchSvc search.Service) *OfferHandler {
	return &OfferHandler{svc: svc, search: searchSvc}
}

func (h *OfferHandler) Create(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	var req domain.CreateOfferRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.svc.Create(r.Context(), c.UserID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, o)
}

func (h *OfferHandler) Get(w http.ResponseWriter, r *http.Request) {
	offerID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	o, err := h.svc.Get(r.Context(), offerID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, OfferEnvelope{Offer: o, SeeCommissionsURL: h.search.OfferCommissionsURL(o.OfferID)})
}

// ListByAuthor lists the offers of the user in the path.
func (h *OfferHandler) ListByAuthor(w http.ResponseWriter, r *http.Request) {
	offers, err := h.svc.ListByAuthor(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, err)
		return
	}
	if offers == nil {
		offers = []domain.Offer{}
	}
	writeJSON(w, http.StatusOK, offers)
}

func (h *OfferHandler) Update(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	offerID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	var req domain.UpdateOfferRequest
	if !decode(w, r, &req) {
		return
	}
	o, err := h.svc.Update(r.Context(), c.UserID, offerID, req)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OfferHandler) Close(w http.ResponseWriter, r *http.Request) {
	c, ok := claims(w, r)
	if !ok {
		return
	}
	offerID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	o, err := h.svc.Close(r.Context(), c.UserID, offerID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *OfferHandler) Slots(w http.ResponseWriter, r *http.Request) {
	offerID, ok := intParam(w, r, "id")
	if !ok {
		return
	}
	info, err := h.svc.SlotInfo(r.Context(), offerID)
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
