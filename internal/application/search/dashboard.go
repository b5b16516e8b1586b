package search

import (
	"context"
	"errors"
	"sort"

	"github.com/commission-api/internal/domain"
)

// MaxCommissionsPerColumn caps how many commissions a dashboard column lists.
const MaxCommissionsPerColumn = 15

// dashboardStates are the columns of the creator dashboard, left to right.
var dashboardStates = []domain.CommissionState{
	domain.CommissionStateReview,
	domain.CommissionStateAccepted,
	domain.CommissionStateInProgress,
}

type DashboardColumn struct {
	State       domain.CommissionState `json:"state"`
	Label       string                 `json:"label"`
	Commissions []domain.Commission    `json:"commissions"`
	Total       int                    `json:"total"`
	Overflow    bool                   `json:"overflow"`
	SeeAllURL   string                 `json:"see_all_url"`
}

// Dashboard is the creator's board of active commissions on their own offers.
type Dashboard struct {
	// Offers are the creator's offers that have at least one active commission.
	Offers  []domain.Offer    `json:"offers"`
	OfferID *int64            `json:"offer_id"`
	Columns []DashboardColumn `json:"columns"`
}

// Dashboard builds the board for creatorID. offerID narrows every column to one offer;
// it is ignored unless the offer is one of the board's offers.
func (s *service) Dashboard(ctx context.Context, creatorID string, offerID *int64) (*Dashboard, error) {
	active, err := s.commissions.Search(ctx, domain.CommissionFilter{
		ViewerID:      creatorID,
		OfferAuthorID: &creatorID,
		States:        dashboardStates,
		Sort:          domain.SortByUpdatedDate,
		Descending:    true,
	})
	if err != nil {
		return nil, err
	}

	relevant := make(map[int64]bool)
	var ids []int64
	for _, c := range active {
		if !relevant[c.OfferID] {
			relevant[c.OfferID] = true
			ids = append(ids, c.OfferID)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	d := &Dashboard{Offers: make([]domain.Offer, 0, len(ids))}
	for _, oid := range ids {
		o, err := s.offers.Get(ctx, oid)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		d.Offers = append(d.Offers, *o)
	}
	if offerID != nil && relevant[*offerID] {
		selected := *offerID
		d.OfferID = &selected
	}

	for _, st := range dashboardStates {
		col := DashboardColumn{State: st, Label: st.Label(), Commissions: []domain.Commission{}}
		for _, c := range active {
			if c.State != st || (d.OfferID != nil && c.OfferID != *d.OfferID) {
				continue
			}
			col.Total++
			if len(col.Commissions) < MaxCommissionsPerColumn {
				col.Commissions = append(col.Commissions, c)
			}
		}
		col.Overflow = col.Total > MaxCommissionsPerColumn
		col.SeeAllURL = s.ShareURL(columnQuery(st, d.OfferID))
		d.Columns = append(d.Columns, col)
	}
	return d, nil
}

// columnQuery is the search behind a column's "see all" link.
func columnQuery(st domain.CommissionState, offerID *int64) CommissionsSearchQuery {
	q := CommissionsSearchQuery{Offer: offerID}
	switch st {
	case domain.CommissionStateReview:
		q.Review = true
	case domain.CommissionStateAccepted:
		q.Accepted = true
	case domain.CommissionStateInProgress:
		q.InProgress = true
	}
	return q
}

// OfferCommissionsURL links to the viewer's commissions on one offer.
func (s *service) OfferCommissionsURL(offerID int64) string {
	return s.ShareURL(CommissionsSearchQuery{Offer: &offerID})
}
