package domain

import "sort"

type CommissionSortKey string

const (
	SortByCreatedDate CommissionSortKey = "created_date"
	SortByUpdatedDate CommissionSortKey = "updated_date"
)

// CommissionFilter is a compiled commission search. Every commission it matches involves
// ViewerID as commissioner or offer author.
type CommissionFilter struct {
	ViewerID       string
	States         []CommissionState
	SelfManaged    *bool
	OfferID        *int64
	CommissionerID *string
	OfferAuthorID  *string
	Sort           CommissionSortKey
	Descending     bool
	// MatchNone is set when a referenced user does not exist.
	MatchNone bool
}

func (f CommissionFilter) Matches(c *Commission) bool {
	if f.MatchNone {
		return false
	}
	if c.CommissionerID != f.ViewerID && c.OfferAuthorID != f.ViewerID {
		return false
	}
	if len(f.States) > 0 && !f.hasState(c.State) {
		return false
	}
	if f.SelfManaged != nil && c.IsSelfManaged() != *f.SelfManaged {
		return false
	}
	if f.OfferID != nil && c.OfferID != *f.OfferID {
		return false
	}
	if f.CommissionerID != nil && c.CommissionerID != *f.CommissionerID {
		return false
	}
	if f.OfferAuthorID != nil && c.OfferAuthorID != *f.OfferAuthorID {
		return false
	}
	return true
}

// Less orders a before b according to the filter's sort key and direction.
// Ties fall back to the commission id so the order is total.
func (f CommissionFilter) Less(a, b *Commission) bool {
	ka, kb := a.UpdatedAt, b.UpdatedAt
	if f.Sort == SortByCreatedDate {
		ka, kb = a.CreatedAt, b.CreatedAt
	}
	if !ka.Equal(kb) {
		if f.Descending {
			return ka.After(kb)
		}
		return ka.Before(kb)
	}
	if f.Descending {
		return a.CommissionID > b.CommissionID
	}
	return a.CommissionID < b.CommissionID
}

// Apply keeps the matching commissions and sorts them.
func (f CommissionFilter) Apply(cs []Commission) []Commission {
	out := make([]Commission, 0, len(cs))
	for i := range cs {
		if f.Matches(&cs[i]) {
			out = append(out, cs[i])
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return f.Less(&out[i], &out[j]) })
	return out
}

func (f CommissionFilter) hasState(s CommissionState) bool {
	for _, st := range f.States {
		if st == s {
			return true
		}
	}
	return false
}
