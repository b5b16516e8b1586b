package search

import (
	"context"
	"errors"
	"net/url"

	"github.com/commission-api/internal/domain"
)

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

type userResolver interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}

type offerReader interface {
	Get(ctx context.Context, offerID int64) (*domain.Offer, error)
}

type commissionSearcher interface {
	Search(ctx context.Context, f domain.CommissionFilter) ([]domain.Commission, error)
}

// Result is one page of matching commissions.
type Result struct {
	Query       string              `json:"query"`
	ShareURL    string              `json:"share_url"`
	MaxPage     int                 `json:"max_page"`
	ActualPage  int                 `json:"actual_page"`
	PerPage     int                 `json:"per_page"`
	Total       int                 `json:"total"`
	Commissions []domain.Commission `json:"data"`
}

type Service interface {
	Search(ctx context.Context, viewerID, raw string, page, perPage int) (*Result, error)
	Compile(ctx context.Context, q CommissionsSearchQuery, viewerID string) (domain.CommissionFilter, error)
	ShareURL(q CommissionsSearchQuery) string
	OfferCommissionsURL(offerID int64) string
	Dashboard(ctx context.Context, creatorID string, offerID *int64) (*Dashboard, error)
}

type service struct {
	users       userResolver
	offers      offerReader
	commissions commissionSearcher
	basePath    string
}

type ServiceDeps struct {
	Users       userResolver
	Offers      offerReader
	Commissions commissionSearcher
	// BasePath is the listing path share links point at.
	BasePath string
}

func NewService(deps ServiceDeps) Service {
	base := deps.BasePath
	if base == "" {
		base = "/v1/commissions"
	}
	return &service{users: deps.Users, offers: deps.Offers, commissions: deps.Commissions, basePath: base}
}

// Compile turns a parsed query into a storage filter scoped to viewerID.
func (s *service) Compile(ctx context.Context, q CommissionsSearchQuery, viewerID string) (domain.CommissionFilter, error) {
	f := domain.CommissionFilter{
		ViewerID:    viewerID,
		SelfManaged: q.SelfManaged,
		OfferID:     q.Offer,
		Sort:        domain.SortByUpdatedDate,
		Descending:  q.Order != OrderAscending,
	}
	if q.Sort == string(domain.SortByCreatedDate) {
		f.Sort = domain.SortByCreatedDate
	}
	if q.HasStates() {
		flags := []bool{q.Review, q.Accepted, q.InProgress, q.Closed, q.Rejected}
		for i, on := range flags {
			if on {
				f.States = append(f.States, domain.CommissionStates[i])
			}
		}
	} else {
		f.States = append([]domain.CommissionState(nil), domain.CommissionStates...)
	}

	var err error
	if f.CommissionerID, err = s.resolve(ctx, q.Commissioner, &f); err != nil {
		return f, err
	}
	if f.OfferAuthorID, err = s.resolve(ctx, q.Creator, &f); err != nil {
		return f, err
	}
	return f, nil
}

// resolve maps a username to its id. An unknown username makes the filter match nothing.
func (s *service) resolve(ctx context.Context, username string, f *domain.CommissionFilter) (*string, error) {
	if username == "" {
		return nil, nil
	}
	u, err := s.users.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		f.MatchNone = true
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u.UserID, nil
}

func (s *service) Search(ctx context.Context, viewerID, raw string, page, perPage int) (*Result, error) {
	q := Parse(raw)
	f, err := s.Compile(ctx, q, viewerID)
	if err != nil {
		return nil, err
	}
	var all []domain.Commission
	if !f.MatchNone {
		if all, err = s.commissions.Search(ctx, f); err != nil {
			return nil, err
		}
	}
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	maxPage := 1
	if len(all) > 0 {
		maxPage = (len(all) + perPage - 1) / perPage
	}
	if page > maxPage {
		page = maxPage
	}
	start := (page - 1) * perPage
	end := min(start+perPage, len(all))
	return &Result{
		Query:       q.String(),
		ShareURL:    s.ShareURL(q),
		MaxPage:     maxPage,
		ActualPage:  page,
		PerPage:     perPage,
		Total:       len(all),
		Commissions: all[start:end],
	}, nil
}

// ShareURL is the listing link that reproduces q.
func (s *service) ShareURL(q CommissionsSearchQuery) string {
	canonical := q.String()
	if canonical == "" {
		return s.basePath
	}
	return s.basePath + "?" + url.Values{"search": {canonical}}.Encode()
}
