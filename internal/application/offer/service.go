package offer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/commission-api/internal/application/guard"
	"github.com/commission-api/internal/domain"
	"github.com/commission-api/internal/pkg/id"
	"github.com/commission-api/internal/pkg/keylock"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldName                  = "name"
	fieldDescription           = "description"
	fieldRating                = "rating"
	fieldSlots                 = "slots"
	fieldMaxReviewCommissions  = "max_review_commissions"
	fieldMaxCommissionsPerUser = "max_commissions_per_user"
	fieldMinPrice              = "min_price"
	fieldMaxPrice              = "max_price"
	fieldForcedClosed          = "forced_closed"
)

type Service interface {
	Create(ctx context.Context, authorID string, req domain.CreateOfferRequest) (*domain.Offer, error)
	Get(ctx context.Context, offerID int64) (*domain.Offer, error)
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Offer, error)
	Update(ctx context.Context, authorID string, offerID int64, req domain.UpdateOfferRequest) (*domain.Offer, error)
	Close(ctx context.Context, authorID string, offerID int64) (*domain.Offer, error)
	SlotInfo(ctx context.Context, offerID int64) (domain.SlotInfo, error)
}

type offerStore interface {
	Put(ctx context.Context, o *domain.Offer) error
	Get(ctx context.Context, offerID int64) (*domain.Offer, error)
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Offer, error)
	Update(ctx context.Context, offerID int64, updates map[string]interface{}) error
	Delete(ctx context.Context, offerID int64) error
}

type commissionCounter interface {
	CountByOffer(ctx context.Context, offerID int64, states ...domain.CommissionState) (int, error)
}

type sequence interface {
	Next(ctx context.Context, name string) (int64, error)
}

type offerGuard interface {
	CheckOfferCreation(ctx context.Context, authorID string) error
}

type notifier interface {
	OnOfferPosted(ctx context.Context, o *domain.Offer) error
}

type service struct {
	repo        offerStore
	commissions commissionCounter
	seq         sequence
	guard       offerGuard
	locker      keylock.Locker
	notifier    notifier
	now         func() time.Time
}

type ServiceDeps struct {
	OfferRepo      offerStore
	CommissionRepo commissionCounter
	Sequence       sequence
	Guard          offerGuard
	Locker         keylock.Locker
	Notifier       notifier
	Clock          func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:        deps.OfferRepo,
		commissions: deps.CommissionRepo,
		seq:         deps.Sequence,
		guard:       deps.Guard,
		locker:      deps.Locker,
		notifier:    deps.Notifier,
		now:         now,
	}
}

func (s *service) Create(ctx context.Context, authorID string, req domain.CreateOfferRequest) (*domain.Offer, error) {
	now := s.now().UTC()
	o := &domain.Offer{
		AuthorID:              authorID,
		Name:                  req.Name,
		Description:           req.Description,
		Rating:                req.Rating,
		Slots:                 intOr(req.Slots, domain.DefaultOfferSlots),
		MaxReviewCommissions:  intOr(req.MaxReviewCommissions, domain.DefaultMaxReviewCommissions),
		MaxCommissionsPerUser: intOr(req.MaxCommissionsPerUser, domain.DefaultMaxCommissionsPerUser),
		MinPrice:              req.MinPrice,
		MaxPrice:              req.MaxPrice,
		Currency:              req.Currency,
		CutoffDate:            now.Add(domain.DefaultOfferLifetime),
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	if req.CutoffDate != nil {
		if !req.CutoffDate.After(now) {
			return nil, fmt.Errorf("cutoff date must be in the future: %w", domain.ErrBadRequest)
		}
		o.CutoffDate = req.CutoffDate.UTC()
	}
	if err := guard.CheckOfferPriceRange(o.MinPrice, o.MaxPrice); err != nil {
		return nil, err
	}
	if err := guard.CheckMaxPerUserWithinReviewCap(o); err != nil {
		return nil, err
	}

	unlock, err := s.locker.Lock(ctx, "author:"+authorID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.guard.CheckOfferCreation(ctx, authorID); err != nil {
		return nil, err
	}
	if o.OfferID, err = s.seq.Next(ctx, id.SeqOffers); err != nil {
		return nil, err
	}
	if err := s.repo.Put(ctx, o); err != nil {
		return nil, err
	}
	if err := s.notifier.OnOfferPosted(ctx, o); err != nil {
		if derr := s.repo.Delete(ctx, o.OfferID); derr != nil {
			slog.Error("offer rollback failed", "offer_id", o.OfferID, "err", derr)
		}
		return nil, fmt.Errorf("notify followers: %w", err)
	}
	return o, nil
}

func (s *service) Get(ctx context.Context, offerID int64) (*domain.Offer, error) {
	return s.repo.Get(ctx, offerID)
}

func (s *service) ListByAuthor(ctx context.Context, authorID string) ([]domain.Offer, error) {
	return s.repo.ListByAuthor(ctx, authorID)
}

func (s *service) Update(ctx context.Context, authorID string, offerID int64, req domain.UpdateOfferRequest) (*domain.Offer, error) {
	o, err := s.owned(ctx, authorID, offerID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{}
	if req.Name != nil {
		o.Name = *req.Name
		updates[fieldName] = o.Name
	}
	if req.Description != nil {
		o.Description = *req.Description
		updates[fieldDescription] = o.Description
	}
	if req.Rating != nil {
		o.Rating = *req.Rating
		updates[fieldRating] = o.Rating
	}
	if req.Slots != nil {
		o.Slots = *req.Slots
		updates[fieldSlots] = o.Slots
	}
	if req.MaxReviewCommissions != nil {
		o.MaxReviewCommissions = *req.MaxReviewCommissions
		updates[fieldMaxReviewCommissions] = o.MaxReviewCommissions
	}
	if req.MaxCommissionsPerUser != nil {
		o.MaxCommissionsPerUser = *req.MaxCommissionsPerUser
		updates[fieldMaxCommissionsPerUser] = o.MaxCommissionsPerUser
	}
	if req.MinPrice != nil {
		o.MinPrice = *req.MinPrice
		updates[fieldMinPrice] = o.MinPrice
	}
	if req.MaxPrice != nil {
		o.MaxPrice = *req.MaxPrice
		updates[fieldMaxPrice] = o.MaxPrice
	}
	if len(updates) == 0 {
		return o, nil
	}
	if err := guard.CheckOfferPriceRange(o.MinPrice, o.MaxPrice); err != nil {
		return nil, err
	}
	if err := guard.CheckMaxPerUserWithinReviewCap(o); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, offerID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, offerID)
}

// Close stops the offer from taking new commissions.
func (s *service) Close(ctx context.Context, authorID string, offerID int64) (*domain.Offer, error) {
	o, err := s.owned(ctx, authorID, offerID)
	if err != nil {
		return nil, err
	}
	if o.ForcedClosed {
		return o, nil
	}
	if err := s.repo.Update(ctx, offerID, map[string]interface{}{fieldForcedClosed: true}); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, offerID)
}

func (s *service) SlotInfo(ctx context.Context, offerID int64) (domain.SlotInfo, error) {
	o, err := s.repo.Get(ctx, offerID)
	if err != nil {
		return domain.SlotInfo{}, err
	}
	taken, err := s.commissions.CountByOffer(ctx, offerID, domain.ActiveCommissionStates...)
	if err != nil {
		return domain.SlotInfo{}, err
	}
	return domain.NewSlotInfo(o, taken), nil
}

func (s *service) owned(ctx context.Context, authorID string, offerID int64) (*domain.Offer, error) {
	o, err := s.repo.Get(ctx, offerID)
	if err != nil {
		return nil, err
	}
	if o.AuthorID != authorID {
		return nil, fmt.Errorf("offer %d belongs to another author: %w", offerID, domain.ErrForbidden)
	}
	return o, nil
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}
	return *p
}
