// Package guard enforces quotas and cooldowns before offers, commissions and messages are written.
// Guards only read; callers hold a keylock around check and write.
package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/commission-api/internal/config"
	"github.com/commission-api/internal/domain"
	"github.com/commission-api/internal/pkg/metrics"
)

type offerStats interface {
	CountOpenByAuthor(ctx context.Context, authorID string, now time.Time) (int, error)
	LatestCreatedByAuthor(ctx context.Context, authorID string) (time.Time, bool, error)
}

type commissionStats interface {
	CountByOffer(ctx context.Context, offerID int64, states ...domain.CommissionState) (int, error)
	CountByCommissionerOnOffer(ctx context.Context, offerID int64, commissionerID string) (int, error)
	LatestCreatedByCommissioner(ctx context.Context, commissionerID string) (time.Time, bool, error)
}

type messageStats interface {
	LatestMessageByAuthor(ctx context.Context, authorID string) (time.Time, bool, error)
}

// Limits are the tunable thresholds.
type Limits struct {
	MaxOpenOffersPerAuthor int
	OfferCooldown          time.Duration
	CommissionCooldown     time.Duration
	MessageCooldown        time.Duration
}

func DefaultLimits() Limits {
	return Limits{
		MaxOpenOffersPerAuthor: 3,
		OfferCooldown:          60 * time.Second,
		CommissionCooldown:     30 * time.Second,
		MessageCooldown:        7 * time.Second,
	}
}

func LimitsFromConfig(c config.GuardLimits) Limits {
	return Limits{
		MaxOpenOffersPerAuthor: c.MaxOpenOffersPerAuthor,
		OfferCooldown:          c.OfferCooldown,
		CommissionCooldown:     c.CommissionCooldown,
		MessageCooldown:        c.MessageCooldown,
	}
}

type Deps struct {
	Offers      offerStats
	Commissions commissionStats
	Messages    messageStats
	Limits      Limits
	Clock       func() time.Time
}

type Guard struct {
	offers      offerStats
	commissions commissionStats
	messages    messageStats
	limits      Limits
	now         func() time.Time
}

func New(deps Deps) *Guard {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	return &Guard{
		offers:      deps.Offers,
		commissions: deps.Commissions,
		messages:    deps.Messages,
		limits:      deps.Limits,
		now:         now,
	}
}

func (g *Guard) Limits() Limits { return g.limits }

// CheckOfferCreation rejects a new offer when the author is at the open-offer cap
// or posted their previous offer too recently.
func (g *Guard) CheckOfferCreation(ctx context.Context, authorID string) error {
	now := g.now()
	open, err := g.offers.CountOpenByAuthor(ctx, authorID, now)
	if err != nil {
		return err
	}
	if open >= g.limits.MaxOpenOffersPerAuthor {
		return reject("offer", fmt.Errorf("%d open offers, limit is %d: %w", open, g.limits.MaxOpenOffersPerAuthor, domain.ErrQuotaExceeded))
	}
	last, ok, err := g.offers.LatestCreatedByAuthor(ctx, authorID)
	if err != nil {
		return err
	}
	return g.cooldown("offer", now, last, ok, g.limits.OfferCooldown)
}

// CheckCommissionCreation runs the commission guards in order. Self-managed commissions skip all of them.
func (g *Guard) CheckCommissionCreation(ctx context.Context, c *domain.Commission, offer *domain.Offer) error {
	if c.IsSelfManaged() {
		return nil
	}
	now := g.now()

	inReview, err := g.commissions.CountByOffer(ctx, offer.OfferID, domain.CommissionStateReview)
	if err != nil {
		return err
	}
	if inReview >= offer.MaxReviewCommissions {
		return reject("commission", fmt.Errorf("offer %d has %d commissions in review: %w", offer.OfferID, inReview, domain.ErrOfferFull))
	}
	if offer.IsClosed(now) {
		return reject("commission", fmt.Errorf("offer %d: %w", offer.OfferID, domain.ErrOfferClosed))
	}
	mine, err := g.commissions.CountByCommissionerOnOffer(ctx, offer.OfferID, c.CommissionerID)
	if err != nil {
		return err
	}
	if mine >= offer.MaxCommissionsPerUser {
		return reject("commission", fmt.Errorf("%d commissions on offer %d, limit is %d: %w", mine, offer.OfferID, offer.MaxCommissionsPerUser, domain.ErrUserQuotaExceeded))
	}
	last, ok, err := g.commissions.LatestCreatedByCommissioner(ctx, c.CommissionerID)
	if err != nil {
		return err
	}
	return g.cooldown("commission", now, last, ok, g.limits.CommissionCooldown)
}

func (g *Guard) CheckChatMessage(ctx context.Context, authorID string) error {
	return g.checkMessage(ctx, "chat_message", authorID)
}

// CheckCommissionMessage shares its cooldown with CheckChatMessage.
func (g *Guard) CheckCommissionMessage(ctx context.Context, authorID string) error {
	return g.checkMessage(ctx, "commission_message", authorID)
}

func (g *Guard) checkMessage(ctx context.Context, check, authorID string) error {
	last, ok, err := g.messages.LatestMessageByAuthor(ctx, authorID)
	if err != nil {
		return err
	}
	return g.cooldown(check, g.now(), last, ok, g.limits.MessageCooldown)
}

func (g *Guard) cooldown(check string, now, last time.Time, ok bool, window time.Duration) error {
	if !ok {
		return nil
	}
	if wait := last.Add(window).Sub(now); wait > 0 {
		return reject(check, fmt.Errorf("try again in %s: %w", wait.Round(time.Second), domain.ErrRateLimited))
	}
	return nil
}

// CheckOfferPriceRange requires max to be strictly above min.
func CheckOfferPriceRange(minPrice, maxPrice float64) error {
	if maxPrice <= minPrice {
		return fmt.Errorf("max price %.2f must exceed min price %.2f: %w", maxPrice, minPrice, domain.ErrInvalidRange)
	}
	return nil
}

// CheckMaxPerUserWithinReviewCap requires the per-user cap to fit inside the review cap.
func CheckMaxPerUserWithinReviewCap(o *domain.Offer) error {
	if o.MaxCommissionsPerUser > o.MaxReviewCommissions {
		return fmt.Errorf("max commissions per user %d exceeds max review commissions %d: %w",
			o.MaxCommissionsPerUser, o.MaxReviewCommissions, domain.ErrInvalidConfiguration)
	}
	return nil
}

func reject(check string, err error) error {
	metrics.GuardRejections.WithLabelValues(check, reason(err)).Inc()
	return err
}
