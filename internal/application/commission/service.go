package commission

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/commission-api/internal/domain"
	"github.com/commission-api/internal/infrastructure/smtp"
	"github.com/commission-api/internal/pkg/id"
	"github.com/commission-api/internal/pkg/keylock"
	"github.com/commission-api/internal/pkg/metrics"
)

const fieldState = "state"

type Service interface {
	Create(ctx context.Context, commissionerID string, offerID int64, req domain.CreateCommissionRequest) (*domain.Commission, error)
	Get(ctx context.Context, viewerID string, commissionID int64) (*domain.Commission, error)
	UpdateState(ctx context.Context, actorID string, commissionID int64, state domain.CommissionState) (*domain.Commission, error)
}

type commissionStore interface {
	Put(ctx context.Context, c *domain.Commission) error
	Get(ctx context.Context, commissionID int64) (*domain.Commission, error)
	Update(ctx context.Context, commissionID int64, updates map[string]interface{}) error
	Delete(ctx context.Context, commissionID int64) error
}

type offerReader interface {
	Get(ctx context.Context, offerID int64) (*domain.Offer, error)
}

type chatStore interface {
	PutChat(ctx context.Context, c *domain.Chat) error
	DeleteChat(ctx context.Context, chatID string) error
}

type userReader interface {
	Get(ctx context.Context, userID string) (*domain.User, error)
}

type sequence interface {
	Next(ctx context.Context, name string) (int64, error)
}

type commissionGuard interface {
	CheckCommissionCreation(ctx context.Context, c *domain.Commission, offer *domain.Offer) error
}

type notifier interface {
	OnCommissionCreated(ctx context.Context, c *domain.Commission) error
	OnCommissionStateChanged(ctx context.Context, c *domain.Commission) error
}

type service struct {
	repo     commissionStore
	offers   offerReader
	chats    chatStore
	users    userReader
	seq      sequence
	guard    commissionGuard
	locker   keylock.Locker
	notifier notifier
	mailer   smtp.Mailer
	links    domain.Links
	now      func() time.Time
}

type ServiceDeps struct {
	CommissionRepo commissionStore
	OfferRepo      offerReader
	ChatRepo       chatStore
	UserRepo       userReader
	Sequence       sequence
	Guard          commissionGuard
	Locker         keylock.Locker
	Notifier       notifier
	// Mailer is optional.
	Mailer smtp.Mailer
	Links  domain.Links
	Clock  func() time.Time
}

func NewService(deps ServiceDeps) Service {
	now := deps.Clock
	if now == nil {
		now = time.Now
	}
	links := deps.Links
	if links == nil {
		links = domain.PathLinks{}
	}
	return &service{
		repo:     deps.CommissionRepo,
		offers:   deps.OfferRepo,
		chats:    deps.ChatRepo,
		users:    deps.UserRepo,
		seq:      deps.Sequence,
		guard:    deps.Guard,
		locker:   deps.Locker,
		notifier: deps.Notifier,
		mailer:   deps.Mailer,
		links:    links,
		now:      now,
	}
}

func (s *service) Create(ctx context.Context, commissionerID string, offerID int64, req domain.CreateCommissionRequest) (*domain.Commission, error) {
	offer, err := s.offers.Get(ctx, offerID)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	c := &domain.Commission{
		OfferID:            offerID,
		CommissionerID:     commissionerID,
		OfferAuthorID:      offer.AuthorID,
		InitialRequestText: req.InitialRequestText,
		State:              domain.CommissionStateReview,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	if err := s.insert(ctx, c, offer); err != nil {
		return nil, err
	}
	if !c.IsSelfManaged() {
		s.email(ctx, c.OfferAuthorID, fmt.Sprintf("New commission on %s", offer.Name),
			fmt.Sprintf("You received a new commission request: %s", s.links.Commission(c.CommissionID)))
	}
	return c, nil
}

// insert runs the guard and the writes under the offer and commissioner locks.
// Nothing slow that the guard does not depend on belongs in here.
func (s *service) insert(ctx context.Context, c *domain.Commission, offer *domain.Offer) error {
	unlock, err := s.locker.Lock(ctx, fmt.Sprintf("offer:%d", offer.OfferID), "commissioner:"+c.CommissionerID)
	if err != nil {
		return err
	}
	defer unlock()

	if err := s.guard.CheckCommissionCreation(ctx, c, offer); err != nil {
		return err
	}
	if c.CommissionID, err = s.seq.Next(ctx, id.SeqCommissions); err != nil {
		return err
	}

	var chat *domain.Chat
	if !c.IsSelfManaged() {
		chat = &domain.Chat{
			ChatID:         id.New(),
			Name:           fmt.Sprintf("Commission #%d: %s", c.CommissionID, offer.Name),
			ParticipantIDs: []string{c.CommissionerID, c.OfferAuthorID},
			CommissionID:   c.CommissionID,
			CreatedAt:      c.CreatedAt,
		}
		c.ChatID = chat.ChatID
	}
	if err := s.repo.Put(ctx, c); err != nil {
		return err
	}
	if chat != nil {
		if err := s.chats.PutChat(ctx, chat); err != nil {
			s.rollbackCreate(ctx, c, nil)
			return fmt.Errorf("create commission chat: %w", err)
		}
	}
	if err := s.notifier.OnCommissionCreated(ctx, c); err != nil {
		s.rollbackCreate(ctx, c, chat)
		return fmt.Errorf("notify offer author: %w", err)
	}
	return nil
}

func (s *service) rollbackCreate(ctx context.Context, c *domain.Commission, chat *domain.Chat) {
	if chat != nil {
		if err := s.chats.DeleteChat(ctx, chat.ChatID); err != nil {
			slog.Error("commission chat rollback failed", "chat_id", chat.ChatID, "err", err)
		}
	}
	if err := s.repo.Delete(ctx, c.CommissionID); err != nil {
		slog.Error("commission rollback failed", "commission_id", c.CommissionID, "err", err)
	}
}

// Get returns the commission when viewerID is one of its two parties.
func (s *service) Get(ctx context.Context, viewerID string, commissionID int64) (*domain.Commission, error) {
	c, err := s.repo.Get(ctx, commissionID)
	if err != nil {
		return nil, err
	}
	if c.CommissionerID != viewerID && c.OfferAuthorID != viewerID {
		return nil, fmt.Errorf("commission %d: %w", commissionID, domain.ErrForbidden)
	}
	return c, nil
}

// UpdateState moves the commission to any state. Only the offer's author may do it.
func (s *service) UpdateState(ctx context.Context, actorID string, commissionID int64, state domain.CommissionState) (*domain.Commission, error) {
	if !state.Valid() {
		return nil, fmt.Errorf("unknown commission state %q: %w", state, domain.ErrBadRequest)
	}
	c, err := s.repo.Get(ctx, commissionID)
	if err != nil {
		return nil, err
	}
	if c.OfferAuthorID != actorID {
		return nil, fmt.Errorf("only the offer author can change commission %d: %w", commissionID, domain.ErrForbidden)
	}
	if c.State == state {
		return c, nil
	}
	previous := c.State
	if err := s.repo.Update(ctx, commissionID, map[string]interface{}{fieldState: state}); err != nil {
		return nil, err
	}
	c.State = state
	if err := s.notifier.OnCommissionStateChanged(ctx, c); err != nil {
		if rerr := s.repo.Update(ctx, commissionID, map[string]interface{}{fieldState: previous}); rerr != nil {
			slog.Error("commission state revert failed", "commission_id", commissionID, "state", previous, "err", rerr)
		}
		return nil, fmt.Errorf("notify commissioner: %w", err)
	}
	if !c.IsSelfManaged() {
		s.email(ctx, c.CommissionerID, fmt.Sprintf("Commission #%d is now %s", c.CommissionID, state.Label()),
			fmt.Sprintf("Your commission moved to %s: %s", state.Label(), s.links.Commission(c.CommissionID)))
	}
	return s.repo.Get(ctx, commissionID)
}

// email is best effort: failures are logged and counted, never returned.
func (s *service) email(ctx context.Context, userID, subject, body string) {
	if s.mailer == nil {
		return
	}
	u, err := s.users.Get(ctx, userID)
	if err == nil && u.Email != "" {
		err = s.mailer.SendEmail(u.Email, subject, body)
	}
	if err != nil {
		metrics.SideChannelFailures.WithLabelValues("email").Inc()
		slog.Warn("commission email failed", "user_id", userID, "err", err)
	}
}

// OtherParticipant is the party viewerID is dealing with. Self-managed commissions return the viewer.
func OtherParticipant(viewerID string, c *domain.Commission) string {
	if c.CommissionerID == viewerID {
		return c.OfferAuthorID
	}
	return c.CommissionerID
}
