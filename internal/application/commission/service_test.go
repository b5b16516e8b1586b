package commission

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/commission-api/internal/application/guard"
	"github.com/commission-api/internal/application/notification"
	"github.com/commission-api/internal/domain"
	"github.com/commission-api/internal/infrastructure/memory"
	"github.com/commission-api/internal/infrastructure/smtp"
	"github.com/commission-api/internal/pkg/keylock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockMailer struct{ mock.Mock }

func (m *mockMailer) SendEmail(to, subject, body string) error {
	return m.Called(to, subject, body).Error(0)
}

// stallingMailer blocks its first send until release is closed.
type stallingMailer struct {
	entered chan struct{}
	release chan struct{}
	calls   atomic.Int32
}

func newStallingMailer() *stallingMailer {
	return &stallingMailer{entered: make(chan struct{}), release: make(chan struct{})}
}

func (m *stallingMailer) SendEmail(to, subject, body string) error {
	if m.calls.Add(1) == 1 {
		close(m.entered)
		<-m.release
	}
	return nil
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) OnCommissionCreated(ctx context.Context, c *domain.Commission) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockNotifier) OnCommissionStateChanged(ctx context.Context, c *domain.Commission) error {
	return m.Called(ctx, c).Error(0)
}

// --- fixture ---

type fixture struct {
	db          *memory.DB
	locker      keylock.Locker
	notifier    notifier
	offers      *memory.OfferRepo
	commissions *memory.CommissionRepo
	chats       *memory.ChatRepo
	users       *memory.UserRepo
	notifs      *memory.NotificationRepo
	mailer      *mockMailer
	svc         Service
	now         time.Time
}

func newFixture(t *testing.T, n notifier) *fixture {
	t.Helper()
	db := memory.NewDB()
	f := &fixture{
		db:          db,
		offers:      memory.NewOfferRepo(db),
		commissions: memory.NewCommissionRepo(db),
		chats:       memory.NewChatRepo(db),
		users:       memory.NewUserRepo(db),
		notifs:      memory.NewNotificationRepo(db),
		mailer:      &mockMailer{},
		locker:      keylock.NewLocal(),
		now:         time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
	}
	f.mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	if n == nil {
		n = notification.NewFanout(notification.FanoutDeps{
			Store:   f.notifs,
			Chats:   f.chats,
			Follows: memory.NewFollowRepo(db),
			Users:   f.users,
			Clock:   f.clock,
		})
	}
	f.notifier = n
	f.svc = f.service(f.mailer)

	ctx := context.Background()
	require.NoError(t, f.users.Put(ctx, &domain.User{UserID: "artist", Email: "artist@example.com"}))
	require.NoError(t, f.users.Put(ctx, &domain.User{UserID: "buyer", Email: "buyer@example.com"}))
	require.NoError(t, f.offers.Put(ctx, &domain.Offer{
		OfferID:               7,
		AuthorID:              "artist",
		Name:                  "Sketch",
		Slots:                 3,
		MaxReviewCommissions:  2,
		MaxCommissionsPerUser: 1,
		CutoffDate:            f.now.Add(48 * time.Hour),
	}))
	return f
}

func (f *fixture) clock() time.Time { return f.now }

// service builds a Service over the fixture's stores with the given mailer.
func (f *fixture) service(m smtp.Mailer) Service {
	return NewService(ServiceDeps{
		CommissionRepo: f.commissions,
		OfferRepo:      f.offers,
		ChatRepo:       f.chats,
		UserRepo:       f.users,
		Sequence:       memory.NewSequence(f.db),
		Guard: guard.New(guard.Deps{
			Offers:      f.offers,
			Commissions: f.commissions,
			Messages:    f.chats,
			Limits:      guard.DefaultLimits(),
			Clock:       f.clock,
		}),
		Locker:   f.locker,
		Notifier: f.notifier,
		Mailer:   m,
		Clock:    f.clock,
	})
}

func request() domain.CreateCommissionRequest {
	return domain.CreateCommissionRequest{InitialRequestText: "a cat, please"}
}

// --- Create ---

func TestCreate_OpensChatAndNotifiesAuthor(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, "buyer", 7, request())
	require.NoError(t, err)
	assert.Equal(t, domain.CommissionStateReview, c.State)
	assert.Equal(t, "artist", c.OfferAuthorID)
	require.NotEmpty(t, c.ChatID)

	chat, err := f.chats.GetChat(ctx, c.ChatID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"buyer", "artist"}, chat.ParticipantIDs)
	assert.Equal(t, c.CommissionID, chat.CommissionID)

	ns, err := f.notifs.ListByRecipient(ctx, "artist", true)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, domain.CommissionCreatedPayload{CommissionID: c.CommissionID}, ns[0].Payload)
	f.mailer.AssertCalled(t, "SendEmail", "artist@example.com", mock.Anything, mock.Anything)
}

func TestCreate_SelfManagedSkipsGuardsChatAndNotification(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.offers.Update(ctx, 7, map[string]interface{}{"forced_closed": true}))

	c, err := f.svc.Create(ctx, "artist", 7, request())
	require.NoError(t, err)
	assert.Empty(t, c.ChatID)

	bases, _ := f.notifs.Counts()
	assert.Equal(t, 0, bases)
	f.mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreate_PerUserCap(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, "buyer", 7, request())
	require.NoError(t, err)

	f.now = f.now.Add(time.Minute)
	_, err = f.svc.Create(ctx, "buyer", 7, request())
	assert.ErrorIs(t, err, domain.ErrUserQuotaExceeded)
}

func TestCreate_ClosedOffer(t *testing.T) {
	f := newFixture(t, nil)
	f.now = f.now.Add(72 * time.Hour)
	_, err := f.svc.Create(context.Background(), "buyer", 7, request())
	assert.ErrorIs(t, err, domain.ErrOfferClosed)
}

func TestCreate_ReviewCapFillsOffer(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	for _, uid := range []string{"b1", "b2"} {
		_, err := f.svc.Create(ctx, uid, 7, request())
		require.NoError(t, err)
	}
	_, err := f.svc.Create(ctx, "b3", 7, request())
	assert.ErrorIs(t, err, domain.ErrOfferFull)
}

func TestCreate_CommissionCooldown(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.offers.Put(ctx, &domain.Offer{
		OfferID: 8, AuthorID: "artist", Slots: 1, MaxReviewCommissions: 5, MaxCommissionsPerUser: 1,
		CutoffDate: f.now.Add(time.Hour),
	}))
	_, err := f.svc.Create(ctx, "buyer", 7, request())
	require.NoError(t, err)

	f.now = f.now.Add(10 * time.Second)
	_, err = f.svc.Create(ctx, "buyer", 8, request())
	assert.ErrorIs(t, err, domain.ErrRateLimited)
}

func TestCreate_UnknownOffer(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.Create(context.Background(), "buyer", 404, request())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_FanoutFailureLeavesNothing(t *testing.T) {
	n := &mockNotifier{}
	n.On("OnCommissionCreated", mock.Anything, mock.Anything).Return(errors.New("boom"))
	f := newFixture(t, n)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "buyer", 7, request())
	require.Error(t, err)

	_, err = f.commissions.Get(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	count, err := f.commissions.CountByOffer(ctx, 7)
	require.NoError(t, err)
	assert.Zero(t, count)
}

// --- UpdateState ---

func TestCreate_EmailSentAfterLocksReleased(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	require.NoError(t, f.users.Put(ctx, &domain.User{UserID: "buyer2", Email: "buyer2@example.com"}))
	m := newStallingMailer()
	svc := f.service(m)

	first := make(chan error, 1)
	go func() {
		_, err := svc.Create(ctx, "buyer", 7, request())
		first <- err
	}()
	select {
	case <-m.entered:
	case err := <-first:
		t.Fatalf("first create returned before emailing: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("first create never reached the mailer")
	}

	// The first create is parked inside SendEmail; its locks must be free.
	lockCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	unlock, err := f.locker.Lock(lockCtx, "offer:7", "commissioner:buyer")
	require.NoError(t, err)
	unlock()

	second := make(chan error, 1)
	go func() {
		_, err := svc.Create(ctx, "buyer2", 7, request())
		second <- err
	}()
	select {
	case err := <-second:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("second create waited for the first one's email")
	}

	close(m.release)
	require.NoError(t, <-first)
}

func TestUpdateState_NotifiesCommissionerOnce(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, "buyer", 7, request())
	require.NoError(t, err)

	updated, err := f.svc.UpdateState(ctx, "artist", c.CommissionID, domain.CommissionStateAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.CommissionStateAccepted, updated.State)

	// Unchanged state is a no-op.
	_, err = f.svc.UpdateState(ctx, "artist", c.CommissionID, domain.CommissionStateAccepted)
	require.NoError(t, err)

	ns, err := f.notifs.ListByRecipient(ctx, "buyer", true)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, domain.CommissionStatePayload{CommissionID: c.CommissionID, State: domain.CommissionStateAccepted}, ns[0].Payload)
}

func TestUpdateState_PermissiveTransitions(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, "buyer", 7, request())
	require.NoError(t, err)

	for _, st := range []domain.CommissionState{domain.CommissionStateClosed, domain.CommissionStateReview, domain.CommissionStateRejected} {
		got, err := f.svc.UpdateState(ctx, "artist", c.CommissionID, st)
		require.NoError(t, err)
		assert.Equal(t, st, got.State)
	}
}

func TestUpdateState_OnlyAuthor(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, "buyer", 7, request())
	require.NoError(t, err)

	_, err = f.svc.UpdateState(ctx, "buyer", c.CommissionID, domain.CommissionStateAccepted)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateState_UnknownState(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.svc.UpdateState(context.Background(), "artist", 1, "PAID")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
}

func TestUpdateState_FanoutFailureReverts(t *testing.T) {
	n := &mockNotifier{}
	n.On("OnCommissionCreated", mock.Anything, mock.Anything).Return(nil)
	n.On("OnCommissionStateChanged", mock.Anything, mock.Anything).Return(errors.New("boom"))
	f := newFixture(t, n)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, "buyer", 7, request())
	require.NoError(t, err)

	_, err = f.svc.UpdateState(ctx, "artist", c.CommissionID, domain.CommissionStateAccepted)
	require.Error(t, err)

	stored, err := f.commissions.Get(ctx, c.CommissionID)
	require.NoError(t, err)
	assert.Equal(t, domain.CommissionStateReview, stored.State)
}

func TestUpdateState_EmailFailureIsNotFatal(t *testing.T) {
	f := newFixture(t, nil)
	f.mailer.ExpectedCalls = nil
	f.mailer.On("SendEmail", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	ctx := context.Background()
	c, err := f.svc.Create(ctx, "buyer", 7, request())
	require.NoError(t, err)

	_, err = f.svc.UpdateState(ctx, "artist", c.CommissionID, domain.CommissionStateInProgress)
	assert.NoError(t, err)
}

// --- Get ---

func TestUpdateState_WithoutMailerSkipsEmail(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	svc := f.service(nil)

	c, err := svc.Create(ctx, "buyer", 7, request())
	require.NoError(t, err)
	updated, err := svc.UpdateState(ctx, "artist", c.CommissionID, domain.CommissionStateAccepted)
	require.NoError(t, err)
	assert.Equal(t, domain.CommissionStateAccepted, updated.State)
	f.mailer.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything, mock.Anything)
}

func TestGet_ViewerMustBeParty(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	c, err := f.svc.Create(ctx, "buyer", 7, request())
	require.NoError(t, err)

	_, err = f.svc.Get(ctx, "buyer", c.CommissionID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, "artist", c.CommissionID)
	assert.NoError(t, err)
	_, err = f.svc.Get(ctx, "stranger", c.CommissionID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestOtherParticipant(t *testing.T) {
	c := &domain.Commission{CommissionerID: "buyer", OfferAuthorID: "artist"}
	assert.Equal(t, "artist", OtherParticipant("buyer", c))
	assert.Equal(t, "buyer", OtherParticipant("artist", c))

	self := &domain.Commission{CommissionerID: "artist", OfferAuthorID: "artist"}
	assert.Equal(t, "artist", OtherParticipant("artist", self))
}
