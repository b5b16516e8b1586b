package main

import (
	"context"
	"fmt"
	"time"

	"github.com/commission-api/internal/config"
	"github.com/commission-api/internal/domain"
	"github.com/commission-api/internal/infrastructure/dynamo"
	"github.com/commission-api/internal/infrastructure/memory"
)

// The method sets both storage drivers provide.

type userStore interface {
	Put(ctx context.Context, u *domain.User) error
	Get(ctx context.Context, userID string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetMany(ctx context.Context, userIDs []string) ([]domain.User, error)
	Update(ctx context.Context, userID string, updates map[string]interface{}) error
}

type offerStore interface {
	Put(ctx context.Context, o *domain.Offer) error
	Get(ctx context.Context, offerID int64) (*domain.Offer, error)
	ListByAuthor(ctx context.Context, authorID string) ([]domain.Offer, error)
	Update(ctx context.Context, offerID int64, updates map[string]interface{}) error
	Delete(ctx context.Context, offerID int64) error
	CountOpenByAuthor(ctx context.Context, authorID string, now time.Time) (int, error)
	LatestCreatedByAuthor(ctx context.Context, authorID string) (time.Time, bool, error)
}

type commissionStore interface {
	Put(ctx context.Context, c *domain.Commission) error
	Get(ctx context.Context, commissionID int64) (*domain.Commission, error)
	Update(ctx context.Context, commissionID int64, updates map[string]interface{}) error
	Delete(ctx context.Context, commissionID int64) error
	CountByOffer(ctx context.Context, offerID int64, states ...domain.CommissionState) (int, error)
	CountByCommissionerOnOffer(ctx context.Context, offerID int64, commissionerID string) (int, error)
	LatestCreatedByCommissioner(ctx context.Context, commissionerID string) (time.Time, bool, error)
	Search(ctx context.Context, f domain.CommissionFilter) ([]domain.Commission, error)
}

type chatStore interface {
	PutChat(ctx context.Context, c *domain.Chat) error
	GetChat(ctx context.Context, chatID string) (*domain.Chat, error)
	DeleteChat(ctx context.Context, chatID string) error
	PutMessage(ctx context.Context, m *domain.ChatMessage) error
	DeleteMessage(ctx context.Context, messageID string) error
	ListMessages(ctx context.Context, chatID string) ([]domain.ChatMessage, error)
	LatestMessageByAuthor(ctx context.Context, authorID string) (time.Time, bool, error)
}

type followStore interface {
	Put(ctx context.Context, f *domain.UserFollowingUser) (bool, error)
	Delete(ctx context.Context, followerID, followedID string) error
	ListFollowers(ctx context.Context, followedID string) ([]string, error)
}

type supportStore interface {
	Put(ctx context.Context, t *domain.SupportTicket) error
	Get(ctx context.Context, ticketID string) (*domain.SupportTicket, error)
	Update(ctx context.Context, ticketID string, updates map[string]interface{}) error
	ListByAuthor(ctx context.Context, authorID string) ([]domain.SupportTicket, error)
}

type notificationStore interface {
	CreateNotifications(ctx context.Context, ns []domain.Notification) error
	Get(ctx context.Context, notificationID string) (*domain.Notification, error)
	ListByRecipient(ctx context.Context, recipientID string, includeSeen bool) ([]domain.Notification, error)
	CountUnseen(ctx context.Context, recipientID string) (int, error)
	MarkSeen(ctx context.Context, notificationIDs ...string) error
	DeletePayload(ctx context.Context, notificationID string) (*domain.PayloadRecord, error)
	DeleteBase(ctx context.Context, notificationID string) error
}

type tagStore interface {
	CreateTag(ctx context.Context, t *domain.Tag) error
	GetTag(ctx context.Context, name string) (*domain.Tag, error)
	ListTags(ctx context.Context) ([]domain.Tag, error)
	ListTagsByCategory(ctx context.Context, category string) ([]domain.Tag, error)
	UpdateTag(ctx context.Context, name string, updates map[string]interface{}) error
	ClearTagCategory(ctx context.Context, name string) error
	DeleteTag(ctx context.Context, name string) error
	CreateCategory(ctx context.Context, c *domain.TagCategory) error
	GetCategory(ctx context.Context, name string) (*domain.TagCategory, error)
	ListCategories(ctx context.Context) ([]domain.TagCategory, error)
	UpdateCategory(ctx context.Context, name string, updates map[string]interface{}) error
	DeleteCategory(ctx context.Context, name string) error
}

type sequence interface {
	Next(ctx context.Context, name string) (int64, error)
}

type stores struct {
	users         userStore
	offers        offerStore
	commissions   commissionStore
	chats         chatStore
	follows       followStore
	support       supportStore
	notifications notificationStore
	tags          tagStore
	sequence      sequence
}

func openStores(ctx context.Context, cfg *config.Config) (*stores, error) {
	if cfg.StorageDriver == config.StorageMemory {
		db := memory.NewDB()
		return &stores{
			users:         memory.NewUserRepo(db),
			offers:        memory.NewOfferRepo(db),
			commissions:   memory.NewCommissionRepo(db),
			chats:         memory.NewChatRepo(db),
			follows:       memory.NewFollowRepo(db),
			support:       memory.NewSupportRepo(db),
			notifications: memory.NewNotificationRepo(db),
			tags:          memory.NewTagRepo(db),
			sequence:      memory.NewSequence(db),
		}, nil
	}

	client, err := dynamo.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("dynamo client: %w", err)
	}
	// Creates the tables if they don't exist.
	dynamo.Bootstrap(ctx, client, cfg.DynamoTables)

	t := cfg.DynamoTables
	return &stores{
		users:         dynamo.NewUserRepo(client, t.Users),
		offers:        dynamo.NewOfferRepo(client, t.Offers),
		commissions:   dynamo.NewCommissionRepo(client, t.Commissions),
		chats:         dynamo.NewChatRepo(client, t.Chats, t.ChatMessages),
		follows:       dynamo.NewFollowRepo(client, t.Follows),
		support:       dynamo.NewSupportRepo(client, t.SupportTickets),
		notifications: dynamo.NewNotificationRepo(client, t.Notifications, t.NotificationPayloads),
		tags:          dynamo.NewTagRepo(client, t.Tags, t.TagCategories),
		sequence:      dynamo.NewCounterRepo(client, t.Counters),
	}, nil
}
