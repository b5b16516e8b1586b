// Package memory is an in-process store with the same repository surface as the dynamo package.
// It backs local development and the service-level tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/commission-api/internal/domain"
)

type followKey struct{ follower, followed string }

// DB holds every table. All repos built on the same DB share one lock,
// which is what makes multi-record writes atomic here.
type DB struct {
	mu            sync.RWMutex
	users         map[string]domain.User
	offers        map[int64]domain.Offer
	commissions   map[int64]domain.Commission
	chats         map[string]domain.Chat
	messages      map[string]domain.ChatMessage
	follows       map[followKey]domain.UserFollowingUser
	tickets       map[string]domain.SupportTicket
	notifications map[string]domain.Notification
	payloads      map[string]domain.PayloadRecord
	counters      map[string]int64
	tags          map[string]domain.Tag
	tagCategories map[string]domain.TagCategory
}

func NewDB() *DB {
	return &DB{
		users:         make(map[string]domain.User),
		offers:        make(map[int64]domain.Offer),
		commissions:   make(map[int64]domain.Commission),
		chats:         make(map[string]domain.Chat),
		messages:      make(map[string]domain.ChatMessage),
		follows:       make(map[followKey]domain.UserFollowingUser),
		tickets:       make(map[string]domain.SupportTicket),
		notifications: make(map[string]domain.Notification),
		payloads:      make(map[string]domain.PayloadRecord),
		counters:      make(map[string]int64),
		tags:          make(map[string]domain.Tag),
		tagCategories: make(map[string]domain.TagCategory),
	}
}

// applyUpdates overlays attribute-named updates onto item, the same way an UpdateItem SET would.
func applyUpdates(item interface{}, updates map[string]interface{}) error {
	if len(updates) == 0 {
		return fmt.Errorf("no fields to update")
	}
	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return fmt.Errorf("marshal item: %w", err)
	}
	for k, v := range updates {
		val, err := attributevalue.Marshal(v)
		if err != nil {
			return fmt.Errorf("marshal field %s: %w", k, err)
		}
		av[k] = val
	}
	return attributevalue.UnmarshalMap(av, item)
}

// Sequence hands out increasing integer ids per name.
type Sequence struct{ db *DB }

func NewSequence(db *DB) *Sequence { return &Sequence{db: db} }

func (s *Sequence) Next(_ context.Context, name string) (int64, error) {
	s.db.mu.Lock()
	defer s.db.mu.Unlock()
	s.db.counters[name]++
	return s.db.counters[name], nil
}
