package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/commission-api/internal/domain"
)

type ChatRepo struct{ db *DB }

func NewChatRepo(db *DB) *ChatRepo { return &ChatRepo{db: db} }

func (r *ChatRepo) PutChat(_ context.Context, c *domain.Chat) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	cp := *c
	cp.ParticipantIDs = append([]string(nil), c.ParticipantIDs...)
	r.db.chats[c.ChatID] = cp
	return nil
}

func (r *ChatRepo) GetChat(_ context.Context, chatID string) (*domain.Chat, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	c, ok := r.db.chats[chatID]
	if !ok {
		return nil, fmt.Errorf("chat %s: %w", chatID, domain.ErrNotFound)
	}
	c.ParticipantIDs = append([]string(nil), c.ParticipantIDs...)
	return &c, nil
}

func (r *ChatRepo) DeleteChat(_ context.Context, chatID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.chats, chatID)
	return nil
}

func (r *ChatRepo) PutMessage(_ context.Context, m *domain.ChatMessage) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	r.db.messages[m.MessageID] = *m
	return nil
}

func (r *ChatRepo) DeleteMessage(_ context.Context, messageID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.messages, messageID)
	return nil
}

// ListMessages returns the chat's messages, oldest first.
func (r *ChatRepo) ListMessages(_ context.Context, chatID string) ([]domain.ChatMessage, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var out []domain.ChatMessage
	for _, m := range r.db.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *ChatRepo) LatestMessageByAuthor(_ context.Context, authorID string) (time.Time, bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	var latest time.Time
	found := false
	for _, m := range r.db.messages {
		if m.AuthorID == authorID && (!found || m.CreatedAt.After(latest)) {
			latest, found = m.CreatedAt, true
		}
	}
	return latest, found, nil
}
