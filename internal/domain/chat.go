package domain

import "time"

type Chat struct {
	ChatID         string    `json:"id" dynamodbav:"chat_id"`
	Name           string    `json:"name" dynamodbav:"name"`
	ParticipantIDs []string  `json:"participant_ids" dynamodbav:"participant_ids"`
	CommissionID   int64     `json:"commission_id,omitempty" dynamodbav:"commission_id"`
	CreatedAt      time.Time `json:"created" dynamodbav:"created_at"`
}

func (c *Chat) HasParticipant(userID string) bool {
	for _, p := range c.ParticipantIDs {
		if p == userID {
			return true
		}
	}
	return false
}

// IsCommissionChat reports whether the chat belongs to a commission.
func (c *Chat) IsCommissionChat() bool { return c.CommissionID != 0 }

type ChatMessage struct {
	MessageID string    `json:"id" dynamodbav:"message_id"`
	ChatID    string    `json:"chat_id" dynamodbav:"chat_id"`
	AuthorID  string    `json:"author_id" dynamodbav:"author_id"`
	Message   string    `json:"message" dynamodbav:"message"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

type CreateChatMessageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}
