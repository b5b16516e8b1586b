package domain

import "time"

type SupportTicketState string

const (
	SupportTicketStateOpen          SupportTicketState = "OPEN"
	SupportTicketStateInvestigating SupportTicketState = "INVESTIGATING"
	SupportTicketStateClosed        SupportTicketState = "CLOSED"
)

func (s SupportTicketState) Valid() bool {
	switch s {
	case SupportTicketStateOpen, SupportTicketStateInvestigating, SupportTicketStateClosed:
		return true
	}
	return false
}

type SupportTicket struct {
	TicketID    string             `json:"id" dynamodbav:"ticket_id"`
	AuthorID    string             `json:"author_id" dynamodbav:"author_id"`
	Title       string             `json:"title" dynamodbav:"title"`
	Description string             `json:"description" dynamodbav:"description"`
	State       SupportTicketState `json:"state" dynamodbav:"state"`
	CreatedAt   time.Time          `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time          `json:"updated" dynamodbav:"updated_at"`
}

type CreateSupportTicketRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Description string `json:"description" validate:"required,max=5000"`
}

type UpdateSupportTicketStateRequest struct {
	State SupportTicketState `json:"state" validate:"required,oneof=OPEN INVESTIGATING CLOSED"`
}
