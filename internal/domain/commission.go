package domain

import "time"

type CommissionState string

const (
	CommissionStateReview     CommissionState = "REVIEW"
	CommissionStateAccepted   CommissionState = "ACCEPTED"
	CommissionStateInProgress CommissionState = "IN_PROGRESS"
	CommissionStateClosed     CommissionState = "CLOSED"
	CommissionStateRejected   CommissionState = "REJECTED"
)

// CommissionStates lists every state in display order.
var CommissionStates = []CommissionState{
	CommissionStateReview,
	CommissionStateAccepted,
	CommissionStateInProgress,
	CommissionStateClosed,
	CommissionStateRejected,
}

func (s CommissionState) Valid() bool {
	for _, st := range CommissionStates {
		if s == st {
			return true
		}
	}
	return false
}

// Label is the human-facing name of the state. CLOSED is shown as "Finished".
func (s CommissionState) Label() string {
	switch s {
	case CommissionStateReview:
		return "Review"
	case CommissionStateAccepted:
		return "Accepted"
	case CommissionStateInProgress:
		return "In progress"
	case CommissionStateClosed:
		return "Finished"
	case CommissionStateRejected:
		return "Rejected"
	}
	return string(s)
}

type Commission struct {
	CommissionID       int64           `json:"id" dynamodbav:"commission_id"`
	OfferID            int64           `json:"offer_id" dynamodbav:"offer_id"`
	CommissionerID     string          `json:"commissioner_id" dynamodbav:"commissioner_id"`
	OfferAuthorID      string          `json:"offer_author_id" dynamodbav:"offer_author_id"`
	InitialRequestText string          `json:"initial_request_text" dynamodbav:"initial_request_text"`
	State              CommissionState `json:"state" dynamodbav:"state"`
	ChatID             string          `json:"chat_id,omitempty" dynamodbav:"chat_id,omitempty"`
	CreatedAt          time.Time       `json:"created" dynamodbav:"created_at"`
	UpdatedAt          time.Time       `json:"updated" dynamodbav:"updated_at"`
}

// IsSelfManaged is true when the offer's author placed the commission on their own offer.
func (c *Commission) IsSelfManaged() bool { return c.CommissionerID == c.OfferAuthorID }

// IsActive reports whether the commission holds one of the offer's slots.
func (c *Commission) IsActive() bool {
	switch c.State {
	case CommissionStateAccepted, CommissionStateInProgress, CommissionStateClosed:
		return true
	}
	return false
}

// ActiveCommissionStates are the states that count against an offer's slots.
var ActiveCommissionStates = []CommissionState{
	CommissionStateAccepted,
	CommissionStateInProgress,
	CommissionStateClosed,
}

type CreateCommissionRequest struct {
	InitialRequestText string `json:"initial_request_text" validate:"required,max=5000"`
}

type UpdateCommissionStateRequest struct {
	State CommissionState `json:"state" validate:"required"`
}
