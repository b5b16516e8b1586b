package domain

import (
	"fmt"
	"time"
)

type PayloadKind string

const (
	PayloadKindChatMessage        PayloadKind = "chat_message"
	PayloadKindOfferPosted        PayloadKind = "offer_posted"
	PayloadKindCommissionState    PayloadKind = "commission_state"
	PayloadKindCommissionCreated  PayloadKind = "commission_created"
	PayloadKindUserFollowed       PayloadKind = "user_followed"
	PayloadKindSupportTicketState PayloadKind = "support_ticket_state"
)

// PayloadKinds is the closed set of notification payloads.
var PayloadKinds = []PayloadKind{
	PayloadKindChatMessage,
	PayloadKindOfferPosted,
	PayloadKindCommissionState,
	PayloadKindCommissionCreated,
	PayloadKindUserFollowed,
	PayloadKindSupportTicketState,
}

// Notification is the generic part shared by every kind. Exactly one Payload is attached.
type Notification struct {
	NotificationID string      `json:"id" dynamodbav:"notification_id"`
	RecipientID    string      `json:"recipient_id" dynamodbav:"recipient_id"`
	Seen           bool        `json:"seen" dynamodbav:"seen"`
	Kind           PayloadKind `json:"kind" dynamodbav:"kind"`
	CreatedAt      time.Time   `json:"created" dynamodbav:"created_at"`
	Payload        Payload     `json:"payload,omitempty" dynamodbav:"-"`
}

// Payload is implemented only by the six payload types of this package.
type Payload interface {
	Kind() PayloadKind
	sealed()
}

type ChatMessagePayload struct {
	ChatID    string `json:"chat_id"`
	MessageID string `json:"message_id"`
}

type OfferPostedPayload struct {
	OfferID int64 `json:"offer_id"`
}

// CommissionStatePayload records the state the commission entered, not its current state.
type CommissionStatePayload struct {
	CommissionID int64           `json:"commission_id"`
	State        CommissionState `json:"state"`
}

type CommissionCreatedPayload struct {
	CommissionID int64 `json:"commission_id"`
}

type UserFollowedPayload struct {
	FollowerID string `json:"follower_id"`
}

type SupportTicketStatePayload struct {
	TicketID string             `json:"ticket_id"`
	State    SupportTicketState `json:"state"`
}

func (ChatMessagePayload) Kind() PayloadKind        { return PayloadKindChatMessage }
func (OfferPostedPayload) Kind() PayloadKind        { return PayloadKindOfferPosted }
func (CommissionStatePayload) Kind() PayloadKind    { return PayloadKindCommissionState }
func (CommissionCreatedPayload) Kind() PayloadKind  { return PayloadKindCommissionCreated }
func (UserFollowedPayload) Kind() PayloadKind       { return PayloadKindUserFollowed }
func (SupportTicketStatePayload) Kind() PayloadKind { return PayloadKindSupportTicketState }

func (ChatMessagePayload) sealed()        {}
func (OfferPostedPayload) sealed()        {}
func (CommissionStatePayload) sealed()    {}
func (CommissionCreatedPayload) sealed()  {}
func (UserFollowedPayload) sealed()       {}
func (SupportTicketStatePayload) sealed() {}

// PayloadRecord is the stored form of a payload, keyed by its notification.
type PayloadRecord struct {
	NotificationID string      `dynamodbav:"notification_id"`
	Kind           PayloadKind `dynamodbav:"kind"`
	ChatID         string      `dynamodbav:"chat_id,omitempty"`
	MessageID      string      `dynamodbav:"message_id,omitempty"`
	OfferID        int64       `dynamodbav:"offer_id,omitempty"`
	CommissionID   int64       `dynamodbav:"commission_id,omitempty"`
	FollowerID     string      `dynamodbav:"follower_id,omitempty"`
	TicketID       string      `dynamodbav:"ticket_id,omitempty"`
	State          string      `dynamodbav:"state,omitempty"`
}

// EncodePayload flattens p into its stored form.
func EncodePayload(notificationID string, p Payload) (PayloadRecord, error) {
	rec := PayloadRecord{NotificationID: notificationID}
	switch v := p.(type) {
	case ChatMessagePayload:
		rec.ChatID, rec.MessageID = v.ChatID, v.MessageID
	case OfferPostedPayload:
		rec.OfferID = v.OfferID
	case CommissionStatePayload:
		rec.CommissionID, rec.State = v.CommissionID, string(v.State)
	case CommissionCreatedPayload:
		rec.CommissionID = v.CommissionID
	case UserFollowedPayload:
		rec.FollowerID = v.FollowerID
	case SupportTicketStatePayload:
		rec.TicketID, rec.State = v.TicketID, string(v.State)
	default:
		return rec, fmt.Errorf("encode %T: %w", p, ErrUnknownPayloadKind)
	}
	rec.Kind = p.Kind()
	return rec, nil
}

// Decode rebuilds the typed payload from its stored form.
func (r PayloadRecord) Decode() (Payload, error) {
	switch r.Kind {
	case PayloadKindChatMessage:
		return ChatMessagePayload{ChatID: r.ChatID, MessageID: r.MessageID}, nil
	case PayloadKindOfferPosted:
		return OfferPostedPayload{OfferID: r.OfferID}, nil
	case PayloadKindCommissionState:
		return CommissionStatePayload{CommissionID: r.CommissionID, State: CommissionState(r.State)}, nil
	case PayloadKindCommissionCreated:
		return CommissionCreatedPayload{CommissionID: r.CommissionID}, nil
	case PayloadKindUserFollowed:
		return UserFollowedPayload{FollowerID: r.FollowerID}, nil
	case PayloadKindSupportTicketState:
		return SupportTicketStatePayload{TicketID: r.TicketID, State: SupportTicketState(r.State)}, nil
	}
	return nil, fmt.Errorf("decode %q: %w", r.Kind, ErrUnknownPayloadKind)
}
