package domain

import "time"

type Rating string

const (
	RatingGeneral Rating = "GENERAL"
	RatingMature  Rating = "MATURE"
	RatingAdult   Rating = "ADULT"
)

const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
)

// Offer defaults applied when the author leaves a field out.
const (
	DefaultOfferSlots            = 3
	DefaultMaxReviewCommissions  = 5
	DefaultMaxCommissionsPerUser = 1
	DefaultOfferLifetime         = 7 * 24 * time.Hour
)

type Offer struct {
	OfferID               int64     `json:"id" dynamodbav:"offer_id"`
	AuthorID              string    `json:"author_id" dynamodbav:"author_id"`
	Name                  string    `json:"name" dynamodbav:"name"`
	Description           string    `json:"description" dynamodbav:"description"`
	Rating                Rating    `json:"rating" dynamodbav:"rating"`
	Slots                 int       `json:"slots" dynamodbav:"slots"`
	MaxReviewCommissions  int       `json:"max_review_commissions" dynamodbav:"max_review_commissions"`
	MaxCommissionsPerUser int       `json:"max_commissions_per_user" dynamodbav:"max_commissions_per_user"`
	MinPrice              float64   `json:"min_price" dynamodbav:"min_price"`
	MaxPrice              float64   `json:"max_price" dynamodbav:"max_price"`
	Currency              string    `json:"currency" dynamodbav:"currency"`
	CutoffDate            time.Time `json:"cutoff_date" dynamodbav:"cutoff_date"`
	ForcedClosed          bool      `json:"forced_closed" dynamodbav:"forced_closed"`
	CreatedAt             time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt             time.Time `json:"updated" dynamodbav:"updated_at"`
}

// IsClosed reports whether the offer stopped accepting commissions at now.
func (o *Offer) IsClosed(now time.Time) bool {
	return o.ForcedClosed || now.After(o.CutoffDate)
}

func (o *Offer) IsAdult() bool { return o.Rating == RatingAdult }

// SlotInfo summarises how many of an offer's slots are held by active commissions.
type SlotInfo struct {
	MaxSlots   int  `json:"max_slots"`
	SlotsTaken int  `json:"slots_taken"`
	Capped     bool `json:"capped"`
	Over       bool `json:"over"`
}

func NewSlotInfo(o *Offer, taken int) SlotInfo {
	return SlotInfo{
		MaxSlots:   o.Slots,
		SlotsTaken: taken,
		Capped:     taken >= o.Slots,
		Over:       taken > o.Slots,
	}
}

type CreateOfferRequest struct {
	Name                  string     `json:"name" validate:"required,max=120"`
	Description           string     `json:"description" validate:"max=5000"`
	Rating                Rating     `json:"rating" validate:"required,oneof=GENERAL MATURE ADULT"`
	Slots                 *int       `json:"slots" validate:"omitempty,min=1"`
	MaxReviewCommissions  *int       `json:"max_review_commissions" validate:"omitempty,min=1"`
	MaxCommissionsPerUser *int       `json:"max_commissions_per_user" validate:"omitempty,min=1"`
	MinPrice              float64    `json:"min_price" validate:"gte=0"`
	MaxPrice              float64    `json:"max_price" validate:"gt=0"`
	Currency              string     `json:"currency" validate:"required,oneof=USD EUR"`
	CutoffDate            *time.Time `json:"cutoff_date"`
}

// UpdateOfferRequest carries the editable offer fields. The cutoff date is fixed at creation.
type UpdateOfferRequest struct {
	Name                  *string  `json:"name" validate:"omitempty,max=120"`
	Description           *string  `json:"description" validate:"omitempty,max=5000"`
	Rating                *Rating  `json:"rating" validate:"omitempty,oneof=GENERAL MATURE ADULT"`
	Slots                 *int     `json:"slots" validate:"omitempty,min=1"`
	MaxReviewCommissions  *int     `json:"max_review_commissions" validate:"omitempty,min=1"`
	MaxCommissionsPerUser *int     `json:"max_commissions_per_user" validate:"omitempty,min=1"`
	MinPrice              *float64 `json:"min_price" validate:"omitempty,gte=0"`
	MaxPrice              *float64 `json:"max_price" validate:"omitempty,gt=0"`
}
