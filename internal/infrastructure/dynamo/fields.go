package dynamo

// Attribute and index names shared across repos.
const (
	fieldUpdatedAt   = "updated_at"
	fieldSeen        = "seen"
	fieldUsernameKey = "username_key"
	fieldEmailKey    = "email_key"

	indexUsername               = "username_key-index"
	indexEmail                  = "email_key-index"
	indexOfferAuthor            = "author_id-created_at-index"
	indexCommissionOffer        = "offer_id-index"
	indexCommissionCommissioner = "commissioner_id-updated_at-index"
	indexCommissionAuthor       = "offer_author_id-updated_at-index"
	indexMessageChat            = "chat_id-created_at-index"
	indexMessageAuthor          = "author_id-created_at-index"
	indexFollowed               = "followed_id-index"
	indexTicketAuthor           = "author_id-created_at-index"
	indexRecipient              = "recipient_id-created_at-index"
	indexTagCategory            = "category_name-index"
)
