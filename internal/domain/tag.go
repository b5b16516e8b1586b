package domain

import "time"

// TagCategory groups tags in the catalogue.
type TagCategory struct {
	Name        string    `json:"name" dynamodbav:"category_name"`
	Description string    `json:"description" dynamodbav:"description"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

// Tag is a catalogue entry maintained by staff. Category is empty when the tag is uncategorised.
type Tag struct {
	Name        string    `json:"name" dynamodbav:"tag_name"`
	AuthorID    string    `json:"author_id,omitempty" dynamodbav:"author_id,omitempty"`
	Category    string    `json:"category,omitempty" dynamodbav:"category_name,omitempty"`
	Description string    `json:"description" dynamodbav:"description"`
	Rating      Rating    `json:"rating" dynamodbav:"rating"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateTagRequest struct {
	Name        string `json:"name" validate:"required,max=38,tagname"`
	Category    string `json:"category" validate:"omitempty,max=32"`
	Description string `json:"description" validate:"max=6000"`
	Rating      Rating `json:"rating" validate:"omitempty,oneof=GENERAL MATURE ADULT"`
}

// UpdateTagRequest changes only the fields present. An empty category removes the tag from its category.
type UpdateTagRequest struct {
	Category    *string `json:"category" validate:"omitempty,max=32"`
	Description *string `json:"description" validate:"omitempty,max=6000"`
	Rating      *Rating `json:"rating" validate:"omitempty,oneof=GENERAL MATURE ADULT"`
}

type CreateTagCategoryRequest struct {
	Name        string `json:"name" validate:"required,max=32"`
	Description string `json:"description" validate:"max=6000"`
}

type UpdateTagCategoryRequest struct {
	Description string `json:"description" validate:"max=6000"`
}
