package domain

import "time"

type User struct {
	UserID                string    `json:"id" dynamodbav:"user_id"`
	Username              string    `json:"username" dynamodbav:"username"`
	Email                 string    `json:"email" dynamodbav:"email"`
	Role                  string    `json:"role" dynamodbav:"role"`
	ConsentToAdultContent bool      `json:"consent_to_adult_content" dynamodbav:"consent_to_adult_content"`
	CreatedAt             time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt             time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateUserRequest struct {
	Username              string `json:"username" validate:"required,alphanum,min=3,max=32"`
	Email                 string `json:"email" validate:"required,email"`
	Role                  string `json:"role" validate:"omitempty,oneof=BUYER CREATOR"`
	ConsentToAdultContent bool   `json:"consent_to_adult_content"`
}

type UpdatePreferencesRequest struct {
	Role                  *string `json:"role" validate:"omitempty,oneof=BUYER CREATOR"`
	ConsentToAdultContent *bool   `json:"consent_to_adult_content"`
}
