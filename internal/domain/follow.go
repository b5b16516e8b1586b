package domain

import "time"

// UserFollowingUser is a directed follow edge.
type UserFollowingUser struct {
	FollowerID string    `json:"follower_id" dynamodbav:"follower_id"`
	FollowedID string    `json:"followed_id" dynamodbav:"followed_id"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
}
