// Package models defines the domain entities and request payloads exchanged
// with the social service API.
package models

import "time"

// User is a profile as returned by the API. IsFollowing is reported from the
// viewpoint of the current session and is absent for anonymous requests.
type User struct {
	ID             int       `json:"user_id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	Bio            string    `json:"bio"`
	CreatedAt      time.Time `json:"created_at"`
	FollowerCount  int       `json:"follower_count"`
	FollowingCount int       `json:"following_count"`
	IsFollowing    *bool     `json:"is_following,omitempty"`
}

// Following reports the is_following flag, treating an absent flag as false.
func (u User) Following() bool {
	return u.IsFollowing != nil && *u.IsFollowing
}

type UserCreate struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Bio      string `json:"bio,omitempty"`
	Password string `json:"password"`
}

type UserUpdate struct {
	Username *string `json:"username,omitempty"`
	Bio      *string `json:"bio,omitempty"`
}

type PasswordUpdate struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

type UserLogin struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Token is the credential issued by the login endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
