package session

import "github.com/dmitrijs2005/gophsocial/internal/client/models"

// Identity is the profile subset the store keeps for the signed-in user.
type Identity struct {
	ID             int    `json:"id"`
	Email          string `json:"email"`
	Username       string `json:"username"`
	Bio            string `json:"bio"`
	FollowerCount  int    `json:"follower_count"`
	FollowingCount int    `json:"following_count"`
}

func IdentityFromUser(u models.User) *Identity {
	return &Identity{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		Bio:            u.Bio,
		FollowerCount:  u.FollowerCount,
		FollowingCount: u.FollowingCount,
	}
}

// Snapshot is one immutable view of the store. Identity must not be mutated.
type Snapshot struct {
	Identity      *Identity
	Credential    string
	Authenticated bool
}

// UserID returns the signed-in user's id, or 0 when anonymous.
func (s Snapshot) UserID() int {
	if s.Identity == nil {
		return 0
	}
	return s.Identity.ID
}
