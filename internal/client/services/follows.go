package services

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/optimistic"
	"github.com/dmitrijs2005/gophsocial/internal/common"
)

type Follows interface {
	Follow(ctx context.Context, userID int) (*models.User, error)
	Unfollow(ctx context.Context, userID int) (*models.User, error)
}

// UserCell holds the user a profile shows.
type UserCell = optimistic.Cell[int, models.User]

func UserKey(u models.User) int { return u.ID }

// NextFollow flips IsFollowing and moves FollowerCount by one in the same
// direction, never below zero.
func NextFollow(u models.User) models.User {
	following := !u.Following()
	u.IsFollowing = &following
	if following {
		u.FollowerCount++
	} else if u.FollowerCount > 0 {
		u.FollowerCount--
	}
	return u
}

// FollowVisible reports whether the follow affordance is shown. It is
// hidden on one's own profile whatever is_following says, and when
// anonymous.
func FollowVisible(followerID, followeeID int, authenticated bool) bool {
	return authenticated && followerID != followeeID
}

type FollowService struct {
	users   Follows
	session Session
}

func NewFollowService(users Follows, s Session) *FollowService {
	return &FollowService{users: users, session: s}
}

// Toggle follows or unfollows the user held by cell on behalf of the
// signed-in viewer.
func (s *FollowService) Toggle(ctx context.Context, cell *UserCell) optimistic.Result[models.User] {
	snap := s.session.Snapshot()
	if !snap.Authenticated {
		return optimistic.Result[models.User]{Err: common.SignInRequired("follow")}
	}
	target, ok := cell.Get()
	if ok && !FollowVisible(snap.UserID(), target.ID, true) {
		return optimistic.Result[models.User]{Value: target, Err: common.Validation("you cannot follow yourself")}
	}

	return cell.Update(ctx, NextFollow, func(ctx context.Context, desired models.User) (*models.User, error) {
		if desired.Following() {
			return s.users.Follow(ctx, desired.ID)
		}
		return s.users.Unfollow(ctx, desired.ID)
	})
}
