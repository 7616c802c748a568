package services

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/optimistic"
	"github.com/dmitrijs2005/gophsocial/internal/client/session"
	"github.com/dmitrijs2005/gophsocial/internal/common"
)

// Session is the read side of *session.Store.
type Session interface {
	Snapshot() session.Snapshot
}

// Posts is the subset of the posts client the like toggle needs.
type Posts interface {
	Like(ctx context.Context, postID int) (*models.Post, error)
	Unlike(ctx context.Context, postID int) (*models.Post, error)
}

// PostCollection is a feed or thread keyed by post id.
type PostCollection = optimistic.Collection[int, models.Post]

func PostKey(p models.Post) int { return p.ID }

// NextLike flips IsLiked and moves LikeCount by one in the same direction,
// never below zero.
func NextLike(p models.Post) models.Post {
	p.IsLiked = !p.IsLiked
	if p.IsLiked {
		p.LikeCount++
	} else if p.LikeCount > 0 {
		p.LikeCount--
	}
	return p
}

type LikeService struct {
	posts   Posts
	session Session
}

func NewLikeService(posts Posts, s Session) *LikeService {
	return &LikeService{posts: posts, session: s}
}

// Toggle likes or unlikes postID in coll. The request matches the desired
// state; an authoritative post in the response replaces the guess.
func (s *LikeService) Toggle(ctx context.Context, coll *PostCollection, postID int) optimistic.Result[models.Post] {
	if !s.session.Snapshot().Authenticated {
		return optimistic.Result[models.Post]{Err: common.SignInRequired("like")}
	}
	return coll.Update(ctx, postID, NextLike, func(ctx context.Context, desired models.Post) (*models.Post, error) {
		if desired.IsLiked {
			return s.posts.Like(ctx, desired.ID)
		}
		return s.posts.Unlike(ctx, desired.ID)
	})
}
