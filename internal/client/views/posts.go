package views

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/optimistic"
	"github.com/dmitrijs2005/gophsocial/internal/client/services"
	"github.com/dmitrijs2005/gophsocial/internal/common"
)

const (
	msgLikeFailed    = "Could not update like. Please try again later."
	msgEditFailed    = "Could not save your changes. Please try again later."
	msgDeleteFailed  = "Could not delete. Please try again later."
	msgPublishFailed = "Could not publish. Please try again later."
)

func newPostCollection(d *Deps) *services.PostCollection {
	return optimistic.NewCollection(services.PostKey, nil,
		optimistic.WithName("post"),
		optimistic.WithLogger(d.logger()))
}

func tagsOf(content string) []models.Hashtag {
	names := models.ExtractHashtags(content)
	out := make([]models.Hashtag, 0, len(names))
	for _, n := range names {
		out = append(out, models.Hashtag{Name: n})
	}
	return out
}

// canEditPost is true for the author of a post the server already knows.
func canEditPost(d *Deps, p models.Post) bool {
	id, ok := d.viewer()
	return ok && p.ID > 0 && p.UserID == id
}

// editPost rewrites the content of postID in coll; the post returned by the
// server replaces the guess.
func editPost(ctx context.Context, d *Deps, coll *services.PostCollection, postID int, content string) optimistic.Result[models.Post] {
	if err := models.ValidateContent(content); err != nil {
		return optimistic.Result[models.Post]{Err: err}
	}
	if _, ok := d.viewer(); !ok {
		return optimistic.Result[models.Post]{Err: common.SignInRequired("edit post")}
	}
	if p, ok := coll.Get(postID); ok && !canEditPost(d, p) {
		return optimistic.Result[models.Post]{Value: p, Err: common.Validation("you can only edit your own posts")}
	}

	return coll.Update(ctx, postID,
		func(p models.Post) models.Post {
			p.Content = content
			p.Hashtags = tagsOf(content)
			return p
		},
		func(ctx context.Context, _ models.Post) (*models.Post, error) {
			return d.Posts.Update(ctx, postID, models.PostUpdate{Content: &content})
		})
}

func deletePost(ctx context.Context, d *Deps, coll *services.PostCollection, postID int) optimistic.Result[models.Post] {
	if _, ok := d.viewer(); !ok {
		return optimistic.Result[models.Post]{Err: common.SignInRequired("delete post")}
	}
	if p, ok := coll.Get(postID); ok && !canEditPost(d, p) {
		return optimistic.Result[models.Post]{Value: p, Err: common.Validation("you can only delete your own posts")}
	}
	return coll.Remove(ctx, postID, func(ctx context.Context) error {
		return d.Posts.Delete(ctx, postID)
	})
}
