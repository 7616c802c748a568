package views

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/optimistic"
	"github.com/dmitrijs2005/gophsocial/internal/client/router"
	"github.com/dmitrijs2005/gophsocial/internal/client/services"
	"github.com/dmitrijs2005/gophsocial/internal/common"
)

type CommentCollection = optimistic.Collection[int, models.Comment]

func CommentKey(c models.Comment) int { return c.ID }

// ThreadView is the post detail page: one post and its comments.
type ThreadView struct {
	state
	d        *Deps
	postID   int
	post     *services.PostCollection
	comments *CommentCollection
	temp     tempKeys
}

func NewThreadView(d *Deps, postID int) *ThreadView {
	return &ThreadView{
		d:      d,
		postID: postID,
		post:   newPostCollection(d),
		comments: optimistic.NewCollection(CommentKey, nil,
			optimistic.WithName("comment"),
			optimistic.WithLogger(d.logger())),
	}
}

func (v *ThreadView) PostID() int { return v.postID }

// Post returns the post; false before Load or after it was deleted.
func (v *ThreadView) Post() (models.Post, bool) { return v.post.Get(v.postID) }

func (v *ThreadView) Comments() []models.Comment { return v.comments.Items() }

func (v *ThreadView) Pending() bool { return v.post.InFlight(v.postID) }

func (v *ThreadView) Load(ctx context.Context) error {
	v.set(StatusLoading, nil)
	v.clearNotice()

	p, err := v.d.Posts.Get(ctx, v.postID)
	if err != nil {
		v.post.Reset(nil)
		v.comments.Reset(nil)
		msg := "Failed to load the post. Please try again later."
		if common.KindOf(err) == common.KindNotFound {
			msg = "Post not found."
		}
		v.loadFailed(err, msg)
		return err
	}
	v.post.Reset([]models.Post{*p})

	cs, err := v.d.Comments.List(ctx, v.postID)
	if err != nil {
		v.comments.Reset(nil)
		v.loadFailed(err, "Failed to load comments. Please try again later.")
		return err
	}
	v.comments.Reset(cs)
	v.set(StatusReady, nil)
	return nil
}

func (v *ThreadView) CanEditPost() bool {
	p, ok := v.Post()
	return ok && canEditPost(v.d, p)
}

func (v *ThreadView) CanEditComment(c models.Comment) bool {
	id, ok := v.d.viewer()
	return ok && c.ID > 0 && c.UserID == id
}

func (v *ThreadView) Like(ctx context.Context) optimistic.Result[models.Post] {
	res := v.d.Likes.Toggle(ctx, v.post, v.postID)
	v.report(ctx, v.d, "like", res.Err, msgLikeFailed)
	return res
}

func (v *ThreadView) EditPost(ctx context.Context, content string) optimistic.Result[models.Post] {
	res := editPost(ctx, v.d, v.post, v.postID, content)
	if res.OK() {
		v.note(LevelSuccess, "Post updated.")
	} else {
		v.report(ctx, v.d, "edit post", res.Err, msgEditFailed)
	}
	return res
}

// DeletePost removes the post and navigates home on success.
func (v *ThreadView) DeletePost(ctx context.Context) optimistic.Result[models.Post] {
	res := deletePost(ctx, v.d, v.post, v.postID)
	if !res.OK() {
		v.report(ctx, v.d, "delete post", res.Err, msgDeleteFailed)
		return res
	}
	v.comments.Reset(nil)
	v.note(LevelSuccess, "Post deleted.")
	if v.d.Nav != nil {
		v.d.Nav.Navigate(router.PathHome)
	}
	return res
}

// AddComment appends a comment; the placeholder is replaced by the server's
// comment or removed on failure.
func (v *ThreadView) AddComment(ctx context.Context, content string) optimistic.Result[models.Comment] {
	res := v.addComment(ctx, content)
	if !res.OK() {
		v.report(ctx, v.d, "add comment", res.Err, msgPublishFailed)
	}
	return res
}

func (v *ThreadView) addComment(ctx context.Context, content string) optimistic.Result[models.Comment] {
	if err := models.ValidateContent(content); err != nil {
		return optimistic.Result[models.Comment]{Err: err}
	}
	me, ok := v.d.viewer()
	if !ok {
		return optimistic.Result[models.Comment]{Err: common.SignInRequired("add comment")}
	}
	placeholder := models.Comment{
		ID:        v.temp.take(),
		Content:   content,
		PostID:    v.postID,
		UserID:    me,
		User:      v.d.author(),
		CreatedAt: time.Now(),
	}
	return v.comments.Insert(ctx, placeholder, false, func(ctx context.Context) (*models.Comment, error) {
		return v.d.Comments.Create(ctx, v.postID, models.CommentCreate{Content: content})
	})
}

func (v *ThreadView) EditComment(ctx context.Context, commentID int, content string) optimistic.Result[models.Comment] {
	res := v.editComment(ctx, commentID, content)
	if res.OK() {
		v.note(LevelSuccess, "Comment updated.")
	} else {
		v.report(ctx, v.d, "edit comment", res.Err, msgEditFailed)
	}
	return res
}

func (v *ThreadView) editComment(ctx context.Context, commentID int, content string) optimistic.Result[models.Comment] {
	if err := models.ValidateContent(content); err != nil {
		return optimistic.Result[models.Comment]{Err: err}
	}
	if c, ok := v.comments.Get(commentID); ok && !v.CanEditComment(c) {
		return optimistic.Result[models.Comment]{Value: c, Err: common.Validation("you can only edit your own comments")}
	}
	return v.comments.Update(ctx, commentID,
		func(c models.Comment) models.Comment {
			c.Content = content
			return c
		},
		func(ctx context.Context, _ models.Comment) (*models.Comment, error) {
			return v.d.Comments.Update(ctx, commentID, models.CommentUpdate{Content: content})
		})
}

func (v *ThreadView) DeleteComment(ctx context.Context, commentID int) optimistic.Result[models.Comment] {
	var res optimistic.Result[models.Comment]
	if c, ok := v.comments.Get(commentID); ok && !v.CanEditComment(c) {
		res = optimistic.Result[models.Comment]{Value: c, Err: common.Validation("you can only delete your own comments")}
	} else {
		res = v.comments.Remove(ctx, commentID, func(ctx context.Context) error {
			return v.d.Comments.Delete(ctx, commentID)
		})
	}
	if res.OK() {
		v.note(LevelSuccess, "Comment deleted.")
	} else {
		v.report(ctx, v.d, "delete comment", res.Err, msgDeleteFailed)
	}
	return res
}
