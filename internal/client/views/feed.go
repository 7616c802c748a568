package views

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/optimistic"
	"github.com/dmitrijs2005/gophsocial/internal/client/services"
	"github.com/dmitrijs2005/gophsocial/internal/common"
)

type Tab string

const (
	TabFollowing Tab = "following"
	TabTrending  Tab = "trending"
	TabAll       Tab = "all"
	TabLiked     Tab = "liked"
)

// FeedParams select which listing a FeedView fetches. The first non-empty
// of Initial, Hashtag and UserID wins; otherwise Tab decides.
type FeedParams struct {
	Tab     Tab
	UserID  int
	Hashtag string
	SortBy  client.SortOrder
	// Initial is shown as is, without a fetch.
	Initial []models.Post
}

// RequiresAuth reports whether the listing is personal to the viewer:
// the following feed, all posts and liked posts. Listings scoped to a user
// or hashtag, and trending, are public.
func (p FeedParams) RequiresAuth() bool {
	if p.Initial != nil || p.Hashtag != "" || p.UserID != 0 {
		return false
	}
	return p.Tab != TabTrending
}

// FeedView is a list of posts.
type FeedView struct {
	state
	d      *Deps
	posts  *services.PostCollection
	temp   tempKeys
	params FeedParams
}

func NewFeedView(d *Deps, p FeedParams) *FeedView {
	if p.Tab == "" {
		p.Tab = TabAll
	}
	return &FeedView{d: d, params: p, posts: newPostCollection(d)}
}

func (v *FeedView) Params() FeedParams { return v.params }

// SetParams changes the listing; call Load to fetch it.
func (v *FeedView) SetParams(p FeedParams) {
	if p.Tab == "" {
		p.Tab = TabAll
	}
	v.params = p
}

func (v *FeedView) Posts() []models.Post { return v.posts.Items() }

func (v *FeedView) Post(id int) (models.Post, bool) { return v.posts.Get(id) }

// Pending reports whether postID has a mutation in flight; its affordances
// are disabled meanwhile.
func (v *FeedView) Pending(postID int) bool { return v.posts.InFlight(postID) }

// CanEdit is true only for the author.
func (v *FeedView) CanEdit(p models.Post) bool { return canEditPost(v.d, p) }

// Subscribe registers fn to run after every change of the posts.
func (v *FeedView) Subscribe(fn func()) (cancel func()) { return v.posts.Subscribe(fn) }

// Load fetches the listing. A personal listing is not fetched while
// anonymous; the view asks the visitor to sign in instead.
func (v *FeedView) Load(ctx context.Context) error {
	v.set(StatusLoading, nil)
	v.clearNotice()

	if _, ok := v.d.viewer(); v.params.RequiresAuth() && !ok {
		v.posts.Reset(nil)
		err := common.SignInRequired("load " + string(v.params.Tab))
		v.set(StatusSignInRequired, err)
		v.note(LevelInfo, "Please sign in to view this content.")
		return err
	}

	posts, err := v.fetch(ctx)
	if err != nil {
		v.posts.Reset(nil)
		v.loadFailed(err, "Failed to load posts. Please try again later.")
		v.d.logger().Warn(ctx, "load posts failed", "tab", string(v.params.Tab), "error", err)
		return err
	}
	v.posts.Reset(posts)
	v.set(StatusReady, nil)
	return nil
}

func (v *FeedView) fetch(ctx context.Context) ([]models.Post, error) {
	p := v.params
	feed := client.Page{Limit: v.d.FeedPageSize}

	switch {
	case p.Initial != nil:
		return p.Initial, nil
	case p.Hashtag != "":
		return v.d.Posts.ByHashtag(ctx, p.Hashtag)
	case p.UserID != 0:
		return v.d.Posts.List(ctx, client.ListOptions{Page: feed, UserID: p.UserID, SortBy: p.SortBy})
	}

	switch p.Tab {
	case TabFollowing:
		return v.d.Posts.Feed(ctx, feed)
	case TabTrending:
		return v.d.Posts.Trending(ctx, client.Page{Limit: v.d.TrendingPageSize})
	case TabLiked:
		return v.d.Posts.Liked(ctx)
	default:
		return v.d.Posts.List(ctx, client.ListOptions{Page: feed, SortBy: p.SortBy})
	}
}

// Like toggles the like on postID. A failure restores the post and leaves a
// notice.
func (v *FeedView) Like(ctx context.Context, postID int) optimistic.Result[models.Post] {
	res := v.d.Likes.Toggle(ctx, v.posts, postID)
	v.report(ctx, v.d, "like", res.Err, msgLikeFailed)
	return res
}

// Create publishes a post and shows it first. The placeholder is replaced by
// the server's post, or removed on failure.
func (v *FeedView) Create(ctx context.Context, content string, files []models.File) optimistic.Result[models.Post] {
	res := v.create(ctx, content, files)
	if res.OK() {
		v.note(LevelSuccess, "Post published.")
	} else {
		v.report(ctx, v.d, "create post", res.Err, msgPublishFailed)
	}
	return res
}

func (v *FeedView) create(ctx context.Context, content string, files []models.File) optimistic.Result[models.Post] {
	if err := models.ValidateContent(content); err != nil {
		return optimistic.Result[models.Post]{Err: err}
	}
	me, ok := v.d.viewer()
	if !ok {
		return optimistic.Result[models.Post]{Err: common.SignInRequired("create post")}
	}

	placeholder := models.Post{
		ID:        v.temp.take(),
		Content:   content,
		UserID:    me,
		User:      v.d.author(),
		CreatedAt: time.Now(),
		Hashtags:  tagsOf(content),
	}
	return v.posts.Insert(ctx, placeholder, true, func(ctx context.Context) (*models.Post, error) {
		return v.d.Posts.Create(ctx, models.PostCreate{Content: content, Files: files})
	})
}

func (v *FeedView) Edit(ctx context.Context, postID int, content string) optimistic.Result[models.Post] {
	res := editPost(ctx, v.d, v.posts, postID, content)
	if res.OK() {
		v.note(LevelSuccess, "Post updated.")
	} else {
		v.report(ctx, v.d, "edit post", res.Err, msgEditFailed)
	}
	return res
}

func (v *FeedView) Delete(ctx context.Context, postID int) optimistic.Result[models.Post] {
	res := deletePost(ctx, v.d, v.posts, postID)
	if res.OK() {
		v.note(LevelSuccess, "Post deleted.")
	} else {
		v.report(ctx, v.d, "delete post", res.Err, msgDeleteFailed)
	}
	return res
}
