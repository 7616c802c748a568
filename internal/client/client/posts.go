package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/gophsocial/internal/client/gateway"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
)

type SortOrder string

const (
	SortLatest SortOrder = "latest"
	SortOldest SortOrder = "oldest"
)

// ListOptions filters GET /posts. A zero UserID lists everyone.
type ListOptions struct {
	Page
	UserID int
	SortBy SortOrder
}

type Posts struct {
	d Doer
}

func (c *Posts) List(ctx context.Context, opts ListOptions) ([]models.Post, error) {
	q := opts.values()
	if opts.UserID != 0 {
		q.Set("user_id", id(opts.UserID))
	}
	sort := opts.SortBy
	if sort == "" {
		sort = SortLatest
	}
	q.Set("sort_by", string(sort))
	return c.list(ctx, "/posts", "/posts", q)
}

func (c *Posts) Feed(ctx context.Context, p Page) ([]models.Post, error) {
	return c.list(ctx, "/posts/feed", "/posts/feed", p.values())
}

func (c *Posts) Trending(ctx context.Context, p Page) ([]models.Post, error) {
	return c.list(ctx, "/posts/trending", "/posts/trending", p.values())
}

func (c *Posts) Liked(ctx context.Context) ([]models.Post, error) {
	return c.list(ctx, "/posts/liked", "/posts/liked", nil)
}

func (c *Posts) ByHashtag(ctx context.Context, tag string) ([]models.Post, error) {
	return c.list(ctx, "/tags/"+url.PathEscape(tag)+"/posts", "/tags/{name}/posts", nil)
}

func (c *Posts) list(ctx context.Context, path, route string, q url.Values) ([]models.Post, error) {
	var out []models.Post
	err := c.d.Do(ctx, gateway.Request{Method: http.MethodGet, Path: path, Route: route, Query: q}, &out)
	return out, err
}

// Create uploads a post as multipart/form-data with its attachments.
func (c *Posts) Create(ctx context.Context, in models.PostCreate) (*models.Post, error) {
	mp := &gateway.Multipart{Fields: url.Values{"content": {in.Content}}}
	for _, f := range in.Files {
		mp.Files = append(mp.Files, gateway.FilePart{
			Field:       "files",
			Name:        f.Name,
			ContentType: f.ContentType,
			Reader:      f.Reader,
		})
	}

	var out models.Post
	if err := c.d.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/posts", Multipart: mp}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Posts) Get(ctx context.Context, postID int) (*models.Post, error) {
	var out models.Post
	err := c.d.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Path:   "/posts/" + id(postID),
		Route:  "/posts/{id}",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Posts) Update(ctx context.Context, postID int, in models.PostUpdate) (*models.Post, error) {
	var out models.Post
	err := c.d.Do(ctx, gateway.Request{
		Method: http.MethodPut,
		Path:   "/posts/" + id(postID),
		Route:  "/posts/{id}",
		Body:   in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Posts) Delete(ctx context.Context, postID int) error {
	return c.d.Do(ctx, gateway.Request{
		Method: http.MethodDelete,
		Path:   "/posts/" + id(postID),
		Route:  "/posts/{id}",
	}, nil)
}

// Like returns the authoritative post when the server sends one. A body
// that is not a post yields nil.
func (c *Posts) Like(ctx context.Context, postID int) (*models.Post, error) {
	return c.like(ctx, http.MethodPost, postID)
}

func (c *Posts) Unlike(ctx context.Context, postID int) (*models.Post, error) {
	return c.like(ctx, http.MethodDelete, postID)
}

func (c *Posts) like(ctx context.Context, method string, postID int) (*models.Post, error) {
	var out *models.Post
	err := c.d.Do(ctx, gateway.Request{
		Method: method,
		Path:   "/posts/" + id(postID) + "/like",
		Route:  "/posts/{id}/like",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out != nil && out.ID == 0 {
		return nil, nil
	}
	return out, nil
}
