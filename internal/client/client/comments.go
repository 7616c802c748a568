package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/gophsocial/internal/client/gateway"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
)

type Comments struct {
	d Doer
}

func (c *Comments) List(ctx context.Context, postID int) ([]models.Comment, error) {
	var out []models.Comment
	err := c.d.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Path:   "/posts/" + id(postID) + "/comments",
		Route:  "/posts/{id}/comments",
	}, &out)
	return out, err
}

func (c *Comments) Create(ctx context.Context, postID int, in models.CommentCreate) (*models.Comment, error) {
	var out models.Comment
	err := c.d.Do(ctx, gateway.Request{
		Method: http.MethodPost,
		Path:   "/posts/" + id(postID) + "/comments",
		Route:  "/posts/{id}/comments",
		Body:   in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Comments) Update(ctx context.Context, commentID int, in models.CommentUpdate) (*models.Comment, error) {
	var out models.Comment
	err := c.d.Do(ctx, gateway.Request{
		Method: http.MethodPut,
		Path:   "/comments/" + id(commentID),
		Route:  "/comments/{id}",
		Body:   in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Comments) Delete(ctx context.Context, commentID int) error {
	return c.d.Do(ctx, gateway.Request{
		Method: http.MethodDelete,
		Path:   "/comments/" + id(commentID),
		Route:  "/comments/{id}",
	}, nil)
}
