package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/gophsocial/internal/client/gateway"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
)

type Users struct {
	d Doer
}

func (c *Users) Signup(ctx context.Context, in models.UserCreate) (*models.User, error) {
	var out models.User
	err := c.d.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/users/signup", Body: in, Anonymous: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Users) Login(ctx context.Context, in models.UserLogin) (*models.Token, error) {
	var out models.Token
	err := c.d.Do(ctx, gateway.Request{Method: http.MethodPost, Path: "/users/token", Body: in, Anonymous: true}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me resolves the user behind the session credential, or behind credential
// when it is non-empty.
func (c *Users) Me(ctx context.Context, credential string) (*models.User, error) {
	var out models.User
	err := c.d.Do(ctx, gateway.Request{Method: http.MethodGet, Path: "/users/me", Credential: credential}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Users) Get(ctx context.Context, userID int) (*models.User, error) {
	var out models.User
	err := c.d.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Path:   "/users/" + id(userID),
		Route:  "/users/{id}",
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Users) Search(ctx context.Context, query string) ([]models.User, error) {
	var out []models.User
	err := c.d.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Path:   "/users/search",
		Query:  url.Values{"q": {query}},
	}, &out)
	return out, err
}

func (c *Users) Update(ctx context.Context, userID int, in models.UserUpdate) (*models.User, error) {
	var out models.User
	err := c.d.Do(ctx, gateway.Request{
		Method: http.MethodPut,
		Path:   "/users/" + id(userID),
		Route:  "/users/{id}",
		Body:   in,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Users) UpdatePassword(ctx context.Context, userID int, in models.PasswordUpdate) error {
	return c.d.Do(ctx, gateway.Request{
		Method: http.MethodPut,
		Path:   "/users/" + id(userID) + "/password",
		Route:  "/users/{id}/password",
		Body:   in,
	}, nil)
}

// Follow returns the authoritative followee when the server sends one. A
// body that is not a user yields nil.
func (c *Users) Follow(ctx context.Context, userID int) (*models.User, error) {
	return c.follow(ctx, http.MethodPost, userID)
}

func (c *Users) Unfollow(ctx context.Context, userID int) (*models.User, error) {
	return c.follow(ctx, http.MethodDelete, userID)
}

func (c *Users) follow(ctx context.Context, method string, userID int) (*models.User, error) {
	var out *models.User
	err := c.d.Do(ctx, gateway.Request{
		Method: method,
		Path:   "/users/" + id(userID) + "/follow",
		Route:  "/users/{id}/follow",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out != nil && out.ID == 0 {
		return nil, nil
	}
	return out, nil
}

func (c *Users) Followers(ctx context.Context, userID int) ([]models.User, error) {
	return c.list(ctx, userID, "followers")
}

func (c *Users) Following(ctx context.Context, userID int) ([]models.User, error) {
	return c.list(ctx, userID, "following")
}

func (c *Users) list(ctx context.Context, userID int, rel string) ([]models.User, error) {
	var out []models.User
	err := c.d.Do(ctx, gateway.Request{
		Method: http.MethodGet,
		Path:   "/users/" + id(userID) + "/" + rel,
		Route:  "/users/{id}/" + rel,
	}, &out)
	return out, err
}
