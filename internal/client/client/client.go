package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/dmitrijs2005/gophsocial/internal/client/gateway"
)

// Doer sends one API request. *gateway.Gateway implements it.
type Doer interface {
	Do(ctx context.Context, r gateway.Request, out any) error
}

// API bundles the resource clients sharing one Doer.
type API struct {
	Users    *Users
	Posts    *Posts
	Comments *Comments
}

func New(d Doer) *API {
	return &API{
		Users:    &Users{d: d},
		Posts:    &Posts{d: d},
		Comments: &Comments{d: d},
	}
}

// Page selects a window of a listing.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) values() url.Values {
	q := url.Values{}
	q.Set("skip", strconv.Itoa(p.Skip))
	if p.Limit > 0 {
		q.Set("limit", strconv.Itoa(p.Limit))
	}
	return q
}

func id(n int) string { return strconv.Itoa(n) }
