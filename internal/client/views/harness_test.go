package views

import (
	"context"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophsocial/internal/client/client"
	"github.com/dmitrijs2005/gophsocial/internal/client/gateway"
	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/router"
	"github.com/dmitrijs2005/gophsocial/internal/client/services"
	"github.com/dmitrijs2005/gophsocial/internal/client/session"
	"github.com/dmitrijs2005/gophsocial/internal/fakeapi"
	"github.com/stretchr/testify/require"
)

type harness struct {
	api   *fakeapi.Server
	store *session.Store
	nav   *router.History
	deps  *Deps

	ann, bob models.User
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	api := fakeapi.New()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	store := session.New(nil, nil)
	c := client.New(gateway.New(srv.URL, store, gateway.WithTimeout(5*time.Second)))
	nav := router.NewHistory("/")

	h := &harness{
		api:   api,
		store: store,
		nav:   nav,
		deps: &Deps{
			Session:          store,
			Posts:            c.Posts,
			Comments:         c.Comments,
			Users:            c.Users,
			Likes:            services.NewLikeService(c.Posts, store),
			Follows:          services.NewFollowService(c.Users, store),
			Auth:             services.NewAuthService(c.Users, store, nil),
			Nav:              nav,
			FeedPageSize:     100,
			TrendingPageSize: 10,
		},
	}
	h.ann = api.AddUser("ann@example.com", "ann", "password1")
	h.bob = api.AddUser("bob@example.com", "bob", "password2")
	return h
}

func (h *harness) signIn(t *testing.T, u models.User) {
	t.Helper()
	require.NoError(t, h.store.Login(context.Background(), session.IdentityFromUser(u), h.api.IssueToken(u.ID)))
}

// hold blocks the next request to method and path and releases it when the
// test ends at the latest.
func (h *harness) hold(t *testing.T, method, path string) *fakeapi.Hold {
	t.Helper()
	hd := h.api.Hold(method, path)
	t.Cleanup(hd.Release)
	return hd
}

func waitArrived(t *testing.T, hd *fakeapi.Hold) {
	t.Helper()
	select {
	case <-hd.Arrived():
	case <-time.After(5 * time.Second):
		t.Fatal("held request never arrived")
	}
}

func await[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(5 * time.Second):
		t.Fatal("timed out")
		var zero T
		return zero
	}
}

func likePath(id int) string { return "/posts/" + strconv.Itoa(id) + "/like" }
