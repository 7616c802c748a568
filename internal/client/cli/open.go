package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/client/router"
)

// Open shows the page of a route path such as /tags/go or /search?q=ann.
// Protected pages send visitors to the sign-in page instead.
func (a *App) Open(ctx context.Context, path string) error {
	r := router.Match(path)
	if !router.Guard(a.nav, r, a.isLoggedIn()) {
		fmt.Fprintln(a.out, "Please sign in to view this content. Use 'login' to sign in.")
		return nil
	}

	switch r.Name {
	case router.Home:
		return a.Feed(ctx, r.Query.Get("tab"))
	case router.Post:
		if id, ok := r.IntParam("postID"); ok {
			return a.Post(ctx, id)
		}
	case router.Profile:
		if id, ok := r.IntParam("userID"); ok {
			return a.User(ctx, id)
		}
	case router.Tag:
		return a.Tag(ctx, r.Params["tagName"])
	case router.Search:
		return a.Search(ctx, r.Query.Get("q"))
	case router.Settings:
		a.nav.Navigate(r.Path)
		return a.Whoami(ctx)
	case router.SignIn:
		a.nav.Navigate(path)
		return a.Login(ctx)
	case router.SignUp:
		a.nav.Navigate(r.Path)
		return a.Signup(ctx)
	}
	fmt.Fprintln(a.out, "Page not found.")
	return nil
}

// Back returns to the previous page and shows it again.
func (a *App) Back(ctx context.Context) error {
	if !a.nav.Back() {
		fmt.Fprintln(a.out, "Nothing to go back to.")
		return nil
	}
	cur := a.nav.Current()
	if r := router.Match(cur); r.Name == router.SignIn || r.Name == router.SignUp {
		fmt.Fprintln(a.out, cur)
		return nil
	}
	return a.Open(ctx, cur)
}

var _ execIface = (*App)(nil)
