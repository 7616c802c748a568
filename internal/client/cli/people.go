package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/router"
	"github.com/dmitrijs2005/gophsocial/internal/client/views"
)

// User opens a profile with the user's posts.
func (a *App) User(ctx context.Context, id int) error {
	a.nav.Navigate(router.ProfilePath(id))
	v := views.NewProfileView(a.deps, id)
	a.show(v.Posts(), nil, v)

	if err := v.Load(ctx); err != nil {
		printNotice(a.out, v.Notice())
		return err
	}
	a.printProfile()
	printNotice(a.out, v.Posts().Notice())
	printPosts(a.out, v.Posts())
	return nil
}

func (a *App) printProfile() {
	u, ok := a.profile.User()
	if !ok {
		return
	}
	printUser(a.out, u, a.profile.FollowVisible(), a.profile.Pending())
}

func (a *App) Follow(ctx context.Context, userID int) error {
	return a.setFollow(ctx, userID, true)
}

func (a *App) Unfollow(ctx context.Context, userID int) error {
	return a.setFollow(ctx, userID, false)
}

// setFollow toggles the follow only when it differs from want, so that
// repeating a command is harmless.
func (a *App) setFollow(ctx context.Context, userID int, want bool) error {
	if a.profile == nil || a.profile.UserID() != userID {
		if err := a.User(ctx, userID); err != nil {
			return err
		}
	}
	v := a.profile
	if !a.isLoggedIn() {
		fmt.Fprintln(a.out, "Please sign in to follow users.")
		return nil
	}
	if !v.FollowVisible() {
		fmt.Fprintln(a.out, "You cannot follow yourself.")
		return nil
	}
	if u, ok := v.User(); ok && u.Following() == want {
		if want {
			fmt.Fprintf(a.out, "You already follow %s.\n", u.Username)
		} else {
			fmt.Fprintf(a.out, "You do not follow %s.\n", u.Username)
		}
		return nil
	}

	res := v.ToggleFollow(ctx)
	printNotice(a.out, v.Notice())
	a.printProfile()
	return res.Err
}

func (a *App) Followers(ctx context.Context, userID int) error {
	return a.people(ctx, userID, (*views.ProfileView).Followers)
}

func (a *App) Following(ctx context.Context, userID int) error {
	return a.people(ctx, userID, (*views.ProfileView).Following)
}

func (a *App) people(ctx context.Context, userID int, list func(*views.ProfileView, context.Context) ([]models.User, error)) error {
	v := a.profile
	if v == nil || v.UserID() != userID {
		v = views.NewProfileView(a.deps, userID)
	}
	users, err := list(v, ctx)
	if err != nil {
		printNotice(a.out, v.Notice())
		return err
	}
	printUsers(a.out, users)
	return nil
}

func (a *App) Search(ctx context.Context, query string) error {
	a.nav.Navigate(router.SearchPath(query))
	a.show(nil, nil, nil)

	v := views.NewSearchView(a.deps)
	users, err := v.Search(ctx, query)
	printNotice(a.out, v.Notice())
	if err != nil || len(users) == 0 {
		return err
	}
	printUsers(a.out, users)
	return nil
}
