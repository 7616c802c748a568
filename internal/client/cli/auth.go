package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/router"
	"github.com/dmitrijs2005/gophsocial/internal/client/views"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/shared"
)

// getSimpleText, getPassword and getSecret are indirections used to
// facilitate testing. They point to interactive input helpers and can be
// swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword
var getSecret = GetSecret

// Signup prompts for email, username and password, creates the account and
// signs in with it.
func (a *App) Signup(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	username, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	id, err := a.deps.Auth.Signup(ctx, models.UserCreate{Email: email, Username: username, Password: string(password)})
	if err != nil {
		a.fail(ctx, "signup", err)
		return err
	}
	fmt.Fprintf(a.out, "Welcome, %s!\n", id.Username)
	return a.resume(ctx)
}

// Login prompts for credentials. On success it returns to the page that
// asked for a sign-in, if any.
func (a *App) Login(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer shared.WipeByteArray(password)

	id, err := a.deps.Auth.Login(ctx, email, string(password))
	if err != nil {
		a.fail(ctx, "login", err)
		return err
	}
	fmt.Fprintf(a.out, "Signed in as %s.\n", id.Username)
	return a.resume(ctx)
}

// resume opens the ?next= target of the sign-in page.
func (a *App) resume(ctx context.Context) error {
	next := router.Param(a.nav.Current(), "next")
	if next == "" {
		return nil
	}
	return a.Open(ctx, next)
}

func (a *App) Logout(ctx context.Context) error {
	a.deps.Auth.Logout(ctx)
	a.show(nil, nil, nil)
	a.nav.Navigate(router.PathHome)
	fmt.Fprintln(a.out, "Signed out.")
	return nil
}

func (a *App) Whoami(context.Context) error {
	id := a.store.Identity()
	if id == nil {
		fmt.Fprintln(a.out, "Not signed in.")
		return nil
	}
	fmt.Fprintf(a.out, "%s <%s> (#%d)\n", id.Username, id.Email, id.ID)
	if id.Bio != "" {
		fmt.Fprintln(a.out, id.Bio)
	}
	fmt.Fprintf(a.out, "  %d followers, %d following\n", id.FollowerCount, id.FollowingCount)
	return nil
}

// EditProfile asks for a new username and bio. An empty answer keeps the
// current value.
func (a *App) EditProfile(ctx context.Context) error {
	v := views.NewSettingsView(a.deps)
	if err := v.Load(ctx); err != nil {
		printNotice(a.out, v.Notice())
		return err
	}
	cur := v.Identity()

	username, err := getSimpleText(a.reader, fmt.Sprintf("Username [%s]", cur.Username), a.out)
	if err != nil {
		return err
	}
	if username == "" {
		username = cur.Username
	}
	bio, err := getSimpleText(a.reader, fmt.Sprintf("Bio [%s]", cur.Bio), a.out)
	if err != nil {
		return err
	}
	if bio == "" {
		bio = cur.Bio
	}

	err = v.SaveProfile(ctx, username, bio)
	printNotice(a.out, v.Notice())
	return err
}

func (a *App) ChangePassword(ctx context.Context) error {
	v := views.NewSettingsView(a.deps)
	if err := v.Load(ctx); err != nil {
		printNotice(a.out, v.Notice())
		return err
	}

	var secrets [3][]byte
	defer func() {
		for _, s := range secrets {
			shared.WipeByteArray(s)
		}
	}()
	for i, prompt := range []string{"Current password", "New password", "Repeat new password"} {
		s, err := getSecret(a.out, prompt)
		if err != nil {
			return err
		}
		secrets[i] = s
	}

	err := v.ChangePassword(ctx, string(secrets[0]), string(secrets[1]), string(secrets[2]))
	printNotice(a.out, v.Notice())
	return err
}

// fail prints the message for a failure outside any view.
func (a *App) fail(ctx context.Context, op string, err error) {
	msg := common.UserMessage(err)
	if op == "login" && common.KindOf(err) == common.KindUnauthenticated {
		msg = "Incorrect email or password."
	}
	fmt.Fprintln(a.out, "! "+msg)
	a.log.Info(ctx, "command failed", "op", op, "kind", common.KindOf(err).String())
}
