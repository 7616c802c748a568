package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/client/models"
	"github.com/dmitrijs2005/gophsocial/internal/client/session"
	"github.com/dmitrijs2005/gophsocial/internal/common"
	"github.com/dmitrijs2005/gophsocial/internal/logging"
)

// Users is the subset of the users client the auth flows need.
type Users interface {
	Signup(ctx context.Context, in models.UserCreate) (*models.User, error)
	Login(ctx context.Context, in models.UserLogin) (*models.Token, error)
	Me(ctx context.Context, credential string) (*models.User, error)
	Update(ctx context.Context, userID int, in models.UserUpdate) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int, in models.PasswordUpdate) error
}

// AuthService drives the session store from the account endpoints.
type AuthService struct {
	users Users
	store *session.Store
	log   logging.Logger
}

func NewAuthService(users Users, store *session.Store, log logging.Logger) *AuthService {
	return &AuthService{users: users, store: store, log: logging.OrNop(log)}
}

// Signup creates the account and signs in with it.
func (a *AuthService) Signup(ctx context.Context, in models.UserCreate) (*session.Identity, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := a.users.Signup(ctx, in); err != nil {
		return nil, err
	}
	return a.Login(ctx, in.Email, in.Password)
}

// Login exchanges the password for a credential, resolves the identity with
// that credential and only then populates the store.
func (a *AuthService) Login(ctx context.Context, email, password string) (*session.Identity, error) {
	in := models.UserLogin{Email: strings.TrimSpace(email), Password: password}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	tok, err := a.users.Login(ctx, in)
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, &common.Failure{Kind: common.KindUnknown, Op: "login", Message: "empty access token"}
	}

	me, err := a.users.Me(ctx, tok.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("resolve identity: %w", err)
	}

	id := session.IdentityFromUser(*me)
	if err := a.store.Login(ctx, id, tok.AccessToken); err != nil {
		return nil, err
	}
	return a.store.Identity(), nil
}

func (a *AuthService) Logout(ctx context.Context) {
	a.store.Logout(ctx)
}

// Restore resumes the persisted session, if any.
func (a *AuthService) Restore(ctx context.Context) error {
	return a.store.Restore(ctx, func(ctx context.Context, credential string) (*session.Identity, error) {
		me, err := a.users.Me(ctx, credential)
		if err != nil {
			return nil, err
		}
		return session.IdentityFromUser(*me), nil
	})
}

// UpdateProfile saves username and bio and refreshes the stored identity.
func (a *AuthService) UpdateProfile(ctx context.Context, username, bio string) (*session.Identity, error) {
	snap := a.store.Snapshot()
	if !snap.Authenticated {
		return nil, common.SignInRequired("update profile")
	}
	username = strings.TrimSpace(username)
	in := models.UserUpdate{Username: &username, Bio: &bio}
	if err := in.Validate(); err != nil {
		return nil, err
	}

	u, err := a.users.Update(ctx, snap.UserID(), in)
	if err != nil {
		return nil, err
	}
	a.store.UpdateProfile(ctx, session.IdentityFromUser(*u))
	return a.store.Identity(), nil
}

// ChangePassword validates the form locally before anything is sent.
func (a *AuthService) ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error {
	if err := models.ValidatePasswordChange(oldPassword, newPassword, confirm); err != nil {
		return err
	}
	snap := a.store.Snapshot()
	if !snap.Authenticated {
		return common.SignInRequired("change password")
	}
	return a.users.UpdatePassword(ctx, snap.UserID(), models.PasswordUpdate{
		OldPassword: oldPassword,
		NewPassword: newPassword,
	})
}
