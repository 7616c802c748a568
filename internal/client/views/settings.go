package views

import (
	"context"

	"github.com/dmitrijs2005/gophsocial/internal/client/session"
	"github.com/dmitrijs2005/gophsocial/internal/common"
)

// SettingsView edits the signed-in user's profile and password. Form
// validation happens before anything is sent.
type SettingsView struct {
	state
	d *Deps
}

func NewSettingsView(d *Deps) *SettingsView {
	return &SettingsView{d: d}
}

func (v *SettingsView) Load(context.Context) error {
	v.clearNotice()
	if _, ok := v.d.viewer(); !ok {
		err := common.SignInRequired("settings")
		v.set(StatusSignInRequired, err)
		v.note(LevelInfo, "Please sign in to view this content.")
		return err
	}
	v.set(StatusReady, nil)
	return nil
}

func (v *SettingsView) Identity() *session.Identity {
	return v.d.Session.Snapshot().Identity
}

func (v *SettingsView) SaveProfile(ctx context.Context, username, bio string) error {
	_, err := v.d.Auth.UpdateProfile(ctx, username, bio)
	if err != nil {
		v.report(ctx, v.d, "update profile", err, "Could not update your profile. Please try again later.")
		return err
	}
	v.note(LevelSuccess, "Profile updated.")
	return nil
}

func (v *SettingsView) ChangePassword(ctx context.Context, oldPassword, newPassword, confirm string) error {
	err := v.d.Auth.ChangePassword(ctx, oldPassword, newPassword, confirm)
	if err != nil {
		v.report(ctx, v.d, "change password", err, "Could not change your password. Please try again later.")
		return err
	}
	v.note(LevelSuccess, "Password changed.")
	return nil
}
