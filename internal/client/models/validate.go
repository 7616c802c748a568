package models

import (
	"strings"

	"github.com/dmitrijs2005/gophsocial/internal/common"
)

// MinPasswordLength is the shortest password the service accepts.
const MinPasswordLength = 8

func ValidateContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return common.Validation("content must not be empty")
	}
	return nil
}

func (u UserCreate) Validate() error {
	if !strings.Contains(u.Email, "@") {
		return common.Validation("email address is invalid")
	}
	if strings.TrimSpace(u.Username) == "" {
		return common.Validation("username must not be empty")
	}
	if len(u.Password) < MinPasswordLength {
		return common.Validation("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}

func (u UserLogin) Validate() error {
	if strings.TrimSpace(u.Email) == "" || u.Password == "" {
		return common.Validation("email and password are required")
	}
	return nil
}

func (u UserUpdate) Validate() error {
	if u.Username != nil && strings.TrimSpace(*u.Username) == "" {
		return common.Validation("username must not be empty")
	}
	return nil
}

// ValidatePasswordChange checks a settings form before anything is sent.
func ValidatePasswordChange(oldPassword, newPassword, confirm string) error {
	if oldPassword == "" {
		return common.Validation("current password is required")
	}
	if newPassword != confirm {
		return common.Validation("new passwords do not match")
	}
	if len(newPassword) < MinPasswordLength {
		return common.Validation("password must be at least %d characters", MinPasswordLength)
	}
	return nil
}
