package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims are the parts of a JWT credential the client looks at.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// CredentialClaims reads sub and exp from token without verifying the
// signature. ok is false when the token is not a JWT; opaque credentials are
// valid and simply carry no claims.
func CredentialClaims(token string) (c Claims, ok bool) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{}, false
	}
	c.Subject = rc.Subject
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, true
}

// Expired reports whether token is a JWT whose exp lies before now.
func Expired(token string, now time.Time) bool {
	c, ok := CredentialClaims(token)
	return ok && !c.ExpiresAt.IsZero() && c.ExpiresAt.Before(now)
}
