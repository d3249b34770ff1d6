package session

import (
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/blake2b"
)

// Fingerprint returns a short, stable identifier for a token that is safe
// to log.
func Fingerprint(token string) string {
	if token == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(token))
	return hex.EncodeToString(sum[:6])
}

// Claims is what ferro can read from a JWT session token without the
// signing key.
type Claims struct {
	Subject   string
	ExpiresAt *time.Time
}

// Expired reports whether the token's expiry has passed at now.
func (c Claims) Expired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}

// InspectToken reads claims from a JWT without verifying its signature.
// It reports false for opaque (non-JWT) tokens.
func InspectToken(token string) (Claims, bool) {
	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{}, false
	}
	c := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		exp := rc.ExpiresAt.Time
		c.ExpiresAt = &exp
	}
	return c, true
}
