// Package auth reads the access token the player signed in to the game server with.
package auth

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	jwt "github.com/golang-jwt/jwt/v4"
)

// Token is an access token issued by the game server.
// The client cannot verify the signature, the server does that when the token is sent.
type Token struct {
	raw string
	// Subject is the name of the player the token was issued to.
	Subject string
	// ExpiresAt is when the token stops being valid.  It is zero if the token does not expire.
	ExpiresAt time.Time
}

// ErrExpired is returned when reading a token that is no longer valid.
var ErrExpired = errors.New("token expired")

// ParseToken reads the claims of the token.  Tokens that are expired at the time are rejected.
func ParseToken(raw string, now time.Time) (*Token, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := new(jwt.Parser).ParseUnverified(raw, &claims); err != nil {
		return nil, fmt.Errorf("parsing access token: %w", err)
	}
	t := Token{
		raw:     raw,
		Subject: claims.Subject,
	}
	if claims.ExpiresAt != nil {
		t.ExpiresAt = claims.ExpiresAt.Time
		if !now.Before(t.ExpiresAt) {
			return nil, fmt.Errorf("parsing access token: %w at %v", ErrExpired, t.ExpiresAt)
		}
	}
	if len(t.Subject) == 0 {
		return nil, fmt.Errorf("parsing access token: subject required")
	}
	return &t, nil
}

// AddTo adds the token to the url as the access_token query parameter.
func (t Token) AddTo(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("adding access token to url: %w", err)
	}
	q := u.Query()
	q.Set("access_token", t.raw)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// String is the encoded token.
func (t Token) String() string {
	return t.raw
}
