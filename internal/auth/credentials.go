// Package auth reads the phone identifier and bearer token used to record
// completions. Obtaining a token is another application's job; this package
// only finds one that still looks usable.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoCredentials is returned when no source holds a usable token.
var ErrNoCredentials = errors.New("no usable credentials")

// Credentials identify the user to the completion service.
type Credentials struct {
	Phone string `json:"phone"`
	Token string `json:"token"`
}

// Complete reports whether both parts are present.
func (c Credentials) Complete() bool {
	return strings.TrimSpace(c.Phone) != "" && strings.TrimSpace(c.Token) != ""
}

// Source provides credentials.
type Source interface {
	Credentials(ctx context.Context) (Credentials, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context) (Credentials, error)

func (f SourceFunc) Credentials(ctx context.Context) (Credentials, error) { return f(ctx) }

// Static always returns c.
func Static(c Credentials) Source {
	return SourceFunc(func(context.Context) (Credentials, error) { return c, nil })
}

// Chain returns the first source whose credentials are complete and whose
// token is usable at the time of the call.
type Chain struct {
	Sources []Source
	Now     func() time.Time
}

// NewChain builds a Chain over sources in priority order.
func NewChain(sources ...Source) *Chain {
	return &Chain{Sources: sources, Now: time.Now}
}

func (c *Chain) Credentials(ctx context.Context) (Credentials, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	for _, s := range c.Sources {
		creds, err := s.Credentials(ctx)
		if err != nil {
			continue
		}
		if creds.Complete() && Usable(creds.Token, now()) {
			return creds, nil
		}
	}
	return Credentials{}, ErrNoCredentials
}

// Usable reports whether token is worth sending. Blank tokens are not.
// JWTs are decoded without verification and rejected once their exp claim
// has passed; anything else is treated as an opaque token and accepted.
func Usable(token string, now time.Time) bool {
	token = strings.TrimSpace(token)
	if token == "" {
		return false
	}
	if strings.Count(token, ".") != 2 {
		return true
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return true
	}
	if claims.ExpiresAt == nil {
		return true
	}
	return now.Before(claims.ExpiresAt.Time)
}
