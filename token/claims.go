package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-itvx/internal/utils"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// ErrMalformedToken is returned for strings that are not header.payload.signature.
var ErrMalformedToken = errors.New("malformed token")

// Claims are the payload fields of an ITV access token.
type Claims struct {
	Issuer    string
	Subject   string // ITV user id
	Nickname  string
	Scope     []string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// UserID is the subject of the token.
func (c *Claims) UserID() string {
	return c.Subject
}

// Expired reports whether the token's own expiry has passed. Tokens without an
// exp claim never expire by this measure.
func (c *Claims) Expired() bool {
	return !c.ExpiresAt.IsZero() && NowTimeFunc().After(c.ExpiresAt)
}

// ParseClaims decodes the payload of a token without verifying its signature.
// ITV does not publish the signing keys; the payload is only read to learn the
// user id and lifetime.
func ParseClaims(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if strings.Count(raw, ".") != 2 {
		return nil, ErrMalformedToken
	}

	unverified, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedToken, err)
	}
	claims, ok := unverified.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: error extracting claims", ErrMalformedToken)
	}

	iss, _ := claims.GetIssuer()
	sub, _ := claims.GetSubject()
	c := &Claims{
		Issuer:  iss,
		Subject: sub,
		Scope:   utils.ScopeList(claims["scope"]),
	}
	if name, ok := claims["name"].(string); ok {
		c.Nickname = name
	} else if name, ok := claims["nickname"].(string); ok {
		c.Nickname = name
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		c.ExpiresAt = exp.Time
	}
	return c, nil
}
