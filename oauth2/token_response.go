package oauth2

import (
	"time"

	"github.com/jrsteele09/go-itvx/internal/utils"
	xoauth2 "golang.org/x/oauth2"
)

// TokenResponse represents the response of the login and refresh endpoints.
type TokenResponse struct {
	// AccessToken is the bearer token for content requests (three-part JWT).
	AccessToken *string `json:"access_token,omitempty"`

	// RefreshToken is exchanged for a new token pair when the access token goes stale.
	RefreshToken *string `json:"refresh_token,omitempty"`

	// ProfileToken identifies the selected viewer profile. Not always present on refresh.
	ProfileToken *string `json:"profile_token,omitempty"`

	// TokenType is usually "bearer". It is not persisted.
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the advertised access token lifetime in seconds; 0 when absent.
	ExpiresIn int `json:"expires_in,omitempty"`

	Scope string `json:"scope,omitempty"`
}

// HasTokens reports whether both halves of the token pair are present.
func (r *TokenResponse) HasTokens() bool {
	return r != nil && utils.NonEmpty(r.AccessToken) && utils.NonEmpty(r.RefreshToken)
}

// Token converts the response into an x/oauth2 token. The profile token is
// carried in the extras under "profile_token".
func (r *TokenResponse) Token(now time.Time) *xoauth2.Token {
	tok := &xoauth2.Token{
		AccessToken:  utils.Value(r.AccessToken),
		RefreshToken: utils.Value(r.RefreshToken),
		TokenType:    "Bearer",
	}
	if r.ExpiresIn > 0 {
		tok.Expiry = now.Add(time.Duration(r.ExpiresIn) * time.Second)
	}
	if profile := utils.Value(r.ProfileToken); profile != "" {
		tok = tok.WithExtra(map[string]any{"profile_token": profile})
	}
	return tok
}
