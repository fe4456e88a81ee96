package token

import (
	"encoding/json"
	"net/url"
	"strings"
)

// Cookie names used by the ITV web player.
const (
	CookieCid     = "Itv.Cid"
	CookieSession = "Itv.Session"
)

type cookieTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type cookieContent struct {
	Content cookieTokens `json:"content"`
}

type sessionCookie struct {
	Sticky bool          `json:"sticky"`
	Tokens cookieContent `json:"tokens"`
}

// BuildCookie returns the URL-encoded Itv.Session cookie value embedding both
// tokens. Equal inputs always give byte-identical output.
func BuildCookie(accessToken, refreshToken string) string {
	data, _ := json.Marshal(sessionCookie{
		Sticky: true,
		Tokens: cookieContent{Content: cookieTokens{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
		}},
	})
	return url.QueryEscape(string(data))
}

// ParseCookie extracts the tokens from an Itv.Session value. It accepts both the
// URL-encoded form and the raw JSON written by older releases.
func ParseCookie(value string) (accessToken, refreshToken string, ok bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", "", false
	}
	if !strings.HasPrefix(value, "{") {
		decoded, err := url.QueryUnescape(value)
		if err != nil {
			return "", "", false
		}
		value = decoded
	}
	var sc sessionCookie
	if err := json.Unmarshal([]byte(value), &sc); err != nil {
		return "", "", false
	}
	t := sc.Tokens.Content
	if t.AccessToken == "" || t.RefreshToken == "" {
		return "", "", false
	}
	return t.AccessToken, t.RefreshToken, true
}

// CookieString composes the Cookie header value from the stable cookie id and
// the token pair.
func CookieString(cid, accessToken, refreshToken string) string {
	session := CookieSession + "=" + BuildCookie(accessToken, refreshToken)
	if cid == "" {
		return session
	}
	return CookieCid + "=" + cid + "; " + session
}
