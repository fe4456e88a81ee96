package auth

import (
	"time"

	"github.com/jrsteele09/go-itvx/token/refresh"
)

// Status summarises the held session.
type Status struct {
	LoggedIn    bool      `json:"logged_in"`
	Username    string    `json:"username,omitempty"`
	UserID      string    `json:"user_id,omitempty"`
	Nickname    string    `json:"nickname,omitempty"`
	Refreshed   time.Time `json:"refreshed,omitempty"`
	ExpiresAt   time.Time `json:"expires_at,omitempty"`
	Expired     bool      `json:"expired"`
	TokenStale  bool      `json:"token_stale"`
	CookieStale bool      `json:"cookie_stale"`
}

// Status reports on the held session without contacting ITV.
func (a *Account) Status() Status {
	rec := a.Snapshot()
	if !rec.HasTokens() {
		return Status{Username: rec.Uname}
	}
	refreshed := rec.RefreshedAt()
	st := Status{
		LoggedIn:    true,
		Username:    rec.Uname,
		Refreshed:   refreshed,
		TokenStale:  a.policy.IsStale(refresh.ConsumerToken, refreshed),
		CookieStale: a.policy.IsStale(refresh.ConsumerCookie, refreshed),
	}
	if claims, err := a.Claims(); err == nil {
		st.UserID = claims.UserID()
		st.Nickname = claims.Nickname
		st.ExpiresAt = claims.ExpiresAt
		st.Expired = claims.Expired()
		st.TokenStale = st.TokenStale || st.Expired
	}
	return st
}
