// Package sessions persists the ITV account session: credentials fingerprint,
// token pair, derived cookies and the time of the last refresh.
package sessions

import (
	"errors"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-itvx/token"
)

// CurrentVersion is the schema version written by Save.
const CurrentVersion = 2

// ErrIncompleteTokens is returned when only one half of a token pair is supplied.
var ErrIncompleteTokens = errors.New("access and refresh tokens must be set together")

// Tokens is the itv_session sub-record.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ProfileToken string `json:"profile_token,omitempty"`
}

// Cookies is derived from Tokens and the stable cookie id.
type Cookies struct {
	Cid       string `json:"Itv.Cid,omitempty"`
	Session   string `json:"Itv.Session,omitempty"`
	CookieStr string `json:"cookie_str,omitempty"`
}

// Record is the persisted session.
type Record struct {
	Uname      string   `json:"uname,omitempty"`
	Passw      string   `json:"passw,omitempty"` // bcrypt fingerprint
	ItvSession *Tokens  `json:"itv_session,omitempty"`
	Cookies    *Cookies `json:"cookies,omitempty"`
	Refreshed  float64  `json:"refreshed,omitempty"` // seconds since epoch
	Vers       int      `json:"vers"`
}

// NewRecord returns an empty record of the current version.
func NewRecord() *Record {
	return &Record{Vers: CurrentVersion}
}

// IsEmpty reports whether the record holds neither an account nor tokens.
func (r *Record) IsEmpty() bool {
	return r == nil || (r.Uname == "" && !r.HasTokens())
}

func (r *Record) HasTokens() bool {
	return r != nil && r.ItvSession != nil &&
		r.ItvSession.AccessToken != "" && r.ItvSession.RefreshToken != ""
}

func (r *Record) AccessToken() string {
	if !r.HasTokens() {
		return ""
	}
	return r.ItvSession.AccessToken
}

func (r *Record) RefreshToken() string {
	if !r.HasTokens() {
		return ""
	}
	return r.ItvSession.RefreshToken
}

// CookieString returns the Cookie header value, or "" without a session.
func (r *Record) CookieString() string {
	if !r.HasTokens() || r.Cookies == nil {
		return ""
	}
	return r.Cookies.CookieStr
}

// SetTokens replaces the token pair, rebuilds the cookies and stamps refreshed
// in one step. An empty profile token keeps the previous one since refresh
// responses do not always carry it.
func (r *Record) SetTokens(access, refresh, profile string, now time.Time) error {
	if access == "" || refresh == "" {
		return ErrIncompleteTokens
	}
	if profile == "" && r.ItvSession != nil {
		profile = r.ItvSession.ProfileToken
	}
	r.ItvSession = &Tokens{AccessToken: access, RefreshToken: refresh, ProfileToken: profile}
	r.deriveCookies()

	// refreshed never moves backwards, even if the wall clock does.
	ts := float64(now.UnixNano()) / float64(time.Second)
	if ts <= r.Refreshed {
		ts = math.Nextafter(r.Refreshed, math.Inf(1))
	}
	r.Refreshed = ts
	r.Vers = CurrentVersion
	return nil
}

func (r *Record) deriveCookies() {
	if r.Cookies == nil {
		r.Cookies = &Cookies{}
	}
	if r.Cookies.Cid == "" {
		r.Cookies.Cid = uuid.NewString()
	}
	if !r.HasTokens() {
		r.Cookies.Session = ""
		r.Cookies.CookieStr = ""
		return
	}
	t := r.ItvSession
	r.Cookies.Session = token.BuildCookie(t.AccessToken, t.RefreshToken)
	r.Cookies.CookieStr = token.CookieString(r.Cookies.Cid, t.AccessToken, t.RefreshToken)
}

// RefreshedAt converts the refreshed stamp to a time. Zero without a stamp.
func (r *Record) RefreshedAt() time.Time {
	if r == nil || r.Refreshed <= 0 {
		return time.Time{}
	}
	sec, frac := math.Modf(r.Refreshed)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	if r.ItvSession != nil {
		t := *r.ItvSession
		c.ItvSession = &t
	}
	if r.Cookies != nil {
		ck := *r.Cookies
		c.Cookies = &ck
	}
	return &c
}
