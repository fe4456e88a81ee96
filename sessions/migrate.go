package sessions

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-itvx/token"
)

// legacyRecord accepts every shape written by earlier releases:
//   - v0 has no vers field.
//   - v1 keeps the raw Itv.Session cookie as JSON text, sometimes with the
//     tokens only inside it.
//
// Both may store the clear password and a string timestamp.
type legacyRecord struct {
	Uname      string                     `json:"uname"`
	Passw      string                     `json:"passw"`
	ItvSession map[string]any             `json:"itv_session"`
	Cookies    map[string]json.RawMessage `json:"cookies"`
	Refreshed  any                        `json:"refreshed"`
	Vers       int                        `json:"vers"`
}

// Migrate converts a stored record of any version into the current schema.
// Token values are carried over unchanged and the cookies are rebuilt from them.
func Migrate(data []byte) (*Record, error) {
	var old legacyRecord
	if err := json.Unmarshal(data, &old); err != nil {
		return nil, err
	}

	rec := NewRecord()
	rec.Uname = old.Uname
	rec.Refreshed = parseTimestamp(old.Refreshed)

	access := stringField(old.ItvSession, "access_token")
	refresh := stringField(old.ItvSession, "refresh_token")
	profile := stringField(old.ItvSession, "profile_token")

	cookies := &Cookies{Cid: rawString(old.Cookies[token.CookieCid])}
	if access == "" || refresh == "" {
		if a, r, ok := token.ParseCookie(rawCookie(old.Cookies[token.CookieSession])); ok {
			access, refresh = a, r
		}
	}
	rec.Cookies = cookies
	if access != "" && refresh != "" {
		rec.ItvSession = &Tokens{AccessToken: access, RefreshToken: refresh, ProfileToken: profile}
	}
	rec.deriveCookies()

	if old.Passw != "" && !IsFingerprint(old.Passw) {
		hash, err := HashPassword(old.Passw)
		if err != nil {
			return nil, err
		}
		rec.Passw = hash
	} else {
		rec.Passw = old.Passw
	}
	return rec, nil
}

func stringField(m map[string]any, key string) string {
	s, _ := m[key].(string)
	return s
}

func parseTimestamp(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f
	}
	return 0
}

func rawString(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// rawCookie returns the cookie as text whether it was stored as a JSON string
// or as an embedded object.
func rawCookie(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	if s := rawString(raw); s != "" {
		return s
	}
	return string(raw)
}
