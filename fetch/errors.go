package fetch

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/grafana/regexp"
	itvxerrors "github.com/jrsteele09/go-itvx/internal/errors"
)

// Sentinel error kinds, matched with errors.Is.
var (
	ErrTransport        = itvxerrors.ErrTransport
	ErrHTTP             = itvxerrors.ErrHTTP
	ErrParse            = itvxerrors.ErrParse
	ErrAuthentication   = itvxerrors.ErrAuthentication
	ErrAccessRestricted = itvxerrors.ErrAccessRestricted
	ErrGeoRestricted    = itvxerrors.ErrGeoRestricted
)

const maxErrorBody = 512

var (
	geoPattern         = regexp.MustCompile(`(?i)outside of allowed geographic region|geo[ -]?restrict`)
	entitlementPattern = regexp.MustCompile(`(?i)not entitled|entitlement|premium|subscription`)
)

// HTTPError wraps one of the sentinel kinds with the request context.
type HTTPError struct {
	Kind   error
	Method string
	URL    string
	Status int
	Body   string
	Err    error // Nested lower-level error (e.g. net.Error, json.SyntaxError)
}

func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("fetch: %s %s: %v", e.Method, e.URL, e.Kind)
	if e.Status > 0 {
		msg = fmt.Sprintf("%s (HTTP %d)", msg, e.Status)
	}
	if e.Body != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Body)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *HTTPError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var he *HTTPError
	if itvxerrors.As(err, &he) {
		return he.Status
	}
	return 0
}

// classify maps a non-2xx response to an error kind. Entitlement failures are
// kept apart from authentication failures since no token refresh can fix them.
func classify(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrAuthentication
	case status == http.StatusForbidden && geoPattern.Match(body):
		return ErrGeoRestricted
	case status == http.StatusForbidden && entitlementPattern.Match(body):
		return ErrAccessRestricted
	case status == http.StatusBadRequest && isTokenError(body):
		return ErrAuthentication
	}
	return ErrHTTP
}

func isTokenError(body []byte) bool {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return false
	}
	return payload.Error == "invalid_grant" || payload.Error == "invalid_token"
}

func truncate(body []byte) string {
	if len(body) > maxErrorBody {
		return string(body[:maxErrorBody]) + "..."
	}
	return string(body)
}
