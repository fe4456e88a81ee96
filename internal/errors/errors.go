package errors

import "errors"

// Error kinds shared by the transport, session and stream layers.
var (
	// Transport errors
	ErrTransport = errors.New("transport failure")
	ErrHTTP      = errors.New("unexpected HTTP status")
	ErrParse     = errors.New("unexpected response format")

	// Authentication errors
	ErrAuthentication     = errors.New("authentication failed")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrNoRefreshToken     = errors.New("no refresh token")

	// Entitlement errors
	ErrAccessRestricted = errors.New("access restricted")
	ErrGeoRestricted    = errors.New("geo restricted")

	// Session errors
	ErrSessionSave = errors.New("session could not be saved")

	// Request errors
	ErrUntrustedURL = errors.New("not an ITV playlist url")
)

// Is reports whether any error in err's chain matches target
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// IsAuthentication reports an expired or invalid token/cookie. Access restriction
// and geo restriction are never authentication failures.
func IsAuthentication(err error) bool {
	return errors.Is(err, ErrAuthentication) &&
		!errors.Is(err, ErrAccessRestricted) &&
		!errors.Is(err, ErrGeoRestricted)
}
