package config

import "time"

const (
	usernameVar     = "ITVX_USERNAME"
	passwordVar     = "ITVX_PASSWORD"
	tokenMaxAgeVar  = "ITVX_TOKEN_MAX_AGE"
	cookieMaxAgeVar = "ITVX_COOKIE_MAX_AGE"

	DefaultTokenMaxAge  = 24 * time.Hour
	DefaultCookieMaxAge = 4 * time.Hour
)

// Session resolves account settings. Environment variables win over the settings file.
type Session struct {
	settings Settings
}

var _ SessionConfig = Session{}

func (s Session) GetUsername() string {
	return GetEnv(usernameVar, s.settings.Username)
}

func (s Session) GetPassword() string {
	return GetEnv(passwordVar, s.settings.Password)
}

// GetTokenMaxAge is how long tokens are used for bearer requests before a refresh.
func (Session) GetTokenMaxAge() time.Duration {
	return GetEnvDuration(tokenMaxAgeVar, DefaultTokenMaxAge)
}

// GetCookieMaxAge is how long the session cookie is sent before a refresh.
func (Session) GetCookieMaxAge() time.Duration {
	return GetEnvDuration(cookieMaxAgeVar, DefaultCookieMaxAge)
}
