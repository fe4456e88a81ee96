package config

import "time"

type Config interface {
	EnvConfig
	SessionConfig
	HTTPConfig
	PlaybackConfig
}

type EnvConfig interface {
	GetAppName() string
	GetProfileFolder() string
	GetSessionFile() string
	GetSettingsFile() string
	GetListenAddr() string
	GetLogLevel() string
	GetEnv() string
}

// SessionConfig holds the account credentials and the two staleness thresholds
// used by the token refresh policy.
type SessionConfig interface {
	GetUsername() string
	GetPassword() string
	GetTokenMaxAge() time.Duration
	GetCookieMaxAge() time.Duration
}

type HTTPConfig interface {
	GetHTTPTimeout() time.Duration
	GetRateLimit() float64
	GetRateBurst() int
	GetUserAgent() string
}

type PlaybackConfig interface {
	GetFullHD() bool
	GetPlayFromStart() bool
}

type mainConfig struct {
	EnvVars
	Session
	HTTP
	Playback
}

// New builds the configuration from the environment, overlaid on the optional
// YAML settings file in the profile folder.
func New() (Config, error) {
	env := EnvVars{}
	settings, err := LoadSettings(env.GetSettingsFile())
	if err != nil {
		return nil, err
	}
	return NewWithSettings(settings), nil
}

// NewWithSettings builds the configuration from the environment and the given
// settings, skipping the settings file.
func NewWithSettings(settings Settings) Config {
	return mainConfig{
		Session:  Session{settings: settings},
		Playback: Playback{settings: settings},
	}
}
