package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	appNameVar      = "ITVX_APP_NAME"
	profileEnvVar   = "ITVX_PROFILE_DIR"
	settingsFileVar = "ITVX_SETTINGS_FILE"
	listenVar       = "ITVX_LISTEN"
	logLevelVar     = "ITVX_LOG_LEVEL"

	sessionFileName  = "itv_session"
	settingsFileName = "settings.yaml"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "itvX")
}

// GetProfileFolder returns the per-user folder holding the session file and settings.
func (EnvVars) GetProfileFolder() string {
	if dir := os.Getenv(profileEnvVar); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".itvx"
	}
	return filepath.Join(home, ".itvx")
}

func (e EnvVars) GetSessionFile() string {
	return filepath.Join(e.GetProfileFolder(), sessionFileName)
}

func (e EnvVars) GetSettingsFile() string {
	return GetEnv(settingsFileVar, filepath.Join(e.GetProfileFolder(), settingsFileName))
}

func (EnvVars) GetListenAddr() string {
	return GetEnv(listenVar, "127.0.0.1:8765")
}

func (EnvVars) GetLogLevel() string {
	return GetEnv(logLevelVar, "info")
}

func (EnvVars) GetEnv() string {
	env := os.Getenv("ENV")
	if env == "" {
		return "DEV"
	}
	return env
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}

func GetEnvDuration(envVar string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(envVar); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return defaultValue
}

func GetEnvBool(envVar string, defaultValue bool) bool {
	if v := os.Getenv(envVar); v != "" {
		return v == "1" || strings.EqualFold(v, "true") || strings.EqualFold(v, "yes")
	}
	return defaultValue
}

func GetEnvFloat(envVar string, defaultValue float64) float64 {
	if v := os.Getenv(envVar); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			return f
		}
	}
	return defaultValue
}

func GetEnvInt(envVar string, defaultValue int) int {
	if v := os.Getenv(envVar); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
