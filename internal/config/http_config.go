package config

import "time"

const (
	httpTimeoutVar = "ITVX_HTTP_TIMEOUT"
	rateLimitVar   = "ITVX_RATE_LIMIT"
	rateBurstVar   = "ITVX_RATE_BURST"
	userAgentVar   = "ITVX_USER_AGENT"

	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:128.0) Gecko/20100101 Firefox/128.0"
)

type HTTP struct{}

var _ HTTPConfig = HTTP{}

func (HTTP) GetHTTPTimeout() time.Duration {
	return GetEnvDuration(httpTimeoutVar, 10*time.Second)
}

// GetRateLimit is the number of requests per second sent to ITV.
func (HTTP) GetRateLimit() float64 {
	return GetEnvFloat(rateLimitVar, 5)
}

func (HTTP) GetRateBurst() int {
	return GetEnvInt(rateBurstVar, 5)
}

func (HTTP) GetUserAgent() string {
	return GetEnv(userAgentVar, DefaultUserAgent)
}
