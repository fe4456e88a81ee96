// Package metrics provides Prometheus counters for the account and stream layers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Result label values.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

// Auth retry stages.
const (
	StageRefresh = "refresh"
	StageLogin   = "login"
)

var (
	// LoginTotal counts interactive or configured-credential logins by result.
	LoginTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itvx_logins_total",
		Help: "Total number of login attempts, by result.",
	}, []string{"result"})

	// TokenRefreshTotal counts refresh-token exchanges by result.
	TokenRefreshTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itvx_token_refresh_total",
		Help: "Total number of token refresh attempts, by result.",
	}, []string{"result"})

	// AuthRetryTotal counts second chances taken by the authenticated fetch wrapper.
	AuthRetryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itvx_auth_retries_total",
		Help: "Total number of authenticated request retries, by recovery stage.",
	}, []string{"stage"})

	// StreamResolutionTotal counts playlist resolutions by stream type and result.
	StreamResolutionTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "itvx_stream_resolutions_total",
		Help: "Total number of stream resolutions, by stream type and result.",
	}, []string{"type", "result"})
)

// Result maps an error to the result label.
func Result(err error) string {
	if err != nil {
		return ResultFailure
	}
	return ResultSuccess
}
