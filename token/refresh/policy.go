// Package refresh decides when a stored token pair is too old to use.
package refresh

import (
	"time"

	"github.com/jrsteele09/go-itvx/internal/config"
)

// Consumer identifies what a credential is being requested for. Each consumer
// has its own staleness threshold.
type Consumer int

const (
	// ConsumerToken is a bearer access token sent to the playlist endpoints.
	ConsumerToken Consumer = iota
	// ConsumerCookie is the Itv.Session cookie sent with web requests.
	ConsumerCookie
)

func (c Consumer) String() string {
	switch c {
	case ConsumerToken:
		return "token"
	case ConsumerCookie:
		return "cookie"
	}
	return "unknown"
}

// Policy compares the time of the last refresh against per-consumer maximum ages.
type Policy struct {
	tokenMaxAge  time.Duration
	cookieMaxAge time.Duration
	now          func() time.Time
}

type Option func(*Policy)

// WithNowFunc injects the clock.
func WithNowFunc(now func() time.Time) Option {
	return func(p *Policy) {
		p.now = now
	}
}

// WithMaxAges overrides the thresholds. Zero values keep the configured ones.
func WithMaxAges(token, cookie time.Duration) Option {
	return func(p *Policy) {
		if token > 0 {
			p.tokenMaxAge = token
		}
		if cookie > 0 {
			p.cookieMaxAge = cookie
		}
	}
}

func NewPolicy(cfg config.SessionConfig, opts ...Option) *Policy {
	p := &Policy{
		tokenMaxAge:  cfg.GetTokenMaxAge(),
		cookieMaxAge: cfg.GetCookieMaxAge(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Policy) Now() time.Time {
	return p.now()
}

// MaxAge returns the threshold applied to the consumer.
func (p *Policy) MaxAge(c Consumer) time.Duration {
	if c == ConsumerCookie {
		return p.cookieMaxAge
	}
	return p.tokenMaxAge
}

// IsStale reports whether a pair refreshed at the given time is too old for the
// consumer. A zero refreshed time is always stale.
func (p *Policy) IsStale(c Consumer, refreshed time.Time) bool {
	if refreshed.IsZero() {
		return true
	}
	return p.now().Sub(refreshed) > p.MaxAge(c)
}
