package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/go-itvx/fetch"
	itvxerrors "github.com/jrsteele09/go-itvx/internal/errors"
	"github.com/jrsteele09/go-itvx/internal/metrics"
	"github.com/jrsteele09/go-itvx/token/refresh"
	"github.com/rs/zerolog/log"
	xoauth2 "golang.org/x/oauth2"
)

// Outcome is the tagged result of an authenticated operation.
type Outcome int

const (
	OutcomeOK Outcome = iota
	// OutcomeAuthFailed means the credentials were rejected after every recovery step.
	OutcomeAuthFailed
	// OutcomeAccessDenied means the account is not entitled to the content.
	OutcomeAccessDenied
	// OutcomeFailed covers transport, parse and unrelated HTTP errors.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeAuthFailed:
		return "auth_failed"
	case OutcomeAccessDenied:
		return "access_denied"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Result of Run.
type Result struct {
	Outcome   Outcome
	Attempts  int  // calls made to the operation
	Refreshed bool // the refresh stage ran
	Relogged  bool // the login stage ran
	Err       error
}

// Credentials are attached to the operation's requests.
type Credentials struct {
	AccessToken string
	Cookie      string
}

// Apply adds the bearer token and cookie to req, allocating one if req is nil.
func (c Credentials) Apply(req *fetch.Request) *fetch.Request {
	if req == nil {
		req = &fetch.Request{}
	}
	if req.Headers == nil {
		req.Headers = http.Header{}
	}
	if c.AccessToken != "" {
		req.Token = &xoauth2.Token{AccessToken: c.AccessToken, TokenType: "Bearer"}
	}
	if c.Cookie != "" {
		req.Headers.Set("Cookie", c.Cookie)
	}
	return req
}

// Operation is a network call made with the current credentials.
type Operation func(ctx context.Context, creds Credentials) error

// RunOptions configure recovery per call site.
type RunOptions struct {
	// Interactive allows one login after the refresh stage has failed to help.
	Interactive bool
	// Consumer selects the staleness threshold checked before the first attempt.
	Consumer refresh.Consumer
}

type runState int

const (
	stateAttempt runState = iota
	stateRefresh
	stateLogin
	stateDone
)

// Run calls op with the current credentials. On an authentication failure it
// refreshes the tokens once and retries; with opts.Interactive it may then log
// in once and retry again. A refresh made because the session was stale counts
// as the one refresh, and a login made because there was no session as the one
// login. Other failures, access restriction included, end the run straight
// away. op is called at most three times.
func (a *Account) Run(ctx context.Context, opts RunOptions, op Operation) Result {
	var (
		res     Result
		lastErr error
	)
	state := stateAttempt
	for state != stateDone {
		switch state {
		case stateAttempt:
			creds, rc, err := a.credentials(ctx, opts.Consumer)
			res.Refreshed = res.Refreshed || rc.refreshed
			res.Relogged = res.Relogged || rc.loggedIn
			if err != nil {
				res.Err = err
				state = stateDone
				continue
			}
			res.Attempts++
			lastErr = op(ctx, creds)
			switch {
			case lastErr == nil:
				res.Err = nil
				state = stateDone
			case !itvxerrors.IsAuthentication(lastErr):
				res.Err = lastErr
				state = stateDone
			case !res.Refreshed && !res.Relogged:
				state = stateRefresh
			case opts.Interactive && !res.Relogged:
				state = stateLogin
			default:
				res.Err = lastErr
				state = stateDone
			}

		case stateRefresh:
			res.Refreshed = true
			metrics.AuthRetryTotal.WithLabelValues(metrics.StageRefresh).Inc()
			log.Debug().Int("attempt", res.Attempts).Msg("authentication rejected, refreshing tokens")
			if err := a.Refresh(ctx); err != nil {
				if opts.Interactive {
					state = stateLogin
					continue
				}
				res.Err = fmt.Errorf("%w; refresh: %w", lastErr, err)
				state = stateDone
				continue
			}
			state = stateAttempt

		case stateLogin:
			res.Relogged = true
			metrics.AuthRetryTotal.WithLabelValues(metrics.StageLogin).Inc()
			log.Debug().Int("attempt", res.Attempts).Msg("authentication rejected, signing in again")
			if err := a.signIn(ctx, true); err != nil {
				res.Err = fmt.Errorf("%w; login: %w", lastErr, err)
				state = stateDone
				continue
			}
			state = stateAttempt
		}
	}
	res.Outcome = outcomeOf(res.Err)
	return res
}

// Do is Run returning only the error.
func (a *Account) Do(ctx context.Context, opts RunOptions, op Operation) error {
	return a.Run(ctx, opts, op).Err
}

func (a *Account) credentials(ctx context.Context, consumer refresh.Consumer) (Credentials, recovery, error) {
	rec, rc, err := a.current(ctx, consumer)
	if err != nil {
		return Credentials{}, rc, err
	}
	return Credentials{AccessToken: rec.AccessToken(), Cookie: rec.CookieString()}, rc, nil
}

func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case itvxerrors.Is(err, itvxerrors.ErrAccessRestricted):
		return OutcomeAccessDenied
	case itvxerrors.IsAuthentication(err), itvxerrors.Is(err, itvxerrors.ErrNotLoggedIn):
		return OutcomeAuthFailed
	}
	return OutcomeFailed
}
