// Package auth owns the ITV account session: login, token refresh, logout and
// the authenticated request wrapper that recovers once from expired tokens.
package auth

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-itvx/internal/metrics"
	"github.com/jrsteele09/go-itvx/internal/utils"
	"github.com/jrsteele09/go-itvx/oauth2"
	"github.com/jrsteele09/go-itvx/sessions"
	"github.com/jrsteele09/go-itvx/token"
	"github.com/jrsteele09/go-itvx/token/refresh"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	xoauth2 "golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
)

// TokenEndpoint exchanges credentials or a refresh token for a token pair.
type TokenEndpoint interface {
	Login(ctx context.Context, username, password string) (*oauth2.TokenResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.TokenResponse, error)
}

// Prompter is the interactive side of a login.
type Prompter interface {
	// Credentials asks for a username and password. ok is false if the user declined.
	Credentials(ctx context.Context) (username, password string, ok bool)
	// ConfirmLogin tells the user they are signed out and asks whether to sign in now.
	ConfirmLogin(ctx context.Context) bool
}

// Account is the process's authentication state. It is safe for concurrent use.
type Account struct {
	store    sessions.Repo
	tokens   TokenEndpoint
	policy   *refresh.Policy
	prompter Prompter

	lock     sync.Mutex
	record   *sessions.Record
	loaded   bool
	username string
	password string

	refreshGroup singleflight.Group
	loginGroup   singleflight.Group
}

var _ xoauth2.TokenSource = (*Account)(nil)

type AccountOption func(*Account)

func WithPrompter(p Prompter) AccountOption {
	return func(a *Account) {
		a.prompter = p
	}
}

// WithCredentials sets the configured username and password. A stored session
// created with other credentials is discarded on load.
func WithCredentials(username, password string) AccountOption {
	return func(a *Account) {
		a.username = username
		a.password = password
	}
}

func NewAccount(store sessions.Repo, tokens TokenEndpoint, policy *refresh.Policy, opts ...AccountOption) (*Account, error) {
	if store == nil {
		return nil, errors.New("[NewAccount] session store is required")
	}
	if tokens == nil {
		return nil, errors.New("[NewAccount] token endpoint is required")
	}
	if policy == nil {
		return nil, errors.New("[NewAccount] refresh policy is required")
	}
	a := &Account{
		store:  store,
		tokens: tokens,
		policy: policy,
		record: sessions.NewRecord(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Load reads the stored session. A session created with credentials other than
// the configured ones is dropped so that the next access logs in again.
func (a *Account) Load() error {
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.loadLocked()
}

func (a *Account) loadLocked() error {
	rec, err := a.store.Load()
	if rec == nil {
		rec = sessions.NewRecord()
	}
	if a.username != "" && !rec.IsEmpty() && !sessions.CredentialsMatch(rec, a.username, a.password) {
		log.Info().Msg("configured credentials changed, discarding stored session")
		rec = sessions.NewRecord()
	}
	a.record = rec
	a.loaded = true
	if err != nil {
		return errors.Wrap(err, "load session")
	}
	return nil
}

func (a *Account) ensureLoaded() {
	a.lock.Lock()
	defer a.lock.Unlock()
	if a.loaded {
		return
	}
	if err := a.loadLocked(); err != nil {
		log.Err(err).Msg("session loaded but could not be written back")
	}
}

// Snapshot returns a copy of the current record.
func (a *Account) Snapshot() *sessions.Record {
	a.ensureLoaded()
	a.lock.Lock()
	defer a.lock.Unlock()
	return a.record.Clone()
}

// Login signs in and persists the new session. The held session is replaced
// only when the login succeeds. Concurrent logins with the same credentials
// share one request.
func (a *Account) Login(ctx context.Context, username, password string) error {
	a.ensureLoaded()
	_, err, shared := a.loginGroup.Do(username+"\x00"+password, func() (any, error) {
		return nil, a.login(ctx, username, password)
	})
	if shared {
		log.Debug().Msg("joined in-flight login")
	}
	return err
}

func (a *Account) login(ctx context.Context, username, password string) error {
	a.lock.Lock()
	var cid string
	if a.record != nil && a.record.Cookies != nil {
		cid = a.record.Cookies.Cid
	}
	a.lock.Unlock()

	resp, err := a.tokens.Login(ctx, username, password)
	metrics.LoginTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		log.Warn().Err(err).Msg("login failed")
		return err
	}

	fingerprint, err := sessions.HashPassword(password)
	if err != nil {
		return errors.Wrap(err, "fingerprint password")
	}
	rec := sessions.NewRecord()
	rec.Uname = username
	rec.Passw = fingerprint
	if cid != "" {
		rec.Cookies = &sessions.Cookies{Cid: cid}
	}
	if err := rec.SetTokens(utils.Value(resp.AccessToken), utils.Value(resp.RefreshToken), utils.Value(resp.ProfileToken), a.policy.Now()); err != nil {
		return err
	}

	a.lock.Lock()
	a.record = rec
	a.loaded = true
	a.username = username
	a.password = password
	a.lock.Unlock()

	log.Info().Str("user_id", userID(rec)).Msg("logged in")
	if err := a.store.Save(rec); err != nil {
		return errors.Wrap(err, "persist session after login")
	}
	return nil
}

// Refresh exchanges the refresh token for a new pair and persists it. Concurrent
// calls share one network request. On failure the held session is unchanged.
func (a *Account) Refresh(ctx context.Context) error {
	a.ensureLoaded()
	_, err, shared := a.refreshGroup.Do("refresh", func() (any, error) {
		return nil, a.refresh(ctx)
	})
	if shared {
		log.Debug().Msg("joined in-flight token refresh")
	}
	return err
}

func (a *Account) refresh(ctx context.Context) error {
	a.lock.Lock()
	rec := a.record.Clone()
	a.lock.Unlock()

	if !rec.HasTokens() {
		return ErrNoRefreshToken
	}

	resp, err := a.tokens.Refresh(ctx, rec.RefreshToken())
	metrics.TokenRefreshTotal.WithLabelValues(metrics.Result(err)).Inc()
	if err != nil {
		log.Warn().Err(err).Msg("token refresh failed")
		return err
	}
	if err := rec.SetTokens(utils.Value(resp.AccessToken), utils.Value(resp.RefreshToken), utils.Value(resp.ProfileToken), a.policy.Now()); err != nil {
		return err
	}

	a.lock.Lock()
	a.record = rec
	a.lock.Unlock()

	log.Debug().Str("user_id", userID(rec)).Msg("tokens refreshed")
	if err := a.store.Save(rec); err != nil {
		return errors.Wrap(err, "persist session after refresh")
	}
	return nil
}

// Logout clears the session and persists the empty record.
func (a *Account) Logout() error {
	a.lock.Lock()
	a.record = sessions.NewRecord()
	a.loaded = true
	a.lock.Unlock()

	if err := a.store.Save(sessions.NewRecord()); err != nil {
		return errors.Wrap(err, "persist logout")
	}
	log.Info().Msg("logged out")
	return nil
}

// AccessToken returns the bearer token, logging in first when there is no
// session and refreshing first when the token is stale. A failed refresh is
// logged and the held token returned; an expired token is then handled by Run.
func (a *Account) AccessToken(ctx context.Context) (string, error) {
	rec, _, err := a.current(ctx, refresh.ConsumerToken)
	if err != nil {
		return "", err
	}
	return rec.AccessToken(), nil
}

// Cookie returns the Cookie header value, refreshing on the cookie threshold.
func (a *Account) Cookie(ctx context.Context) (string, error) {
	rec, _, err := a.current(ctx, refresh.ConsumerCookie)
	if err != nil {
		return "", err
	}
	return rec.CookieString(), nil
}

// Token implements oauth2.TokenSource. The expiry comes from the access
// token's exp claim when it has one.
func (a *Account) Token() (*xoauth2.Token, error) {
	rec, _, err := a.current(context.Background(), refresh.ConsumerToken)
	if err != nil {
		return nil, err
	}
	resp := oauth2.TokenResponse{
		AccessToken:  utils.Ptr(rec.AccessToken()),
		RefreshToken: utils.Ptr(rec.RefreshToken()),
	}
	if rec.ItvSession != nil && rec.ItvSession.ProfileToken != "" {
		resp.ProfileToken = utils.Ptr(rec.ItvSession.ProfileToken)
	}
	tok := resp.Token(a.policy.Now())
	if claims, err := token.ParseClaims(rec.AccessToken()); err == nil {
		tok.Expiry = claims.ExpiresAt
	}
	return tok, nil
}

// Claims parses the held access token without refreshing it.
func (a *Account) Claims() (*token.Claims, error) {
	rec := a.Snapshot()
	if !rec.HasTokens() {
		return nil, ErrNotLoggedIn
	}
	return token.ParseClaims(rec.AccessToken())
}

// UserID is the subject of the held access token, or "" without a session.
func (a *Account) UserID() string {
	return userID(a.Snapshot())
}

// recovery records what current did before handing out credentials.
type recovery struct {
	refreshed bool // a refresh was attempted
	loggedIn  bool // a login was attempted
}

func (a *Account) current(ctx context.Context, consumer refresh.Consumer) (*sessions.Record, recovery, error) {
	var rc recovery
	rec := a.Snapshot()
	if !rec.HasTokens() {
		rc.loggedIn = true
		if err := a.signIn(ctx, false); err != nil {
			return nil, rc, err
		}
		return a.Snapshot(), rc, nil
	}
	if a.policy.IsStale(consumer, rec.RefreshedAt()) || tokenExpired(rec) {
		rc.refreshed = true
		if err := a.Refresh(ctx); err != nil {
			log.Warn().Err(err).Stringer("consumer", consumer).Msg("stale session could not be refreshed, using held credentials")
			return rec, rc, nil
		}
		return a.Snapshot(), rc, nil
	}
	return rec, rc, nil
}

// tokenExpired reports an access token past its own exp claim. Tokens that
// cannot be parsed are left to the staleness policy.
func tokenExpired(rec *sessions.Record) bool {
	claims, err := token.ParseClaims(rec.AccessToken())
	return err == nil && claims.Expired()
}

// signIn logs in with the configured credentials, or asks the prompter for
// them. With confirm set the prompter is first asked whether to sign in.
func (a *Account) signIn(ctx context.Context, confirm bool) error {
	a.lock.Lock()
	username, password := a.username, a.password
	a.lock.Unlock()

	if confirm && a.prompter != nil && !a.prompter.ConfirmLogin(ctx) {
		return fmt.Errorf("%w: %w", ErrLoginCancelled, ErrNotLoggedIn)
	}
	if username == "" || password == "" {
		if a.prompter == nil {
			return ErrNotLoggedIn
		}
		var ok bool
		username, password, ok = a.prompter.Credentials(ctx)
		if !ok || username == "" || password == "" {
			return fmt.Errorf("%w: %w", ErrLoginCancelled, ErrNotLoggedIn)
		}
	}
	return a.Login(ctx, username, password)
}

func userID(rec *sessions.Record) string {
	if !rec.HasTokens() {
		return ""
	}
	claims, err := token.ParseClaims(rec.AccessToken())
	if err != nil {
		return ""
	}
	return claims.UserID()
}
