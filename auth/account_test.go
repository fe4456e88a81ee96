package auth_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-itvx/auth"
	"github.com/jrsteele09/go-itvx/internal/config"
	itvxerrors "github.com/jrsteele09/go-itvx/internal/errors"
	"github.com/jrsteele09/go-itvx/internal/utils"
	"github.com/jrsteele09/go-itvx/oauth2"
	"github.com/jrsteele09/go-itvx/sessions"
	"github.com/jrsteele09/go-itvx/sessions/repofakes"
	"github.com/jrsteele09/go-itvx/token/refresh"
	"github.com/stretchr/testify/require"
)

const (
	testUsername = "alice"
	testPassword = "secret"
)

// fakeEndpoint hands out numbered token pairs.
type fakeEndpoint struct {
	lock         sync.Mutex
	logins       int
	refreshes    int
	loginErr     error
	refreshErr   error
	lastRefresh  string
	loginAccess  string
	loginRefresh string
	loginGate    chan struct{}
}

func (f *fakeEndpoint) Login(_ context.Context, _, _ string) (*oauth2.TokenResponse, error) {
	f.lock.Lock()
	f.logins++
	gate := f.loginGate
	f.lock.Unlock()
	if gate != nil {
		<-gate
	}
	f.lock.Lock()
	defer f.lock.Unlock()
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	access, refreshTok := f.loginAccess, f.loginRefresh
	if access == "" {
		access, refreshTok = fmt.Sprintf("login-access-%d", f.logins), fmt.Sprintf("login-refresh-%d", f.logins)
	}
	return &oauth2.TokenResponse{AccessToken: utils.Ptr(access), RefreshToken: utils.Ptr(refreshTok)}, nil
}

func (f *fakeEndpoint) Refresh(_ context.Context, refreshToken string) (*oauth2.TokenResponse, error) {
	f.lock.Lock()
	defer f.lock.Unlock()
	f.refreshes++
	f.lastRefresh = refreshToken
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &oauth2.TokenResponse{
		AccessToken:  utils.Ptr(fmt.Sprintf("access-%d", f.refreshes)),
		RefreshToken: utils.Ptr(fmt.Sprintf("refresh-%d", f.refreshes)),
	}, nil
}

func (f *fakeEndpoint) counts() (int, int) {
	f.lock.Lock()
	defer f.lock.Unlock()
	return f.logins, f.refreshes
}

type fakePrompter struct {
	username, password string
	declineCredentials bool
	declineConfirm     bool
	asked              int
	confirmed          int
}

func (p *fakePrompter) Credentials(context.Context) (string, string, bool) {
	p.asked++
	if p.declineCredentials {
		return "", "", false
	}
	return p.username, p.password, true
}

func (p *fakePrompter) ConfirmLogin(context.Context) bool {
	p.confirmed++
	return !p.declineConfirm
}

type testFixture struct {
	now      time.Time
	store    *repofakes.FakeStore
	endpoint *fakeEndpoint
	policy   *refresh.Policy
}

func setupTestFixture(t *testing.T, rec *sessions.Record) *testFixture {
	t.Helper()
	f := &testFixture{
		now:      time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		store:    repofakes.NewFakeStore(rec),
		endpoint: &fakeEndpoint{},
	}
	f.policy = refresh.NewPolicy(config.NewWithSettings(config.Settings{}), refresh.WithNowFunc(func() time.Time { return f.now }))
	return f
}

func (f *testFixture) account(t *testing.T, opts ...auth.AccountOption) *auth.Account {
	t.Helper()
	a, err := auth.NewAccount(f.store, f.endpoint, f.policy, opts...)
	require.NoError(t, err)
	require.NoError(t, a.Load())
	return a
}

// storedSession builds a record logged in as alice and refreshed age ago.
func storedSession(t *testing.T, now time.Time, age time.Duration) *sessions.Record {
	t.Helper()
	hash, err := sessions.HashPassword(testPassword)
	require.NoError(t, err)
	rec := sessions.NewRecord()
	rec.Uname = testUsername
	rec.Passw = hash
	require.NoError(t, rec.SetTokens("AAA0", "BBB0", "PPP0", now.Add(-age)))
	return rec
}

func TestNewAccount_Validation(t *testing.T) {
	f := setupTestFixture(t, nil)
	_, err := auth.NewAccount(nil, f.endpoint, f.policy)
	require.Error(t, err)
	_, err = auth.NewAccount(f.store, nil, f.policy)
	require.Error(t, err)
	_, err = auth.NewAccount(f.store, f.endpoint, nil)
	require.Error(t, err)
}

func TestAccount_Login(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.policy = refresh.NewPolicy(config.NewWithSettings(config.Settings{}))
	f.endpoint.loginAccess, f.endpoint.loginRefresh = "AAA", "BBB"
	a := f.account(t)

	require.NoError(t, a.Login(context.Background(), testUsername, testPassword))

	stored := f.store.Stored()
	require.Equal(t, 1, f.store.SaveCount())
	require.Equal(t, "AAA", stored.ItvSession.AccessToken)
	require.Equal(t, "BBB", stored.ItvSession.RefreshToken)
	require.WithinDuration(t, time.Now(), stored.RefreshedAt(), time.Second)
	require.Equal(t, sessions.CurrentVersion, stored.Vers)
	require.Equal(t, testUsername, stored.Uname)
	require.NotEqual(t, testPassword, stored.Passw)
	require.True(t, sessions.CredentialsMatch(stored, testUsername, testPassword))
	require.NotEmpty(t, stored.CookieString())
}

func TestAccount_LoginFailure(t *testing.T) {
	f := setupTestFixture(t, storedSession(t, time.Now(), time.Hour))
	f.endpoint.loginErr = fmt.Errorf("%w: %w", itvxerrors.ErrInvalidCredentials, itvxerrors.ErrAuthentication)
	a := f.account(t)

	err := a.Login(context.Background(), testUsername, "wrong")
	require.ErrorIs(t, err, auth.ErrInvalidCredentials)
	require.True(t, a.Snapshot().HasTokens())
	require.Equal(t, "AAA0", a.Snapshot().AccessToken())
	require.Equal(t, 0, f.store.SaveCount())
}

func TestAccount_LoginKeepsSessionUntilSuccess(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.store = repofakes.NewFakeStore(storedSession(t, f.now, time.Hour))
	f.endpoint.loginAccess, f.endpoint.loginRefresh = "CCC", "DDD"
	f.endpoint.loginGate = make(chan struct{})
	a := f.account(t)
	cid := a.Snapshot().Cookies.Cid

	done := make(chan error, 1)
	go func() {
		done <- a.Login(context.Background(), testUsername, testPassword)
	}()
	require.Eventually(t, func() bool {
		logins, _ := f.endpoint.counts()
		return logins == 1
	}, time.Second, time.Millisecond)

	tok, err := a.AccessToken(context.Background())
	require.NoError(t, err)
	require.Equal(t, "AAA0", tok)

	close(f.endpoint.loginGate)
	require.NoError(t, <-done)
	require.Equal(t, "CCC", a.Snapshot().AccessToken())
	require.Equal(t, cid, a.Snapshot().Cookies.Cid)
	logins, _ := f.endpoint.counts()
	require.Equal(t, 1, logins)
}

func TestAccount_LoginSaveError(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.store.SetSaveError(itvxerrors.ErrSessionSave)
	a := f.account(t)

	err := a.Login(context.Background(), testUsername, testPassword)
	require.ErrorIs(t, err, itvxerrors.ErrSessionSave)
	require.True(t, a.Snapshot().HasTokens())
}

func TestAccount_LoadDiscardsChangedCredentials(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("different password", func(t *testing.T) {
		f := setupTestFixture(t, storedSession(t, now, time.Minute))
		a := f.account(t, auth.WithCredentials(testUsername, "changed"))
		require.True(t, a.Snapshot().IsEmpty())
	})

	t.Run("different username", func(t *testing.T) {
		f := setupTestFixture(t, storedSession(t, now, time.Minute))
		a := f.account(t, auth.WithCredentials("bob", testPassword))
		require.True(t, a.Snapshot().IsEmpty())
	})

	t.Run("same credentials", func(t *testing.T) {
		f := setupTestFixture(t, storedSession(t, now, time.Minute))
		a := f.account(t, auth.WithCredentials(testUsername, testPassword))
		require.Equal(t, "AAA0", a.Snapshot().AccessToken())
	})

	t.Run("no configured credentials", func(t *testing.T) {
		f := setupTestFixture(t, storedSession(t, now, time.Minute))
		a := f.account(t)
		require.Equal(t, "AAA0", a.Snapshot().AccessToken())
	})
}

func TestAccount_Refresh(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.store = repofakes.NewFakeStore(storedSession(t, f.now, time.Hour))
	a := f.account(t)

	previous := a.Snapshot().Refreshed
	for i := 1; i <= 3; i++ {
		require.NoError(t, a.Refresh(context.Background()))
		rec := a.Snapshot()
		require.Greater(t, rec.Refreshed, previous)
		require.Equal(t, fmt.Sprintf("access-%d", i), rec.ItvSession.AccessToken)
		require.Equal(t, fmt.Sprintf("refresh-%d", i), rec.ItvSession.RefreshToken)
		require.Equal(t, "PPP0", rec.ItvSession.ProfileToken)
		require.Equal(t, rec, f.store.Stored())
		previous = rec.Refreshed
	}
	require.Equal(t, "refresh-2", f.endpoint.lastRefresh)
}

func TestAccount_RefreshFailureKeepsSession(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.store = repofakes.NewFakeStore(storedSession(t, f.now, time.Hour))
	f.endpoint.refreshErr = itvxerrors.ErrAuthentication
	a := f.account(t)
	before := a.Snapshot()

	require.ErrorIs(t, a.Refresh(context.Background()), itvxerrors.ErrAuthentication)
	require.Equal(t, before, a.Snapshot())
	require.Equal(t, 0, f.store.SaveCount())
}

func TestAccount_RefreshWithoutSession(t *testing.T) {
	f := setupTestFixture(t, nil)
	a := f.account(t)
	require.ErrorIs(t, a.Refresh(context.Background()), auth.ErrNoRefreshToken)
	_, refreshes := f.endpoint.counts()
	require.Zero(t, refreshes)
}

func TestAccount_Logout(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.store = repofakes.NewFakeStore(storedSession(t, f.now, time.Hour))
	a := f.account(t)

	require.NoError(t, a.Logout())
	require.True(t, a.Snapshot().IsEmpty())
	require.True(t, f.store.Stored().IsEmpty())
	require.False(t, a.Status().LoggedIn)
}

func TestAccount_AccessToken(t *testing.T) {
	ctx := context.Background()

	t.Run("no session and no way to log in", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		a := f.account(t)
		_, err := a.AccessToken(ctx)
		require.ErrorIs(t, err, auth.ErrNotLoggedIn)
	})

	t.Run("no session logs in with prompted credentials", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		p := &fakePrompter{username: testUsername, password: testPassword}
		a := f.account(t, auth.WithPrompter(p))
		tok, err := a.AccessToken(ctx)
		require.NoError(t, err)
		require.Equal(t, "login-access-1", tok)
		require.Equal(t, 1, p.asked)
	})

	t.Run("prompt declined", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		a := f.account(t, auth.WithPrompter(&fakePrompter{declineCredentials: true}))
		_, err := a.AccessToken(ctx)
		require.ErrorIs(t, err, auth.ErrLoginCancelled)
		require.ErrorIs(t, err, auth.ErrNotLoggedIn)
	})

	t.Run("no session logs in with configured credentials", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		a := f.account(t, auth.WithCredentials(testUsername, testPassword))
		tok, err := a.AccessToken(ctx)
		require.NoError(t, err)
		require.Equal(t, "login-access-1", tok)
	})

	t.Run("fresh session used as is", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		f.store = repofakes.NewFakeStore(storedSession(t, f.now, time.Hour))
		a := f.account(t)
		tok, err := a.AccessToken(ctx)
		require.NoError(t, err)
		require.Equal(t, "AAA0", tok)
		logins, refreshes := f.endpoint.counts()
		require.Zero(t, logins)
		require.Zero(t, refreshes)
	})

	t.Run("stale token refreshed first", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		f.store = repofakes.NewFakeStore(storedSession(t, f.now, 25*time.Hour))
		a := f.account(t)
		tok, err := a.AccessToken(ctx)
		require.NoError(t, err)
		require.Equal(t, "access-1", tok)
	})

	t.Run("failed refresh returns held token", func(t *testing.T) {
		f := setupTestFixture(t, nil)
		f.store = repofakes.NewFakeStore(storedSession(t, f.now, 25*time.Hour))
		f.endpoint.refreshErr = itvxerrors.ErrTransport
		a := f.account(t)
		tok, err := a.AccessToken(ctx)
		require.NoError(t, err)
		require.Equal(t, "AAA0", tok)
	})
}

func TestAccount_ThresholdsPerConsumer(t *testing.T) {
	ctx := context.Background()
	f := setupTestFixture(t, nil)
	f.store = repofakes.NewFakeStore(storedSession(t, f.now, 5*time.Hour))
	a := f.account(t)

	tok, err := a.AccessToken(ctx)
	require.NoError(t, err)
	require.Equal(t, "AAA0", tok)
	_, refreshes := f.endpoint.counts()
	require.Zero(t, refreshes)

	st := a.Status()
	require.False(t, st.TokenStale)
	require.True(t, st.CookieStale)

	cookie, err := a.Cookie(ctx)
	require.NoError(t, err)
	require.Contains(t, cookie, "access-1")
	_, refreshes = f.endpoint.counts()
	require.Equal(t, 1, refreshes)
}

func TestAccount_TokenSource(t *testing.T) {
	f := setupTestFixture(t, nil)
	f.store = repofakes.NewFakeStore(storedSession(t, f.now, time.Hour))
	a := f.account(t)

	tok, err := a.Token()
	require.NoError(t, err)
	require.Equal(t, "AAA0", tok.AccessToken)
	require.Equal(t, "BBB0", tok.RefreshToken)
	require.Equal(t, "Bearer", tok.Type())

	_, err = a.Claims()
	require.Error(t, err)
	require.Empty(t, a.UserID())
}

func TestAccount_ExpiredAccessToken(t *testing.T) {
	f := setupTestFixture(t, nil)
	exp := time.Now().Add(-time.Minute).Truncate(time.Second)
	expired, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{"sub": "user-9", "exp": exp.Unix()}).SignedString([]byte("k"))
	require.NoError(t, err)
	rec := storedSession(t, f.now, time.Hour)
	require.NoError(t, rec.SetTokens(expired, "BBB0", "PPP0", f.now.Add(-time.Hour)))
	f.store = repofakes.NewFakeStore(rec)
	a := f.account(t)

	st := a.Status()
	require.True(t, st.Expired)
	require.True(t, st.TokenStale)
	require.False(t, st.CookieStale)
	require.True(t, st.ExpiresAt.Equal(exp))

	tok, err := a.Token()
	require.NoError(t, err)
	require.Equal(t, "access-1", tok.AccessToken)
	require.Equal(t, "PPP0", tok.Extra("profile_token"))
	_, refreshes := f.endpoint.counts()
	require.Equal(t, 1, refreshes)
}

func TestAccount_LoadSurfacesStoreError(t *testing.T) {
	f := setupTestFixture(t, nil)
	a, err := auth.NewAccount(errStore{}, f.endpoint, f.policy)
	require.NoError(t, err)
	require.ErrorIs(t, a.Load(), itvxerrors.ErrSessionSave)
	require.True(t, a.Snapshot().IsEmpty())
}

type errStore struct{}

func (errStore) Load() (*sessions.Record, error) {
	return sessions.NewRecord(), itvxerrors.ErrSessionSave
}

func (errStore) Save(*sessions.Record) error {
	return itvxerrors.ErrSessionSave
}
