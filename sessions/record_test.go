package sessions_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-itvx/sessions"
	"github.com/jrsteele09/go-itvx/token"
	"github.com/stretchr/testify/require"
)

func TestRecord_SetTokens(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := sessions.NewRecord()
	require.True(t, rec.IsEmpty())

	require.NoError(t, rec.SetTokens("AAA", "BBB", "PPP", now))
	require.True(t, rec.HasTokens())
	require.Equal(t, "AAA", rec.AccessToken())
	require.Equal(t, "BBB", rec.RefreshToken())
	require.Equal(t, "PPP", rec.ItvSession.ProfileToken)
	require.NotEmpty(t, rec.Cookies.Cid)
	require.Equal(t, token.BuildCookie("AAA", "BBB"), rec.Cookies.Session)
	require.Equal(t, token.CookieString(rec.Cookies.Cid, "AAA", "BBB"), rec.CookieString())
	require.WithinDuration(t, now, rec.RefreshedAt(), time.Millisecond)
	require.Equal(t, sessions.CurrentVersion, rec.Vers)

	t.Run("refresh keeps cid and profile", func(t *testing.T) {
		cid := rec.Cookies.Cid
		require.NoError(t, rec.SetTokens("AAA2", "BBB2", "", now.Add(time.Hour)))
		require.Equal(t, cid, rec.Cookies.Cid)
		require.Equal(t, "PPP", rec.ItvSession.ProfileToken)
		require.Equal(t, token.CookieString(cid, "AAA2", "BBB2"), rec.CookieString())
	})

	t.Run("half pair rejected", func(t *testing.T) {
		before := rec.Clone()
		require.ErrorIs(t, rec.SetTokens("AAA3", "", "", now), sessions.ErrIncompleteTokens)
		require.Equal(t, before, rec)
	})
}

func TestRecord_RefreshedIsMonotonic(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := sessions.NewRecord()
	require.NoError(t, rec.SetTokens("AAA", "BBB", "", now))
	first := rec.Refreshed

	require.NoError(t, rec.SetTokens("AAA2", "BBB2", "", now))
	require.Greater(t, rec.Refreshed, first)

	second := rec.Refreshed
	require.NoError(t, rec.SetTokens("AAA3", "BBB3", "", now.Add(-time.Hour)))
	require.Greater(t, rec.Refreshed, second)
}

func TestRecord_Clone(t *testing.T) {
	rec := sessions.NewRecord()
	require.NoError(t, rec.SetTokens("AAA", "BBB", "", time.Now()))
	c := rec.Clone()
	c.ItvSession.AccessToken = "changed"
	c.Cookies.Cid = "changed"
	require.Equal(t, "AAA", rec.AccessToken())
	require.NotEqual(t, "changed", rec.Cookies.Cid)

	var nilRec *sessions.Record
	require.Nil(t, nilRec.Clone())
	require.True(t, nilRec.IsEmpty())
	require.True(t, nilRec.RefreshedAt().IsZero())
}
