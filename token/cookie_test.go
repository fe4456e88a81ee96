package token_test

import (
	"net/url"
	"testing"

	"github.com/jrsteele09/go-itvx/token"
	"github.com/stretchr/testify/require"
)

func TestBuildCookie(t *testing.T) {
	value := token.BuildCookie("AAA", "BBB")
	decoded, err := url.QueryUnescape(value)
	require.NoError(t, err)
	require.Equal(t, `{"sticky":true,"tokens":{"content":{"access_token":"AAA","refresh_token":"BBB"}}}`, decoded)

	require.Equal(t, value, token.BuildCookie("AAA", "BBB"))
	require.NotEqual(t, value, token.BuildCookie("AAA", "CCC"))
}

func TestParseCookie(t *testing.T) {
	t.Run("encoded", func(t *testing.T) {
		access, refresh, ok := token.ParseCookie(token.BuildCookie("AAA", "BBB"))
		require.True(t, ok)
		require.Equal(t, "AAA", access)
		require.Equal(t, "BBB", refresh)
	})

	t.Run("raw json", func(t *testing.T) {
		access, refresh, ok := token.ParseCookie(`{"sticky":true,"tokens":{"content":{"access_token":"X","refresh_token":"Y"}}}`)
		require.True(t, ok)
		require.Equal(t, "X", access)
		require.Equal(t, "Y", refresh)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, v := range []string{"", "%zz", "{not json", `{"tokens":{"content":{"access_token":"X"}}}`} {
			_, _, ok := token.ParseCookie(v)
			require.False(t, ok, v)
		}
	})
}

func TestCookieString(t *testing.T) {
	require.Equal(t, "Itv.Cid=cid-1; Itv.Session="+token.BuildCookie("AAA", "BBB"), token.CookieString("cid-1", "AAA", "BBB"))
	require.Equal(t, "Itv.Session="+token.BuildCookie("AAA", "BBB"), token.CookieString("", "AAA", "BBB"))
}
