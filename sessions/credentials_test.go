package sessions_test

import (
	"testing"

	"github.com/jrsteele09/go-itvx/sessions"
	"github.com/stretchr/testify/require"
)

func TestCredentials(t *testing.T) {
	hash, err := sessions.HashPassword("secret")
	require.NoError(t, err)
	require.NotEqual(t, "secret", hash)
	require.True(t, sessions.IsFingerprint(hash))
	require.False(t, sessions.IsFingerprint("secret"))

	rec := &sessions.Record{Uname: "alice", Passw: hash}
	require.True(t, sessions.CredentialsMatch(rec, "alice", "secret"))
	require.False(t, sessions.CredentialsMatch(rec, "alice", "other"))
	require.False(t, sessions.CredentialsMatch(rec, "bob", "secret"))
	require.False(t, sessions.CredentialsMatch(nil, "alice", "secret"))

	t.Run("legacy clear text", func(t *testing.T) {
		legacy := &sessions.Record{Uname: "alice", Passw: "secret"}
		require.True(t, sessions.CredentialsMatch(legacy, "alice", "secret"))
		require.False(t, sessions.CredentialsMatch(legacy, "alice", "Secret"))
	})
}
