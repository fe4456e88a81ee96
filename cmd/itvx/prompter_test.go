package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStdinPrompter(t *testing.T) {
	t.Run("credentials", func(t *testing.T) {
		var out bytes.Buffer
		p := newStdinPrompter(strings.NewReader("alice@example.com\n s3cret \n"), &out)
		u, pw, ok := p.Credentials(context.Background())
		require.True(t, ok)
		require.Equal(t, "alice@example.com", u)
		require.Equal(t, "s3cret", pw)
		require.Contains(t, out.String(), "Password: ")
	})

	t.Run("empty input declines", func(t *testing.T) {
		p := newStdinPrompter(strings.NewReader(""), &bytes.Buffer{})
		_, _, ok := p.Credentials(context.Background())
		require.False(t, ok)
	})

	t.Run("confirm", func(t *testing.T) {
		require.True(t, newStdinPrompter(strings.NewReader("Y\n"), &bytes.Buffer{}).ConfirmLogin(context.Background()))
		require.False(t, newStdinPrompter(strings.NewReader("n\n"), &bytes.Buffer{}).ConfirmLogin(context.Background()))
	})

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.False(t, newStdinPrompter(strings.NewReader("y\n"), &bytes.Buffer{}).ConfirmLogin(ctx))
	})
}
