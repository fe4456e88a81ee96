package oauth2_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/jrsteele09/go-itvx/oauth2"
	"github.com/stretchr/testify/require"
)

func TestTokenResponse_Token(t *testing.T) {
	var resp oauth2.TokenResponse
	require.NoError(t, json.Unmarshal([]byte(`{"access_token":"AAA","refresh_token":"BBB","profile_token":"PPP","token_type":"bearer","expires_in":3600}`), &resp))
	require.True(t, resp.HasTokens())

	now := time.Unix(1700000000, 0)
	tok := resp.Token(now)
	require.Equal(t, "AAA", tok.AccessToken)
	require.Equal(t, "BBB", tok.RefreshToken)
	require.Equal(t, "Bearer", tok.Type())
	require.Equal(t, now.Add(time.Hour), tok.Expiry)
	require.Equal(t, "PPP", tok.Extra("profile_token"))
}

func TestTokenResponse_HasTokens(t *testing.T) {
	var resp oauth2.TokenResponse
	require.NoError(t, json.Unmarshal([]byte(`{"access_token":"AAA"}`), &resp))
	require.False(t, resp.HasTokens())

	var nilResp *oauth2.TokenResponse
	require.False(t, nilResp.HasTokens())
}

func TestNewLoginRequest(t *testing.T) {
	data, err := json.Marshal(oauth2.NewLoginRequest("alice", "secret", "n1"))
	require.NoError(t, err)
	require.JSONEq(t, `{"grant_type":"password","nonce":"n1","username":"alice","password":"secret","scope":"content"}`, string(data))
}
