package token

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-itvx/fetch"
	itvxerrors "github.com/jrsteele09/go-itvx/internal/errors"
	"github.com/jrsteele09/go-itvx/oauth2"
	"github.com/pkg/errors"
)

// Default ITV user auth endpoints.
const (
	DefaultLoginURL   = "https://auth.prd.user.itv.com/v2/auth"
	DefaultRefreshURL = "https://auth.prd.user.itv.com/token"
)

// Fetcher is the subset of fetch.Client used by the endpoint client.
type Fetcher interface {
	GetJSON(ctx context.Context, url string, req *fetch.Request, out any) error
	PostJSON(ctx context.Context, url string, data any, req *fetch.Request, out any) error
}

// Client exchanges credentials and refresh tokens at the ITV auth service.
type Client struct {
	fetcher    Fetcher
	loginURL   string
	refreshURL string
	nonce      func() string
}

type ClientOption func(*Client)

// WithEndpoints overrides the login and refresh URLs.
func WithEndpoints(loginURL, refreshURL string) ClientOption {
	return func(c *Client) {
		if loginURL != "" {
			c.loginURL = loginURL
		}
		if refreshURL != "" {
			c.refreshURL = refreshURL
		}
	}
}

// WithNonceFunc replaces the login nonce generator.
func WithNonceFunc(fn func() string) ClientOption {
	return func(c *Client) {
		c.nonce = fn
	}
}

func NewClient(fetcher Fetcher, opts ...ClientOption) *Client {
	c := &Client{
		fetcher:    fetcher,
		loginURL:   DefaultLoginURL,
		refreshURL: DefaultRefreshURL,
		nonce:      defaultNonce,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func defaultNonce() string {
	return fmt.Sprintf("%s-%d", strings.ReplaceAll(uuid.NewString(), "-", ""), NowTimeFunc().Unix())
}

// Login signs in with username and password.
func (c *Client) Login(ctx context.Context, username, password string) (*oauth2.TokenResponse, error) {
	req := &fetch.Request{Headers: http.Header{"Accept": []string{oauth2.AuthMediaType}}}
	var resp oauth2.TokenResponse
	err := c.fetcher.PostJSON(ctx, c.loginURL, oauth2.NewLoginRequest(username, password, c.nonce()), req, &resp)
	if err != nil {
		if itvxerrors.Is(err, fetch.ErrGeoRestricted) {
			return nil, errors.Wrap(err, "login refused outside the UK")
		}
		switch fetch.StatusCode(err) {
		case http.StatusBadRequest, http.StatusUnauthorized, http.StatusForbidden:
			return nil, fmt.Errorf("%w: %w: %w", itvxerrors.ErrInvalidCredentials, itvxerrors.ErrAuthentication, err)
		}
		return nil, errors.Wrap(err, "login request failed")
	}
	if !resp.HasTokens() {
		return nil, errors.Wrap(itvxerrors.ErrParse, "login response is missing tokens")
	}
	return &resp, nil
}

// Refresh exchanges a refresh token for a new token pair.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (*oauth2.TokenResponse, error) {
	if refreshToken == "" {
		return nil, itvxerrors.ErrNoRefreshToken
	}
	var resp oauth2.TokenResponse
	if err := c.fetcher.GetJSON(ctx, c.refreshRequestURL(refreshToken), nil, &resp); err != nil {
		return nil, errors.Wrap(err, "refresh request failed")
	}
	if !resp.HasTokens() {
		return nil, errors.Wrap(itvxerrors.ErrParse, "refresh response is missing tokens")
	}
	return &resp, nil
}

func (c *Client) refreshRequestURL(refreshToken string) string {
	q := url.Values{}
	q.Set("grant_type", string(oauth2.RefreshTokenGrant))
	q.Set("token", "content_token refresh_token")
	q.Set("refresh", refreshToken)
	sep := "?"
	if strings.Contains(c.refreshURL, "?") {
		sep = "&"
	}
	return c.refreshURL + sep + q.Encode()
}
