// Package fetch is the HTTP transport used to talk to ITV. Every call returns
// typed errors (see HTTPError) instead of raw status codes, so the session and
// stream layers can decide on retries with errors.Is.
package fetch

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/jrsteele09/go-itvx/internal/config"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"
)

const maxBodySize = 16 << 20

// Request carries per-call extras: headers, cookies and an optional bearer token.
type Request struct {
	Headers http.Header
	Cookies []*http.Cookie
	Token   *oauth2.Token
}

// Client performs rate-limited requests with default browser-like headers.
type Client struct {
	http      *http.Client
	limiter   *rate.Limiter
	userAgent string
}

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client (tests use httptest clients).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(limit, burst)
	}
}

func New(cfg config.HTTPConfig, opts ...Option) *Client {
	timeout := cfg.GetHTTPTimeout()
	c := &Client{
		http: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy:                 http.ProxyFromEnvironment,
				DialContext:           (&net.Dialer{Timeout: timeout, KeepAlive: 30 * time.Second}).DialContext,
				ForceAttemptHTTP2:     true,
				MaxIdleConns:          16,
				MaxIdleConnsPerHost:   4,
				IdleConnTimeout:       90 * time.Second,
				TLSHandshakeTimeout:   timeout,
				ExpectContinueTimeout: 1 * time.Second,
			},
		},
		limiter:   rate.NewLimiter(rate.Limit(cfg.GetRateLimit()), cfg.GetRateBurst()),
		userAgent: cfg.GetUserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetJSON performs a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, url string, req *Request, out any) error {
	body, err := c.do(ctx, http.MethodGet, url, nil, req, "application/json")
	if err != nil {
		return err
	}
	return decodeJSON(http.MethodGet, url, body, out)
}

// PostJSON sends data as a JSON body and decodes the JSON response into out.
func (c *Client) PostJSON(ctx context.Context, url string, data any, req *Request, out any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return &HTTPError{Kind: ErrParse, Method: http.MethodPost, URL: url, Err: err}
	}
	body, err := c.do(ctx, http.MethodPost, url, payload, req, "application/json")
	if err != nil {
		return err
	}
	return decodeJSON(http.MethodPost, url, body, out)
}

// GetDocument performs a GET and returns the body as text.
func (c *Client) GetDocument(ctx context.Context, url string, req *Request) (string, error) {
	body, err := c.do(ctx, http.MethodGet, url, nil, req, "text/html,application/xhtml+xml,text/vtt,*/*")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte, extra *Request, accept string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &HTTPError{Kind: ErrTransport, Method: method, URL: url, Err: err}
	}

	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, &HTTPError{Kind: ErrTransport, Method: method, URL: url, Err: err}
	}
	c.setHeaders(httpReq, accept, payload != nil)
	extra.apply(httpReq)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, &HTTPError{Kind: ErrTransport, Method: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := readBody(resp)
	if err != nil {
		return nil, &HTTPError{Kind: ErrTransport, Method: method, URL: url, Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode >= 400 {
		return nil, &HTTPError{
			Kind:   classify(resp.StatusCode, body),
			Method: method,
			URL:    url,
			Status: resp.StatusCode,
			Body:   truncate(body),
		}
	}
	return body, nil
}

func (c *Client) setHeaders(req *http.Request, accept string, hasBody bool) {
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", accept)
	req.Header.Set("Accept-Language", "en-GB,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, br")
	if hasBody {
		req.Header.Set("Content-Type", "application/json")
	}
}

// apply runs after the defaults so callers can override Accept and friends.
func (r *Request) apply(req *http.Request) {
	if r == nil {
		return
	}
	for k, values := range r.Headers {
		req.Header.Del(k)
		for _, v := range values {
			req.Header.Add(k, v)
		}
	}
	for _, ck := range r.Cookies {
		req.AddCookie(ck)
	}
	if r.Token != nil {
		r.Token.SetAuthHeader(req)
	}
}

func decodeJSON(method, url string, body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &HTTPError{Kind: ErrParse, Method: method, URL: url, Status: http.StatusOK, Body: truncate(body), Err: err}
	}
	return nil
}
