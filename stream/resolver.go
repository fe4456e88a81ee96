// Package stream resolves ITV content references to playable DASH manifests,
// Widevine key service URLs and subtitle files.
package stream

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-itvx/auth"
	"github.com/jrsteele09/go-itvx/fetch"
	itvxerrors "github.com/jrsteele09/go-itvx/internal/errors"
	"github.com/jrsteele09/go-itvx/internal/metrics"
	"github.com/jrsteele09/go-itvx/token"
	"github.com/jrsteele09/go-itvx/token/refresh"
	"github.com/maypok86/otter/v2"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultLiveBaseURL is prefixed to bare channel names such as "ITV".
	DefaultLiveBaseURL = "https://simulcast.itv.com/playlist/itvonline/"

	// LiveLookBack keeps the requested position inside the time-shift buffer
	// when a live stream is not played from the start.
	LiveLookBack = 30 * time.Second

	// DefaultCacheTTL is how long resolved catchup streams are reused.
	DefaultCacheTTL = 2 * time.Minute

	startTimePlaceholder = "{START_TIME}"
	startTimeLayout      = "2006-01-02T15:04:05"
	cacheSize            = 256
)

// Fetcher posts JSON; satisfied by *fetch.Client.
type Fetcher interface {
	PostJSON(ctx context.Context, url string, data any, req *fetch.Request, out any) error
}

// Runner runs an operation with credentials; satisfied by *auth.Account.
type Runner interface {
	Run(ctx context.Context, opts auth.RunOptions, op auth.Operation) auth.Result
	UserID() string
}

// ErrUntrustedURL is returned for playlist URLs outside ITV. Credentials are
// never sent to them.
var ErrUntrustedURL = itvxerrors.ErrUntrustedURL

// Streams is what a player needs to start playback.
type Streams struct {
	Type          Type    `json:"type"`
	ManifestURL   string  `json:"manifest_url"`
	KeyServiceURL string  `json:"key_service_url,omitempty"`
	SubtitlesURL  *string `json:"subtitles_url"`
	VideoType     string  `json:"video_type,omitempty"`
	ProductionID  string  `json:"production_id,omitempty"`
}

// LiveRequest identifies a live channel and the wanted playback position.
type LiveRequest struct {
	// URL is the channel's playlist URL or a bare channel name.
	URL string
	// StartTime is the programme start, used when PlayFromStart is set.
	StartTime     time.Time
	PlayFromStart bool
	FullHD        bool
}

type Resolver struct {
	fetcher     Fetcher
	runner      Runner
	now         func() time.Time
	interactive bool
	liveBaseURL string
	cacheTTL    time.Duration
	cache       *otter.Cache[string, Streams]
}

type Option func(*Resolver)

func WithNowFunc(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// WithCacheTTL sets how long catchup results are reused. Zero disables the cache.
func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cacheTTL = ttl
	}
}

// WithInteractiveLogin lets playlist requests fall back to an interactive login.
func WithInteractiveLogin(enabled bool) Option {
	return func(r *Resolver) {
		r.interactive = enabled
	}
}

// WithEndpoints overrides the base URL used for bare live channel names. Its
// host is trusted for playlist requests alongside the ITV domains.
func WithEndpoints(liveBaseURL string) Option {
	return func(r *Resolver) {
		if liveBaseURL != "" {
			r.liveBaseURL = liveBaseURL
		}
	}
}

func NewResolver(fetcher Fetcher, runner Runner, opts ...Option) *Resolver {
	r := &Resolver{
		fetcher:     fetcher,
		runner:      runner,
		now:         time.Now,
		liveBaseURL: DefaultLiveBaseURL,
		cacheTTL:    DefaultCacheTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cacheTTL > 0 {
		r.cache = otter.Must(&otter.Options[string, Streams]{
			MaximumSize:      cacheSize,
			ExpiryCalculator: otter.ExpiryWriting[string, Streams](r.cacheTTL),
		})
	}
	return r
}

// Request posts the descriptor for streamType to playlistURL. An embedded
// StatusCode of 401 is an authentication failure, refreshed and retried once
// like an HTTP 401.
func (r *Resolver) Request(ctx context.Context, playlistURL string, streamType Type, fullHD bool) (*PlaylistResponse, error) {
	if err := r.checkPlaylistURL(playlistURL); err != nil {
		return nil, err
	}
	var resp PlaylistResponse
	opts := auth.RunOptions{Interactive: r.interactive, Consumer: refresh.ConsumerToken}
	res := r.runner.Run(ctx, opts, func(ctx context.Context, creds auth.Credentials) error {
		resp = PlaylistResponse{}
		body := NewDescriptor(streamType, fullHD, userIDOf(creds.AccessToken), creds.AccessToken)
		req := creds.Apply(&fetch.Request{Headers: http.Header{"Accept": []string{streamType.mediaType()}}})
		if err := r.fetcher.PostJSON(ctx, playlistURL, body, req, &resp); err != nil {
			return err
		}
		return embeddedStatus(playlistURL, &resp)
	})
	if res.Err != nil {
		log.Debug().Err(res.Err).Stringer("outcome", res.Outcome).Int("attempts", res.Attempts).Str("type", string(streamType)).Msg("playlist request failed")
		return nil, res.Err
	}
	return &resp, nil
}

// LiveURLs resolves a live channel. Live streams have no subtitles.
func (r *Resolver) LiveURLs(ctx context.Context, lr LiveRequest) (_ *Streams, err error) {
	defer func() {
		metrics.StreamResolutionTotal.WithLabelValues(string(TypeLive), metrics.Result(err)).Inc()
	}()

	resp, err := r.Request(ctx, r.LiveChannelURL(lr.URL), TypeLive, lr.FullHD)
	if err != nil {
		return nil, err
	}
	locations := resp.Playlist.Video.VideoLocations
	if len(locations) == 0 || locations[0].URL == "" {
		return nil, fmt.Errorf("%w: live playlist has no video locations", itvxerrors.ErrParse)
	}
	loc := locations[0]

	manifest := loc.URL
	if loc.StartAgainURL != "" {
		start := r.now().UTC().Add(-LiveLookBack)
		if lr.PlayFromStart && !lr.StartTime.IsZero() {
			start = lr.StartTime.UTC()
		}
		manifest = strings.ReplaceAll(loc.StartAgainURL, startTimePlaceholder, start.Format(startTimeLayout))
	}

	return &Streams{
		Type:          TypeLive,
		ManifestURL:   manifest,
		KeyServiceURL: loc.KeyServiceURL,
	}, nil
}

// CatchupURLs resolves an on-demand programme to its best rendition.
func (r *Resolver) CatchupURLs(ctx context.Context, playlistURL string, fullHD bool) (_ *Streams, err error) {
	defer func() {
		metrics.StreamResolutionTotal.WithLabelValues(string(TypeCatchup), metrics.Result(err)).Inc()
	}()

	key := fmt.Sprintf("%s|%s|%t", r.runner.UserID(), playlistURL, fullHD)
	if r.cache != nil {
		if cached, ok := r.cache.GetIfPresent(key); ok {
			return &cached, nil
		}
	}

	resp, err := r.Request(ctx, playlistURL, TypeCatchup, fullHD)
	if err != nil {
		return nil, err
	}
	video := resp.Playlist.Video
	file, ok := bestMediaFile(video.MediaFiles)
	if !ok || file.Href == "" {
		return nil, fmt.Errorf("%w: catchup playlist has no media files", itvxerrors.ErrParse)
	}

	streams := Streams{
		Type:          TypeCatchup,
		ManifestURL:   video.Base + file.Href,
		KeyServiceURL: file.KeyServiceURL,
		VideoType:     resp.Playlist.VideoType,
		ProductionID:  resp.Playlist.ProductionID,
	}
	if len(video.Subtitles) > 0 && video.Subtitles[0].Href != "" {
		href := video.Subtitles[0].Href
		streams.SubtitlesURL = &href
	}
	if r.cache != nil {
		r.cache.Set(key, streams)
	}
	return &streams, nil
}

// LiveChannelURL turns a bare channel name into its playlist URL.
func (r *Resolver) LiveChannelURL(ref string) string {
	if strings.Contains(ref, "://") {
		return ref
	}
	return r.liveBaseURL + url.PathEscape(ref)
}

// checkPlaylistURL accepts https URLs on itv.com and its subdomains, and URLs
// on the configured live base host.
func (r *Resolver) checkPlaylistURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.User != nil {
		return fmt.Errorf("%w: %q", ErrUntrustedURL, raw)
	}
	if u.Scheme == "https" && isITVHost(u.Hostname()) {
		return nil
	}
	if base, err := url.Parse(r.liveBaseURL); err == nil && base.Scheme == u.Scheme && strings.EqualFold(base.Host, u.Host) {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUntrustedURL, u.Redacted())
}

func isITVHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return host == "itv.com" || strings.HasSuffix(host, ".itv.com")
}

func embeddedStatus(playlistURL string, resp *PlaylistResponse) error {
	switch {
	case resp.StatusCode < http.StatusBadRequest:
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return &fetch.HTTPError{Kind: fetch.ErrAuthentication, Method: http.MethodPost, URL: playlistURL, Status: resp.StatusCode, Body: resp.Message}
	}
	return &fetch.HTTPError{Kind: fetch.ErrHTTP, Method: http.MethodPost, URL: playlistURL, Status: resp.StatusCode, Body: resp.Message}
}

func userIDOf(accessToken string) string {
	claims, err := token.ParseClaims(accessToken)
	if err != nil {
		return ""
	}
	return claims.UserID()
}
