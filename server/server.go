// Package server exposes stream resolution over a small local HTTP API so that
// players on the same machine can ask for manifests without handling ITV
// sessions themselves.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/httprate"
	"github.com/jrsteele09/go-itvx/auth"
	"github.com/jrsteele09/go-itvx/internal/config"
	"github.com/jrsteele09/go-itvx/stream"
	"github.com/jrsteele09/go-itvx/subtitles"
	"github.com/rs/zerolog/log"
)

const (
	requestLimit = 120
	limitWindow  = time.Minute
)

// Account is the part of *auth.Account the server uses.
type Account interface {
	Status() auth.Status
	Refresh(ctx context.Context) error
}

// Resolver is satisfied by *stream.Resolver.
type Resolver interface {
	LiveURLs(ctx context.Context, lr stream.LiveRequest) (*stream.Streams, error)
	CatchupURLs(ctx context.Context, url string, fullHD bool) (*stream.Streams, error)
}

type Server struct {
	env      string // Environment (e.g., "DEV")
	mux      *http.ServeMux
	handler  http.Handler
	routes   []string
	config   config.Config
	account  Account
	resolver Resolver
	docs     subtitles.DocumentFetcher
}

func New(cfg config.Config, account Account, resolver Resolver, docs subtitles.DocumentFetcher) (*Server, error) {
	if account == nil || resolver == nil || docs == nil {
		return nil, fmt.Errorf("[Server New] account, resolver and document fetcher are required")
	}
	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		account:  account,
		resolver: resolver,
		docs:     docs,
	}
	s.initRoutes()
	s.logRoutes()
	s.handler = rateLimit(requestLimit, limitWindow)(s.mux)
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = gray
	}
	log.Info().Msgf("[%-19s] %s", color+paddedMethod+resetColor, path)
}

func rateLimit(limit int, window time.Duration) func(http.Handler) http.Handler {
	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			writeJSONError(w, "rate_limit_exceeded", "too many requests", http.StatusTooManyRequests)
		}),
	)
}
