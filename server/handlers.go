package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	itvxerrors "github.com/jrsteele09/go-itvx/internal/errors"
	"github.com/jrsteele09/go-itvx/stream"
	"github.com/jrsteele09/go-itvx/subtitles"
	"github.com/rs/zerolog/log"
)

// HealthHandler reports that the process is up. It never contacts ITV.
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func (s *Server) StatusHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, s.account.Status())
	}
}

func (s *Server) RefreshHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.account.Refresh(r.Context()); err != nil {
			writeResolveError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, s.account.Status())
	}
}

// LiveHandler resolves GET /v1/live?url=&start=&from_start=&full_hd=. url may be
// a bare channel name; start is RFC 3339.
func (s *Server) LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		lr := stream.LiveRequest{
			URL:           q.Get("url"),
			PlayFromStart: boolParam(q.Get("from_start"), s.config.GetPlayFromStart()),
			FullHD:        boolParam(q.Get("full_hd"), s.config.GetFullHD()),
		}
		if lr.URL == "" {
			writeJSONError(w, "invalid_request", "url is required", http.StatusBadRequest)
			return
		}
		if start := q.Get("start"); start != "" {
			t, err := time.Parse(time.RFC3339, start)
			if err != nil {
				writeJSONError(w, "invalid_request", "start must be RFC 3339", http.StatusBadRequest)
				return
			}
			lr.StartTime = t
		}

		streams, err := s.resolver.LiveURLs(r.Context(), lr)
		if err != nil {
			writeResolveError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, streams)
	}
}

func (s *Server) CatchupHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		url := q.Get("url")
		if url == "" {
			writeJSONError(w, "invalid_request", "url is required", http.StatusBadRequest)
			return
		}
		streams, err := s.resolver.CatchupURLs(r.Context(), url, boolParam(q.Get("full_hd"), s.config.GetFullHD()))
		if err != nil {
			writeResolveError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, streams)
	}
}

func (s *Server) SubtitlesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		url := r.URL.Query().Get("url")
		if url == "" {
			writeJSONError(w, "invalid_request", "url is required", http.StatusBadRequest)
			return
		}
		srt, err := subtitles.Fetch(r.Context(), s.docs, url)
		if err != nil {
			writeResolveError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/x-subrip; charset=utf-8")
		_, _ = w.Write([]byte(srt))
	}
}

// writeResolveError maps the error kinds to statuses a player can act on.
func writeResolveError(w http.ResponseWriter, err error) {
	switch {
	case itvxerrors.Is(err, itvxerrors.ErrUntrustedURL):
		writeJSONError(w, "invalid_request", "url must be an https ITV playlist url", http.StatusBadRequest)
	case itvxerrors.Is(err, itvxerrors.ErrAccessRestricted):
		writeJSONError(w, "premium_content", "this programme needs a premium subscription", http.StatusForbidden)
	case itvxerrors.Is(err, itvxerrors.ErrGeoRestricted):
		writeJSONError(w, "geo_restricted", "not available in your region", http.StatusUnavailableForLegalReasons)
	case itvxerrors.IsAuthentication(err), itvxerrors.Is(err, itvxerrors.ErrNotLoggedIn), itvxerrors.Is(err, itvxerrors.ErrNoRefreshToken):
		writeJSONError(w, "not_logged_in", "sign in with itvx login", http.StatusUnauthorized)
	default:
		log.Err(err).Msg("upstream request failed")
		writeJSONError(w, "upstream_error", err.Error(), http.StatusBadGateway)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, errorCode, description string, statusCode int) {
	writeJSON(w, statusCode, map[string]string{
		"error":             errorCode,
		"error_description": description,
	})
}

func boolParam(v string, def bool) bool {
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
