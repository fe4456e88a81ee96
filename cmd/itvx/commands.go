package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/jrsteele09/go-itvx/auth"
	"github.com/jrsteele09/go-itvx/server"
	"github.com/jrsteele09/go-itvx/stream"
	"github.com/jrsteele09/go-itvx/subtitles"
	"github.com/rs/zerolog/log"
)

type command func(ctx context.Context, a *app, args []string) error

var commands = map[string]command{
	"login":     loginCmd,
	"logout":    logoutCmd,
	"status":    statusCmd,
	"refresh":   refreshCmd,
	"live":      liveCmd,
	"catchup":   catchupCmd,
	"subtitles": subtitlesCmd,
	"serve":     serveCmd,
}

func loginCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	username := fs.String("username", a.cfg.GetUsername(), "ITVX account e-mail")
	if err := fs.Parse(args); err != nil {
		return err
	}
	password := a.cfg.GetPassword()
	if *username == "" || password == "" {
		u, p, ok := newStdinPrompter(os.Stdin, os.Stderr).Credentials(ctx)
		if !ok {
			return auth.ErrLoginCancelled
		}
		*username, password = u, p
	}
	if err := a.account.Load(); err != nil {
		log.Warn().Err(err).Msg("stored session ignored")
	}
	if err := a.account.Login(ctx, *username, password); err != nil {
		return err
	}
	return printJSON(a.account.Status())
}

func logoutCmd(_ context.Context, a *app, _ []string) error {
	return a.account.Logout()
}

func statusCmd(_ context.Context, a *app, _ []string) error {
	if err := a.account.Load(); err != nil {
		return err
	}
	return printJSON(a.account.Status())
}

func refreshCmd(ctx context.Context, a *app, _ []string) error {
	if err := a.account.Load(); err != nil {
		return err
	}
	if err := a.account.Refresh(ctx); err != nil {
		return err
	}
	return printJSON(a.account.Status())
}

func liveCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("live", flag.ContinueOnError)
	start := fs.String("start", "", "programme start time (RFC 3339)")
	fromStart := fs.Bool("from-start", a.cfg.GetPlayFromStart(), "play from the programme start")
	fullHD := fs.Bool("full-hd", a.cfg.GetFullHD(), "request full HD streams")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("live: expected one channel name or playlist url")
	}
	lr := stream.LiveRequest{URL: fs.Arg(0), PlayFromStart: *fromStart, FullHD: *fullHD}
	if *start != "" {
		t, err := time.Parse(time.RFC3339, *start)
		if err != nil {
			return fmt.Errorf("live: bad -start: %w", err)
		}
		lr.StartTime = t
	}
	streams, err := a.resolver.LiveURLs(ctx, lr)
	if err != nil {
		return err
	}
	return printJSON(streams)
}

func catchupCmd(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("catchup", flag.ContinueOnError)
	fullHD := fs.Bool("full-hd", a.cfg.GetFullHD(), "request full HD streams")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("catchup: expected one playlist url")
	}
	streams, err := a.resolver.CatchupURLs(ctx, fs.Arg(0), *fullHD)
	if err != nil {
		return err
	}
	return printJSON(streams)
}

func subtitlesCmd(ctx context.Context, a *app, args []string) error {
	if len(args) != 1 {
		return errors.New("subtitles: expected one url")
	}
	srt, err := subtitles.Fetch(ctx, a.fetcher, args[0])
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(os.Stdout, srt)
	return err
}

func serveCmd(ctx context.Context, a *app, _ []string) error {
	if err := a.account.Load(); err != nil {
		log.Warn().Err(err).Msg("stored session ignored")
	}
	handler, err := server.New(a.cfg, a.account, a.resolver, a.fetcher)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Addr:              a.cfg.GetListenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- listenAndServe(srv)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	return shutdown(srv)
}

func listenAndServe(srv *http.Server) error {
	log.Info().Str("addr", srv.Addr).Msg("server listening")
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(srv *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
