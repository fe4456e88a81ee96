package main

import (
	"github.com/jrsteele09/go-itvx/auth"
	"github.com/jrsteele09/go-itvx/fetch"
	"github.com/jrsteele09/go-itvx/internal/config"
	"github.com/jrsteele09/go-itvx/sessions"
	"github.com/jrsteele09/go-itvx/stream"
	"github.com/jrsteele09/go-itvx/token"
	"github.com/jrsteele09/go-itvx/token/refresh"
)

// app holds the wired components shared by every command.
type app struct {
	cfg         config.Config
	fetcher     *fetch.Client
	account     *auth.Account
	resolver    *stream.Resolver
	interactive bool
}

// newApp wires the components. A nil prompter disables interactive login: the
// account then signs in only with configured credentials.
func newApp(cfg config.Config, prompter auth.Prompter) (*app, error) {
	fetcher := fetch.New(cfg)
	opts := []auth.AccountOption{auth.WithCredentials(cfg.GetUsername(), cfg.GetPassword())}
	if prompter != nil {
		opts = append(opts, auth.WithPrompter(prompter))
	}
	account, err := auth.NewAccount(
		sessions.NewFileStore(cfg.GetSessionFile()),
		token.NewClient(fetcher),
		refresh.NewPolicy(cfg),
		opts...,
	)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:         cfg,
		fetcher:     fetcher,
		account:     account,
		resolver:    stream.NewResolver(fetcher, account, stream.WithInteractiveLogin(prompter != nil)),
		interactive: prompter != nil,
	}, nil
}
