package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-itvx/auth"
	"github.com/jrsteele09/go-itvx/internal/config"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `usage: itvx <command> [flags]

commands:
  login       sign in and store the session
  logout      forget the stored session
  status      show the stored session
  refresh     refresh the tokens now
  live        resolve a live channel: itvx live [-start RFC3339] [-from-start] [-full-hd] <channel|url>
  catchup     resolve a catch-up programme: itvx catchup [-full-hd] <playlist url>
  subtitles   convert WebVTT subtitles to SRT: itvx subtitles <url>
  serve       run the local HTTP API
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		log.Error().Err(err).Str("command", os.Args[1]).Msg("command failed")
		os.Exit(1)
	}
}

func run(command string, args []string) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Msg("recovered from panic")
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	cfg, err := config.New()
	if err != nil {
		return err
	}
	setupLogging(cfg.GetLogLevel())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd, ok := commands[command]
	if !ok {
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
	if command == "serve" {
		displayAppname(cfg.GetAppName())
	}

	// Requests served over HTTP must never wait on the terminal.
	var prompter auth.Prompter
	if command != "serve" {
		prompter = newStdinPrompter(os.Stdin, os.Stderr)
	}
	a, err := newApp(cfg, prompter)
	if err != nil {
		return err
	}
	return cmd(ctx, a, args)
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if config.GetEnvBool("ITVX_LOG_PRETTY", true) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
