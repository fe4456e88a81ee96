package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// stdinPrompter asks for credentials on the terminal. The password is echoed.
type stdinPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newStdinPrompter(in io.Reader, out io.Writer) *stdinPrompter {
	return &stdinPrompter{in: bufio.NewReader(in), out: out}
}

func (p *stdinPrompter) Credentials(ctx context.Context) (string, string, bool) {
	username, ok := p.ask(ctx, "ITVX e-mail: ")
	if !ok || username == "" {
		return "", "", false
	}
	password, ok := p.ask(ctx, "Password: ")
	if !ok || password == "" {
		return "", "", false
	}
	return username, password, true
}

func (p *stdinPrompter) ConfirmLogin(ctx context.Context) bool {
	answer, ok := p.ask(ctx, "You are not signed in to ITVX. Sign in now? [y/N] ")
	if !ok {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes"
}

func (p *stdinPrompter) ask(ctx context.Context, prompt string) (string, bool) {
	if ctx.Err() != nil {
		return "", false
	}
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}
