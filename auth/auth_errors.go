package auth

import (
	"errors"

	itvxerrors "github.com/jrsteele09/go-itvx/internal/errors"
)

var (
	ErrNotLoggedIn        = itvxerrors.ErrNotLoggedIn
	ErrNoRefreshToken     = itvxerrors.ErrNoRefreshToken
	ErrInvalidCredentials = itvxerrors.ErrInvalidCredentials
	ErrLoginCancelled     = errors.New("login cancelled")
)
