package session

import "errors"

var (
	// ErrInvalidCredentials means the API rejected the username or password.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnreachable means the API could not be reached or answered with
	// something other than a usable token.
	ErrUnreachable = errors.New("service unavailable")
	// ErrLoginAborted means the login was cancelled or overtaken by another
	// session change before its response arrived.
	ErrLoginAborted = errors.New("login aborted")
)
