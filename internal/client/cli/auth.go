package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/crmclient/internal/client/session"
)

// Prompt readers, swapped in tests.
var (
	readLineFn   = ReadLine
	readSecretFn = ReadSecret
)

var (
	errNotLoggedIn   = errors.New("not logged in")
	errEmptyUsername = errors.New("empty username")
)

// Login prompts for credentials and starts a session.
//
// Wrong credentials and an unreachable service get different messages; the
// error is returned either way so callers can tell what happened.
func (a *App) Login(ctx context.Context) error {
	userName, err := readLineFn(a.reader, a.out, "Username")
	if err != nil {
		return err
	}
	if userName == "" {
		fmt.Fprintln(a.out, "Username is required.")
		return errEmptyUsername
	}

	password, err := readSecretFn(a.reader, a.out, "Password")
	if err != nil {
		return err
	}
	defer clear(password)

	u, err := a.session.Login(ctx, session.Credentials{Username: userName, Password: string(password)})
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		fmt.Fprintln(a.out, "Wrong username or password.")
		return err
	case errors.Is(err, session.ErrUnreachable):
		a.log.Warn(ctx, "login failed", "error", err)
		fmt.Fprintln(a.out, "Service unavailable, please try again later.")
		return err
	case errors.Is(err, session.ErrLoginAborted):
		fmt.Fprintln(a.out, "Login cancelled.")
		return err
	case err != nil:
		a.log.Error(ctx, "login failed", "error", err)
		fmt.Fprintln(a.out, "Login failed.")
		return err
	}

	fmt.Fprintf(a.out, "Logged in as %s (%s).\n", u.Username, a.config.RoleName(u.RoleID))
	return nil
}

// Logout ends the session. It succeeds even when the server cannot be told.
func (a *App) Logout(ctx context.Context) error {
	a.loggingOut.Store(true)
	defer a.loggingOut.Store(false)

	a.session.Logout(ctx)
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// WhoAmI prints what the session token says about the user.
func (a *App) WhoAmI(ctx context.Context) error {
	u, ok := a.session.CurrentUser(ctx)
	if !ok {
		fmt.Fprintln(a.out, "Not logged in.")
		return errNotLoggedIn
	}

	fmt.Fprintf(a.out, "User:    %s (id %d)\n", u.Username, u.UserID)
	if u.Email != "" {
		fmt.Fprintf(a.out, "Email:   %s\n", u.Email)
	}
	fmt.Fprintf(a.out, "Role:    %s\n", a.config.RoleName(u.RoleID))
	fmt.Fprintf(a.out, "Expires: %s\n", u.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

// requireSession prints a hint and reports false when nobody is logged in.
func (a *App) requireSession(ctx context.Context) bool {
	if a.session.IsValid(ctx) {
		return true
	}
	fmt.Fprintln(a.out, "Please log in first.")
	return false
}
