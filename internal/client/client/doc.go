// Package client contains the client-side building blocks for talking to the
// CRM backend.
//
// # Overview
//
// The package provides:
//  1. HTTPClient, a JSON-over-HTTP client for the CRM REST API: login/logout,
//     a reachability probe, CRUD pass-through for contacts, properties,
//     leads, deals, tasks, events, contact notes and communication logs, and
//     the report endpoints.
//  2. Bearer-token injection from a TokenSource (normally the session
//     manager). A 401 on an authenticated request is reported back to the
//     TokenSource so the session ends everywhere at once.
//  3. Local persistence bootstrap (InitDatabase, RunMigrations): an SQLite
//     profile database with embedded goose migrations.
//
// # Error Handling
//
// Conditions are exposed as sentinel errors matched with errors.Is:
// ErrUnavailable, ErrUnauthorized, ErrInvalidCredentials, ErrForbidden,
// ErrNotFound. Any other non-2xx status is returned as *StatusError.
//
// # Concurrency
//
// HTTPClient is safe for concurrent use. Every call takes a context.Context
// and honours cancellation.
package client
