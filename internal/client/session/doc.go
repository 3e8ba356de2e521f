// Package session owns the authenticated session of the CRM client.
//
// The only thing persisted is the raw token the API issued. Who the user is
// and which role they hold are decoded from that token on every read, and a
// token that no longer decodes or has expired is dropped on first sight.
package session
