// Package cli provides the interactive CRM command-line client.
//
// NewApp wires the local profile database, the API client and the session
// manager; App.Run blocks in a REPL until the user exits. The session is
// restored from the profile on start, and the REPL announces when it ends on
// its own (expired token or a 401 from the API).
//
// Commands: login, logout, whoami, list/show for contacts, properties, leads,
// deals, tasks and events, addnote, reports. See runREPL.
package cli
