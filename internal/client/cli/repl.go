package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn(ctx context.Context) bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	List(ctx context.Context, kind string) error
	Show(ctx context.Context, args []string) error
	AddNote(ctx context.Context, args []string) error
	Reports(ctx context.Context, args []string) error
}

// recordKinds are the collections "list" understands; each is also accepted
// as a command of its own.
var recordKinds = []string{"contacts", "properties", "leads", "deals", "tasks", "events"}

func isRecordKind(s string) bool {
	return slices.Contains(recordKinds, s)
}

// runREPL starts a simple read–eval–print loop for the CRM CLI.
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Not logged in:
//	  - help              show available commands
//	  - login             authenticate
//	  - exit | quit       leave the program
//
//	Logged in:
//	  - whoami            show the current user
//	  - contacts | properties | leads | deals | tasks | events
//	                      list records (also: list <kind>)
//	  - show <kind> <id>  show one record
//	  - addnote <id>      add a note to a contact
//	  - reports [name]    list or show reports
//	  - logout            log out
//
// Errors returned by command handlers are not printed here; handlers report
// to the user themselves. The loop ends on EOF, "exit"/"quit" or ctx done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		if ctx.Err() != nil {
			return
		}
		printlnFn(fmt.Sprintf("crm %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch {
		case cmd == "help":
			if a.isLoggedIn(ctx) {
				printlnFn("Available commands: whoami, " + strings.Join(recordKinds, ", ") +
					", list <kind>, show <kind> <id>, addnote <contact-id>, reports [name], logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case cmd == "login":
			_ = a.Login(ctx)

		case cmd == "logout":
			_ = a.Logout(ctx)

		case cmd == "whoami":
			_ = a.WhoAmI(ctx)

		case isRecordKind(cmd):
			_ = a.List(ctx, cmd)

		case cmd == "l", cmd == "list":
			if len(args) == 0 {
				printlnFn("Usage: list <" + strings.Join(recordKinds, "|") + ">")
				continue
			}
			_ = a.List(ctx, args[0])

		case cmd == "show":
			_ = a.Show(ctx, args)

		case cmd == "addnote":
			_ = a.AddNote(ctx, args)

		case cmd == "reports":
			_ = a.Reports(ctx, args)

		case cmd == "exit", cmd == "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
