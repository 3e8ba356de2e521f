package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/crmclient/internal/client/client"
	"github.com/dmitrijs2005/crmclient/internal/client/config"
	"github.com/dmitrijs2005/crmclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/crmclient/internal/client/session"
	"github.com/dmitrijs2005/crmclient/internal/filex"
	"github.com/dmitrijs2005/crmclient/internal/logging"
)

type Mode string

const (
	ModeUnknown Mode = ""
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// memoryDSN selects a profile that lives only as long as the process.
const memoryDSN = ":memory:"

type App struct {
	config  *config.Config
	log     logging.Logger
	db      *sql.DB
	api     *client.HTTPClient
	session *session.Manager
	reader  *bufio.Reader
	out     io.Writer

	reportsRole  int64
	reportsGated bool

	modeMu sync.Mutex
	mode   Mode

	// loggingOut silences the "session ended" notice for explicit logouts.
	loggingOut atomic.Bool
}

// NewApp wires the local profile store, the API client and the session
// manager. The returned App owns the database; call Close when done.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	roleID, gated, err := c.ReportsRoleID()
	if err != nil {
		return nil, err
	}

	store, db, err := openStore(ctx, c.DBPath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DBPath, "error", err)
		return nil, err
	}

	api := client.NewHTTPClient(c.APIBaseURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithLogger(log.With("component", "api")),
	)
	sm := session.NewManager(store, api, session.WithLogger(log))
	api.BindTokenSource(sm)

	return &App{
		config:       c,
		log:          log,
		db:           db,
		api:          api,
		session:      sm,
		reader:       bufio.NewReader(os.Stdin),
		out:          os.Stdout,
		reportsRole:  roleID,
		reportsGated: gated,
	}, nil
}

func openStore(ctx context.Context, path string) (metadata.Repository, *sql.DB, error) {
	if path == memoryDSN {
		return metadata.NewMemory(), nil, nil
	}
	if _, err := filex.EnsureParentDir(path); err != nil {
		return nil, nil, err
	}
	db, err := client.InitDatabase(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return metadata.NewSQLiteRepository(db), db, nil
}

func (a *App) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

// Run greets the user, starts the reachability watcher and blocks in the
// REPL until the user exits or ctx is done.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fmt.Fprintln(a.out, "Welcome to the CRM CLI (type 'help' for commands)")

	unsubscribe := a.session.Subscribe(a.onSessionChange)
	defer unsubscribe()

	if u, ok := a.session.CurrentUser(ctx); ok {
		fmt.Fprintf(a.out, "Welcome back, %s.\n", u.Username)
	}

	if a.config.PingInterval > 0 {
		go a.StartOnlineStatusWatcher(ctx, a.config.PingInterval)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}

// onSessionChange tells the user when a session ends on its own, i.e. the
// token expired or the server rejected it.
func (a *App) onSessionChange(s session.State) {
	if s.Authenticated || a.loggingOut.Load() {
		return
	}
	fmt.Fprintln(a.out, "Your session has ended. Please log in again.")
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	return a.session.IsValid(ctx)
}

func (a *App) Mode() Mode {
	a.modeMu.Lock()
	defer a.modeMu.Unlock()
	return a.mode
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	a.modeMu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.modeMu.Unlock()

	if changed {
		a.log.Info(ctx, "connectivity changed", "mode", mode)
	}
}

// checkOnline probes the API once and records the result.
func (a *App) checkOnline(ctx context.Context) {
	pctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := a.api.Ping(pctx); err != nil {
		a.setMode(ctx, ModeOffline)
		return
	}
	a.setMode(ctx, ModeOnline)
}

// StartOnlineStatusWatcher probes the API every interval until ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	a.checkOnline(ctx)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// getStatus renders the prompt prefix, e.g. "(alice sales_agent online)".
func (a *App) getStatus() string {
	var parts []string
	if u, ok := a.session.CurrentUser(context.Background()); ok {
		parts = append(parts, u.Username, a.config.RoleName(u.RoleID))
	}
	if m := a.Mode(); m != ModeUnknown {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}
