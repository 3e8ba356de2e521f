package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/crmclient/internal/client/client"
	"github.com/dmitrijs2005/crmclient/internal/client/models"
	"github.com/dmitrijs2005/crmclient/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/crmclient/internal/common"
	"github.com/dmitrijs2005/crmclient/internal/logging"
)

// Authenticator is the part of the API the manager needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*models.LoginResponse, error)
	Logout(ctx context.Context, token string) error
}

// Credentials are what the user types at the login prompt.
type Credentials struct {
	Username string
	Password string
}

// State is a consumer-facing snapshot of the session.
type State struct {
	Authenticated bool
	Subject       *Subject
}

// Manager is the single owner of the persisted session token. Everything it
// reports about the user is decoded from that token on each read.
type Manager struct {
	store metadata.Repository
	auth  Authenticator
	log   logging.Logger
	now   func() time.Time

	// logoutTimeout bounds the best-effort server notification on logout.
	logoutTimeout time.Duration

	mu     sync.Mutex
	token  string
	loaded bool
	gen    uint64

	subMu  sync.Mutex
	subs   map[uint64]func(State)
	nextID uint64
}

type Option func(*Manager)

// WithClock replaces time.Now; tests use it to pin expiry checks.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(m *Manager) { m.log = l }
}

func WithLogoutTimeout(d time.Duration) Option {
	return func(m *Manager) { m.logoutTimeout = d }
}

// NewManager creates the session manager over store. auth may be nil for
// consumers that never log in (Login then reports ErrUnreachable).
func NewManager(store metadata.Repository, auth Authenticator, opts ...Option) *Manager {
	m := &Manager{
		store:         store,
		auth:          auth,
		log:           logging.Discard(),
		now:           time.Now,
		logoutTimeout: 3 * time.Second,
		subs:          make(map[uint64]func(State)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.log = m.log.With("component", "session")
	return m
}

// SetSession persists token and makes it the current session. It returns only
// after the store accepted the write. The token is not validated here.
func (m *Manager) SetSession(ctx context.Context, token string) error {
	m.mu.Lock()
	if err := m.store.Set(ctx, common.TokenStorageKey, []byte(token)); err != nil {
		m.mu.Unlock()
		return fmt.Errorf("persist session: %w", err)
	}
	m.token, m.loaded = token, true
	m.gen++
	m.mu.Unlock()

	m.publish(ctx)
	return nil
}

// Token returns the stored token, reading the store on first use. A store
// read failure is logged and reported as no token.
func (m *Manager) Token(ctx context.Context) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokenLocked(ctx)
}

func (m *Manager) tokenLocked(ctx context.Context) (string, bool) {
	if !m.loaded {
		v, err := m.store.Get(ctx, common.TokenStorageKey)
		if err != nil {
			m.log.Error(ctx, "failed to read session token", "error", err)
			return "", false
		}
		m.token, m.loaded = string(v), true
	}
	return m.token, m.token != ""
}

// IsExpired reports whether token is unusable at the manager's current time.
func (m *Manager) IsExpired(token string) bool {
	return Expired(token, m.now())
}

// IsValid reports whether a decodable, unexpired token is stored. A stored
// token that fails either check is deleted and subscribers are told the
// session ended.
func (m *Manager) IsValid(ctx context.Context) bool {
	_, _, ok := m.current(ctx)
	return ok
}

// CurrentUser returns the subject of a valid session.
func (m *Manager) CurrentUser(ctx context.Context) (*Subject, bool) {
	_, s, ok := m.current(ctx)
	return s, ok
}

// HasRole reports whether the session is valid and its role_id is roleID.
func (m *Manager) HasRole(ctx context.Context, roleID int64) bool {
	_, s, ok := m.current(ctx)
	return ok && s.RoleID == roleID
}

// State returns a snapshot for rendering.
func (m *Manager) State(ctx context.Context) State {
	_, s, ok := m.current(ctx)
	return State{Authenticated: ok, Subject: s}
}

// BearerToken returns the token to put on API requests; only a valid session
// yields one.
func (m *Manager) BearerToken(ctx context.Context) (string, bool) {
	token, _, ok := m.current(ctx)
	return token, ok
}

// Unauthorized ends the session after the API rejected token. A rejection of
// a token that has since been replaced leaves the newer session alone.
func (m *Manager) Unauthorized(ctx context.Context, token string) {
	m.log.Info(ctx, "session rejected by server")
	m.dropIfCurrent(ctx, token)
}

// ClearSession deletes the stored token. Clearing an empty session is a no-op.
func (m *Manager) ClearSession(ctx context.Context) error {
	_, err := m.clear(ctx)
	return err
}

// clear removes the token and returns what was removed.
func (m *Manager) clear(ctx context.Context) (string, error) {
	m.mu.Lock()
	old, had := m.tokenLocked(ctx)
	if err := m.store.Delete(ctx, common.TokenStorageKey); err != nil {
		m.mu.Unlock()
		return "", fmt.Errorf("clear session: %w", err)
	}
	m.token, m.loaded = "", true
	m.gen++
	m.mu.Unlock()

	if had {
		m.publish(ctx)
	}
	return old, nil
}

// current decodes the stored token and, if it is no longer usable, drops it.
func (m *Manager) current(ctx context.Context) (string, *Subject, bool) {
	m.mu.Lock()
	token, ok := m.tokenLocked(ctx)
	m.mu.Unlock()
	if !ok {
		return "", nil, false
	}

	s, decoded := Decode(token)
	if decoded && !m.IsExpired(token) {
		return token, s, true
	}

	m.log.Info(ctx, "dropping unusable session token", "decoded", decoded)
	m.dropIfCurrent(ctx, token)
	return "", nil, false
}

// dropIfCurrent clears the session only if token is still the stored one, so
// a concurrent SetSession is never undone by a stale check.
func (m *Manager) dropIfCurrent(ctx context.Context, token string) {
	m.mu.Lock()
	if cur, ok := m.tokenLocked(ctx); !ok || cur != token {
		m.mu.Unlock()
		return
	}
	if err := m.store.Delete(ctx, common.TokenStorageKey); err != nil {
		m.mu.Unlock()
		m.log.Error(ctx, "failed to drop session token", "error", err)
		return
	}
	m.token = ""
	m.gen++
	m.mu.Unlock()

	m.publish(ctx)
}

// Generation increases on every change to the stored session.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.gen
}

// Login verifies credentials with the API and, on success, stores the issued
// token and returns its subject.
//
// Errors are ErrInvalidCredentials, ErrUnreachable or ErrLoginAborted. The
// last one means the caller gave up, or the session changed (e.g. logout)
// while the request was in flight; the response is then discarded. No state
// changes on any error.
func (m *Manager) Login(ctx context.Context, c Credentials) (*Subject, error) {
	if m.auth == nil {
		return nil, fmt.Errorf("%w: no authenticator configured", ErrUnreachable)
	}

	gen := m.Generation()

	resp, err := m.auth.Login(ctx, c.Username, c.Password)
	if err != nil {
		return nil, m.classifyLoginError(ctx, c.Username, err)
	}

	subject, ok := Decode(resp.Token)
	if !ok || m.IsExpired(resp.Token) {
		m.log.Error(ctx, "server issued an unusable token", "username", c.Username)
		return nil, fmt.Errorf("%w: server issued an unusable token", ErrUnreachable)
	}

	m.mu.Lock()
	if ctx.Err() != nil || m.gen != gen {
		m.mu.Unlock()
		m.log.Info(ctx, "discarding stale login response", "username", c.Username)
		return nil, ErrLoginAborted
	}
	if err := m.store.Set(ctx, common.TokenStorageKey, []byte(resp.Token)); err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("persist session: %w", err)
	}
	m.token, m.loaded = resp.Token, true
	m.gen++
	m.mu.Unlock()

	m.log.Info(ctx, "login succeeded", "user_id", subject.UserID, "role_id", subject.RoleID)
	m.publish(ctx)
	return subject, nil
}

func (m *Manager) classifyLoginError(ctx context.Context, username string, err error) error {
	switch {
	case errors.Is(err, client.ErrInvalidCredentials):
		m.log.Warn(ctx, "login rejected", "username", username)
		return ErrInvalidCredentials
	case errors.Is(err, context.Canceled):
		return ErrLoginAborted
	default:
		m.log.Warn(ctx, "login failed", "username", username, "error", err)
		return fmt.Errorf("%w: %w", ErrUnreachable, err)
	}
}

// Logout ends the session locally and then tells the server, best effort.
// The local effect does not depend on the server call.
func (m *Manager) Logout(ctx context.Context) {
	old, err := m.clear(ctx)
	if err != nil {
		m.log.Error(ctx, "logout could not clear session", "error", err)
		m.mu.Lock()
		m.token = ""
		m.gen++
		m.mu.Unlock()
		m.publish(ctx)
	}
	if old == "" || m.auth == nil {
		return
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), m.logoutTimeout)
	defer cancel()
	if err := m.auth.Logout(nctx, old); err != nil {
		m.log.Warn(ctx, "server logout failed", "error", err)
	}
}

// Subscribe registers fn to receive a State after every session change. The
// returned func removes the subscription. fn runs on the goroutine that made
// the change and must not block.
func (m *Manager) Subscribe(fn func(State)) (cancel func()) {
	m.subMu.Lock()
	defer m.subMu.Unlock()

	id := m.nextID
	m.nextID++
	m.subs[id] = fn

	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) publish(ctx context.Context) {
	m.mu.Lock()
	token := m.token
	m.mu.Unlock()

	st := State{}
	if s, ok := Decode(token); ok && !m.IsExpired(token) {
		st = State{Authenticated: true, Subject: s}
	}

	m.subMu.Lock()
	fns := make([]func(State), 0, len(m.subs))
	for _, fn := range m.subs {
		fns = append(fns, fn)
	}
	m.subMu.Unlock()

	m.log.Debug(ctx, "publishing session state", "authenticated", st.Authenticated, "subscribers", len(fns))
	for _, fn := range fns {
		fn(st)
	}
}
