package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/crmclient/internal/buildinfo"
	"github.com/dmitrijs2005/crmclient/internal/client/models"
	"github.com/dmitrijs2005/crmclient/internal/common"
	"github.com/dmitrijs2005/crmclient/internal/logging"
	"github.com/google/uuid"
)

// maxErrorBody caps how much of an error response is kept in StatusError.
const maxErrorBody = 4 << 10

// TokenSource supplies the bearer token for authenticated requests and is
// told when the server rejects it.
type TokenSource interface {
	// BearerToken returns the token to send, or false when there is no
	// usable session.
	BearerToken(ctx context.Context) (string, bool)
	// Unauthorized is called after a 401 on an authenticated request with
	// the token that request carried.
	Unauthorized(ctx context.Context, token string)
}

// HTTPClient talks to the CRM REST API.
type HTTPClient struct {
	baseURL string
	http    *http.Client
	log     logging.Logger

	mu     sync.RWMutex
	tokens TokenSource
}

type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client. Its transport is
// wrapped, not replaced.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		clone := *hc
		c.http = &clone
	}
}

// WithTimeout bounds every request, including reading the response body.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.http.Timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.log = l }
}

func WithTokenSource(ts TokenSource) Option {
	return func(c *HTTPClient) { c.tokens = ts }
}

// NewHTTPClient builds a client for the API rooted at baseURL
// (e.g. "http://localhost:8080"); the /api/v1 prefix is added here.
func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		log:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Transport = &headerTransport{base: c.http.Transport}
	return c
}

// BindTokenSource attaches the session after construction. The session
// manager needs the client to log in, and the client needs the session to
// authorise requests, so one side has to be wired late.
func (c *HTTPClient) BindTokenSource(ts TokenSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens = ts
}

func (c *HTTPClient) tokenSource() TokenSource {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tokens
}

// headerTransport stamps every outgoing request with a request id and the
// JSON content headers.
type headerTransport struct {
	base http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	r := req.Clone(req.Context())
	if r.Header.Get(common.RequestIDHeaderName) == "" {
		r.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}
	r.Header.Set("Accept", "application/json")
	if r.Body != nil && r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "application/json")
	}
	r.Header.Set("User-Agent", "crmclient/"+buildinfo.Version)
	return base.RoundTrip(r)
}

// Login exchanges credentials for a token. 4xx responses mean the
// credentials were rejected; transport failures and 5xx mean the service
// could not be reached.
func (c *HTTPClient) Login(ctx context.Context, username, password string) (*models.LoginResponse, error) {
	body := models.LoginRequest{Username: username, Password: password}

	resp, err := c.send(ctx, http.MethodPost, "/auth/login", body, "")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: login returned %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode >= 400:
		return nil, ErrInvalidCredentials
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, statusError(http.MethodPost, "/auth/login", resp)
	}

	var out models.LoginResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: malformed login response: %w", ErrUnavailable, err)
	}
	if out.Token == "" {
		return nil, fmt.Errorf("%w: login response carries no token", ErrUnavailable)
	}
	return &out, nil
}

// Logout tells the server the token is no longer in use. The server keeps no
// session state for JWTs, so this is informational.
func (c *HTTPClient) Logout(ctx context.Context, token string) error {
	resp, err := c.send(ctx, http.MethodPost, "/auth/logout", nil, token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode/100 != 2 {
		return statusError(http.MethodPost, "/auth/logout", resp)
	}
	return nil
}

// Ping reports whether the API answers at all. Any HTTP response counts.
func (c *HTTPClient) Ping(ctx context.Context) error {
	resp, err := c.send(ctx, http.MethodGet, "/", nil, "")
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

// do performs an authenticated JSON call. in may be nil; out may be nil to
// discard the body.
func (c *HTTPClient) do(ctx context.Context, method, path string, in, out any) error {
	ts := c.tokenSource()
	if ts == nil {
		return ErrUnauthorized
	}
	token, ok := ts.BearerToken(ctx)
	if !ok {
		return ErrUnauthorized
	}

	resp, err := c.send(ctx, method, path, in, token)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		c.log.Warn(ctx, "api rejected session token", "method", method, "path", path)
		ts.Unauthorized(ctx, token)
		return ErrUnauthorized
	case resp.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: %w", ErrUnavailable, statusError(method, path, resp))
	case resp.StatusCode/100 != 2:
		return statusError(method, path, resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%s %s: decode response: %w", method, path, err)
	}
	return nil
}

// send builds and executes one request against the API prefix. token, when
// set, goes into the Authorization header.
func (c *HTTPClient) send(ctx context.Context, method, path string, in any, token string) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("%s %s: encode request: %w", method, path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+common.APIPrefix+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: build request: %w", method, path, err)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("%s %s: %w", method, path, ctx.Err())
		}
		c.log.Warn(ctx, "api request failed", "method", method, "path", path, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	c.log.Debug(ctx, "api request", "method", method, "path", path,
		"status", resp.StatusCode, "elapsed", time.Since(start))
	return resp, nil
}

func statusError(method, path string, resp *http.Response) *StatusError {
	b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &StatusError{
		Method: method,
		Path:   path,
		Code:   resp.StatusCode,
		Body:   strings.TrimSpace(string(b)),
	}
}
