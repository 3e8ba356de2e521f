package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/crmclient/internal/client/models"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTokens struct {
	mu           sync.Mutex
	token        string
	ok           bool
	unauthorized int
	rejected     string
}

func (f *fakeTokens) BearerToken(context.Context) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.token, f.ok
}

func (f *fakeTokens) Unauthorized(_ context.Context, token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unauthorized++
	f.rejected = token
	f.ok = false
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// newAPI starts a fake CRM API; routes are registered under /api/v1.
func newAPI(t *testing.T, routes func(r chi.Router)) *httptest.Server {
	t.Helper()
	r := chi.NewRouter()
	r.Route("/api/v1", routes)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func TestLogin_Success(t *testing.T) {
	var got models.LoginRequest
	srv := newAPI(t, func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			assert.Empty(t, r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{"token": "h.p.s", "role_id": 2})
		})
	})

	c := NewHTTPClient(srv.URL)
	resp, err := c.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "h.p.s", resp.Token)
	assert.Equal(t, int64(2), resp.RoleID)
	assert.Equal(t, models.LoginRequest{Username: "alice", Password: "secret"}, got)
}

func TestLogin_ErrorClassification(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    error
	}{
		{
			name:    "401 is invalid credentials",
			handler: func(w http.ResponseWriter, _ *http.Request) { http.Error(w, "Invalid credentials", 401) },
			want:    ErrInvalidCredentials,
		},
		{
			name:    "400 is invalid credentials",
			handler: func(w http.ResponseWriter, _ *http.Request) { http.Error(w, "Invalid request body", 400) },
			want:    ErrInvalidCredentials,
		},
		{
			name:    "500 is unavailable",
			handler: func(w http.ResponseWriter, _ *http.Request) { http.Error(w, "boom", 500) },
			want:    ErrUnavailable,
		},
		{
			name:    "200 without token is unavailable",
			handler: func(w http.ResponseWriter, _ *http.Request) { writeJSON(w, 200, map[string]any{}) },
			want:    ErrUnavailable,
		},
		{
			name:    "200 with garbage is unavailable",
			handler: func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("<html>")) },
			want:    ErrUnavailable,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := newAPI(t, func(r chi.Router) { r.Post("/auth/login", tt.handler) })
			_, err := NewHTTPClient(srv.URL).Login(context.Background(), "alice", "wrong")
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestLogin_ServerDown_IsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewHTTPClient(url, WithTimeout(time.Second)).Login(context.Background(), "a", "b")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestLogin_Cancelled_IsNotUnavailable(t *testing.T) {
	release := make(chan struct{})
	srv := newAPI(t, func(r chi.Router) {
		r.Post("/auth/login", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	_, err := NewHTTPClient(srv.URL).Login(ctx, "a", "b")
	require.ErrorIs(t, err, context.Canceled)
	require.NotErrorIs(t, err, ErrUnavailable)
}

func TestDo_AttachesBearerAndRequestID(t *testing.T) {
	var auth, reqID, ctype string
	srv := newAPI(t, func(r chi.Router) {
		r.Get("/contacts", func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			reqID = r.Header.Get("X-Request-ID")
			ctype = r.Header.Get("Accept")
			writeJSON(w, 200, []models.Contact{{ID: 1, FirstName: "Abebe", LastName: "Kebede", PrimaryPhone: "0911"}})
		})
	})

	c := NewHTTPClient(srv.URL, WithTokenSource(&fakeTokens{token: "tok", ok: true}))
	list, err := c.Contacts().List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Abebe", list[0].FirstName)

	assert.Equal(t, "Bearer tok", auth)
	assert.Equal(t, "application/json", ctype)
	_, err = uuid.Parse(reqID)
	assert.NoError(t, err, "request id must be a uuid, got %q", reqID)
}

func TestDo_NoSession_ShortCircuits(t *testing.T) {
	called := false
	srv := newAPI(t, func(r chi.Router) {
		r.Get("/leads", func(w http.ResponseWriter, r *http.Request) { called = true })
	})

	c := NewHTTPClient(srv.URL, WithTokenSource(&fakeTokens{}))
	_, err := c.Leads().List(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.False(t, called)

	_, err = NewHTTPClient(srv.URL).Leads().List(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestDo_401_NotifiesTokenSource(t *testing.T) {
	srv := newAPI(t, func(r chi.Router) {
		r.Get("/deals", func(w http.ResponseWriter, r *http.Request) { http.Error(w, "Invalid token", 401) })
	})

	ts := &fakeTokens{token: "tok", ok: true}
	c := NewHTTPClient(srv.URL)
	c.BindTokenSource(ts)

	_, err := c.Deals().List(context.Background())
	require.ErrorIs(t, err, ErrUnauthorized)
	assert.Equal(t, 1, ts.unauthorized)
	assert.Equal(t, "tok", ts.rejected)
}

func TestDo_StatusMapping(t *testing.T) {
	srv := newAPI(t, func(r chi.Router) {
		r.Get("/tasks/{id}", func(w http.ResponseWriter, r *http.Request) {
			switch chi.URLParam(r, "id") {
			case "1":
				http.Error(w, "Forbidden", 403)
			case "2":
				http.Error(w, "missing", 404)
			case "3":
				http.Error(w, "db down", 503)
			case "4":
				http.Error(w, "bad id", 422)
			}
		})
	})
	c := NewHTTPClient(srv.URL, WithTokenSource(&fakeTokens{token: "tok", ok: true}))
	ctx := context.Background()

	_, err := c.Tasks().Get(ctx, 1)
	require.ErrorIs(t, err, ErrForbidden)

	_, err = c.Tasks().Get(ctx, 2)
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.Tasks().Get(ctx, 3)
	require.ErrorIs(t, err, ErrUnavailable)

	_, err = c.Tasks().Get(ctx, 4)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 422, se.Code)
	assert.Equal(t, "bad id", se.Body)
	assert.Equal(t, "/tasks/4", se.Path)
}

func TestResource_CRUD(t *testing.T) {
	var created, updated models.Property
	deleted := ""
	srv := newAPI(t, func(r chi.Router) {
		r.Post("/properties", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&created))
			created.ID = 9
			writeJSON(w, 201, created)
		})
		r.Put("/properties/{id}", func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&updated))
			writeJSON(w, 200, updated)
		})
		r.Delete("/properties/{id}", func(w http.ResponseWriter, r *http.Request) {
			deleted = chi.URLParam(r, "id")
			w.WriteHeader(http.StatusNoContent)
		})
	})
	c := NewHTTPClient(srv.URL, WithTokenSource(&fakeTokens{token: "tok", ok: true}))
	ctx := context.Background()

	p, err := c.Properties().Create(ctx, &models.Property{Name: "Bole Apt", Price: 1000, Status: "available"})
	require.NoError(t, err)
	assert.Equal(t, int64(9), p.ID)
	assert.Equal(t, "Bole Apt", created.Name)

	p.Status = "sold"
	p, err = c.Properties().Update(ctx, 9, p)
	require.NoError(t, err)
	assert.Equal(t, "sold", p.Status)

	require.NoError(t, c.Properties().Delete(ctx, 9))
	assert.Equal(t, "9", deleted)
}

func TestNestedResourcesAndReports(t *testing.T) {
	srv := newAPI(t, func(r chi.Router) {
		r.Get("/contacts/{id}/notes", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, []models.Note{{ID: 1, NoteText: "call back " + chi.URLParam(r, "id")}})
		})
		r.Get("/contacts/{id}/comm-logs", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, []models.CommLog{{ID: 2, InteractionType: "call"}})
		})
		r.Get("/users", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, []models.User{{ID: 7, Username: "alice"}})
		})
		r.Get("/reports/employee-leads", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, models.EmployeeLeadReport{Total: models.LeadStatusSummary{New: 3}})
		})
		r.Get("/reports/my-sales", func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, 200, []map[string]any{{"month": "2026-09", "amount": 10}})
		})
	})
	c := NewHTTPClient(srv.URL, WithTokenSource(&fakeTokens{token: "tok", ok: true}))
	ctx := context.Background()

	notes, err := c.ContactNotes(5).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "call back 5", notes[0].NoteText)

	logs, err := c.ContactCommLogs(5).List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "call", logs[0].InteractionType)

	users, err := c.Users(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", users[0].Username)

	rep, err := c.EmployeeLeadReport(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, rep.Total.New)

	raw, err := c.Report(ctx, ReportMySales)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"month":"2026-09","amount":10}]`, string(raw))
}

func TestLogoutAndPing(t *testing.T) {
	var auth string
	srv := newAPI(t, func(r chi.Router) {
		r.Post("/auth/logout", func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{"message":"Logged out successfully"}`))
		})
	})
	c := NewHTTPClient(srv.URL)

	require.NoError(t, c.Logout(context.Background(), "old"))
	assert.Equal(t, "Bearer old", auth)

	// No route at /api/v1/ still means the server answered.
	require.NoError(t, c.Ping(context.Background()))
}
