// ABOUTME: Tests for the authenticated transport
// ABOUTME: Covers bearer headers, single refresh-and-retry, cascading logout and refresh collapsing

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2389/bookdesk/internal/credstore"
)

// fakeAPI is a minimal API server. /data succeeds only for the currently valid access
// token; /auth/refresh issues tokens according to its configured behavior.
type fakeAPI struct {
	mu           sync.Mutex
	validAccess  string
	validRefresh string
	nextAccess   string
	rotate       string
	refreshDelay time.Duration
	refreshFail  int

	refreshCalls atomic.Int32
	dataCalls    atomic.Int32
	authHeaders  []string
	bodies       []string
}

func (f *fakeAPI) seen() (headers, bodies []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.authHeaders...), append([]string(nil), f.bodies...)
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		f.refreshCalls.Add(1)
		if f.refreshDelay > 0 {
			time.Sleep(f.refreshDelay)
		}
		var req refreshRequest
		_ = json.NewDecoder(r.Body).Decode(&req)

		f.mu.Lock()
		defer f.mu.Unlock()
		if r.Header.Get("Authorization") != "" {
			http.Error(w, `{"detail":"refresh must not carry bearer"}`, http.StatusBadRequest)
			return
		}
		if f.refreshFail != 0 || req.RefreshToken != f.validRefresh {
			status := f.refreshFail
			if status == 0 {
				status = http.StatusUnauthorized
			}
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"detail":"Invalid refresh token"}`))
			return
		}
		f.validAccess = f.nextAccess
		resp := refreshResponse{AccessToken: f.nextAccess}
		if f.rotate != "" {
			resp.RefreshToken = f.rotate
			f.validRefresh = f.rotate
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/data", func(w http.ResponseWriter, r *http.Request) {
		f.dataCalls.Add(1)
		body, _ := io.ReadAll(r.Body)

		f.mu.Lock()
		f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))
		f.bodies = append(f.bodies, string(body))
		valid := f.validAccess
		f.mu.Unlock()

		if r.Header.Get("Authorization") != "Bearer "+valid {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"Not authenticated"}`))
			return
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	})
	mux.HandleFunc("/always401", func(w http.ResponseWriter, r *http.Request) {
		f.dataCalls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"detail":"nope"}`))
	})
	return mux
}

func newTestClient(t *testing.T, api *fakeAPI) (*Client, *credstore.Memory) {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	creds := credstore.NewMemory("")
	c := New(srv.URL+"/", creds, Options{})
	t.Cleanup(c.Close)
	return c, creds
}

type okBody struct {
	OK bool `json:"ok"`
}

func TestClient_AttachesBearerWhenPresent(t *testing.T) {
	var gotAuth, gotID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotID = r.Header.Get("X-Request-ID")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	creds := credstore.NewMemory("")
	c := New(srv.URL, creds, Options{})
	defer c.Close()

	require.NoError(t, c.GetJSON(context.Background(), "/x", nil, nil))
	assert.Empty(t, gotAuth, "no token, no Authorization header")
	_, err := uuid.Parse(gotID)
	assert.NoError(t, err, "X-Request-ID should be a UUID")

	creds.Set(credstore.Access, "T1")
	require.NoError(t, c.GetJSON(context.Background(), "/x", nil, nil))
	assert.Equal(t, "Bearer T1", gotAuth)
}

func TestClient_RefreshAndRetryOnce(t *testing.T) {
	api := &fakeAPI{validAccess: "T2", validRefresh: "R1", nextAccess: "T2"}
	c, creds := newTestClient(t, api)
	creds.Set(credstore.Access, "T1")
	creds.Set(credstore.Refresh, "R1")

	var out okBody
	err := c.SendJSON(context.Background(), http.MethodPost, "/data", map[string]string{"a": "b"}, &out)

	require.NoError(t, err)
	assert.True(t, out.OK, "caller sees the replay's outcome")
	assert.Equal(t, int32(1), api.refreshCalls.Load())
	assert.Equal(t, int32(2), api.dataCalls.Load(), "original + exactly one replay")
	headers, bodies := api.seen()
	assert.Equal(t, []string{"Bearer T1", "Bearer T2"}, headers)
	require.Len(t, bodies, 2)
	assert.Equal(t, bodies[0], bodies[1], "replay resends identical body")

	access, _ := creds.Get(credstore.Access)
	assert.Equal(t, "T2", access)
	refresh, _ := creds.Get(credstore.Refresh)
	assert.Equal(t, "R1", refresh)
}

func TestClient_StoresRotatedRefreshToken(t *testing.T) {
	api := &fakeAPI{validAccess: "T2", validRefresh: "R1", nextAccess: "T2", rotate: "R2"}
	c, creds := newTestClient(t, api)
	creds.Set(credstore.Access, "T1")
	creds.Set(credstore.Refresh, "R1")

	require.NoError(t, c.GetJSON(context.Background(), "/data", nil, nil))

	refresh, _ := creds.Get(credstore.Refresh)
	assert.Equal(t, "R2", refresh)
}

func TestClient_NoRefreshTokenPropagates401(t *testing.T) {
	api := &fakeAPI{validAccess: "other"}
	c, creds := newTestClient(t, api)
	creds.Set(credstore.Access, "T1")

	invalidated := 0
	c.OnSessionInvalidated(func() { invalidated++ })

	err := c.GetJSON(context.Background(), "/data", nil, nil)

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, "Not authenticated", Message(err, "fallback"))
	assert.Equal(t, int32(0), api.refreshCalls.Load())
	assert.Equal(t, 0, invalidated)
	_, ok := creds.Get(credstore.Access)
	assert.True(t, ok, "tokens untouched when no refresh was attempted")
}

func TestClient_RefreshFailureClearsAndNotifies(t *testing.T) {
	api := &fakeAPI{validAccess: "never", validRefresh: "R-valid"}
	c, creds := newTestClient(t, api)
	creds.Set(credstore.Access, "T1")
	creds.Set(credstore.Refresh, "R1")

	var invalidated atomic.Int32
	c.OnSessionInvalidated(func() { invalidated.Add(1) })

	err := c.GetJSON(context.Background(), "/data", nil, nil)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSessionExpired)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "/auth/refresh", apiErr.Path, "the refresh failure is returned, not the original 401")
	assert.Equal(t, "Invalid refresh token", Message(err, "fallback"))

	assert.Equal(t, int32(1), api.dataCalls.Load(), "no replay after failed refresh")
	assert.Equal(t, int32(1), invalidated.Load())
	_, ok := creds.Get(credstore.Access)
	assert.False(t, ok)
	_, ok = creds.Get(credstore.Refresh)
	assert.False(t, ok)

	// A later 401 finds no tokens: no further refresh, clear or notification.
	err = c.GetJSON(context.Background(), "/data", nil, nil)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, int32(1), api.refreshCalls.Load())
	assert.Equal(t, int32(1), invalidated.Load())
}

func TestClient_SecondUnauthorizedIsPropagated(t *testing.T) {
	api := &fakeAPI{validRefresh: "R1", nextAccess: "T2"}
	c, creds := newTestClient(t, api)
	creds.Set(credstore.Access, "T1")
	creds.Set(credstore.Refresh, "R1")

	err := c.GetJSON(context.Background(), "/always401", nil, nil)

	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, int32(1), api.refreshCalls.Load())
	assert.Equal(t, int32(2), api.dataCalls.Load(), "original + one replay, never more")
	_, ok := creds.Get(credstore.Refresh)
	assert.True(t, ok, "a 401 on the replay does not end the session")
}

func TestClient_ConcurrentUnauthorizedShareOneRefresh(t *testing.T) {
	api := &fakeAPI{validAccess: "not-yet", validRefresh: "R1", nextAccess: "T2", refreshDelay: 50 * time.Millisecond}
	c, creds := newTestClient(t, api)
	creds.Set(credstore.Access, "T1")
	creds.Set(credstore.Refresh, "R1")

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = c.GetJSON(context.Background(), "/data", nil, nil)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, int32(1), api.refreshCalls.Load())
}

func TestClient_ConcurrentRefreshFailureInvalidatesOnce(t *testing.T) {
	api := &fakeAPI{validAccess: "never", validRefresh: "R-valid", refreshDelay: 30 * time.Millisecond}
	c, creds := newTestClient(t, api)
	creds.Set(credstore.Access, "T1")
	creds.Set(credstore.Refresh, "R1")

	var invalidated atomic.Int32
	c.OnSessionInvalidated(func() { invalidated.Add(1) })

	const n = 6
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Error(t, c.GetJSON(context.Background(), "/data", nil, nil))
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), api.refreshCalls.Load())
	assert.Equal(t, int32(1), invalidated.Load())
}

func TestClient_RejectedTokenFailsFast(t *testing.T) {
	api := &fakeAPI{validAccess: "never", validRefresh: "R-valid"}
	c, creds := newTestClient(t, api)
	creds.Set(credstore.Access, "T1")
	creds.Set(credstore.Refresh, "R1")

	var invalidated atomic.Int32
	c.OnSessionInvalidated(func() { invalidated.Add(1) })

	require.Error(t, c.GetJSON(context.Background(), "/data", nil, nil))

	// A request that read the stale refresh token before the clear.
	_, err := c.refresh(context.Background(), "R1")
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(1), api.refreshCalls.Load())
	assert.Equal(t, int32(1), invalidated.Load())
}

func TestClient_StaleRejectionKeepsNewerSession(t *testing.T) {
	api := &fakeAPI{validAccess: "never", validRefresh: "R-valid"}
	c, creds := newTestClient(t, api)
	creds.Set(credstore.Refresh, "R-new")

	var invalidated atomic.Int32
	c.OnSessionInvalidated(func() { invalidated.Add(1) })

	_, err := c.refresh(context.Background(), "R-old")

	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.Equal(t, int32(0), invalidated.Load())
	got, ok := creds.Get(credstore.Refresh)
	require.True(t, ok)
	assert.Equal(t, "R-new", got)
}

func TestClient_RefreshWithoutToken(t *testing.T) {
	c, _ := newTestClient(t, &fakeAPI{})
	_, err := c.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNoRefreshToken)
}

func TestClient_UnsubscribeStopsNotifications(t *testing.T) {
	api := &fakeAPI{validAccess: "never", validRefresh: "R-valid"}
	c, creds := newTestClient(t, api)
	creds.Set(credstore.Access, "T1")
	creds.Set(credstore.Refresh, "R1")

	called := false
	unsubscribe := c.OnSessionInvalidated(func() { called = true })
	unsubscribe()

	require.Error(t, c.GetJSON(context.Background(), "/data", nil, nil))
	assert.False(t, called)
}

func TestClient_ErrorDetails(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantDetail string
	}{
		{"string detail", 400, `{"detail":"Service name taken"}`, "Service name taken"},
		{"validation detail", 422, `{"detail":[{"msg":"field required"},{"msg":"too short"}]}`, "field required; too short"},
		{"error field", 403, `{"error":"admin role required"}`, "admin role required"},
		{"non json", 500, `Internal Server Error`, ""},
		{"empty", 404, ``, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()
			c := New(srv.URL, credstore.NewMemory(""), Options{})
			defer c.Close()

			err := c.GetJSON(context.Background(), "/thing", nil, nil)

			var apiErr *APIError
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.wantDetail, apiErr.Detail)
			want := tt.wantDetail
			if want == "" {
				want = "fallback"
			}
			assert.Equal(t, want, Message(err, "fallback"))
		})
	}
}

func TestClient_NetworkErrorIsNotAPIError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := New(url, credstore.NewMemory(""), Options{Timeout: time.Second})
	defer c.Close()

	err := c.GetJSON(context.Background(), "/x", nil, nil)

	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Equal(t, "Failed to load", Message(err, "Failed to load"))
}

func TestClient_QueryAndDecode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "confirmed", r.URL.Query().Get("status"))
		_, _ = w.Write([]byte(`[{"id":1},{"id":2}]`))
	}))
	defer srv.Close()
	c := New(srv.URL, credstore.NewMemory(""), Options{})
	defer c.Close()

	var out []struct {
		ID int `json:"id"`
	}
	err := c.GetJSON(context.Background(), "/items", map[string][]string{"status": {"confirmed"}}, &out)

	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestClient_DecodeError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	}))
	defer srv.Close()
	c := New(srv.URL, credstore.NewMemory(""), Options{})
	defer c.Close()

	var out map[string]any
	err := c.GetJSON(context.Background(), "/x", nil, &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding GET /x")
}

func TestClient_Upload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data"))
		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()
		data, _ := io.ReadAll(file)
		assert.Equal(t, "avatar.png", header.Filename)
		assert.Equal(t, "PNGDATA", string(data))
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()
	c := New(srv.URL, credstore.NewMemory(""), Options{})
	defer c.Close()

	var out okBody
	err := c.Upload(context.Background(), "/profile/me/avatar", "file", "avatar.png", strings.NewReader("PNGDATA"), &out)

	require.NoError(t, err)
	assert.True(t, out.OK)
}

func TestClient_AnonymousRequestSkipsBearerAndRefresh(t *testing.T) {
	api := &fakeAPI{validAccess: "T2", validRefresh: "R1", nextAccess: "T2"}
	c, creds := newTestClient(t, api)
	creds.Set(credstore.Access, "T1")
	creds.Set(credstore.Refresh, "R1")

	err := c.DoJSON(context.Background(), &Request{Method: http.MethodGet, Path: "/data", Anonymous: true}, nil)

	assert.True(t, IsUnauthorized(err))
	headers, _ := api.seen()
	assert.Equal(t, []string{""}, headers)
	assert.Equal(t, int32(0), api.refreshCalls.Load())
}

func TestOutcome(t *testing.T) {
	ok := Succeed(42)
	assert.True(t, ok.Success)
	assert.Equal(t, 42, ok.Data)

	failed := Fail[int](&APIError{Status: 400, Detail: "bad"}, "fallback")
	assert.False(t, failed.Success)
	assert.Equal(t, "bad", failed.Error)

	assert.Equal(t, "fallback", Fail[int](errors.New("dial tcp"), "fallback").Error)
	assert.Equal(t, "Service not found", Failf[int]("Service not found").Error)
}
