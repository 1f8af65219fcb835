// ABOUTME: Authenticated HTTP client with bearer tokens and silent refresh-and-retry
// ABOUTME: Collapses concurrent refreshes and emits session invalidation on refresh failure

package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/2389/bookdesk/internal/credstore"
	"github.com/2389/bookdesk/internal/dedupe"
)

// DefaultRefreshPath is the endpoint that exchanges a refresh token for an access token.
const DefaultRefreshPath = "/auth/refresh"

const (
	rejectedTTL  = 10 * time.Minute
	rejectedSize = 64
)

// Options configures a Client.
type Options struct {
	// HTTPClient performs the requests. Defaults to a client with Timeout.
	HTTPClient *http.Client
	// Timeout applies only when HTTPClient is nil. Zero means no timeout.
	Timeout     time.Duration
	RefreshPath string
	Logger      *slog.Logger
}

// Client sends API requests on behalf of the current session.
type Client struct {
	baseURL     string
	http        *http.Client
	creds       credstore.Store
	refreshPath string
	logger      *slog.Logger

	flight   singleflight.Group
	rejected *dedupe.Cache[string]

	mu          sync.Mutex
	subscribers map[int]func()
	nextSub     int
}

// New creates a Client for the API at baseURL, reading and writing tokens in creds.
func New(baseURL string, creds credstore.Store, opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	refreshPath := opts.RefreshPath
	if refreshPath == "" {
		refreshPath = DefaultRefreshPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:     strings.TrimRight(baseURL, "/"),
		http:        httpClient,
		creds:       creds,
		refreshPath: refreshPath,
		logger:      logger.With("component", "transport"),
		rejected:    dedupe.New[string](rejectedTTL, rejectedSize, time.Minute),
		subscribers: make(map[int]func()),
	}
}

// Close stops background work. The Client must not be used afterwards.
func (c *Client) Close() {
	c.rejected.Close()
}

// Credentials returns the store the client reads tokens from.
func (c *Client) Credentials() credstore.Store {
	return c.creds
}

// Request describes one API call. Body is buffered so a replay sends identical bytes.
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
	// Anonymous requests carry no bearer token and skip the refresh path (login, register).
	Anonymous bool

	id      string
	retried bool
	bearer  string // access token sent with the last attempt
}

// Response is a completed API call.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// OnSessionInvalidated registers fn to run after a failed refresh has cleared the
// session. The returned func unsubscribes.
func (c *Client) OnSessionInvalidated(fn func()) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(c.subscribers, id)
	}
}

func (c *Client) notifyInvalidated() {
	c.mu.Lock()
	fns := make([]func(), 0, len(c.subscribers))
	for _, fn := range c.subscribers {
		fns = append(fns, fn)
	}
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}

// Do sends req, transparently refreshing the access token once on a 401.
// Non-2xx results are returned as *APIError.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	if req.id == "" {
		req.id = uuid.NewString()
	}

	resp, err := c.send(ctx, req, "")
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusUnauthorized && !req.retried && !req.Anonymous {
		req.retried = true
		return c.retryAfterRefresh(ctx, req, resp)
	}
	return c.result(req, resp)
}

// retryAfterRefresh obtains a usable access token and replays req exactly once.
func (c *Client) retryAfterRefresh(ctx context.Context, req *Request, original *Response) (*Response, error) {
	// Another request may already have refreshed while this one was in flight.
	if current, ok := c.creds.Get(credstore.Access); ok && current != "" && current != req.bearer {
		c.logger.Debug("replaying with already refreshed token", "path", req.Path, "request_id", req.id)
		return c.replay(ctx, req, current)
	}

	refresh, ok := c.creds.Get(credstore.Refresh)
	if !ok || refresh == "" {
		return c.result(req, original)
	}

	access, err := c.refresh(ctx, refresh)
	if err != nil {
		return nil, err
	}
	return c.replay(ctx, req, access)
}

func (c *Client) replay(ctx context.Context, req *Request, access string) (*Response, error) {
	resp, err := c.send(ctx, req, access)
	if err != nil {
		return nil, err
	}
	return c.result(req, resp)
}

func (c *Client) result(req *Request, resp *Response) (*Response, error) {
	if resp.Status >= 200 && resp.Status < 300 {
		return resp, nil
	}
	return nil, &APIError{
		Method: req.Method,
		Path:   req.Path,
		Status: resp.Status,
		Detail: parseDetail(resp.Body),
		Body:   resp.Body,
	}
}

// send performs one HTTP round trip. An empty bearer means "use the stored token".
func (c *Client) send(ctx context.Context, req *Request, bearer string) (*Response, error) {
	u := c.baseURL + req.Path
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u, body)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	if bearer == "" && !req.Anonymous {
		bearer, _ = c.creds.Get(credstore.Access)
	}
	req.bearer = bearer
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}
	if req.ContentType != "" {
		httpReq.Header.Set("Content-Type", req.ContentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", req.id)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s %s: reading response: %w", req.Method, req.Path, err)
	}

	c.logger.Debug("api request",
		"method", req.Method,
		"path", req.Path,
		"status", httpResp.StatusCode,
		"retried", req.retried,
		"request_id", req.id,
	)

	return &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   data,
	}, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// Refresh exchanges the stored refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context) (string, error) {
	refresh, ok := c.creds.Get(credstore.Refresh)
	if !ok || refresh == "" {
		return "", ErrNoRefreshToken
	}
	return c.refresh(ctx, refresh)
}

// refresh collapses concurrent refreshes of the same token into one call.
func (c *Client) refresh(ctx context.Context, refreshToken string) (string, error) {
	if c.rejected.Contains(refreshToken) {
		return "", fmt.Errorf("%w: refresh token already rejected", ErrSessionExpired)
	}

	// The shared call outlives any single caller's cancellation.
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := c.flight.Do(refreshToken, func() (any, error) {
		return c.doRefresh(flightCtx, refreshToken)
	})
	if shared {
		c.logger.Debug("joined in-flight token refresh")
	}
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// doRefresh calls the refresh endpoint directly, bypassing the 401 retry path.
func (c *Client) doRefresh(ctx context.Context, refreshToken string) (string, error) {
	access, rotated, err := c.callRefresh(ctx, refreshToken)
	if err != nil {
		c.invalidate(refreshToken, err)
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	c.creds.Set(credstore.Access, access)
	if rotated != "" {
		c.creds.Set(credstore.Refresh, rotated)
	}
	c.logger.Info("access token refreshed", "rotated", rotated != "")
	return access, nil
}

func (c *Client) callRefresh(ctx context.Context, refreshToken string) (access, rotated string, err error) {
	payload, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return "", "", fmt.Errorf("encoding refresh request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.refreshPath, bytes.NewReader(payload))
	if err != nil {
		return "", "", fmt.Errorf("building refresh request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("X-Request-ID", uuid.NewString())

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return "", "", fmt.Errorf("POST %s: %w", c.refreshPath, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", "", fmt.Errorf("POST %s: reading response: %w", c.refreshPath, err)
	}
	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return "", "", &APIError{
			Method: http.MethodPost,
			Path:   c.refreshPath,
			Status: httpResp.StatusCode,
			Detail: parseDetail(body),
			Body:   body,
		}
	}

	var rr refreshResponse
	if err := json.Unmarshal(body, &rr); err != nil {
		return "", "", fmt.Errorf("decoding refresh response: %w", err)
	}
	if rr.AccessToken == "" {
		return "", "", errors.New("refresh response missing access_token")
	}
	return rr.AccessToken, rr.RefreshToken, nil
}

// invalidate ends the session after refreshToken was rejected. Only the first rejection
// of a token clears and notifies, and only if that token is still the stored one.
func (c *Client) invalidate(refreshToken string, cause error) {
	if !c.rejected.Add(refreshToken) {
		return
	}
	if current, ok := c.creds.Get(credstore.Refresh); ok && current != refreshToken {
		c.logger.Info("stale refresh token rejected, keeping newer session")
		return
	}

	c.logger.Warn("token refresh failed, ending session", "error", cause)
	credstore.ClearAll(c.creds)
	c.notifyInvalidated()
}

// GetJSON sends a GET and decodes the JSON response into out.
func (c *Client) GetJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query}, out)
}

// SendJSON sends in (when non-nil) as a JSON body and decodes the response into out
// (when non-nil).
func (c *Client) SendJSON(ctx context.Context, method, path string, in, out any) error {
	req := &Request{Method: method, Path: path}
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding %s %s: %w", method, path, err)
		}
		req.Body = data
		req.ContentType = "application/json"
	}
	return c.do(ctx, req, out)
}

// Upload posts r as a multipart/form-data file under field and decodes the response.
func (c *Client) Upload(ctx context.Context, path, field, filename string, r io.Reader, out any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, r); err != nil {
		return fmt.Errorf("reading upload: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finishing form: %w", err)
	}

	return c.do(ctx, &Request{
		Method:      http.MethodPost,
		Path:        path,
		Body:        buf.Bytes(),
		ContentType: mw.FormDataContentType(),
	}, out)
}

// DoJSON sends req and decodes a non-empty JSON response into out (when non-nil).
func (c *Client) DoJSON(ctx context.Context, req *Request, out any) error {
	return c.do(ctx, req, out)
}

func (c *Client) do(ctx context.Context, req *Request, out any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("decoding %s %s: %w", req.Method, req.Path, err)
	}
	return nil
}
