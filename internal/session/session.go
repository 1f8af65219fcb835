// ABOUTME: Session state: login, register, profile loading and the two logout paths
// ABOUTME: Authentication status is read live from the credential store

package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/2389/bookdesk/internal/credstore"
	"github.com/2389/bookdesk/internal/transport"
)

// Fallback messages when the server gives no reason.
const (
	MsgLoginFailed        = "Login failed"
	MsgRegistrationFailed = "Registration failed"
)

// ErrInvalidInput is returned by input validation.
var ErrInvalidInput = errors.New("invalid input")

// Endpoints are the API paths a Session uses.
type Endpoints struct {
	Login    string
	Register string
	Profile  string
}

// BusinessEndpoints are the paths for business operators.
func BusinessEndpoints() Endpoints {
	return Endpoints{
		Login:    "/auth/login/business",
		Register: "/auth/register/business",
		Profile:  "/admin/business/profile",
	}
}

// Tokens is the API's reply to a successful login or registration.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// LoginInput is the body of a login request.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks that both credentials are present.
func (in LoginInput) Validate() error {
	if strings.TrimSpace(in.Email) == "" {
		return fmt.Errorf("%w: email is required", ErrInvalidInput)
	}
	if in.Password == "" {
		return fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	return nil
}

// RegisterInput is the body of a business registration request.
type RegisterInput struct {
	Email        string  `json:"email"`
	Password     string  `json:"password"`
	Name         string  `json:"name"`
	BusinessType string  `json:"business_type"`
	Address      *string `json:"address,omitempty"`
	Phone        *string `json:"phone,omitempty"`
}

// Validate checks the required registration fields.
func (in RegisterInput) Validate() error {
	if err := (LoginInput{Email: in.Email, Password: in.Password}).Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(in.BusinessType) == "" {
		return fmt.Errorf("%w: business_type is required", ErrInvalidInput)
	}
	return nil
}

// EventKind names a session state change.
type EventKind string

const (
	EventLogin              EventKind = "login"
	EventLoginFailed        EventKind = "login_failed"
	EventRegister           EventKind = "register"
	EventRegisterFailed     EventKind = "register_failed"
	EventProfileLoaded      EventKind = "profile_loaded"
	EventProfileFailed      EventKind = "profile_failed"
	EventLogout             EventKind = "logout"
	EventSessionInvalidated EventKind = "session_invalidated"
)

// Event is reported through Options.Hook.
type Event struct {
	Kind EventKind
	Err  error
}

// Options configures a Session.
type Options struct {
	// Endpoints defaults to BusinessEndpoints.
	Endpoints Endpoints
	Logger    *slog.Logger
	// Hook receives every Event. Defaults to logging them.
	Hook func(Event)
}

// Claims are the display-relevant claims of the access token.
type Claims struct {
	Subject   string
	ExpiresAt time.Time
}

// Session is the authentication state for one principal whose profile type is P.
type Session[P any] struct {
	api       *transport.Client
	creds     credstore.Store
	endpoints Endpoints
	logger    *slog.Logger
	hook      func(Event)

	mu          sync.RWMutex
	profile     *P
	unsubscribe func()
}

// New creates a Session using api and the credential store behind it.
func New[P any](api *transport.Client, opts Options) *Session[P] {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	endpoints := opts.Endpoints
	if endpoints == (Endpoints{}) {
		endpoints = BusinessEndpoints()
	}

	s := &Session[P]{
		api:       api,
		creds:     api.Credentials(),
		endpoints: endpoints,
		logger:    logger.With("component", "session"),
		hook:      opts.Hook,
	}
	if s.hook == nil {
		s.hook = s.logEvent
	}
	return s
}

// Init subscribes to session invalidation and loads the profile of a stored session.
func (s *Session[P]) Init(ctx context.Context) {
	unsubscribe := s.api.OnSessionInvalidated(s.invalidated)

	s.mu.Lock()
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	s.unsubscribe = unsubscribe
	s.mu.Unlock()

	if s.IsAuthenticated() {
		s.FetchProfile(ctx)
	}
}

// Teardown stops listening for invalidation.
func (s *Session[P]) Teardown() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
	}
}

// IsAuthenticated reports whether an access token is stored.
func (s *Session[P]) IsAuthenticated() bool {
	token, ok := s.creds.Get(credstore.Access)
	return ok && token != ""
}

// Login authenticates with email and password.
func (s *Session[P]) Login(ctx context.Context, email, password string) transport.Outcome[Tokens] {
	in := LoginInput{Email: email, Password: password}
	if err := in.Validate(); err != nil {
		s.emit(Event{Kind: EventLoginFailed, Err: err})
		return transport.Failf[Tokens](MsgLoginFailed)
	}

	tokens, err := s.authenticate(ctx, s.endpoints.Login, in)
	if err != nil {
		s.emit(Event{Kind: EventLoginFailed, Err: err})
		return transport.Fail[Tokens](err, MsgLoginFailed)
	}
	s.emit(Event{Kind: EventLogin})
	return transport.Succeed(tokens)
}

// Register creates a business account and logs into it.
func (s *Session[P]) Register(ctx context.Context, in RegisterInput) transport.Outcome[Tokens] {
	if err := in.Validate(); err != nil {
		s.emit(Event{Kind: EventRegisterFailed, Err: err})
		return transport.Failf[Tokens](MsgRegistrationFailed)
	}

	tokens, err := s.authenticate(ctx, s.endpoints.Register, in)
	if err != nil {
		s.emit(Event{Kind: EventRegisterFailed, Err: err})
		return transport.Fail[Tokens](err, MsgRegistrationFailed)
	}
	s.emit(Event{Kind: EventRegister})
	return transport.Succeed(tokens)
}

// authenticate posts credentials, stores the returned tokens and loads the profile.
func (s *Session[P]) authenticate(ctx context.Context, path string, in any) (Tokens, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return Tokens{}, fmt.Errorf("encoding credentials: %w", err)
	}

	var tokens Tokens
	err = s.api.DoJSON(ctx, &transport.Request{
		Method:      http.MethodPost,
		Path:        path,
		Body:        body,
		ContentType: "application/json",
		Anonymous:   true,
	}, &tokens)
	if err != nil {
		return Tokens{}, err
	}
	if tokens.AccessToken == "" {
		return Tokens{}, errors.New("response missing access_token")
	}

	s.creds.Set(credstore.Access, tokens.AccessToken)
	if tokens.RefreshToken != "" {
		s.creds.Set(credstore.Refresh, tokens.RefreshToken)
	} else {
		s.creds.Clear(credstore.Refresh)
	}

	s.FetchProfile(ctx)
	return tokens, nil
}

// FetchProfile loads the principal's profile. Failures are reported through the hook
// and leave the current profile untouched.
func (s *Session[P]) FetchProfile(ctx context.Context) {
	var p P
	if err := s.api.GetJSON(ctx, s.endpoints.Profile, nil, &p); err != nil {
		s.emit(Event{Kind: EventProfileFailed, Err: err})
		return
	}

	s.mu.Lock()
	s.profile = &p
	s.mu.Unlock()
	s.emit(Event{Kind: EventProfileLoaded})
}

// Profile returns a copy of the loaded profile.
func (s *Session[P]) Profile() (*P, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil, false
	}
	p := *s.profile
	return &p, true
}

// SetProfile replaces the loaded profile, e.g. after the user edited it.
func (s *Session[P]) SetProfile(p P) {
	s.mu.Lock()
	s.profile = &p
	s.mu.Unlock()
}

// Logout clears the profile and both tokens. It does not navigate.
func (s *Session[P]) Logout() {
	s.clearProfile()
	credstore.ClearAll(s.creds)
	s.emit(Event{Kind: EventLogout})
}

// invalidated runs after the transport ended the session on a failed refresh.
func (s *Session[P]) invalidated() {
	s.clearProfile()
	s.emit(Event{Kind: EventSessionInvalidated})
}

func (s *Session[P]) clearProfile() {
	s.mu.Lock()
	s.profile = nil
	s.mu.Unlock()
}

// Claims decodes the stored access token without verifying its signature. It reports
// false when there is no token or the token is not a JWT.
func (s *Session[P]) Claims() (Claims, bool) {
	token, ok := s.creds.Get(credstore.Access)
	if !ok || token == "" {
		return Claims{}, false
	}

	var rc jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &rc); err != nil {
		return Claims{}, false
	}

	c := Claims{Subject: rc.Subject}
	if rc.ExpiresAt != nil {
		c.ExpiresAt = rc.ExpiresAt.Time
	}
	return c, true
}

func (s *Session[P]) emit(ev Event) {
	s.hook(ev)
}

func (s *Session[P]) logEvent(ev Event) {
	switch {
	case ev.Kind == EventProfileFailed:
		s.logger.Warn("failed to fetch profile", "error", ev.Err)
	case ev.Err != nil:
		s.logger.Info("session event", "event", string(ev.Kind), "error", ev.Err)
	case ev.Kind == EventSessionInvalidated:
		s.logger.Warn("session invalidated")
	default:
		s.logger.Info("session event", "event", string(ev.Kind))
	}
}
