package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mcoot/gamerhub/internal/backend"
	"github.com/mcoot/gamerhub/internal/dependencies/clock"
	"github.com/mcoot/gamerhub/internal/model"
	"github.com/mcoot/gamerhub/internal/storage"
)

// State is the lifecycle state of a session
type State int

const (
	StateLoading State = iota
	StateLoggedOut
	StateLoggedIn
)

// Store holds the bearer token and resolved user of one client scope.
// It is the only writer of the persisted token.
type Store struct {
	storage storage.Storage
	scope   storage.Scope
	api     *backend.Client
	clock   clock.Clock
	logger  *slog.Logger

	mu         sync.RWMutex
	state      State
	token      string
	user       *model.User
	unverified bool
	onTeardown []func()
}

// New creates a session store for scope. api must not carry a token.
func New(store storage.Storage, scope storage.Scope, api *backend.Client, clk clock.Clock, logger *slog.Logger) *Store {
	return &Store{
		storage: store,
		scope:   scope,
		api:     api,
		clock:   clk,
		logger:  logger.With(slog.String("scope", string(scope))),
		state:   StateLoading,
	}
}

// Init restores the session from the persisted token. An expired or rejected
// token is cleared. When the API cannot be reached the session starts logged
// out but the token is kept for the next Init. Only storage failures are
// returned.
func (s *Store) Init(ctx context.Context) error {
	token, err := s.storage.GetToken(ctx, s.scope)
	if errors.Is(err, storage.ErrNotFound) {
		s.setLoggedOut()
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read token: %w", err)
	}

	if tokenExpired(token, s.clock.Now()) {
		s.logger.Info("persisted token expired")
		return s.Teardown(ctx)
	}

	user, err := s.api.WithToken(token).Me(ctx)
	if errors.Is(err, model.ErrUnauthorized) {
		s.logger.Info("persisted token rejected")
		return s.Teardown(ctx)
	}
	if err != nil {
		s.logger.Warn("failed to reconcile persisted token", slog.String("error", err.Error()))
		s.setLoggedOut()
		s.mu.Lock()
		s.unverified = true
		s.mu.Unlock()
		return nil
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.state = StateLoggedIn
	s.unverified = false
	s.mu.Unlock()
	return nil
}

// Unverified reports whether the last Init kept a persisted token it could
// not check against the API
func (s *Store) Unverified() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.unverified
}

// tokenExpired reports whether a JWT's exp claim is in the past. The signature
// is not checked; the API remains the judge of validity. Tokens that are not
// JWTs or carry no exp are treated as unexpired.
func tokenExpired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}

// Login authenticates with email and password and persists the token
func (s *Store) Login(ctx context.Context, email, password string) (*model.User, error) {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp)
}

// Register creates an account and logs into it
func (s *Store) Register(ctx context.Context, input model.RegisterInput) (*model.User, error) {
	resp, err := s.api.Register(ctx, input)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, resp)
}

func (s *Store) establish(ctx context.Context, resp *backend.AuthResponse) (*model.User, error) {
	if resp.Token == "" {
		return nil, fmt.Errorf("%w: no token in response", model.ErrUnauthorized)
	}
	user := resp.User
	if err := s.Adopt(ctx, resp.Token, user); err != nil {
		return nil, err
	}

	s.logger.Info("logged in", slog.String("user_id", user.ID.String()))
	return &user, nil
}

// Adopt takes over a token already checked by the API, persisting it under
// this store's scope
func (s *Store) Adopt(ctx context.Context, token string, user model.User) error {
	if err := s.storage.SaveToken(ctx, s.scope, token); err != nil {
		return fmt.Errorf("failed to persist token: %w", err)
	}

	s.mu.Lock()
	s.token = token
	s.user = &user
	s.state = StateLoggedIn
	s.unverified = false
	s.mu.Unlock()
	return nil
}

// Logout ends the session, clearing the token and the active profile
func (s *Store) Logout(ctx context.Context) error {
	return s.Teardown(ctx)
}

// OnTeardown registers fn to run whenever the session is torn down, so that
// stores holding per-session state can forget it
func (s *Store) OnTeardown(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onTeardown = append(s.onTeardown, fn)
}

// Teardown clears everything persisted for the scope and forgets the user
func (s *Store) Teardown(ctx context.Context) error {
	s.setLoggedOut()

	s.mu.RLock()
	hooks := append([]func(){}, s.onTeardown...)
	s.mu.RUnlock()
	for _, fn := range hooks {
		fn()
	}

	if err := s.storage.Clear(ctx, s.scope); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

func (s *Store) setLoggedOut() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
	s.user = nil
	s.state = StateLoggedOut
	s.unverified = false
}

// FetchCurrentUser refreshes the user from the API
func (s *Store) FetchCurrentUser(ctx context.Context) (*model.User, error) {
	if !s.Authenticated() {
		return nil, model.ErrNotAuthenticated
	}
	user, err := s.Client().Me(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}

// UpdateAccount changes the user's own name and/or password
func (s *Store) UpdateAccount(ctx context.Context, update model.AccountUpdate) (*model.User, error) {
	current := s.User()
	if current == nil {
		return nil, model.ErrNotAuthenticated
	}

	if update.Name == current.Name {
		update.Name = ""
	}
	if update.Empty() {
		return nil, model.ErrNoChanges
	}
	if update.NewPassword != "" && update.CurrentPassword == "" {
		return nil, model.ErrCurrentPassword
	}

	user, err := s.Client().UpdateAccount(ctx, update)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}

// Client returns the API client bound to the session token. A 401 on any
// call made through it tears the session down.
func (s *Store) Client() *backend.Client {
	return s.api.WithToken(s.Token()).WithUnauthorizedHook(s.onUnauthorized)
}

func (s *Store) onUnauthorized(ctx context.Context) {
	s.logger.Warn("token rejected by API, logging out")
	if err := s.Teardown(context.WithoutCancel(ctx)); err != nil {
		s.logger.Error("failed to tear down session", slog.String("error", err.Error()))
	}
}

// State returns the lifecycle state
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Authenticated reports whether a user is logged in
func (s *Store) Authenticated() bool {
	return s.State() == StateLoggedIn
}

// Token returns the bearer token, empty when logged out
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// User returns a copy of the logged in user, nil when logged out
func (s *Store) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// HasRole reports whether the logged in user has exactly role
func (s *Store) HasRole(role model.Role) bool {
	u := s.User()
	return u != nil && u.Role == role
}

// HasPermission reports whether the logged in user's role grants p
func (s *Store) HasPermission(p model.Permission) bool {
	u := s.User()
	return u != nil && u.Role.Can(p)
}
