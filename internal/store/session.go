package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/sirupsen/logrus"

	"github.com/kiosk-news/kiosk/internal/entities"
	"github.com/kiosk-news/kiosk/internal/newsapi"
	"github.com/kiosk-news/kiosk/internal/storage"
	"github.com/kiosk-news/kiosk/internal/toast"
)

var log = logrus.WithField("layer", "store")

// Session holds the authenticated identity and bearer token and persists them
// across restarts.
type Session struct {
	api newsapi.Client
	s   storage.Storage
	t   toast.Toaster

	mu    sync.Mutex
	token string
	user  *entities.User
}

// NewSession creates new instance of Session.
func NewSession(api newsapi.Client, s storage.Storage, t toast.Toaster) *Session {
	return &Session{
		api: api,
		s:   s,
		t:   t,
	}
}

// Register creates an account and establishes a session.
// On failure no session is established.
func (s *Session) Register(ctx context.Context, name, email, password string) (*entities.User, error) {
	resp, err := s.api.Register(ctx, name, email, password)
	if err != nil {
		s.t.Error(fmt.Sprintf("Registration failed: %s", err))
		return nil, fmt.Errorf("failed to register: %w", err)
	}

	s.establish(ctx, resp.Token, resp.User)
	s.t.Success("Registration successful!")

	return resp.User, nil
}

// Login establishes a session. On failure the current session is unchanged.
func (s *Session) Login(ctx context.Context, email, password string) error {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.t.Error(fmt.Sprintf("Login failed: %s", err))
		return fmt.Errorf("failed to login: %w", err)
	}

	s.establish(ctx, resp.Token, resp.User)
	s.t.Success("Login successful!")

	return nil
}

// Logout unconditionally drops the session from memory and local storage.
func (s *Session) Logout(ctx context.Context) {
	if err := s.s.Delete(ctx, storage.TokenKey, storage.UserKey); err != nil {
		log.WithError(err).Error("failed to purge persisted session")
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	s.t.Info("Logged out successfully!")
}

// Restore loads the persisted session and revalidates it against the backend.
// Invoked once at startup. A session rejected by the backend is dropped, a
// session which could not be revalidated because of a transport failure is
// kept.
func (s *Session) Restore(ctx context.Context) error {
	token, user, err := s.load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		return err
	}

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	fresh, err := s.api.Me(ctx, token)
	if err != nil {
		var serverErr *newsapi.Error
		if errors.As(err, &serverErr) {
			s.Logout(ctx)
			s.t.Error("Session expired, please log in again.")
			return fmt.Errorf("session rejected by backend: %w", err)
		}

		// offline, keep the stale session
		log.WithError(err).Warn("failed to revalidate session")
		return nil
	}

	s.establish(ctx, token, fresh)

	return nil
}

// Token returns the bearer token of the established session.
func (s *Session) Token() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.token == "" {
		return "", ErrUnauthorized
	}

	if tokenExpired(s.token) {
		return "", ErrTokenExpired
	}

	return s.token, nil
}

// User returns the authenticated user, nil when there is no session.
func (s *Session) User() *entities.User {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == nil {
		return nil
	}

	u := *s.user
	return &u
}

func (s *Session) establish(ctx context.Context, token string, user *entities.User) {
	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	if err := s.s.Set(ctx, storage.TokenKey, []byte(token)); err != nil {
		log.WithError(err).Error("failed to persist token")
		return
	}

	b, err := json.Marshal(user)
	if err != nil {
		log.WithError(err).Error("failed to marshal user")
		return
	}

	if err := s.s.Set(ctx, storage.UserKey, b); err != nil {
		log.WithError(err).Error("failed to persist user")
	}
}

func (s *Session) load(ctx context.Context) (string, *entities.User, error) {
	token, err := s.s.Get(ctx, storage.TokenKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load token: %w", err)
	}

	b, err := s.s.Get(ctx, storage.UserKey)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}

	var user entities.User
	if err := json.Unmarshal(b, &user); err != nil {
		return "", nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}

	return string(token), &user, nil
}

// tokenExpired reports whether token is a well-formed JWT whose exp claim has
// passed. Opaque tokens are left for the backend to judge.
func tokenExpired(token string) bool {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}

	return claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now())
}
