// Package session holds the signed-in account and UI preferences. Both are
// explicit values handed to the components that need them.
package session

import (
	"errors"
	"sync"
	"time"

	"taskdesk/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

const (
	authKey  = "auth"
	themeKey = "theme"
)

// ErrNotLoggedIn is returned when an operation needs a session and there is none.
var ErrNotLoggedIn = errors.New("not logged in")

type authState struct {
	Token     string         `json:"token"`
	Account   models.Account `json:"account"`
	ExpiresAt time.Time      `json:"expiresAt,omitempty"`
}

// Store is the credential container. It implements taskstore.TokenSource.
type Store struct {
	persist Persister
	now     func() time.Time

	mu    sync.RWMutex
	state authState
}

// NewStore returns an empty store backed by p. Call Init to restore a saved session.
func NewStore(p Persister) *Store {
	return &Store{persist: p, now: time.Now}
}

// Init loads the persisted session. An expired one is discarded.
func (s *Store) Init() error {
	var st authState
	found, err := s.persist.Load(authKey, &st)
	if err != nil {
		return err
	}
	if !found {
		return nil
	}

	s.mu.Lock()
	s.state = st
	expired := s.expiredLocked()
	s.mu.Unlock()

	if expired {
		return s.Logout()
	}
	return nil
}

// Close releases nothing today; it exists so callers pair it with Init.
func (s *Store) Close() error { return nil }

// Login records a fresh authentication and persists it.
func (s *Store) Login(resp models.AuthResponse) error {
	st := authState{Token: resp.Token, Account: resp.Account, ExpiresAt: tokenExpiry(resp.Token)}

	s.mu.Lock()
	s.state = st
	s.mu.Unlock()

	return s.persist.Save(authKey, st)
}

// Logout forgets the session.
func (s *Store) Logout() error {
	s.mu.Lock()
	s.state = authState{}
	s.mu.Unlock()
	return s.persist.Delete(authKey)
}

func (s *Store) expiredLocked() bool {
	return !s.state.ExpiresAt.IsZero() && !s.now().Before(s.state.ExpiresAt)
}

// Authenticated reports whether a token is held and not expired.
func (s *Store) Authenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token != "" && !s.expiredLocked()
}

// Token returns the bearer token, or "" when not authenticated.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.expiredLocked() {
		return ""
	}
	return s.state.Token
}

// Account returns the signed-in account.
func (s *Store) Account() (models.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.Token == "" || s.expiredLocked() {
		return models.Account{}, ErrNotLoggedIn
	}
	return s.state.Account, nil
}

// ExpiresAt returns the token expiry; zero when unknown.
func (s *Store) ExpiresAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.ExpiresAt
}

// tokenExpiry reads exp from the token without verifying the signature; the
// server does the verifying.
func tokenExpiry(token string) time.Time {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// Theme is the persisted dark mode preference.
type Theme struct {
	persist Persister

	mu   sync.RWMutex
	dark bool
}

type themeState struct {
	Dark bool `json:"dark"`
}

func NewTheme(p Persister) *Theme {
	return &Theme{persist: p}
}

func (t *Theme) Init() error {
	var st themeState
	if _, err := t.persist.Load(themeKey, &st); err != nil {
		return err
	}
	t.mu.Lock()
	t.dark = st.Dark
	t.mu.Unlock()
	return nil
}

func (t *Theme) Dark() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.dark
}

// SetDark changes and persists the preference.
func (t *Theme) SetDark(dark bool) error {
	t.mu.Lock()
	t.dark = dark
	t.mu.Unlock()
	return t.persist.Save(themeKey, themeState{Dark: dark})
}

// Toggle flips the preference and returns the new value.
func (t *Theme) Toggle() (bool, error) {
	t.mu.Lock()
	t.dark = !t.dark
	dark := t.dark
	t.mu.Unlock()
	return dark, t.persist.Save(themeKey, themeState{Dark: dark})
}
