package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/everbite/storefront/api"
	"github.com/everbite/storefront/kv"
	"github.com/everbite/storefront/model"
)

// kv keys for the persisted session pair. Both must be present together or
// absent together; a partial pair is discarded on restore.
const (
	keyUser  = "user"
	keyToken = "token"
)

var (
	// ErrPasswordMismatch means the password confirmation did not match; no
	// network call was made.
	ErrPasswordMismatch = errors.New("passwords do not match")
	// ErrMissingFields means required signup fields were empty; no network
	// call was made.
	ErrMissingFields = errors.New("missing required fields")
)

// AuthAPI is the slice of the backend client the session needs. The token
// methods update the client's process-wide default bearer header, so a token
// set here rides on every subsequent API call.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (model.User, string, error)
	Register(ctx context.Context, r api.Registration) error
	SetToken(tok string)
	ClearToken()
}

// Registration carries the signup form, including the client-side
// confirmation field that never leaves the process.
type Registration struct {
	FirstName       string
	LastName        string
	Email           string
	Phone           string
	Address         string
	Password        string
	ConfirmPassword string
}

// Session is the single source of truth for who is logged in. The identity
// and its bearer token change together, atomically: there is no state where
// one is set and the other is not, in memory or in the persisted store.
type Session struct {
	store kv.Store
	auth  AuthAPI
	ttl   time.Duration

	mu    sync.RWMutex
	user  *model.User
	token string
}

// NewSession creates an anonymous session backed by store. Call Restore to
// pick up a persisted identity.
func NewSession(store kv.Store, auth AuthAPI, ttl time.Duration) *Session {
	return &Session{store: store, auth: auth, ttl: ttl}
}

// Restore loads the persisted user/token pair. A pair with exactly one half
// present is invalid and is deleted rather than restored. Restore never
// fails the caller for malformed persisted data; it just comes back anonymous.
func (s *Session) Restore(ctx context.Context) error {
	rawUser, err := s.store.Get(ctx, keyUser)
	if err != nil {
		return fmt.Errorf("session: restore user: %w", err)
	}
	token, err := s.store.Get(ctx, keyToken)
	if err != nil {
		return fmt.Errorf("session: restore token: %w", err)
	}

	if rawUser == "" || token == "" {
		if rawUser != "" || token != "" {
			// partial pair must not survive a reload
			_ = s.store.Delete(ctx, keyUser, keyToken)
		}
		return nil
	}

	var u model.User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
		_ = s.store.Delete(ctx, keyUser, keyToken)
		return nil
	}

	s.mu.Lock()
	s.user = &u
	s.token = token
	s.mu.Unlock()
	s.auth.SetToken(token)
	return nil
}

// Login authenticates against the backend. On success the identity and token
// are set together, persisted together, and the token becomes the default
// bearer header. On failure the error is returned untouched and prior state,
// in memory and persisted, is unchanged.
func (s *Session) Login(ctx context.Context, email, password string) error {
	u, token, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return err
	}

	raw, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("session: encode user: %w", err)
	}
	if err := s.store.Set(ctx, keyUser, string(raw), s.ttl); err != nil {
		return fmt.Errorf("session: persist user: %w", err)
	}
	if err := s.store.Set(ctx, keyToken, token, s.ttl); err != nil {
		// do not leave a half-written pair behind
		_ = s.store.Delete(ctx, keyUser, keyToken)
		return fmt.Errorf("session: persist token: %w", err)
	}

	s.mu.Lock()
	s.user = &u
	s.token = token
	s.mu.Unlock()
	s.auth.SetToken(token)
	return nil
}

// Register validates the signup form and creates the account. Validation
// failures short-circuit before any network call. A successful registration
// does not authenticate the caller; a Login must follow.
func (s *Session) Register(ctx context.Context, r Registration) error {
	for _, f := range []string{r.FirstName, r.LastName, r.Email, r.Phone, r.Address, r.Password} {
		if strings.TrimSpace(f) == "" {
			return ErrMissingFields
		}
	}
	if r.Password != r.ConfirmPassword {
		return ErrPasswordMismatch
	}
	return s.auth.Register(ctx, api.Registration{
		FirstName: r.FirstName,
		LastName:  r.LastName,
		Email:     r.Email,
		Phone:     r.Phone,
		Address:   r.Address,
		Password:  r.Password,
	})
}

// Logout clears identity and token together and removes the default bearer
// header. Logging out while anonymous is a no-op, not an error.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
	s.auth.ClearToken()

	if err := s.store.Delete(ctx, keyUser, keyToken); err != nil {
		return fmt.Errorf("session: clear persisted session: %w", err)
	}
	return nil
}

// IsAuthenticated is derived from the identity, never stored independently
// of it.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user != nil
}

// User returns a copy of the current identity, or nil when anonymous.
func (s *Session) User() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// Email returns the session's email, or "" when anonymous.
func (s *Session) Email() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return ""
	}
	return s.user.Email
}
