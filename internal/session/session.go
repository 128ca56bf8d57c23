// Package session holds the authenticated state of an API consumer: the
// bearer token, the current user and the page access rules derived from them.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"floreria/internal/admin"
	"floreria/internal/apierror"
	"floreria/internal/dto"
)

// Authenticator is the subset of the auth client a session needs.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*dto.TokenResponse, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*dto.UserResponse, error)
}

var ErrNotAuthenticated = errors.New("session: not authenticated")

type Session struct {
	store CredentialStore
	auth  Authenticator
	now   func() time.Time

	mu    sync.RWMutex
	creds *Credentials
}

// Open restores persisted credentials, if any. A broken store is logged and
// treated as logged out.
func Open(ctx context.Context, store CredentialStore, auth Authenticator) *Session {
	s := &Session{store: store, auth: auth, now: time.Now}
	creds, err := store.Get(ctx)
	switch {
	case err == nil:
		s.creds = creds
	case errors.Is(err, ErrNoCredentials):
	default:
		log.Warn().Err(err).Msg("session: no se pudieron leer credenciales guardadas")
	}
	return s
}

// Token implements client.TokenSource.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return ""
	}
	return s.creds.AccessToken
}

func (s *Session) User() (dto.UserResponse, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.creds == nil {
		return dto.UserResponse{}, false
	}
	return s.creds.User, true
}

func (s *Session) IsAuthenticated() bool { return s.Token() != "" }

func (s *Session) IsAdmin() bool {
	u, ok := s.User()
	return ok && u.IsAdmin()
}

func (s *Session) Login(ctx context.Context, username, password string) (*dto.UserResponse, error) {
	tok, err := s.auth.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, tok); err != nil {
		return nil, err
	}
	return &tok.User, nil
}

// Register validates locally, then signs the new user in with the token the
// backend returns.
func (s *Session) Register(ctx context.Context, req dto.RegisterRequest, confirm string) (*dto.UserResponse, error) {
	if errs := admin.ValidateRegistration(req, confirm); errs != nil {
		return nil, errs
	}
	tok, err := s.auth.Register(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.save(ctx, tok); err != nil {
		return nil, err
	}
	return &tok.User, nil
}

// Logout revokes the token server-side when possible and always clears the
// local state.
func (s *Session) Logout(ctx context.Context) error {
	if s.IsAuthenticated() {
		if err := s.auth.Logout(ctx); err != nil {
			log.Warn().Err(err).Msg("session: logout remoto fallido")
		}
	}
	return s.Expire(ctx)
}

// Expire drops the credentials without calling the backend; it is the
// handler for a 401 on an authenticated request.
func (s *Session) Expire(ctx context.Context) error {
	s.mu.Lock()
	s.creds = nil
	s.mu.Unlock()
	return s.store.Clear(ctx)
}

// SetToken installs a token obtained elsewhere and loads its user from /auth/me.
func (s *Session) SetToken(ctx context.Context, token string) (*dto.UserResponse, error) {
	if token == "" {
		return nil, apierror.FieldErrors{"token": "El token es requerido"}
	}
	s.mu.Lock()
	prev := s.creds
	s.creds = &Credentials{AccessToken: token}
	s.mu.Unlock()

	user, err := s.auth.Me(ctx)
	if err != nil {
		s.mu.Lock()
		s.creds = prev
		s.mu.Unlock()
		return nil, err
	}
	if err := s.save(ctx, &dto.TokenResponse{AccessToken: token, User: *user}); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *Session) save(ctx context.Context, tok *dto.TokenResponse) error {
	creds := Credentials{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		User:         tok.User,
		SavedAt:      s.now().UTC(),
	}
	s.mu.Lock()
	s.creds = &creds
	s.mu.Unlock()
	return s.store.Set(ctx, creds)
}
