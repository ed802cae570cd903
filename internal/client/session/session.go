// Package session owns login state: token issuance, credential persistence
// across the durable and session scopes, and the current-user stream.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/trexis-racing/roster/internal/client/errs"
	"github.com/trexis-racing/roster/internal/client/model"
	"github.com/trexis-racing/roster/internal/client/store"
	"github.com/trexis-racing/roster/pkg/event"
	"github.com/trexis-racing/roster/pkg/log"
)

const MsgCredentialsRequired = "Username and password are required"

// Authenticator exchanges credentials for a user and bearer token.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*model.LoginResponse, error)
}

type Service struct {
	mu      sync.Mutex
	store   *store.CredentialStore
	auth    Authenticator
	current *event.Subject[*model.User]
}

// NewService restores any stored session before returning.
func NewService(credentials *store.CredentialStore, auth Authenticator) *Service {
	s := &Service{
		store:   credentials,
		auth:    auth,
		current: event.NewSubject[*model.User](nil),
	}
	s.restore()
	return s
}

// restore reads the durable pair first, then the session pair.
// A corrupt user payload is handled as a logout.
func (s *Service) restore() {
	stored, ok := s.store.Load(store.Persistent)
	if !ok {
		stored, ok = s.store.Load(store.Ephemeral)
	}
	if !ok {
		return
	}

	user, err := store.DecodeUser(stored.User)
	if err != nil || (user.Id <= 0 && user.Username == "") {
		log.Errorw("error parsing stored user data", "error", err)
		s.Logout()
		return
	}
	s.current.Next(&user)
}

func (s *Service) Login(ctx context.Context, username, password string, rememberMe bool) (*model.User, error) {
	if username == "" || password == "" {
		return nil, errs.Validation("", MsgCredentialsRequired)
	}

	resp, err := s.auth.Login(ctx, username, password)
	if err != nil {
		log.Warnw("login failed", "username", username, "error", err)
		return nil, err
	}

	if err := s.save(resp, rememberMe); err != nil {
		log.Errorw("persist session failed", "username", username, "remember", rememberMe, "error", err)
		s.current.Next(nil)
		return nil, fmt.Errorf("persist session: %w", err)
	}

	// Subscribers may call Logout, so the user is published after s.mu is released.
	user := resp.User
	s.current.Next(&user)
	log.Infow("logged in", "username", user.Username, "remember", rememberMe)
	return &user, nil
}

// save persists the pair under s.mu and clears both scopes if that fails.
func (s *Service) save(resp *model.LoginResponse, rememberMe bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.persist(resp, rememberMe)
	if err != nil {
		if clearErr := s.store.ClearAll(); clearErr != nil {
			log.Errorw("clear partial session failed", "error", clearErr)
		}
	}
	return err
}

// persist writes the pair to the chosen scope and purges the other one, so an
// opt-out never leaves a previously remembered session behind.
func (s *Service) persist(resp *model.LoginResponse, rememberMe bool) error {
	if rememberMe {
		if err := s.store.Save(store.Persistent, resp.User, resp.Token); err != nil {
			return err
		}
		return s.store.Clear(store.Ephemeral)
	}
	if err := s.store.Save(store.Ephemeral, resp.User, resp.Token); err != nil {
		return err
	}
	return s.store.Clear(store.Persistent)
}

// Logout clears both scopes and publishes an absent user. Safe to repeat.
func (s *Service) Logout() {
	s.mu.Lock()
	err := s.store.ClearAll()
	s.mu.Unlock()

	if err != nil {
		log.Errorw("clear stored session failed", "error", err)
	}
	s.current.Next(nil)
}

// Token returns the durable token if present, else the session one.
func (s *Service) Token() (string, bool) {
	return s.store.Token()
}

func (s *Service) CurrentUser() *model.User {
	return s.current.Value()
}

func (s *Service) IsLoggedIn() bool {
	if s.current.Value() == nil {
		return false
	}
	_, ok := s.Token()
	return ok
}

func (s *Service) IsRemembered() bool {
	return s.store.Remembered()
}

// Subscribe replays the current user and then every change.
func (s *Service) Subscribe(h event.Handler[*model.User]) (unsubscribe func()) {
	return s.current.Subscribe(h)
}
