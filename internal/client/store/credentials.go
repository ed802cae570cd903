package store

import (
	"errors"

	"github.com/bytedance/sonic"
	"github.com/trexis-racing/roster/internal/client/model"
	"github.com/trexis-racing/roster/pkg/log"
)

const (
	KeyCurrentUser = "currentUser"
	KeyToken       = "token"
	KeyRememberMe  = "rememberMe"

	rememberedValue = "true"
)

// Strategy selects which scope a login is written to.
type Strategy int

const (
	// Persistent survives restarts and sets the remember flag.
	Persistent Strategy = iota
	// Ephemeral lasts for the session only.
	Ephemeral
)

func (s Strategy) String() string {
	if s == Persistent {
		return "persistent"
	}
	return "ephemeral"
}

// Stored is the raw credential pair read from one scope. User is still
// serialized so a corrupt payload can be told apart from a missing one.
type Stored struct {
	User  string
	Token string
}

// CredentialStore is the only owner of the two physical scopes.
type CredentialStore struct {
	durable Scope
	session Scope
}

func NewCredentialStore(durable, session Scope) *CredentialStore {
	return &CredentialStore{durable: durable, session: session}
}

func (s *CredentialStore) scope(st Strategy) Scope {
	if st == Persistent {
		return s.durable
	}
	return s.session
}

// Save writes user and token to the strategy's scope. Persistent also sets the remember flag.
func (s *CredentialStore) Save(st Strategy, user model.User, token string) error {
	raw, err := sonic.MarshalString(user)
	if err != nil {
		return err
	}
	scope := s.scope(st)
	if err := scope.Set(KeyCurrentUser, raw); err != nil {
		return err
	}
	if err := scope.Set(KeyToken, token); err != nil {
		return err
	}
	if st == Persistent {
		return scope.Set(KeyRememberMe, rememberedValue)
	}
	return nil
}

// Load returns the pair stored in one scope; ok is false unless both are present.
func (s *CredentialStore) Load(st Strategy) (Stored, bool) {
	scope := s.scope(st)
	user, userOk, err := scope.Get(KeyCurrentUser)
	if err != nil {
		log.Warnw("read stored user failed", "scope", st.String(), "error", err)
		return Stored{}, false
	}
	token, tokenOk, err := scope.Get(KeyToken)
	if err != nil {
		log.Warnw("read stored token failed", "scope", st.String(), "error", err)
		return Stored{}, false
	}
	if !userOk || !tokenOk || user == "" || token == "" {
		return Stored{}, false
	}
	return Stored{User: user, Token: token}, true
}

// Clear removes user, token and, for the durable scope, the remember flag.
func (s *CredentialStore) Clear(st Strategy) error {
	keys := []string{KeyCurrentUser, KeyToken}
	if st == Persistent {
		keys = append(keys, KeyRememberMe)
	}
	return s.scope(st).Remove(keys...)
}

// ClearAll wipes both scopes and reports every failure.
func (s *CredentialStore) ClearAll() error {
	return errors.Join(s.Clear(Persistent), s.Clear(Ephemeral))
}

// Token prefers the durable token over the session one.
func (s *CredentialStore) Token() (string, bool) {
	for _, st := range []Strategy{Persistent, Ephemeral} {
		token, ok, err := s.scope(st).Get(KeyToken)
		if err != nil {
			log.Warnw("read stored token failed", "scope", st.String(), "error", err)
			continue
		}
		if ok && token != "" {
			return token, true
		}
	}
	return "", false
}

// Remembered reflects only the durable remember flag.
func (s *CredentialStore) Remembered() bool {
	v, ok, err := s.durable.Get(KeyRememberMe)
	if err != nil {
		log.Warnw("read remember flag failed", "error", err)
		return false
	}
	return ok && v == rememberedValue
}

// DecodeUser parses a stored user payload.
func DecodeUser(raw string) (model.User, error) {
	var user model.User
	if err := sonic.UnmarshalString(raw, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}
