// Package service holds the proxy's login logic.
package service

import (
	"context"
	"errors"

	"github.com/trexis-racing/roster/internal/proxy/upstream"
	"github.com/trexis-racing/roster/pkg/http"
	"github.com/trexis-racing/roster/pkg/http/jwt"
	"github.com/trexis-racing/roster/pkg/log"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidUsername = errors.New("invalid username")
	ErrInvalidPassword = errors.New("invalid password")
	ErrFetchUsers      = errors.New("error fetching users")
)

type UserSource interface {
	Users(ctx context.Context) ([]upstream.User, error)
}

// PublicUser is the user shape returned to clients, never the hash.
type PublicUser struct {
	Id       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

type LoginResult struct {
	Token string     `json:"token"`
	User  PublicUser `json:"user"`
}

type LoginService struct {
	users UserSource
	auth  http.Auth
}

func NewLoginService(users UserSource, auth http.Auth) *LoginService {
	return &LoginService{users: users, auth: auth}
}

func (s *LoginService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	users, err := s.users.Users(ctx)
	if err != nil {
		log.Errorw("fetch users failed", "username", username, "error", err)
		return nil, errors.Join(ErrFetchUsers, err)
	}

	var user *upstream.User
	for i := range users {
		if users[i].Username == username {
			user = &users[i]
			break
		}
	}
	if user == nil {
		log.Infow("login with unknown username", "username", username)
		return nil, ErrInvalidUsername
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		log.Infow("login with wrong password", "username", username)
		return nil, ErrInvalidPassword
	}

	token, err := jwt.GenToken(user.Id, user.Username, s.auth)
	if err != nil {
		return nil, err
	}
	return &LoginResult{
		Token: token,
		User:  PublicUser{Id: user.Id, Username: user.Username, Email: user.Email},
	}, nil
}
