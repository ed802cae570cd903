// Package view holds the login and members screens driven by the CLI.
package view

import (
	"context"

	"github.com/trexis-racing/roster/internal/client/errs"
	"github.com/trexis-racing/roster/internal/client/model"
	"github.com/trexis-racing/roster/internal/client/nav"
	"github.com/trexis-racing/roster/internal/client/session"
	"github.com/trexis-racing/roster/pkg/log"
)

const MsgLoginFailed = "Login failed"

type Navigator interface {
	Navigate(view nav.View, params nav.Params) (bool, error)
}

// Session is what the login screen needs from the session service.
type Session interface {
	Login(ctx context.Context, username, password string, rememberMe bool) (*model.User, error)
	IsLoggedIn() bool
	IsRemembered() bool
	CurrentUser() *model.User
}

type LoginView struct {
	session Session
	nav     Navigator

	Username   string
	RememberMe bool
	msg        string
}

func NewLoginView(s Session, navigator Navigator) *LoginView {
	return &LoginView{session: s, nav: navigator}
}

// Open redirects a logged-in user to the members list and otherwise
// pre-fills the remembered username. It reports whether it redirected.
func (v *LoginView) Open() bool {
	if v.session.IsLoggedIn() {
		if ok, err := v.nav.Navigate(nav.ViewMembers, nil); err == nil && ok {
			return true
		}
	}
	if user := v.session.CurrentUser(); v.session.IsRemembered() && user != nil {
		v.Username = user.Username
		v.RememberMe = true
	}
	return false
}

func (v *LoginView) Submit(ctx context.Context, password string) error {
	v.msg = ""
	if v.Username == "" || password == "" {
		v.msg = session.MsgCredentialsRequired
		return errs.Validation("", v.msg)
	}

	if _, err := v.session.Login(ctx, v.Username, password, v.RememberMe); err != nil {
		log.Errorw("login error", "username", v.Username, "error", err)
		v.msg = errs.Message(err)
		if v.msg == "" {
			v.msg = MsgLoginFailed
		}
		return err
	}

	_, err := v.nav.Navigate(nav.ViewMembers, nil)
	return err
}

// Message is the last user-visible error.
func (v *LoginView) Message() string {
	return v.msg
}
