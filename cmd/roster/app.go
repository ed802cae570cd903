package main

import (
	"errors"

	"github.com/go-resty/resty/v2"
	"github.com/trexis-racing/roster/internal/client/api"
	"github.com/trexis-racing/roster/internal/client/conf"
	"github.com/trexis-racing/roster/internal/client/member"
	"github.com/trexis-racing/roster/internal/client/nav"
	"github.com/trexis-racing/roster/internal/client/session"
	"github.com/trexis-racing/roster/internal/client/store"
	"github.com/trexis-racing/roster/pkg/log"
)

var errLoginRequired = errors.New("not logged in, run `roster login` first")

// app is the wired client core shared by every command.
type app struct {
	session *session.Service
	router  *nav.Router
	members *member.Client

	cleanup func()
}

func (a *app) open(c conf.Conf) error {
	if err := log.Init(c.LogConf()); err != nil {
		return err
	}

	credentials, cleanup, err := c.OpenCredentialStore()
	if err != nil {
		return err
	}
	a.wire(credentials, api.NewClient(c.API, c.Timeout))
	a.cleanup = cleanup
	return nil
}

func (a *app) wire(credentials *store.CredentialStore, client *resty.Client) {
	a.session = session.NewService(credentials, session.NewAPIAuthenticator(client))
	a.router = nav.NewDefaultRouter(nav.NewAuthGuard(a.session))
	a.members = member.NewClient(client, a.session, member.WithOnUnauthorized(a.session.Logout))

	a.router.Subscribe(func(l nav.Location) {
		log.Debugw("view changed", "view", l.View, "params", l.Params)
	})
}

func (a *app) close() {
	if a.cleanup != nil {
		a.cleanup()
	}
	log.Sync()
}

// enter navigates to a guarded view and reports errLoginRequired when the
// guard sends the user back to login.
func (a *app) enter(view nav.View, params nav.Params) error {
	ok, err := a.router.Navigate(view, params)
	if err != nil {
		return err
	}
	if !ok {
		return errLoginRequired
	}
	return nil
}
