// Package nav models the client's view navigation and route protection.
package nav

import (
	"fmt"
	"strconv"

	"github.com/trexis-racing/roster/pkg/event"
	"github.com/trexis-racing/roster/pkg/log"
)

/**
 * @file: router.go
 * @description: route table, current location and guarded navigation
 */

type View string

const (
	ViewLogin         View = "login"
	ViewMembers       View = "members"
	ViewMemberDetails View = "member-details"
)

const ParamId = "id"

type Params map[string]string

// Location is where the router currently points.
type Location struct {
	View   View
	Params Params
}

// Id returns the positive integer id parameter, if any.
func (l Location) Id() (int, bool) {
	raw, ok := l.Params[ParamId]
	if !ok {
		return 0, false
	}
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// Guard decides whether navigation into a route may proceed.
// A guard that denies is responsible for any redirect.
type Guard interface {
	CanActivate(r *Router, to Location) bool
}

type Route struct {
	View   View
	Guards []Guard
}

type Router struct {
	routes   map[View]Route
	location *event.Subject[Location]
}

func NewRouter(routes ...Route) *Router {
	r := &Router{
		routes:   make(map[View]Route, len(routes)),
		location: event.NewSubject(Location{View: ViewLogin}),
	}
	for _, route := range routes {
		r.routes[route.View] = route
	}
	return r
}

// NewDefaultRouter registers the client's three views with members and
// member-details protected by guard.
func NewDefaultRouter(guard Guard) *Router {
	return NewRouter(
		Route{View: ViewLogin},
		Route{View: ViewMembers, Guards: []Guard{guard}},
		Route{View: ViewMemberDetails, Guards: []Guard{guard}},
	)
}

// Navigate moves to view after every guard on the route allows it.
func (r *Router) Navigate(view View, params Params) (bool, error) {
	route, ok := r.routes[view]
	if !ok {
		return false, fmt.Errorf("unknown view %q", view)
	}
	to := Location{View: view, Params: params}
	for _, g := range route.Guards {
		if !g.CanActivate(r, to) {
			log.Debugw("navigation denied", "view", string(view))
			return false, nil
		}
	}
	r.location.Next(to)
	return true, nil
}

// Redirect replaces the current location without running guards.
func (r *Router) Redirect(view View) {
	r.location.Next(Location{View: view})
}

func (r *Router) Current() Location {
	return r.location.Value()
}

// Subscribe replays the current location and every later change.
func (r *Router) Subscribe(h event.Handler[Location]) (unsubscribe func()) {
	return r.location.Subscribe(h)
}
