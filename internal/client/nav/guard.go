package nav

// LoginChecker is the part of the session the guard consults.
type LoginChecker interface {
	IsLoggedIn() bool
}

// AuthGuard lets navigation through only while a user and token are both
// present, otherwise it redirects to the login view.
type AuthGuard struct {
	session LoginChecker
}

func NewAuthGuard(session LoginChecker) *AuthGuard {
	return &AuthGuard{session: session}
}

func (g *AuthGuard) CanActivate(r *Router, _ Location) bool {
	if g.session.IsLoggedIn() {
		return true
	}
	r.Redirect(ViewLogin)
	return false
}
