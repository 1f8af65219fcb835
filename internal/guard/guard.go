// ABOUTME: Navigation guard deciding proceed or redirect for each route transition
// ABOUTME: Also turns session invalidation into a navigation to the login route

package guard

import "log/slog"

// Route is a navigation target.
type Route struct {
	Name         string
	Path         string
	RequiresAuth bool
}

// Authenticator reports the current authentication state.
type Authenticator interface {
	IsAuthenticated() bool
}

// Navigator performs a navigation.
type Navigator interface {
	Navigate(to Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(to Route)

// Navigate calls f(to).
func (f NavigatorFunc) Navigate(to Route) { f(to) }

// Action is the outcome of a check.
type Action int

const (
	Proceed Action = iota
	Redirect
)

func (a Action) String() string {
	switch a {
	case Proceed:
		return "proceed"
	case Redirect:
		return "redirect"
	default:
		return "unknown"
	}
}

// Redirect reasons.
const (
	ReasonLoginRequired   = "login required"
	ReasonAlreadyLoggedIn = "already logged in"
)

// Decision is the result of Check. Target is the route to land on: the requested one
// when proceeding.
type Decision struct {
	Action Action
	Target Route
	Reason string
}

// Guard checks navigations against Auth.
type Guard struct {
	Login  Route
	Home   Route
	Auth   Authenticator
	Logger *slog.Logger
}

// Check decides what happens when navigating to to.
func (g *Guard) Check(to Route) Decision {
	authenticated := g.Auth.IsAuthenticated()

	switch {
	case to.RequiresAuth && !authenticated:
		return Decision{Action: Redirect, Target: g.Login, Reason: ReasonLoginRequired}
	case g.isLogin(to) && authenticated:
		return Decision{Action: Redirect, Target: g.Home, Reason: ReasonAlreadyLoggedIn}
	default:
		return Decision{Action: Proceed, Target: to}
	}
}

// Navigate checks to and navigates n to wherever the decision lands.
func (g *Guard) Navigate(n Navigator, to Route) Decision {
	d := g.Check(to)
	if d.Action == Redirect {
		g.logger().Debug("navigation redirected", "from", to.Name, "to", d.Target.Name, "reason", d.Reason)
	}
	n.Navigate(d.Target)
	return d
}

// BindInvalidation returns a handler for transport session invalidation that sends n
// to the login route.
func (g *Guard) BindInvalidation(n Navigator) func() {
	return func() {
		g.logger().Info("session ended, returning to login")
		n.Navigate(g.Login)
	}
}

func (g *Guard) isLogin(to Route) bool {
	if g.Login.Name != "" && to.Name == g.Login.Name {
		return true
	}
	return g.Login.Path != "" && to.Path == g.Login.Path
}

func (g *Guard) logger() *slog.Logger {
	if g.Logger != nil {
		return g.Logger
	}
	return slog.Default()
}
