package session

import "strings"

const (
	RouteLogin     = "/"
	RouteSignup    = "/signup"
	RouteDashboard = "/dashboard"
)

// Decision is the outcome of Guard. Pending means the session is still being
// restored and nothing should render or redirect yet.
type Decision struct {
	Allowed  bool
	Redirect string
	Pending  bool
}

func isDashboardRoute(route string) bool {
	return route == RouteDashboard || strings.HasPrefix(route, RouteDashboard+"/")
}

// Guard decides whether route may be shown for s.
func Guard(s State, route string) Decision {
	switch {
	case isDashboardRoute(route):
		if s.IsAuthenticated() {
			return Decision{Allowed: true}
		}
		if s.Restoring {
			return Decision{Pending: true}
		}
		return Decision{Redirect: RouteLogin}
	case route == RouteLogin || route == RouteSignup:
		if s.IsAuthenticated() {
			return Decision{Redirect: RouteDashboard}
		}
		return Decision{Allowed: true}
	default:
		return Decision{Redirect: RouteLogin}
	}
}
