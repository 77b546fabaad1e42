package client

// Route guard: a pure decision function mapping session state and the
// current route to exactly one rendering outcome. It holds no state
// and is re-evaluated on every navigation and session change.

// Well-known routes. LoginRoute is the only public route; everything
// else is protected.
const (
	LoginRoute = "/login"
	HomeRoute  = "/dashboard"
)

// GuardAction is the outcome of a guard decision.
type GuardAction int

const (
	// ActionShowLoading renders a neutral loading view; the session is
	// still restoring and no content decision can be made yet.
	ActionShowLoading GuardAction = iota
	// ActionRedirect navigates to Decision.Target and renders nothing,
	// avoiding a flash of content the user must not see.
	ActionRedirect
	// ActionRender shows the requested route.
	ActionRender
)

// Decision pairs an action with its redirect target.
type Decision struct {
	Action GuardAction
	Target string
}

// GuardState is the session input to Decide.
type GuardState struct {
	Loading       bool
	Authenticated bool
}

// IsPublicRoute reports whether the route needs no authentication.
func IsPublicRoute(route string) bool {
	return route == LoginRoute
}

// Decide resolves the guard matrix. Loading always wins; an
// unauthenticated user never sees a protected route; an authenticated
// user never sees the login route.
func Decide(state GuardState, route string) Decision {
	if state.Loading {
		return Decision{Action: ActionShowLoading}
	}

	public := IsPublicRoute(route)
	switch {
	case !state.Authenticated && !public:
		return Decision{Action: ActionRedirect, Target: LoginRoute}
	case state.Authenticated && public:
		return Decision{Action: ActionRedirect, Target: HomeRoute}
	default:
		return Decision{Action: ActionRender}
	}
}

// DecideFor is a convenience that reads the guard inputs from a
// session snapshot.
func DecideFor(snap Snapshot, route string) Decision {
	return Decide(GuardState{Loading: snap.Loading(), Authenticated: snap.IsAuthenticated()}, route)
}
