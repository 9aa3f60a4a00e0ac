package guard

import (
	"slices"

	"github.com/mcoot/gamerhub/internal/model"
)

// State is where a client stands with respect to a route
type State int

const (
	StateLoading State = iota
	StateUnauthenticated
	StateNeedsProfile
	StateProfileSelected
	StateAuthorized
	StateDenied
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateUnauthenticated:
		return "unauthenticated"
	case StateNeedsProfile:
		return "needs-profile"
	case StateProfileSelected:
		return "profile-selected"
	case StateAuthorized:
		return "authorized"
	case StateDenied:
		return "denied"
	}
	return "unknown"
}

// Fallback routes
const (
	LoginPath    = "/login"
	ProfilesPath = "/profiles"
	HomePath     = "/"
	AdminPath    = "/admin/users"
)

// Notices shown on redirect
const (
	msgLoginRequired   = "Please log in to access this page"
	msgNoPermission    = "You do not have permission to access this page"
	msgSelectProfile   = "Select a profile to continue"
	msgRatingForbidden = "This page requires a different classification than the active profile's"
)

// Subject is what the guard knows about the client
type Subject struct {
	// Loading is set while the session is still being restored
	Loading bool
	User    *model.User
	Profile *model.Profile
}

// Requirement is what a route demands. The zero value demands nothing.
// Requirements combine: a role plus a rating also needs a profile.
type Requirement struct {
	Login   bool
	Profile bool
	Roles   []model.Role
	Ratings []model.Restriction
}

// None lets everyone through
func None() Requirement {
	return Requirement{}
}

// LoggedIn requires a session
func LoggedIn() Requirement {
	return Requirement{Login: true}
}

// AnyProfile requires a session with an active profile
func AnyProfile() Requirement {
	return Requirement{Login: true, Profile: true}
}

// Role requires a session whose user has one of roles
func Role(roles ...model.Role) Requirement {
	return Requirement{Login: true, Roles: roles}
}

// Rating requires an active profile with one of the given restriction levels
func Rating(ratings ...model.Restriction) Requirement {
	return Requirement{Login: true, Profile: true, Ratings: ratings}
}

// And combines two requirements; the result demands both
func (r Requirement) And(other Requirement) Requirement {
	return Requirement{
		Login:   r.Login || other.Login,
		Profile: r.Profile || other.Profile,
		Roles:   append(slices.Clone(r.Roles), other.Roles...),
		Ratings: append(slices.Clone(r.Ratings), other.Ratings...),
	}
}

func (r Requirement) needsLogin() bool {
	return r.Login || r.Profile || len(r.Roles) > 0 || len(r.Ratings) > 0
}

func (r Requirement) needsProfile() bool {
	return r.Profile || len(r.Ratings) > 0
}

// Decision is the outcome of evaluating a route requirement
type Decision struct {
	State    State
	Redirect string
	Notice   model.Notice
}

// Allowed reports whether the protected view may be rendered
func (d Decision) Allowed() bool {
	return d.State == StateAuthorized
}

// Resolve returns the state of s regardless of any route
func Resolve(s Subject) State {
	switch {
	case s.Loading:
		return StateLoading
	case s.User == nil:
		return StateUnauthenticated
	case s.Profile == nil:
		return StateNeedsProfile
	}
	return StateProfileSelected
}

// Evaluate decides whether s may enter a route demanding req. A denial always
// carries a redirect; the protected view is never rendered.
func Evaluate(s Subject, req Requirement) Decision {
	if s.Loading {
		return Decision{State: StateLoading}
	}
	if !req.needsLogin() {
		return Decision{State: StateAuthorized}
	}
	if s.User == nil {
		return Decision{State: StateUnauthenticated, Redirect: LoginPath, Notice: model.Failure(msgLoginRequired)}
	}
	if len(req.Roles) > 0 && !slices.Contains(req.Roles, s.User.Role) {
		return Decision{State: StateDenied, Redirect: RoleFallback(s.User.Role), Notice: model.Failure(msgNoPermission)}
	}
	if req.needsProfile() && s.Profile == nil {
		return Decision{State: StateNeedsProfile, Redirect: ProfilesPath, Notice: model.Info(msgSelectProfile)}
	}
	if len(req.Ratings) > 0 && !slices.Contains(req.Ratings, s.Profile.Restriction) {
		return Decision{State: StateDenied, Redirect: ProfilesPath, Notice: model.Failure(msgRatingForbidden)}
	}
	return Decision{State: StateAuthorized}
}

// RoleFallback is where a user lands after being refused a route for their role
func RoleFallback(role model.Role) string {
	switch role {
	case model.RoleOwner:
		return ProfilesPath
	case model.RoleAdmin:
		return AdminPath
	}
	return HomePath
}
