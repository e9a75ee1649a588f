package session

import "fmt"

// Status is the variant of a State.
type Status int

const (
	StatusUnknown Status = iota
	StatusAuthenticated
	StatusUnauthenticated
)

func (s Status) String() string {
	switch s {
	case StatusAuthenticated:
		return "authenticated"
	case StatusUnauthenticated:
		return "unauthenticated"
	default:
		return "unknown"
	}
}

// Identity is the signed-in user as reported by the auth service.
type Identity struct {
	ID       string
	Username string
	Email    string
}

func (i Identity) String() string {
	return fmt.Sprintf("%s <%s>", i.Username, i.Email)
}

// State is an immutable session value. Only Authenticated carries a user.
type State struct {
	status Status
	user   Identity
}

// Unknown is the state before the stored session has been resolved.
func Unknown() State { return State{status: StatusUnknown} }

// Unauthenticated is the signed-out state.
func Unauthenticated() State { return State{status: StatusUnauthenticated} }

// Authenticated is the signed-in state for user.
func Authenticated(user Identity) State {
	return State{status: StatusAuthenticated, user: user}
}

func (s State) Status() Status { return s.status }

// User returns the identity and true only when authenticated.
func (s State) User() (Identity, bool) {
	if s.status != StatusAuthenticated {
		return Identity{}, false
	}
	return s.user, true
}

func (s State) IsUnknown() bool         { return s.status == StatusUnknown }
func (s State) IsAuthenticated() bool   { return s.status == StatusAuthenticated }
func (s State) IsUnauthenticated() bool { return s.status == StatusUnauthenticated }

func (s State) String() string {
	if s.status == StatusAuthenticated {
		return "authenticated(" + s.user.ID + ")"
	}
	return s.status.String()
}

// Snapshot is what observers of a Store receive.
type Snapshot struct {
	State   State
	Loading bool
}
