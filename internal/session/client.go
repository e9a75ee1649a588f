package session

import (
	"context"
	"log/slog"
)

// Client reaches the remote auth service. Implementations normalize every
// failure into an Outcome instead of returning errors.
type Client interface {
	Login(ctx context.Context, creds Credentials) Outcome
	Register(ctx context.Context, profile Profile) Outcome
	// Resume exchanges a stored token for the identity it belongs to.
	Resume(ctx context.Context, token string) Outcome
}

// TokenStore persists the access token between launches.
type TokenStore interface {
	// Load returns ErrNoToken when nothing is stored.
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// Credentials are used for a single login call and never retained.
type Credentials struct {
	Email    string
	Password string
}

func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(slog.String("email", c.Email), slog.String("password", "[redacted]"))
}

// Profile is the registration payload.
type Profile struct {
	Username string
	Email    string
	Password string
	Age      int
}

func (p Profile) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("username", p.Username),
		slog.String("email", p.Email),
		slog.String("password", "[redacted]"),
		slog.Int("age", p.Age),
	)
}

// Outcome is the normalized result of a Client call.
type Outcome struct {
	User    Identity
	Token   string
	Failure *Error
}

// Success builds a successful Outcome.
func Success(user Identity, token string) Outcome {
	return Outcome{User: user, Token: token}
}

// Failure builds a failed Outcome.
func Failure(kind ErrorKind, message string) Outcome {
	return Outcome{Failure: &Error{Kind: kind, Message: message}}
}

// FailureFrom wraps err, keeping its kind when it already is an *Error.
func FailureFrom(kind ErrorKind, err error) Outcome {
	if se, ok := err.(*Error); ok {
		return Outcome{Failure: se}
	}
	return Outcome{Failure: &Error{Kind: kind, Err: err}}
}

func (o Outcome) OK() bool { return o.Failure == nil }
