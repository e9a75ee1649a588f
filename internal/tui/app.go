// Package tui holds the Clubbies terminal screens and wires them to the
// navigation gate.
package tui

import (
	"context"
	"log/slog"
	"time"

	"github.com/jforbes02/Clubbies/internal/gate"
	"github.com/jforbes02/Clubbies/internal/session"
)

// Deps are the collaborators shared by every mounted screen.
type Deps struct {
	Session *session.Store
	Repos   Repos
	Logger  *slog.Logger

	// LastEmail prefills the auth form; RememberEmail stores it after a
	// successful sign-in. Both may be nil.
	LastEmail     func() (string, error)
	RememberEmail func(string) error

	Now func() time.Time
}

// New returns the root model: a gate that mounts the auth screen or the
// main screen as the session allows.
func New(ctx context.Context, deps Deps) *gate.Gate {
	return gate.New(ctx, deps.Session, Mounts(ctx, deps))
}

// Mounts builds fresh screens for the gate.
func Mounts(ctx context.Context, deps Deps) gate.Mounts {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.DiscardHandler)
	}
	return gate.Mounts{
		Auth: func() gate.Screen {
			var email string
			if deps.LastEmail != nil {
				e, err := deps.LastEmail()
				if err != nil {
					deps.Logger.Warn("load last email", "error", err)
				}
				email = e
			}
			return NewAuthScreen(ctx, deps.Session, AuthOptions{
				LastEmail:     email,
				RememberEmail: deps.RememberEmail,
				Logger:        deps.Logger,
			})
		},
		Main: func(user session.Identity) gate.Screen {
			deps.Logger.Info("mount main", "user", user.Username)
			return NewMainScreen(ctx, deps.Repos, user, MainOptions{
				Logout: deps.Session.Logout,
				Logger: deps.Logger,
				Now:    deps.Now,
			})
		},
	}
}
