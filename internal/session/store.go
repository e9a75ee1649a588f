// Package session owns the client's authentication state. Store is the single
// writer; everything else observes it through State, Snapshot or Subscribe.
package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Store holds the current session and performs every transition.
type Store struct {
	client Client
	tokens TokenStore
	logger *slog.Logger
	now    func() time.Time

	resolveOnce sync.Once

	mu       sync.RWMutex
	state    State
	inflight int
	epoch    uint64
	subs     map[int]chan Snapshot
	nextSub  int
}

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore returns a Store in the Unknown state.
func NewStore(client Client, tokens TokenStore, opts ...Option) *Store {
	s := &Store{
		client: client,
		tokens: tokens,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
		state:  Unknown(),
		subs:   map[int]chan Snapshot{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Loading is true while Resolve, Login or Register is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// User returns the signed-in identity, if any.
func (s *Store) User() (Identity, bool) {
	return s.State().User()
}

// Subscribe delivers the current snapshot and every later change. Slow
// readers only ever see the latest snapshot. Call the returned func to stop.
func (s *Store) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	ch := make(chan Snapshot, 1)
	ch <- s.snapshotLocked()
	s.subs[id] = ch
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			delete(s.subs, id)
			close(ch)
		})
	}
}

// Resolve settles the initial session from the stored token. It runs once;
// later calls return the current state. The result is never Unknown.
func (s *Store) Resolve(ctx context.Context) State {
	s.resolveOnce.Do(func() {
		s.mu.Lock()
		s.inflight++
		s.notifyLocked()
		s.mu.Unlock()

		next := s.resolve(ctx)

		s.mu.Lock()
		defer s.mu.Unlock()
		s.inflight--
		// A Logout during resolution already settled the state.
		if s.state.IsUnknown() {
			s.state = next
		}
		s.logger.Info("session resolved", "state", s.state.String())
		s.notifyLocked()
	})
	return s.State()
}

func (s *Store) resolve(ctx context.Context) State {
	token, err := s.tokens.Load()
	if err != nil {
		if !errors.Is(err, ErrNoToken) {
			s.logger.Warn("load stored token", "error", err)
		}
		return Unauthenticated()
	}
	if tokenExpired(token, s.now()) {
		s.logger.Info("stored token expired")
		s.clearToken()
		return Unauthenticated()
	}

	out := s.call(ctx, func(ctx context.Context) Outcome { return s.client.Resume(ctx, token) })
	if !out.OK() {
		if out.Failure.Kind == KindRejected {
			s.logger.Info("stored token rejected", "error", out.Failure)
			s.clearToken()
		} else {
			s.logger.Warn("resume session", "kind", out.Failure.Kind.String(), "error", out.Failure)
		}
		return Unauthenticated()
	}
	if out.User.ID == "" {
		s.logger.Warn("resume session returned no user id")
		return Unauthenticated()
	}
	return Authenticated(out.User)
}

// Login signs in with email and password. A failure leaves the state as is.
func (s *Store) Login(ctx context.Context, email, password string) (Identity, error) {
	creds := Credentials{Email: email, Password: password}
	return s.authenticate(ctx, "login", func(ctx context.Context) Outcome {
		return s.client.Login(ctx, creds)
	})
}

// Register creates an account and signs in as it.
func (s *Store) Register(ctx context.Context, profile Profile) (Identity, error) {
	return s.authenticate(ctx, "register", func(ctx context.Context) Outcome {
		return s.client.Register(ctx, profile)
	})
}

// Logout drops the identity immediately and forgets the stored token. The
// token is cleared under the lock so a login finishing afterwards keeps its
// own token.
func (s *Store) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	was := s.state
	s.state = Unauthenticated()
	s.clearToken()
	s.notifyLocked()

	if was.IsAuthenticated() {
		s.logger.Info("logged out")
	}
}

func (s *Store) authenticate(ctx context.Context, op string, fn func(context.Context) Outcome) (Identity, error) {
	s.mu.Lock()
	switch s.state.Status() {
	case StatusUnknown:
		s.mu.Unlock()
		return Identity{}, ErrUnresolved
	case StatusAuthenticated:
		s.mu.Unlock()
		return Identity{}, ErrSignedIn
	}
	epoch := s.epoch
	s.inflight++
	s.notifyLocked()
	s.mu.Unlock()

	out := s.call(ctx, fn)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
	defer s.notifyLocked()

	if !out.OK() {
		s.logger.Info(op+" failed", "kind", out.Failure.Kind.String(), "error", out.Failure)
		return Identity{}, out.Failure
	}
	if out.User.ID == "" {
		s.logger.Warn(op + " succeeded without a user id")
		return Identity{}, &Error{Kind: KindUnknown, Message: "auth service returned no user"}
	}
	if s.epoch != epoch || !s.state.IsUnauthenticated() {
		s.logger.Info(op+" result discarded", "reason", "session changed")
		return Identity{}, ErrSuperseded
	}
	if out.Token != "" {
		if err := s.tokens.Save(out.Token); err != nil {
			s.logger.Warn("save token", "error", err)
		}
	}
	s.state = Authenticated(out.User)
	s.logger.Info(op+" succeeded", "user_id", out.User.ID)
	return out.User, nil
}

// call runs a collaborator call, turning a panic into a KindUnknown outcome.
func (s *Store) call(ctx context.Context, fn func(context.Context) Outcome) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("auth client panic", "panic", r)
			out = Failure(KindUnknown, "unexpected auth client failure")
		}
	}()
	out = fn(ctx)
	if out.Failure != nil && out.Failure.Kind == KindUnknown && ctx.Err() != nil {
		out.Failure = &Error{Kind: KindNetwork, Message: "request cancelled", Err: ctx.Err()}
	}
	return out
}

func (s *Store) clearToken() {
	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("clear token", "error", err)
	}
}

func (s *Store) snapshotLocked() Snapshot {
	return Snapshot{State: s.state, Loading: s.inflight > 0}
}

func (s *Store) notifyLocked() {
	snap := s.snapshotLocked()
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}
