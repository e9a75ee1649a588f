// Package sessiontest provides in-memory collaborators for session tests.
package sessiontest

import (
	"context"
	"sync"

	"github.com/jforbes02/Clubbies/internal/session"
)

// Client is a scripted session.Client. Outcomes default to success for the
// configured User. Setting Block makes every call wait until it is closed or
// the context ends.
type Client struct {
	mu sync.Mutex

	User            session.Identity
	Token           string
	LoginOutcome    *session.Outcome
	RegisterOutcome *session.Outcome
	ResumeOutcome   *session.Outcome
	Block           chan struct{}
	Started         chan string

	LoginCalls    int
	RegisterCalls int
	ResumeCalls   int
	LastLogin     session.Credentials
	LastProfile   session.Profile
	LastToken     string
}

// NewClient returns a Client that authenticates as user.
func NewClient(user session.Identity) *Client {
	return &Client{User: user, Token: "token-" + user.ID}
}

func (c *Client) Login(ctx context.Context, creds session.Credentials) session.Outcome {
	c.mu.Lock()
	c.LoginCalls++
	c.LastLogin = creds
	scripted := c.LoginOutcome
	c.mu.Unlock()
	return c.finish(ctx, "login", scripted)
}

func (c *Client) Register(ctx context.Context, profile session.Profile) session.Outcome {
	c.mu.Lock()
	c.RegisterCalls++
	c.LastProfile = profile
	scripted := c.RegisterOutcome
	c.mu.Unlock()
	return c.finish(ctx, "register", scripted)
}

func (c *Client) Resume(ctx context.Context, token string) session.Outcome {
	c.mu.Lock()
	c.ResumeCalls++
	c.LastToken = token
	scripted := c.ResumeOutcome
	c.mu.Unlock()
	return c.finish(ctx, "resume", scripted)
}

// Calls returns the number of login, register and resume calls so far.
func (c *Client) Calls() (login, register, resume int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.LoginCalls, c.RegisterCalls, c.ResumeCalls
}

func (c *Client) finish(ctx context.Context, op string, scripted *session.Outcome) session.Outcome {
	if c.Started != nil {
		c.Started <- op
	}
	if c.Block != nil {
		select {
		case <-c.Block:
		case <-ctx.Done():
			return session.Failure(session.KindNetwork, ctx.Err().Error())
		}
	}
	if scripted != nil {
		return *scripted
	}
	return session.Success(c.User, c.Token)
}

// Tokens is an in-memory session.TokenStore.
type Tokens struct {
	mu      sync.Mutex
	token   string
	LoadErr error
	SaveErr error
	Saves   int
	Clears  int
}

// NewTokens returns a store holding token; "" means empty.
func NewTokens(token string) *Tokens {
	return &Tokens{token: token}
}

func (t *Tokens) Load() (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.LoadErr != nil {
		return "", t.LoadErr
	}
	if t.token == "" {
		return "", session.ErrNoToken
	}
	return t.token, nil
}

func (t *Tokens) Save(token string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Saves++
	if t.SaveErr != nil {
		return t.SaveErr
	}
	t.token = token
	return nil
}

func (t *Tokens) Clear() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Clears++
	t.token = ""
	return nil
}

// Token returns the stored token.
func (t *Tokens) Token() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.token
}

// Outcome returns a pointer to o, for the scripted outcome fields.
func Outcome(o session.Outcome) *session.Outcome { return &o }
