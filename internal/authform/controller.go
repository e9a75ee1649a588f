// Package authform drives the login/registration form: validation, the
// single in-flight submission, and user-facing failure messages.
package authform

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jforbes02/Clubbies/internal/session"
	"github.com/jforbes02/Clubbies/internal/validate"
)

// Session is the part of session.Store the form needs.
type Session interface {
	Login(ctx context.Context, email, password string) (session.Identity, error)
	Register(ctx context.Context, profile session.Profile) (session.Identity, error)
}

var (
	ErrBusy     = errors.New("authform: submission already in flight")
	ErrDetached = errors.New("authform: form is no longer mounted")
	ErrInvalid  = errors.New("authform: input is invalid")
)

const (
	MsgNetwork  = "Network error. Please try again."
	MsgRejected = "Those details were not accepted."
	MsgUnknown  = "Something went wrong. Please try again."
)

// Fields is the raw form content.
type Fields = validate.Input

// Controller owns one form. Its methods are safe to call from any goroutine,
// but Finish is meant to run on the UI loop.
type Controller struct {
	sess Session

	mu       sync.Mutex
	mode     validate.Mode
	fields   Fields
	errs     map[string]string
	message  string
	pending  bool
	gen      uint64
	detached bool
}

// New returns a controller in login mode.
func New(sess Session) *Controller {
	return &Controller{sess: sess, errs: map[string]string{}}
}

func (c *Controller) Mode() validate.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetMode switches between login and registration, clearing stale errors.
func (c *Controller) SetMode(m validate.Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.mode == m {
		return
	}
	c.mode = m
	c.errs = map[string]string{}
	c.message = ""
}

func (c *Controller) ToggleMode() validate.Mode {
	next := validate.ModeRegister
	if c.Mode() == validate.ModeRegister {
		next = validate.ModeLogin
	}
	c.SetMode(next)
	return next
}

func (c *Controller) Fields() Fields {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fields
}

// SetField updates one field by its validate.Field* name.
func (c *Controller) SetField(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch name {
	case validate.FieldUsername:
		c.fields.Username = value
	case validate.FieldEmail:
		c.fields.Email = value
	case validate.FieldPassword:
		c.fields.Password = value
	case validate.FieldConfirmPassword:
		c.fields.ConfirmPassword = value
	case validate.FieldAge:
		c.fields.Age = value
	}
}

// FieldErrors returns a copy of the inline errors from the last attempt.
func (c *Controller) FieldErrors() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]string, len(c.errs))
	for k, v := range c.errs {
		out[k] = v
	}
	return out
}

// Message is the form-level status text.
func (c *Controller) Message() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.message
}

func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// Detach marks the form unmounted. Results of attempts still in flight will
// be discarded by Finish.
func (c *Controller) Detach() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.pending = false
	c.detached = true
}

// Attempt is one accepted submission. It holds the credentials only until
// Run returns.
type Attempt struct {
	ctrl    *Controller
	gen     uint64
	mode    validate.Mode
	creds   session.Credentials
	profile session.Profile
}

func (a *Attempt) Mode() validate.Mode { return a.mode }

// Result is what Run produced.
type Result struct {
	attempt *Attempt
	User    session.Identity
	Err     error
}

// Start validates the form and claims the single submission slot.
func (c *Controller) Start() (*Attempt, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.detached {
		return nil, ErrDetached
	}
	if c.pending {
		return nil, ErrBusy
	}

	res := validate.Validate(c.mode, c.fields)
	if !res.Valid {
		c.errs = res.FieldErrors
		c.message = res.Summary()
		return nil, ErrInvalid
	}

	c.errs = map[string]string{}
	c.message = ""
	c.pending = true
	c.gen++

	a := &Attempt{ctrl: c, gen: c.gen, mode: c.mode}
	email := strings.TrimSpace(c.fields.Email)
	if c.mode == validate.ModeRegister {
		age, _ := validate.ParseAge(c.fields.Age)
		a.profile = session.Profile{
			Username: strings.TrimSpace(c.fields.Username),
			Email:    email,
			Password: c.fields.Password,
			Age:      age,
		}
	} else {
		a.creds = session.Credentials{Email: email, Password: c.fields.Password}
	}
	return a, nil
}

// Run performs the session call. It blocks and belongs in a tea.Cmd.
func (a *Attempt) Run(ctx context.Context) Result {
	var (
		user session.Identity
		err  error
	)
	if a.mode == validate.ModeRegister {
		user, err = a.ctrl.sess.Register(ctx, a.profile)
	} else {
		user, err = a.ctrl.sess.Login(ctx, a.creds.Email, a.creds.Password)
	}
	a.creds = session.Credentials{}
	a.profile = session.Profile{}
	return Result{attempt: a, User: user, Err: err}
}

// Finish applies r to the form. It reports false when r belongs to a stale
// attempt, in which case the form is left untouched.
func (c *Controller) Finish(r Result) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r.attempt == nil || r.attempt.ctrl != c || r.attempt.gen != c.gen || c.detached {
		return false
	}
	c.pending = false
	if r.Err == nil {
		c.message = ""
		c.fields.Password = ""
		c.fields.ConfirmPassword = ""
		return true
	}
	c.message = Message(r.Err)
	if session.KindOf(r.Err) == session.KindRejected {
		c.fields.Password = ""
		c.fields.ConfirmPassword = ""
	}
	return true
}

// Submit runs a whole attempt synchronously.
func (c *Controller) Submit(ctx context.Context) (Result, error) {
	a, err := c.Start()
	if err != nil {
		return Result{}, err
	}
	r := a.Run(ctx)
	if !c.Finish(r) {
		return r, ErrDetached
	}
	return r, nil
}

// Message maps an auth failure to the text shown to the user.
func Message(err error) string {
	var se *session.Error
	if !errors.As(err, &se) {
		return MsgUnknown
	}
	switch se.Kind {
	case session.KindNetwork:
		return MsgNetwork
	case session.KindRejected:
		if se.Message != "" {
			return se.Message
		}
		return MsgRejected
	default:
		return MsgUnknown
	}
}
