package tui

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jforbes02/Clubbies/internal/authform"
	"github.com/jforbes02/Clubbies/internal/gate"
	"github.com/jforbes02/Clubbies/internal/validate"
)

// AuthSession is what the auth screen needs from the session store.
type AuthSession interface {
	authform.Session
	Loading() bool
}

// AuthOptions configure the auth screen.
type AuthOptions struct {
	LastEmail     string
	RememberEmail func(email string) error
	Logger        *slog.Logger
}

type authDoneMsg struct {
	res authform.Result
}

type authField struct {
	name  string
	input textinput.Model
}

// AuthScreen is the login/registration form.
type AuthScreen struct {
	ctx      context.Context
	sess     AuthSession
	ctrl     *authform.Controller
	fields   []authField
	focus    int
	keys     authKeyMap
	remember func(string) error
	logger   *slog.Logger
	width    int
	height   int
}

var _ gate.Screen = (*AuthScreen)(nil)

func NewAuthScreen(ctx context.Context, sess AuthSession, opts AuthOptions) *AuthScreen {
	s := &AuthScreen{
		ctx:      ctx,
		sess:     sess,
		ctrl:     authform.New(sess),
		keys:     newAuthKeys(),
		remember: opts.RememberEmail,
		logger:   opts.Logger,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	for _, name := range validate.Fields {
		ti := textinput.New()
		ti.Prompt = "› "
		ti.CharLimit = 128
		ti.Width = 36
		switch name {
		case validate.FieldUsername:
			ti.Placeholder = "partygoer"
			ti.CharLimit = 40
		case validate.FieldEmail:
			ti.Placeholder = "you@example.com"
		case validate.FieldPassword:
			ti.Placeholder = "at least 6 characters"
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		case validate.FieldConfirmPassword:
			ti.Placeholder = "repeat password"
			ti.EchoMode = textinput.EchoPassword
			ti.EchoCharacter = '•'
		case validate.FieldAge:
			ti.Placeholder = "16+"
			ti.CharLimit = 3
		}
		s.fields = append(s.fields, authField{name: name, input: ti})
	}
	if email := strings.TrimSpace(opts.LastEmail); email != "" {
		s.setValue(validate.FieldEmail, email)
	}
	s.applyFocus()
	return s
}

// Controller exposes the form state for the caller and tests.
func (s *AuthScreen) Controller() *authform.Controller { return s.ctrl }

// Focused is the name of the focused field.
func (s *AuthScreen) Focused() string {
	visible := s.visible()
	if len(visible) == 0 {
		return ""
	}
	return s.fields[visible[s.focus]].name
}

func (s *AuthScreen) Init() tea.Cmd { return textinput.Blink }

// Unmount discards any attempt still in flight.
func (s *AuthScreen) Unmount() { s.ctrl.Detach() }

// visible returns indexes into s.fields for the current mode.
func (s *AuthScreen) visible() []int {
	register := s.ctrl.Mode() == validate.ModeRegister
	var out []int
	for i, f := range s.fields {
		switch f.name {
		case validate.FieldEmail, validate.FieldPassword:
			out = append(out, i)
		default:
			if register {
				out = append(out, i)
			}
		}
	}
	return out
}

func (s *AuthScreen) applyFocus() {
	visible := s.visible()
	if s.focus >= len(visible) {
		s.focus = 0
	}
	for i := range s.fields {
		s.fields[i].input.Blur()
	}
	if len(visible) > 0 {
		s.fields[visible[s.focus]].input.Focus()
	}
}

func (s *AuthScreen) setValue(name, value string) {
	for i := range s.fields {
		if s.fields[i].name == name {
			s.fields[i].input.SetValue(value)
		}
	}
	s.ctrl.SetField(name, value)
}

// syncFromController copies the controller's fields back into the inputs.
func (s *AuthScreen) syncFromController() {
	f := s.ctrl.Fields()
	values := map[string]string{
		validate.FieldUsername:        f.Username,
		validate.FieldEmail:           f.Email,
		validate.FieldPassword:        f.Password,
		validate.FieldConfirmPassword: f.ConfirmPassword,
		validate.FieldAge:             f.Age,
	}
	for i := range s.fields {
		if v := values[s.fields[i].name]; v != s.fields[i].input.Value() {
			s.fields[i].input.SetValue(v)
		}
	}
}

func (s *AuthScreen) busy() bool {
	return s.ctrl.Pending() || s.sess.Loading()
}

func (s *AuthScreen) Update(msg tea.Msg) (gate.Screen, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = m.Width, m.Height
		return s, nil
	case authDoneMsg:
		if !s.ctrl.Finish(m.res) {
			return s, nil
		}
		s.syncFromController()
		if m.res.Err != nil {
			s.logger.Info("auth attempt failed", "mode", s.ctrl.Mode(), "error", m.res.Err)
		}
		return s, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(m, s.keys.Submit):
			return s, s.submit()
		case key.Matches(m, s.keys.Toggle):
			if !s.busy() {
				s.ctrl.ToggleMode()
				s.focus = 0
				s.applyFocus()
			}
			return s, nil
		case key.Matches(m, s.keys.Next):
			s.focus = (s.focus + 1) % len(s.visible())
			s.applyFocus()
			return s, nil
		case key.Matches(m, s.keys.Prev):
			n := len(s.visible())
			s.focus = (s.focus - 1 + n) % n
			s.applyFocus()
			return s, nil
		}
	}

	visible := s.visible()
	if len(visible) == 0 {
		return s, nil
	}
	idx := visible[s.focus]
	var cmd tea.Cmd
	s.fields[idx].input, cmd = s.fields[idx].input.Update(msg)
	s.ctrl.SetField(s.fields[idx].name, s.fields[idx].input.Value())
	return s, cmd
}

// submit starts an attempt and returns the command that runs it.
func (s *AuthScreen) submit() tea.Cmd {
	if s.busy() {
		return nil
	}
	a, err := s.ctrl.Start()
	switch {
	case errors.Is(err, authform.ErrInvalid):
		s.focusFirstError()
		return nil
	case err != nil:
		return nil
	}
	email := strings.TrimSpace(s.ctrl.Fields().Email)
	ctx, remember, logger := s.ctx, s.remember, s.logger
	return func() tea.Msg {
		res := a.Run(ctx)
		if res.Err == nil && remember != nil {
			if err := remember(email); err != nil {
				logger.Warn("remember email", "error", err)
			}
		}
		return authDoneMsg{res: res}
	}
}

func (s *AuthScreen) focusFirstError() {
	errs := s.ctrl.FieldErrors()
	for pos, idx := range s.visible() {
		if _, ok := errs[s.fields[idx].name]; ok {
			s.focus = pos
			s.applyFocus()
			return
		}
	}
}

func (s *AuthScreen) View() string {
	mode := s.ctrl.Mode()
	errs := s.ctrl.FieldErrors()

	var b strings.Builder
	b.WriteString(titleStyle.Render("CLUBBIES"))
	b.WriteString("\n")
	if mode == validate.ModeRegister {
		b.WriteString(statusStyle.Render("Create your account"))
	} else {
		b.WriteString(statusStyle.Render("Welcome back"))
	}
	b.WriteString("\n\n")

	visible := s.visible()
	for pos, idx := range visible {
		f := s.fields[idx]
		label := labelStyle
		if pos == s.focus {
			label = focusLabelStyle
		}
		b.WriteString(label.Render(validate.Label(f.name)))
		b.WriteString("\n")
		b.WriteString(f.input.View())
		b.WriteString("\n")
		if msg, ok := errs[f.name]; ok {
			b.WriteString(fieldErrStyle.Render(validate.Label(f.name) + " " + msg))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if msg := s.ctrl.Message(); msg != "" {
		b.WriteString(fieldErrStyle.Render(msg))
		b.WriteString("\n\n")
	}

	b.WriteString(s.button(mode))
	b.WriteString("\n\n")
	if mode == validate.ModeRegister {
		b.WriteString(mutedStyle.Render("Already have an account? ctrl+t to sign in"))
	} else {
		b.WriteString(mutedStyle.Render("Don't have an account? ctrl+t to sign up"))
	}

	body := b.String()
	footer := renderFooter(s.keys.footer(), s.width)
	if s.width <= 0 || s.height <= 0 {
		return body + "\n\n" + footer
	}
	content := lipgloss.Place(s.width, max(s.height-1, 1), lipgloss.Center, lipgloss.Center, body)
	return content + "\n" + footer
}

func (s *AuthScreen) button(mode validate.Mode) string {
	if s.busy() {
		if mode == validate.ModeRegister {
			return buttonBusyStyle.Render("Creating account...")
		}
		return buttonBusyStyle.Render("Signing in...")
	}
	if mode == validate.ModeRegister {
		return buttonStyle.Render("Sign up")
	}
	return buttonStyle.Render("Sign in")
}
