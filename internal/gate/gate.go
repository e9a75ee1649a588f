// Package gate mounts the auth or main screen tree according to the session.
package gate

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jforbes02/Clubbies/internal/session"
)

// Route is the screen tree selected for a session state.
type Route int

const (
	RouteLoading Route = iota
	RouteAuth
	RouteMain
)

func (r Route) String() string {
	switch r {
	case RouteAuth:
		return "auth"
	case RouteMain:
		return "main"
	default:
		return "loading"
	}
}

// RouteFor maps a session state to its route, 1:1.
func RouteFor(st session.State) Route {
	switch st.Status() {
	case session.StatusAuthenticated:
		return RouteMain
	case session.StatusUnauthenticated:
		return RouteAuth
	default:
		return RouteLoading
	}
}

// Session is the read side of session.Store plus the one-time resolve.
type Session interface {
	Resolve(ctx context.Context) session.State
	Snapshot() session.Snapshot
	Subscribe() (<-chan session.Snapshot, func())
}

// Screen is a mounted subtree.
type Screen interface {
	Init() tea.Cmd
	Update(msg tea.Msg) (Screen, tea.Cmd)
	View() string
}

// Unmounter is implemented by screens that hold work which must stop when
// they are unmounted.
type Unmounter interface {
	Unmount()
}

// Mounts builds fresh subtrees. Main receives the identity it is mounted for.
type Mounts struct {
	Auth func() Screen
	Main func(user session.Identity) Screen
}

type resolvedMsg struct{ state session.State }

type sessionMsg struct{ snap session.Snapshot }

// Gate is the root tea.Model.
type Gate struct {
	ctx     context.Context
	sess    Session
	mounts  Mounts
	spinner spinner.Model
	updates <-chan session.Snapshot
	stop    func()

	mounted     Route
	mountedUser string
	child       Screen
	width       int
	height      int
}

// New returns a gate that starts on the loading screen.
func New(ctx context.Context, sess Session, mounts Mounts) *Gate {
	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = loadingStyle
	updates, stop := sess.Subscribe()
	return &Gate{
		ctx:     ctx,
		sess:    sess,
		mounts:  mounts,
		spinner: sp,
		updates: updates,
		stop:    stop,
		mounted: RouteLoading,
	}
}

// Route is the currently mounted route.
func (g *Gate) Route() Route { return g.mounted }

// Screen is the currently mounted subtree, nil while loading.
func (g *Gate) Screen() Screen { return g.child }

func (g *Gate) Init() tea.Cmd {
	return tea.Batch(g.spinner.Tick, g.resolveCmd(), g.listenCmd())
}

func (g *Gate) resolveCmd() tea.Cmd {
	return func() tea.Msg {
		return resolvedMsg{state: g.sess.Resolve(g.ctx)}
	}
}

func (g *Gate) listenCmd() tea.Cmd {
	ch := g.updates
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return nil
		}
		return sessionMsg{snap: snap}
	}
}

func (g *Gate) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.KeyMsg:
		if m.String() == "ctrl+c" {
			g.stop()
			return g, tea.Quit
		}
		if g.mounted == RouteLoading {
			return g, nil
		}
	case tea.WindowSizeMsg:
		g.width, g.height = m.Width, m.Height
	case spinner.TickMsg:
		if g.mounted != RouteLoading {
			return g, nil
		}
		var cmd tea.Cmd
		g.spinner, cmd = g.spinner.Update(m)
		return g, cmd
	case resolvedMsg:
		return g, g.sync()
	case sessionMsg:
		return g, tea.Batch(g.sync(), g.listenCmd())
	}

	if g.child == nil {
		return g, nil
	}
	var cmd tea.Cmd
	g.child, cmd = g.child.Update(msg)
	// The child may have changed the session synchronously (logout).
	return g, tea.Batch(cmd, g.sync())
}

// sync remounts when the session's route differs from the mounted one.
func (g *Gate) sync() tea.Cmd {
	st := g.sess.Snapshot().State
	route := RouteFor(st)
	user, _ := st.User()
	if route == g.mounted && user.ID == g.mountedUser {
		return nil
	}

	if u, ok := g.child.(Unmounter); ok {
		u.Unmount()
	}
	g.child = nil
	g.mounted = route
	g.mountedUser = user.ID

	switch route {
	case RouteAuth:
		g.child = g.mounts.Auth()
	case RouteMain:
		g.child = g.mounts.Main(user)
	default:
		return g.spinner.Tick
	}

	cmds := []tea.Cmd{g.child.Init()}
	if g.width > 0 || g.height > 0 {
		size := tea.WindowSizeMsg{Width: g.width, Height: g.height}
		cmds = append(cmds, func() tea.Msg { return size })
	}
	return tea.Batch(cmds...)
}

var (
	loadingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff6b6b"))
	captionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

func (g *Gate) View() string {
	// Never render a subtree the session no longer allows.
	st := g.sess.Snapshot().State
	user, _ := st.User()
	if RouteFor(st) != g.mounted || user.ID != g.mountedUser {
		return ""
	}
	if g.mounted == RouteLoading || g.child == nil {
		body := g.spinner.View() + " " + captionStyle.Render("Checking your session...")
		if g.width > 0 && g.height > 0 {
			return lipgloss.Place(g.width, g.height, lipgloss.Center, lipgloss.Center, body)
		}
		return body
	}
	return g.child.View()
}
