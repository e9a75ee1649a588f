package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jforbes02/Clubbies/internal/database/repository"
	"github.com/jforbes02/Clubbies/internal/gate"
	"github.com/jforbes02/Clubbies/internal/session"
)

type tab int

const (
	tabHome tab = iota
	tabSearch
	tabNotifications
	tabProfile
	tabCount
)

var tabNames = [...]string{"Home", "Search", "Notifications", "Profile"}

// Repos are the catalogue repositories the main screen reads.
type Repos struct {
	Venues        *repository.VenueRepo
	Reviews       *repository.ReviewRepo
	Notifications *repository.NotificationRepo
}

// MainOptions configure the main screen.
type MainOptions struct {
	Logout func()
	Logger *slog.Logger
	Now    func() time.Time
}

type (
	feedMsg struct {
		venues  []repository.Venue
		reviews map[string][]repository.Review
	}
	catalogueMsg     []repository.Venue
	notificationsMsg struct {
		notes  []repository.Notification
		unread int
	}
	featuredMsg      []repository.Venue
	likedMsg         repository.Venue
	markedMsg        struct {
		id     string
		unread int
	}
	errMsg           struct{ error }
)

// MainScreen is the signed-in tree.
type MainScreen struct {
	ctx    context.Context
	cancel context.CancelFunc
	repos  Repos
	user   session.Identity
	logout func()
	logger *slog.Logger
	now    func() time.Time
	keys   mainKeyMap

	tab    tab
	status string
	width  int
	height int

	feed       []repository.Venue
	reviews    map[string][]repository.Review
	expanded   map[string]bool
	feedCursor int

	catalogue    []repository.Venue
	search       textinput.Model
	results      []repository.Venue
	searchCursor int

	notes       []repository.Notification
	noteCursor  int
	unreadCount int

	featured []repository.Venue
}

var _ gate.Screen = (*MainScreen)(nil)

func NewMainScreen(ctx context.Context, repos Repos, user session.Identity, opts MainOptions) *MainScreen {
	ctx, cancel := context.WithCancel(ctx)
	in := textinput.New()
	in.Placeholder = "Search clubs, bars, locations..."
	in.Prompt = "/ "
	in.CharLimit = 64
	s := &MainScreen{
		ctx:      ctx,
		cancel:   cancel,
		repos:    repos,
		user:     user,
		logout:   opts.Logout,
		logger:   opts.Logger,
		now:      opts.Now,
		keys:     newMainKeys(),
		reviews:  map[string][]repository.Review{},
		expanded: map[string]bool{},
		search:   in,
	}
	if s.logger == nil {
		s.logger = slog.New(slog.DiscardHandler)
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// User is the identity this screen was mounted for.
func (s *MainScreen) User() session.Identity { return s.user }

func (s *MainScreen) Init() tea.Cmd {
	return s.reload()
}

// Unmount stops any catalogue work still running for this user.
func (s *MainScreen) Unmount() { s.cancel() }

func (s *MainScreen) reload() tea.Cmd {
	return tea.Batch(s.loadFeed(), s.loadCatalogue(), s.loadNotifications(), s.loadFeatured())
}

func (s *MainScreen) loadCatalogue() tea.Cmd {
	ctx, venues := s.ctx, s.repos.Venues
	return func() tea.Msg {
		list, err := venues.All(ctx)
		if err != nil {
			return errMsg{fmt.Errorf("load venues: %w", err)}
		}
		return catalogueMsg(list)
	}
}

func (s *MainScreen) loadFeatured() tea.Cmd {
	ctx, venues := s.ctx, s.repos.Venues
	return func() tea.Msg {
		list, err := venues.TopRated(ctx, 3)
		if err != nil {
			return errMsg{fmt.Errorf("load featured: %w", err)}
		}
		return featuredMsg(list)
	}
}

func (s *MainScreen) Update(msg tea.Msg) (gate.Screen, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		s.width, s.height = m.Width, m.Height
		s.search.Width = max(m.Width-6, 10)
		return s, nil
	case feedMsg:
		s.feed = m.venues
		s.reviews = m.reviews
		s.feedCursor = clamp(s.feedCursor, len(s.feed))
		return s, nil
	case catalogueMsg:
		s.catalogue = m
		s.rank()
		return s, nil
	case notificationsMsg:
		s.notes = m.notes
		s.unreadCount = m.unread
		s.noteCursor = clamp(s.noteCursor, len(s.notes))
		return s, nil
	case featuredMsg:
		s.featured = m
		return s, nil
	case likedMsg:
		s.applyVenue(repository.Venue(m))
		return s, nil
	case markedMsg:
		for i := range s.notes {
			if s.notes[i].ID == m.id {
				s.notes[i].Read = true
			}
		}
		s.unreadCount = m.unread
		return s, nil
	case errMsg:
		if errors.Is(m.error, context.Canceled) {
			return s, nil
		}
		s.logger.Error("catalogue", "error", m.error)
		s.status = "Error: " + m.Error()
		return s, nil
	case tea.KeyMsg:
		return s.handleKey(m)
	}
	if s.tab == tabSearch {
		var cmd tea.Cmd
		s.search, cmd = s.search.Update(msg)
		return s, cmd
	}
	return s, nil
}

func (s *MainScreen) handleKey(m tea.KeyMsg) (gate.Screen, tea.Cmd) {
	switch {
	case key.Matches(m, s.keys.Logout):
		s.logger.Info("logout requested", "user", s.user.Username)
		if s.logout != nil {
			s.logout()
		}
		return s, nil
	case key.Matches(m, s.keys.Refresh):
		s.status = "Refreshing..."
		return s, s.reload()
	case key.Matches(m, s.keys.NextTab):
		return s, s.switchTab((s.tab + 1) % tabCount)
	case key.Matches(m, s.keys.PrevTab):
		return s, s.switchTab((s.tab + tabCount - 1) % tabCount)
	}

	if s.tab == tabSearch {
		return s.handleSearchKey(m)
	}

	switch {
	case key.Matches(m, s.keys.Home):
		return s, s.switchTab(tabHome)
	case key.Matches(m, s.keys.Search):
		return s, s.switchTab(tabSearch)
	case key.Matches(m, s.keys.Notifications):
		return s, s.switchTab(tabNotifications)
	case key.Matches(m, s.keys.Profile):
		return s, s.switchTab(tabProfile)
	case key.Matches(m, s.keys.Up):
		s.move(-1)
	case key.Matches(m, s.keys.Down):
		s.move(1)
	case key.Matches(m, s.keys.Expand):
		if s.tab == tabHome && len(s.feed) > 0 {
			id := s.feed[s.feedCursor].ID
			s.expanded[id] = !s.expanded[id]
		}
	case key.Matches(m, s.keys.Like):
		if s.tab == tabHome && len(s.feed) > 0 {
			return s, s.likeCmd(s.feed[s.feedCursor].ID)
		}
	case key.Matches(m, s.keys.MarkRead):
		if s.tab == tabNotifications && len(s.notes) > 0 && !s.notes[s.noteCursor].Read {
			return s, s.markReadCmd(s.notes[s.noteCursor].ID)
		}
	}
	return s, nil
}

func (s *MainScreen) switchTab(t tab) tea.Cmd {
	s.tab = t
	s.status = ""
	if t == tabSearch {
		return s.search.Focus()
	}
	s.search.Blur()
	return nil
}

func (s *MainScreen) move(delta int) {
	switch s.tab {
	case tabHome:
		s.feedCursor = clamp(s.feedCursor+delta, len(s.feed))
	case tabSearch:
		s.searchCursor = clamp(s.searchCursor+delta, len(s.results))
	case tabNotifications:
		s.noteCursor = clamp(s.noteCursor+delta, len(s.notes))
	}
}

// applyVenue replaces v wherever it is shown.
func (s *MainScreen) applyVenue(v repository.Venue) {
	for _, list := range [][]repository.Venue{s.feed, s.catalogue, s.results, s.featured} {
		for i := range list {
			if list[i].ID == v.ID {
				list[i] = v
			}
		}
	}
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func (s *MainScreen) View() string {
	tabs := make([]string, len(tabNames))
	copy(tabs, tabNames[:])
	if n := s.unread(); n > 0 {
		tabs[tabNotifications] = fmt.Sprintf("%s (%d)", tabs[tabNotifications], n)
	}

	var body string
	switch s.tab {
	case tabHome:
		body = s.renderFeed()
	case tabSearch:
		body = s.renderSearch()
	case tabNotifications:
		body = s.renderNotifications()
	case tabProfile:
		body = s.renderProfile()
	}

	header := renderHeader("CLUBBIES", tabs, int(s.tab), s.width)
	footer := renderFooter(s.footerKeys(), s.width)
	status := renderStatus(s.status, s.width)
	if s.height > 0 {
		body = fitLines(body, s.height-4)
	}
	return strings.Join([]string{header, body, status, footer}, "\n")
}

func (s *MainScreen) footerKeys() []key.Binding {
	k := s.keys
	switch s.tab {
	case tabHome:
		return []key.Binding{k.Up, k.Expand, k.Like, k.NextTab, k.Refresh, k.Quit}
	case tabSearch:
		return []key.Binding{k.NextTab, k.Refresh, k.Quit}
	case tabNotifications:
		return []key.Binding{k.Up, k.MarkRead, k.NextTab, k.Refresh, k.Quit}
	default:
		return []key.Binding{k.NextTab, k.Logout, k.Quit}
	}
}

// fitLines keeps at most n lines of s.
func fitLines(s string, n int) string {
	if n <= 0 {
		return ""
	}
	lines := strings.Split(s, "\n")
	if len(lines) <= n {
		return s
	}
	return strings.Join(lines[:n], "\n")
}

// contentWidth is the usable width inside a card, or 0 when unknown.
func (s *MainScreen) contentWidth() int {
	if s.width <= 0 {
		return 0
	}
	return max(s.width-6, 10)
}
