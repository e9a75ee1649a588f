package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

func (s *MainScreen) loadNotifications() tea.Cmd {
	ctx, notes := s.ctx, s.repos.Notifications
	return func() tea.Msg {
		list, err := notes.List(ctx)
		if err != nil {
			return errMsg{fmt.Errorf("load notifications: %w", err)}
		}
		unread, err := notes.UnreadCount(ctx)
		if err != nil {
			return errMsg{fmt.Errorf("count unread: %w", err)}
		}
		return notificationsMsg{notes: list, unread: unread}
	}
}

func (s *MainScreen) markReadCmd(id string) tea.Cmd {
	ctx, notes := s.ctx, s.repos.Notifications
	return func() tea.Msg {
		if err := notes.MarkRead(ctx, id); err != nil {
			return errMsg{fmt.Errorf("mark read: %w", err)}
		}
		unread, err := notes.UnreadCount(ctx)
		if err != nil {
			return errMsg{fmt.Errorf("count unread: %w", err)}
		}
		return markedMsg{id: id, unread: unread}
	}
}

// unread is the badge count shown on the Notifications tab.
func (s *MainScreen) unread() int { return s.unreadCount }

func (s *MainScreen) renderNotifications() string {
	if len(s.notes) == 0 {
		return mutedStyle.Render("You're all caught up.")
	}
	w := s.contentWidth()
	now := s.now()
	var b strings.Builder
	for i, note := range s.notes {
		marker := "  "
		if i == s.noteCursor {
			marker = cursorStyle.Render("▸ ")
		}
		dot := " "
		if !note.Read {
			dot = unreadDotStyle.Render("●")
		}
		b.WriteString(truncate(marker+dot+" "+nameStyle.Render(note.Title), w))
		b.WriteString("\n")
		b.WriteString(truncate("    "+note.Message, w))
		b.WriteString("\n")
		b.WriteString("    " + mutedStyle.Render(timeAgo(note.CreatedAt, now)))
		b.WriteString("\n\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
