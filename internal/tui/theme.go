package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// ---------------------------------------------------------------------------
// Clubbies palette: coral on near-black, true-color hex values
// ---------------------------------------------------------------------------

const (
	colorCoral    lipgloss.Color = "#ff6b6b"
	colorCoralDim lipgloss.Color = "#c94f4f"
	colorGold     lipgloss.Color = "#ffd166"
	colorMint     lipgloss.Color = "#06d6a0"
	colorSky      lipgloss.Color = "#4cc9f0"

	colorText     lipgloss.Color = "#ffffff"
	colorSubtext1 lipgloss.Color = "#cccccc"
	colorSubtext0 lipgloss.Color = "#999999"
	colorOverlay  lipgloss.Color = "#666666"
	colorSurface1 lipgloss.Color = "#333333"
	colorSurface0 lipgloss.Color = "#1a1a1a"
	colorBase     lipgloss.Color = "#000000"
)

// ---------------------------------------------------------------------------
// Semantic color aliases
// ---------------------------------------------------------------------------

const (
	colorBrand   = colorCoral
	colorAccent  = colorCoral
	colorFocus   = colorSky
	colorSuccess = colorMint
	colorError   = colorCoralDim
	colorStar    = colorGold
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(colorBrand).Bold(true)

	headerBarStyle = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorSurface0).
			Padding(0, 2)

	headerAppStyle = lipgloss.NewStyle().
			Foreground(colorBrand).
			Bold(true)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(colorAccent).
			Background(colorSurface1).
			Bold(true).
			Padding(0, 1)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorSubtext0).
				Background(colorSurface0).
				Padding(0, 1)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(colorOverlay).
			Background(colorSurface0)

	statusStyle = lipgloss.NewStyle().Foreground(colorSubtext0)

	footerStyle = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Background(colorSurface0).
			Padding(0, 2)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Background(colorSurface1).
			Padding(0, 2)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface1).
			Padding(0, 1)

	selectedCardStyle = cardStyle.BorderForeground(colorAccent)

	helpKeyStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	helpDescStyle = lipgloss.NewStyle().Foreground(colorSubtext0)

	labelStyle      = lipgloss.NewStyle().Foreground(colorSubtext1)
	focusLabelStyle = lipgloss.NewStyle().Foreground(colorFocus).Bold(true)
	fieldErrStyle   = lipgloss.NewStyle().Foreground(colorError)
	mutedStyle      = lipgloss.NewStyle().Foreground(colorOverlay)
	nameStyle       = lipgloss.NewStyle().Foreground(colorText).Bold(true)
	starStyle       = lipgloss.NewStyle().Foreground(colorStar)
	likeStyle       = lipgloss.NewStyle().Foreground(colorAccent)
	unreadDotStyle  = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	successStyle    = lipgloss.NewStyle().Foreground(colorSuccess)
	cursorStyle     = lipgloss.NewStyle().Foreground(colorAccent).Bold(true)

	buttonStyle = lipgloss.NewStyle().
			Foreground(colorBase).
			Background(colorAccent).
			Bold(true).
			Padding(0, 2)

	buttonBusyStyle = lipgloss.NewStyle().
			Foreground(colorSubtext1).
			Background(colorSurface1).
			Padding(0, 2)
)

func renderHeader(appName string, tabs []string, active, width int) string {
	name := headerAppStyle.Render(appName)
	parts := make([]string, 0, len(tabs))
	for i, tab := range tabs {
		if i == active {
			parts = append(parts, activeTabStyle.Render(tab))
		} else {
			parts = append(parts, inactiveTabStyle.Render(tab))
		}
	}
	line := name + "  " + tabSepStyle.Render(" ") + strings.Join(parts, tabSepStyle.Render("│"))
	if width <= 0 {
		return headerBarStyle.Render(line)
	}
	return headerBarStyle.Width(width).Render(line)
}

func renderFooter(bindings []key.Binding, width int) string {
	bg := colorSurface0
	keyStyle := helpKeyStyle.Background(bg)
	descStyle := helpDescStyle.Background(bg)
	space := lipgloss.NewStyle().Background(bg).Render(" ")
	sep := lipgloss.NewStyle().Background(bg).Render("  ")

	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		help := b.Help()
		if help.Key == "" && help.Desc == "" {
			continue
		}
		parts = append(parts, keyStyle.Render(help.Key)+space+descStyle.Render(help.Desc))
	}
	content := strings.Join(parts, sep)
	if width <= 0 {
		return footerStyle.Render(content)
	}
	return footerStyle.Width(width).Render(content)
}

func renderStatus(text string, width int) string {
	flat := strings.ReplaceAll(text, "\n", " ")
	if width <= 0 {
		return statusBarStyle.Render(flat)
	}
	return statusBarStyle.Width(width).Render(flat)
}

// truncate shortens s to width cells, keeping ANSI styling intact.
func truncate(s string, width int) string {
	if width <= 0 || ansi.StringWidth(s) <= width {
		return s
	}
	return ansi.Truncate(s, width, "…")
}
