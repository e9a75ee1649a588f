package tui

import (
	"fmt"
	"strings"
)

func (s *MainScreen) renderProfile() string {
	w := s.contentWidth()
	var b strings.Builder
	b.WriteString(titleStyle.Render("@" + s.user.Username))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Email  ") + s.user.Email)
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("ID     ") + mutedStyle.Render(s.user.ID))
	b.WriteString("\n\n")

	b.WriteString(focusLabelStyle.Render("Featured clubs"))
	b.WriteString("\n")
	if len(s.featured) == 0 {
		b.WriteString(mutedStyle.Render("Nothing featured right now."))
		b.WriteString("\n")
	}
	for _, v := range s.featured {
		line := fmt.Sprintf("%s  %s  %s %.1f",
			nameStyle.Render(v.Name),
			mutedStyle.Render(v.Genre),
			starStyle.Render(stars(v.Rating)),
			v.Rating,
		)
		b.WriteString(truncate(line, w))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("ctrl+l to log out"))
	return b.String()
}
