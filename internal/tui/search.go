package tui

import (
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jforbes02/Clubbies/internal/database/repository"
	"github.com/jforbes02/Clubbies/internal/gate"
)

// substringBonus is subtracted from the distance when the query appears
// verbatim in a name or location.
const substringBonus = 100

// Rank orders venues by how closely their name or location matches query.
// Venues that do not contain the query and sit more than half the query
// length away from it are dropped. An empty query returns venues unchanged.
func Rank(venues []repository.Venue, query string) []repository.Venue {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return venues
	}

	type scored struct {
		v     repository.Venue
		score int
	}
	limit := max(len([]rune(q))/2, 1)
	var hits []scored
	for _, v := range venues {
		best, found := 0, false
		for _, field := range []string{v.Name, v.Location} {
			if field == "" {
				continue
			}
			s := score(strings.ToLower(field), q)
			if !found || s < best {
				best, found = s, true
			}
		}
		if !found || best > limit {
			continue
		}
		hits = append(hits, scored{v: v, score: best})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score < hits[j].score })
	out := make([]repository.Venue, len(hits))
	for i, h := range hits {
		out[i] = h.v
	}
	return out
}

// score compares q against field and against each word of field, keeping
// the closest.
func score(field, q string) int {
	best := levenshtein.ComputeDistance(field, q)
	for _, word := range strings.Fields(field) {
		if d := levenshtein.ComputeDistance(word, q); d < best {
			best = d
		}
	}
	if strings.Contains(field, q) {
		best -= substringBonus
	}
	return best
}

func (s *MainScreen) handleSearchKey(m tea.KeyMsg) (gate.Screen, tea.Cmd) {
	switch m.String() {
	case "up":
		s.move(-1)
		return s, nil
	case "down":
		s.move(1)
		return s, nil
	}
	var cmd tea.Cmd
	s.search, cmd = s.search.Update(m)
	s.rank()
	return s, cmd
}

// rank recomputes results for the current query.
func (s *MainScreen) rank() {
	s.results = Rank(s.catalogue, s.search.Value())
	s.searchCursor = clamp(s.searchCursor, len(s.results))
}

func (s *MainScreen) renderSearch() string {
	var b strings.Builder
	b.WriteString(s.search.View())
	b.WriteString("\n\n")
	if len(s.results) == 0 {
		if strings.TrimSpace(s.search.Value()) == "" {
			b.WriteString(mutedStyle.Render("Type to search venues."))
		} else {
			b.WriteString(mutedStyle.Render("No matches."))
		}
		return b.String()
	}
	w := s.contentWidth()
	for i, v := range s.results {
		marker := "  "
		if i == s.searchCursor {
			marker = cursorStyle.Render("▸ ")
		}
		line := marker + nameStyle.Render(v.Name) + "  " + mutedStyle.Render(v.Location) + "  " + starStyle.Render(stars(v.Rating))
		b.WriteString(truncate(line, w))
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
