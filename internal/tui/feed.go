package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jforbes02/Clubbies/internal/database/repository"
)

// previewReviews is how many reviews a collapsed card shows.
const previewReviews = 2

func (s *MainScreen) loadFeed() tea.Cmd {
	ctx, venues, reviews := s.ctx, s.repos.Venues, s.repos.Reviews
	return func() tea.Msg {
		list, err := venues.List(ctx)
		if err != nil {
			return errMsg{fmt.Errorf("load feed: %w", err)}
		}
		byVenue := make(map[string][]repository.Review, len(list))
		for _, v := range list {
			rs, err := reviews.ListByVenue(ctx, v.ID)
			if err != nil {
				return errMsg{fmt.Errorf("load reviews for %s: %w", v.Name, err)}
			}
			byVenue[v.ID] = rs
		}
		return feedMsg{venues: list, reviews: byVenue}
	}
}

func (s *MainScreen) likeCmd(id string) tea.Cmd {
	ctx, venues := s.ctx, s.repos.Venues
	return func() tea.Msg {
		v, err := venues.ToggleLike(ctx, id)
		if err != nil {
			return errMsg{fmt.Errorf("like: %w", err)}
		}
		return likedMsg(v)
	}
}

func (s *MainScreen) renderFeed() string {
	if len(s.feed) == 0 {
		return mutedStyle.Render("No venues yet. ctrl+r to refresh.")
	}
	start := max(s.feedCursor-1, 0)
	cards := make([]string, 0, len(s.feed)-start)
	for i := start; i < len(s.feed); i++ {
		cards = append(cards, s.renderCard(s.feed[i], i == s.feedCursor))
	}
	return strings.Join(cards, "\n")
}

func (s *MainScreen) renderCard(v repository.Venue, selected bool) string {
	w := s.contentWidth()
	now := s.now()

	heart := "♡"
	if v.Liked {
		heart = "♥"
	}
	lines := []string{
		truncate(nameStyle.Render(v.Name)+"  "+mutedStyle.Render(v.Location), w),
		starStyle.Render(stars(v.Rating)) + fmt.Sprintf(" %.1f/5   ", v.Rating) + likeStyle.Render(heart+" "+likesLabel(v.Likes)),
		truncate(nameStyle.Render(v.Name)+" "+v.Description, w),
	}

	reviews := s.reviews[v.ID]
	shown := reviews
	if !s.expanded[v.ID] && len(shown) > previewReviews {
		shown = shown[:previewReviews]
	}
	for _, r := range shown {
		lines = append(lines,
			truncate(nameStyle.Render(r.Author)+" "+r.Comment, w),
			"  "+starStyle.Render(stars(float64(r.Rating)))+" "+mutedStyle.Render(timeAgo(r.PostedAt, now)),
		)
	}
	if len(reviews) > previewReviews && !s.expanded[v.ID] {
		lines = append(lines, mutedStyle.Render(fmt.Sprintf("View all %d reviews", len(reviews))))
	}
	if ago := timeAgo(v.PostedAt, now); ago != "" {
		lines = append(lines, mutedStyle.Render(strings.ToUpper(ago)))
	}

	style := cardStyle
	if selected {
		style = selectedCardStyle
	}
	if w > 0 {
		style = style.Width(w + 2)
	}
	return style.Render(strings.Join(lines, "\n"))
}
