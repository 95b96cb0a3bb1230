package digest

import (
	"net/url"

	"github.com/longregen/dailybrief/internal/prompt"
)

type SportsEvent struct {
	Name         string `json:"name"`
	Date         string `json:"date,omitempty"`
	Time         string `json:"time"`
	Channel      string `json:"channel"`
	Category     string `json:"category"`
	Description  string `json:"description"`
	DateVerified string `json:"dateVerified,omitempty"`
}

type LiveShow struct {
	Title        string `json:"title"`
	Date         string `json:"date,omitempty"`
	Time         string `json:"time"`
	Channel      string `json:"channel"`
	Genre        string `json:"genre"`
	Description  string `json:"description"`
	DateVerified string `json:"dateVerified,omitempty"`
}

// StreamingTitle is a show or film on a streaming platform.
type StreamingTitle struct {
	Title    string        `json:"title"`
	Rating   prompt.Number `json:"rating"`
	Platform string        `json:"platform"`
	Genre    string        `json:"genre"`
	Plot     string        `json:"plot"`
	Reason   string        `json:"reason"`
}

func (t StreamingTitle) TrailerURL() string { return TrailerURL(t.Title) }

type CinemaTitle struct {
	Title         string        `json:"title"`
	Rating        prompt.Number `json:"rating"`
	Genre         string        `json:"genre"`
	Plot          string        `json:"plot"`
	ReleaseStatus string        `json:"releaseStatus"`
}

func (t CinemaTitle) TrailerURL() string { return TrailerURL(t.Title) }

// TVGuide is the decoded TV & entertainment payload.
type TVGuide struct {
	Title       string           `json:"title"`
	DateChecked string           `json:"dateChecked,omitempty"`
	Sports      []SportsEvent    `json:"sports"`
	LiveTV      []LiveShow       `json:"liveTV"`
	TVShows     []StreamingTitle `json:"tvShows"`
	Movies      []StreamingTitle `json:"movies"`
	Cinema      []CinemaTitle    `json:"cinema"`
}

// Items counts listings across all sections.
func (g *TVGuide) Items() int {
	return len(g.Sports) + len(g.LiveTV) + len(g.TVShows) + len(g.Movies) + len(g.Cinema)
}

// TrailerURL is a video search for title.
func TrailerURL(title string) string {
	return "https://www.youtube.com/results?search_query=" + url.QueryEscape(title)
}

// TVSubject is e.g. "TV & Entertainment Guide for 16/10/2026".
func TVSubject(d Dates) string {
	return "TV & Entertainment Guide for " + d.Formatted()
}
