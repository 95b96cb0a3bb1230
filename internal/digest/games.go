package digest

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/longregen/dailybrief/internal/prompt"
)

// MinGames is the number of games the prompt asks for.
const MinGames = 10

const metaStoreSearch = "https://www.meta.com/en-gb/experiences/search/?q="

// Game reasons the prompt allows
const (
	ReasonPriceDrop   = "Recent price drop"
	ReasonHorizonPlus = "Recently added to Horizon+"
	ReasonNewRelease  = "New release"
)

// Game is one recommendation of the games digest.
type Game struct {
	Name        string        `json:"name"`
	Score       prompt.Number `json:"score"`
	Type        string        `json:"type"`
	Description string        `json:"description"`
	Reason      string        `json:"reason"`
	StoreURL    string        `json:"storeUrl"`
}

// StoreLink returns the model's store URL or a store search for the name.
func (g Game) StoreLink() string {
	if u, err := url.Parse(g.StoreURL); err == nil && (u.Scheme == "https" || u.Scheme == "http") && u.Host != "" {
		return g.StoreURL
	}
	return metaStoreSearch + url.QueryEscape(g.Name)
}

// GamesDigest is the decoded games payload.
type GamesDigest struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Games    []Game `json:"games"`
}

// GamesSubject is e.g. "Gaming Newsletter - Latest Games & Updates for 16/10/2026".
func GamesSubject(d Dates) string {
	return "Gaming Newsletter - Latest Games & Updates for " + d.Formatted()
}

// GamesText renders the plain-text body.
func GamesText(d *GamesDigest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n%s\n\n", d.Title, d.Subtitle)
	for i, g := range d.Games {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s\nScore: %s/10 | Type: %s\n%s (%s)\n%s\n", g.Name, g.Score, g.Type, g.Description, g.Reason, g.StoreLink())
	}
	return b.String()
}
