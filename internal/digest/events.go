package digest

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/longregen/dailybrief/internal/prompt"
)

// EventsWindowDays is how far ahead the events digest looks.
const EventsWindowDays = 3

// Event categories
const (
	CategoryLongRunning = "long-running"
	CategoryOneOff      = "one-off"
)

// Area is the centre of the local events search.
type Area struct {
	Town        string
	County      string
	Postcode    string
	RadiusMiles int
}

func (a Area) Label() string {
	if a.County == "" {
		return a.Town
	}
	return a.Town + ", " + a.County
}

// Event is one listing of the events digest.
type Event struct {
	Title         string        `json:"title"`
	Sources       []string      `json:"sources"`
	Description   string        `json:"description"`
	DistanceMiles prompt.Number `json:"distanceMiles"`
	Distance      string        `json:"distance"`
	Time          string        `json:"time"`
	StartDateTime string        `json:"startDateTime"`
	VenueName     string        `json:"venueName"`
	VenueAddress  string        `json:"venueAddress"`
	Category      string        `json:"category"`
}

// DistanceText prefers the model's own wording over the numeric distance.
func (e Event) DistanceText() string {
	if e.Distance != "" {
		return e.Distance
	}
	if e.DistanceMiles.Set {
		return fmt.Sprintf("%.1f mi", e.DistanceMiles.Value)
	}
	return "N/A"
}

func (e Event) TimeText() string {
	switch {
	case e.Time != "":
		return e.Time
	case e.StartDateTime != "":
		return e.StartDateTime
	default:
		return "TBC"
	}
}

// Venue joins the venue name and address.
func (e Event) Venue() string {
	var parts []string
	for _, p := range []string{e.VenueName, e.VenueAddress} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " - ")
}

func (e Event) IsLongRunning() bool {
	return e.Category == CategoryLongRunning
}

func (e Event) CategoryLabel() string {
	if e.IsLongRunning() {
		return "Regular"
	}
	return "One-off"
}

// SearchURL is a web search for the event near area.
func (e Event) SearchURL(area Area) string {
	q := strings.Join(strings.Fields(strings.Join([]string{e.Title, e.VenueName, area.Town, area.County}, " ")), " ")
	return "https://www.google.com/search?q=" + url.QueryEscape(q)
}

// EventSection is one heading of the rendered digest.
type EventSection struct {
	Heading string
	Events  []Event
}

// EventsDigest is the decoded events payload. Older replies use a flat Events list.
type EventsDigest struct {
	Title             string  `json:"title"`
	Subtitle          string  `json:"subtitle"`
	LongRunningEvents []Event `json:"longRunningEvents"`
	OneOffEvents      []Event `json:"oneOffEvents"`
	Events            []Event `json:"events"`
}

func (d *EventsDigest) HasEvents() bool {
	return len(d.LongRunningEvents)+len(d.OneOffEvents)+len(d.Events) > 0
}

// Sections groups events for rendering. Events without a category inherit
// the one of their list; the flat list defaults to one-off.
func (d *EventsDigest) Sections() []EventSection {
	if len(d.LongRunningEvents)+len(d.OneOffEvents) > 0 {
		var out []EventSection
		if len(d.LongRunningEvents) > 0 {
			out = append(out, EventSection{Heading: "Regular Activities", Events: withCategory(d.LongRunningEvents, CategoryLongRunning)})
		}
		if len(d.OneOffEvents) > 0 {
			out = append(out, EventSection{Heading: "Special Events", Events: withCategory(d.OneOffEvents, CategoryOneOff)})
		}
		return out
	}
	if len(d.Events) > 0 {
		return []EventSection{{Heading: "Events", Events: withCategory(d.Events, CategoryOneOff)}}
	}
	return nil
}

func withCategory(events []Event, category string) []Event {
	out := make([]Event, len(events))
	for i, e := range events {
		if e.Category == "" {
			e.Category = category
		}
		out[i] = e
	}
	return out
}

// EventsSubject is e.g. "Ashford Events (Next 3 Days) - 16/10/2026".
func EventsSubject(area Area, d Dates) string {
	return fmt.Sprintf("%s Events (Next %d Days) - %s", area.Town, EventsWindowDays, d.Formatted())
}

// EventsText renders the plain-text body.
func EventsText(d *EventsDigest, area Area) string {
	var b strings.Builder
	title := d.Title
	if title == "" {
		title = fmt.Sprintf("%s Events - Next %d Days", area.Town, EventsWindowDays)
	}
	b.WriteString(title + "\n\n")

	sections := d.Sections()
	if len(sections) == 0 {
		b.WriteString("No events found.\n")
		return b.String()
	}

	n := 0
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(strings.ToUpper(s.Heading) + ":\n\n")
		for j, e := range s.Events {
			if j > 0 {
				b.WriteString("\n")
			}
			n++
			sources := "N/A"
			if len(e.Sources) > 0 {
				sources = strings.Join(e.Sources, ", ")
			}
			fmt.Fprintf(&b, "#%d %s [%s]\n", n, e.Title, e.CategoryLabel())
			fmt.Fprintf(&b, "Time: %s\n", e.TimeText())
			fmt.Fprintf(&b, "Distance: %s\n", e.DistanceText())
			fmt.Fprintf(&b, "Sources: %s\n", sources)
			fmt.Fprintf(&b, "Google Search: %s\n", e.SearchURL(area))
			if e.Description != "" {
				b.WriteString(e.Description + "\n")
			}
		}
	}
	return b.String()
}
