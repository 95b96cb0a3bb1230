package digest

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/longregen/dailybrief/internal/prompt"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("digest").Funcs(template.FuncMap{
	"ratingColor": RatingColor,
	"footer":      footer,
}).ParseFS(templateFS, "templates/*.html"))

// Score bands
const (
	colorHigh = "#10b981"
	colorMid  = "#f59e0b"
	colorLow  = "#ef4444"
)

// RatingColor maps a 0-10 score to the badge colour. Missing scores are red.
func RatingColor(n prompt.Number) template.CSS {
	switch {
	case n.Set && n.Value >= 8:
		return colorHigh
	case n.Set && n.Value >= 6:
		return colorMid
	default:
		return colorLow
	}
}

type footerView struct {
	Sign string
	Date string
}

func footer(sign, date string) footerView {
	return footerView{Sign: sign, Date: date}
}

// Rendered is a digest ready for a mailer.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
}

type eventsView struct {
	Title    string
	Subtitle string
	Sections []EventSection
	Area     Area
	Days     int
	Date     string
}

// RenderEvents renders the events newsletter.
func RenderEvents(d *EventsDigest, area Area, dates Dates) (*Rendered, error) {
	view := eventsView{
		Title:    d.Title,
		Subtitle: d.Subtitle,
		Sections: d.Sections(),
		Area:     area,
		Days:     EventsWindowDays,
		Date:     dates.Formatted(),
	}
	if view.Title == "" {
		view.Title = fmt.Sprintf("%s Events - Next %d Days", area.Town, EventsWindowDays)
	}
	html, err := execute("events.html", view)
	if err != nil {
		return nil, err
	}
	return &Rendered{
		Subject: EventsSubject(area, dates),
		HTML:    html,
		Text:    EventsText(d, area),
	}, nil
}

type gamesView struct {
	*GamesDigest
	Date string
}

// RenderGames renders the games newsletter.
func RenderGames(d *GamesDigest, dates Dates) (*Rendered, error) {
	html, err := execute("games.html", gamesView{GamesDigest: d, Date: dates.Formatted()})
	if err != nil {
		return nil, err
	}
	return &Rendered{
		Subject: GamesSubject(dates),
		HTML:    html,
		Text:    GamesText(d),
	}, nil
}

type tvView struct {
	*TVGuide
	Title string
	Date  string
}

// RenderTV renders the TV guide. The text part is derived from the HTML.
func RenderTV(g *TVGuide, dates Dates) (*Rendered, error) {
	view := tvView{TVGuide: g, Title: g.Title, Date: dates.Formatted()}
	if view.Title == "" {
		view.Title = "📺 TV & Entertainment Guide - " + dates.Formatted()
	}
	html, err := execute("tv.html", view)
	if err != nil {
		return nil, err
	}
	text, err := PlainText(html)
	if err != nil {
		return nil, err
	}
	return &Rendered{
		Subject: TVSubject(dates),
		HTML:    html,
		Text:    text,
	}, nil
}

func execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}
