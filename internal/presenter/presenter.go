// Package presenter renders a session snapshot. It only reads state.
package presenter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/sponsorscout/internal/session"
)

// Card is one job as displayed: all four fields verbatim.
type Card struct {
	Title       string
	Company     string
	Location    string
	Sponsorship string
}

// View is everything the presentation layer needs from a snapshot.
type View struct {
	SelectedFile string // empty when no file is selected
	QueryText    string
	CanSubmit    bool
	Loading      bool
	Error        string
	HasResult    bool
	Summary      string
	Cards        []Card // same order as relevant_jobs
}

// Build derives a View from s.
func Build(s session.State) View {
	v := View{
		SelectedFile: s.SelectedFile.Name,
		QueryText:    s.QueryText,
		CanSubmit:    s.CanSubmit(),
		Loading:      s.Busy,
		Error:        s.ErrorMessage,
	}
	if s.LastResponse != nil {
		v.HasResult = true
		v.Summary = s.LastResponse.Summary
		v.Cards = make([]Card, 0, len(s.LastResponse.RelevantJobs))
		for _, j := range s.LastResponse.RelevantJobs {
			v.Cards = append(v.Cards, Card{
				Title:       j.JobTitle,
				Company:     j.Company,
				Location:    j.Location,
				Sponsorship: j.SponsorshipDetails,
			})
		}
	}
	return v
}

// Options tune Render for the surrounding layout.
type Options struct {
	Width   int    // total width available; 0 means unconstrained
	Spinner string // loading glyph, e.g. the current spinner frame
}

// Render draws the status and results part of v: error banner, loading
// indicator, then summary and job cards. Input controls are drawn by the
// caller. With nothing to show it returns "".
func Render(v View, opts Options) string {
	var sections []string

	if v.Error != "" {
		banner := errorBannerStyle
		if opts.Width > 0 {
			banner = banner.Width(opts.Width - 2)
		}
		sections = append(sections, banner.Render(v.Error))
	}

	if v.Loading {
		indicator := "Loading..."
		if opts.Spinner != "" {
			indicator = opts.Spinner + " " + indicator
		}
		sections = append(sections, loadingStyle.Render(indicator))
	}

	if v.HasResult {
		sections = append(sections, renderResults(v, opts.Width))
	}

	return strings.Join(sections, "\n\n")
}

// RenderSelectedFile returns the "Selected file" line, or "" if none.
func RenderSelectedFile(v View) string {
	if v.SelectedFile == "" {
		return ""
	}
	return labelStyle.Render("Selected file:") + " " + v.SelectedFile
}

func renderResults(v View, width int) string {
	var b strings.Builder
	b.WriteString(sectionStyle.Render("Results"))
	b.WriteString("\n\n")
	b.WriteString(headingStyle.Render("Summary"))
	b.WriteByte('\n')
	b.WriteString(v.Summary)
	b.WriteString("\n\n")
	b.WriteString(headingStyle.Render("Relevant Jobs"))

	card := cardStyle
	if width > 0 {
		card = card.Width(width - 2)
	}
	for _, c := range v.Cards {
		b.WriteByte('\n')
		b.WriteString(card.Render(renderCard(c)))
	}
	return b.String()
}

func renderCard(c Card) string {
	lines := []string{
		cardTitleStyle.Render(c.Title),
		labelStyle.Render("Company:") + " " + c.Company,
		labelStyle.Render("Location:") + " " + c.Location,
		labelStyle.Render("Sponsorship:") + " " + c.Sponsorship,
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}
