// Package termview renders search results and dataset statistics for the
// terminal.
package termview

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/TobiSchelling/PaperSearch/internal/pipeline"
	"github.com/TobiSchelling/PaperSearch/internal/stats"
)

const (
	textWidth   = 80
	maxBarWidth = 30
)

// Badge colours per bucket, indexed by pipeline.Bucket.
var bucketColors = []lipgloss.Color{
	lipgloss.Color("244"), // default
	lipgloss.Color("33"),
	lipgloss.Color("34"),
	lipgloss.Color("178"),
	lipgloss.Color("135"),
}

// View writes styled output. Colours are only emitted when the writer it
// was created for is a colour terminal.
type View struct {
	w io.Writer

	title   lipgloss.Style
	meta    lipgloss.Style
	mark    lipgloss.Style
	success lipgloss.Style
	warning lipgloss.Style
	section lipgloss.Style
	body    lipgloss.Style
	bar     lipgloss.Style
	badges  []lipgloss.Style
}

// New creates a View writing to w.
func New(w io.Writer) *View {
	r := lipgloss.NewRenderer(w)
	v := &View{
		w:       w,
		title:   r.NewStyle().Bold(true),
		meta:    r.NewStyle().Foreground(lipgloss.Color("245")),
		mark:    r.NewStyle().Bold(true).Underline(true).Foreground(lipgloss.Color("214")),
		success: r.NewStyle().Foreground(lipgloss.Color("42")),
		warning: r.NewStyle().Foreground(lipgloss.Color("214")),
		section: r.NewStyle().Bold(true).Foreground(lipgloss.Color("33")),
		body:    r.NewStyle().Width(textWidth).PaddingLeft(2),
		bar:     r.NewStyle().Foreground(lipgloss.Color("33")),
	}
	for _, c := range bucketColors {
		v.badges = append(v.badges, r.NewStyle().Bold(true).Foreground(c))
	}
	return v
}

// Results writes one page of results with the matches highlighted.
func (v *View) Results(res pipeline.Result) error {
	var b strings.Builder
	q := res.State.Query

	switch {
	case !res.SearchActive():
		b.WriteString(v.meta.Render("Enter a query to search titles, authors, keywords and abstracts."))
		b.WriteString("\n")
	case len(res.Matches) == 0:
		b.WriteString(v.warning.Render("No results found for your query. Please try different search terms."))
		b.WriteString("\n")
	default:
		b.WriteString(v.success.Render(fmt.Sprintf("Found %d matching result(s).", len(res.Matches))))
		b.WriteString("\n\n")
		for _, r := range res.Page {
			b.WriteString(v.badge(r.PublicationType))
			b.WriteString(" ")
			b.WriteString(v.highlight(r.Title, q, v.title))
			b.WriteString("\n")
			b.WriteString(v.meta.Render("  By: ") + v.highlight(r.Authors, q, v.meta) +
				v.meta.Render(" | Published in: "+yearLabel(r.PublicationYear)))
			if r.SourceCountry != "" {
				b.WriteString(v.meta.Render(" | " + r.SourceCountry))
			}
			b.WriteString("\n")
			if r.Keywords != "" {
				b.WriteString(v.meta.Render("  Keywords: ") + v.highlight(r.Keywords, q, v.meta) + "\n")
			}
			if r.HasAbstract() {
				b.WriteString(v.body.Render(r.Abstract))
				b.WriteString("\n")
			}
			b.WriteString("\n")
		}
		m := res.Meta
		b.WriteString(v.meta.Render(fmt.Sprintf("Page %d of %d", m.CurrentPage, m.TotalPages)))
		b.WriteString("\n")
	}

	_, err := io.WriteString(v.w, b.String())
	return err
}

// Summary writes the dashboard counts as horizontal bars.
func (v *View) Summary(s stats.Summary) error {
	var b strings.Builder

	span := "N/A"
	if s.MaxYear != 0 {
		span = fmt.Sprintf("%d-%d", s.MinYear, s.MaxYear)
	}
	fmt.Fprintf(&b, "%s %d\n", v.title.Render("Papers:"), s.Total)
	fmt.Fprintf(&b, "%s %d\n", v.title.Render("With abstract:"), s.WithAbstract)
	fmt.Fprintf(&b, "%s %s\n", v.title.Render("Years:"), span)

	v.chart(&b, "Papers by year", s.ByYear)
	v.chart(&b, "Papers by publication type", s.ByType)
	v.chart(&b, "Papers by source country", s.ByCountry)

	_, err := io.WriteString(v.w, b.String())
	return err
}

func (v *View) chart(b *strings.Builder, title string, counts []stats.Count) {
	b.WriteString("\n")
	b.WriteString(v.section.Render(title))
	b.WriteString("\n")
	if len(counts) == 0 {
		b.WriteString(v.meta.Render("  No data."))
		b.WriteString("\n")
		return
	}

	labelWidth := 0
	for _, c := range counts {
		labelWidth = max(labelWidth, lipgloss.Width(c.Label))
	}
	for _, bar := range stats.Bars(counts) {
		n := bar.Width * maxBarWidth / 100
		if n == 0 && bar.Value > 0 {
			n = 1
		}
		pad := strings.Repeat(" ", labelWidth-lipgloss.Width(bar.Label))
		fmt.Fprintf(b, "  %s%s %s %d\n", bar.Label, pad, v.bar.Render(strings.Repeat("█", n)), bar.Value)
	}
}

func (v *View) badge(publicationType string) string {
	label := publicationType
	if label == "" {
		label = "N/A"
	}
	return v.badges[pipeline.Classify(publicationType)].Render("[" + label + "]")
}

// highlight renders text in style with every match of q in the mark style.
func (v *View) highlight(text, q string, style lipgloss.Style) string {
	plain := func(s string) string { return style.Render(s) }
	mark := func(s string) string { return v.mark.Render(s) }
	return pipeline.HighlightFunc(text, q, plain, mark)
}

func yearLabel(y int) string {
	if y == 0 {
		return "N/A"
	}
	return fmt.Sprint(y)
}
