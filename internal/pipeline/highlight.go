package pipeline

import (
	"html/template"
	"regexp"
	"strings"
)

// Highlight markers wrapped around each match.
const (
	MarkOpen  = "<mark>"
	MarkClose = "</mark>"
)

// Highlight wraps every case-insensitive occurrence of query in text with
// MarkOpen/MarkClose, keeping the original case of the match. An empty or
// unusable query returns text unchanged.
func Highlight(text, query string) string {
	return HighlightFunc(text, query, nil, func(m string) string {
		return MarkOpen + m + MarkClose
	})
}

// HighlightHTML is Highlight for HTML output: every piece of text is
// escaped and only the markers are emitted as markup.
func HighlightHTML(text, query string) template.HTML {
	return template.HTML(HighlightFunc(text, query, template.HTMLEscapeString, func(m string) string { //nolint: gosec
		return MarkOpen + template.HTMLEscapeString(m) + MarkClose
	}))
}

// HighlightFunc rewrites text, passing matched spans through mark and the
// text between them through plain. A nil plain leaves those spans as is.
func HighlightFunc(text, query string, plain, mark func(string) string) string {
	if plain == nil {
		plain = func(s string) string { return s }
	}
	re := matcher(query)
	if re == nil {
		return plain(text)
	}
	locs := re.FindAllStringIndex(text, -1)
	if len(locs) == 0 {
		return plain(text)
	}

	var b strings.Builder
	last := 0
	for _, loc := range locs {
		b.WriteString(plain(text[last:loc[0]]))
		b.WriteString(mark(text[loc[0]:loc[1]]))
		last = loc[1]
	}
	b.WriteString(plain(text[last:]))
	return b.String()
}

// matcher compiles a case-insensitive literal matcher for query, or returns
// nil when there is nothing usable to match.
func matcher(query string) *regexp.Regexp {
	if query == "" {
		return nil
	}
	re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(query))
	if err != nil {
		return nil
	}
	return re
}
