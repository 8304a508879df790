package pipeline

import (
	"strings"

	"github.com/TobiSchelling/PaperSearch/internal/dataset"
)

// Filter returns the records that pass the year, type and country filters
// and contain the query in a searched field. An empty query matches nothing.
func Filter(records []dataset.Record, s State) []dataset.Record {
	if s.Query == "" {
		return nil
	}
	types := toSet(s.Types)
	countries := toSet(s.Countries)
	match := containsFunc(s.Query)

	var out []dataset.Record
	for _, r := range records {
		if r.PublicationYear < s.YearMin || r.PublicationYear > s.YearMax {
			continue
		}
		if _, ok := types[r.PublicationType]; !ok {
			continue
		}
		if _, ok := countries[r.SourceCountry]; !ok {
			continue
		}
		if matches(r, match) {
			out = append(out, r)
		}
	}
	return out
}

// Matches reports whether query occurs, ignoring case, in the record's
// title, authors, keywords or abstract. Case folding is the same one
// highlighting uses, so every match has a span to highlight.
func Matches(r dataset.Record, query string) bool {
	return matches(r, containsFunc(query))
}

func matches(r dataset.Record, contains func(string) bool) bool {
	for _, field := range [...]string{r.Title, r.Authors, r.Keywords, r.Abstract} {
		if contains(field) {
			return true
		}
	}
	return false
}

// containsFunc returns a case-insensitive substring test for query.
func containsFunc(query string) func(string) bool {
	if re := matcher(query); re != nil {
		return re.MatchString
	}
	lq := strings.ToLower(query)
	return func(s string) bool { return strings.Contains(strings.ToLower(s), lq) }
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
