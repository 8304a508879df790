package pipeline

import (
	"slices"
	"strings"

	"github.com/TobiSchelling/PaperSearch/internal/dataset"
)

// SortMode selects the result ordering.
type SortMode int

const (
	SortRelevance SortMode = iota // input order; there is no scoring model
	SortYearDesc
	SortYearAsc
	SortTitleAsc
)

// SortModes lists every mode in display order.
var SortModes = []SortMode{SortRelevance, SortYearDesc, SortYearAsc, SortTitleAsc}

func (m SortMode) String() string {
	switch m {
	case SortYearDesc:
		return "year_desc"
	case SortYearAsc:
		return "year_asc"
	case SortTitleAsc:
		return "title_asc"
	}
	return "relevance"
}

// Label returns the human-readable name of the mode.
func (m SortMode) Label() string {
	switch m {
	case SortYearDesc:
		return "Year (newest first)"
	case SortYearAsc:
		return "Year (oldest first)"
	case SortTitleAsc:
		return "Title (A-Z)"
	}
	return "Relevance"
}

// ParseSortMode parses the String form of a mode. Unknown names yield
// SortRelevance and false.
func ParseSortMode(s string) (SortMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "relevance", "":
		return SortRelevance, true
	case "year_desc":
		return SortYearDesc, true
	case "year_asc":
		return SortYearAsc, true
	case "title_asc":
		return SortTitleAsc, true
	}
	return SortRelevance, false
}

// State is the search, filter, sort and page selection of one session.
// It is a value: the With* methods return a modified copy and never touch
// the receiver.
type State struct {
	Query     string
	YearMin   int // inclusive
	YearMax   int // inclusive
	Types     []string
	Countries []string
	Sort      SortMode
	Page      int // 1-based
}

// DefaultState selects everything the dataset offers: the full year range,
// every type and every country, first page, relevance order.
func DefaultState(f dataset.Facets) State {
	s := State{
		YearMin:   f.MinYear,
		YearMax:   f.MaxYear,
		Types:     slices.Clone(f.Types),
		Countries: slices.Clone(f.Countries),
		Page:      1,
	}
	if f.UnknownYear {
		s.YearMin = 0
	}
	return s
}

// SearchActive reports whether a query has been entered.
func (s State) SearchActive() bool {
	return s.Query != ""
}

// WithQuery sets the query. A changed query always returns to page 1.
func (s State) WithQuery(q string) State {
	if q != s.Query {
		s.Query = q
		s.Page = 1
	}
	return s
}

// WithPage selects a page.
func (s State) WithPage(page int) State {
	s.Page = page
	return s
}

// WithSort selects an ordering.
func (s State) WithSort(m SortMode) State {
	s.Sort = m
	return s
}

// WithYears sets the inclusive year range.
func (s State) WithYears(minYear, maxYear int) State {
	s.YearMin, s.YearMax = minYear, maxYear
	return s
}

// WithTypes replaces the selected publication types.
func (s State) WithTypes(types ...string) State {
	s.Types = slices.Clone(types)
	return s
}

// WithCountries replaces the selected source countries.
func (s State) WithCountries(countries ...string) State {
	s.Countries = slices.Clone(countries)
	return s
}
