// Package pipeline turns the loaded papers and a session State into the
// page of results to display. Every function is pure: nothing here holds
// state between calls.
package pipeline

import "github.com/TobiSchelling/PaperSearch/internal/dataset"

// Result is the output of one pipeline run.
type Result struct {
	State State
	// Matches is the full filtered and sorted list, used for export.
	Matches []dataset.Record
	// Page is the slice of Matches on State.Page.
	Page []dataset.Record
	Meta PageMeta
}

// SearchActive reports whether a query was entered; an empty Matches with an
// active search is a "no results" state rather than "nothing searched yet".
func (r Result) SearchActive() bool {
	return r.State.SearchActive()
}

// Run filters, sorts and paginates records for s.
func Run(records []dataset.Record, s State, pageSize int) Result {
	matches := Sort(Filter(records, s), s.Sort)
	page, meta := Paginate(matches, s.Page, pageSize)
	return Result{
		State:   s,
		Matches: matches,
		Page:    page,
		Meta:    meta,
	}
}
