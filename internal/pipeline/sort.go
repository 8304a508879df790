package pipeline

import (
	"slices"

	"github.com/TobiSchelling/PaperSearch/internal/dataset"
)

// Sort returns a new slice ordered by mode. All orderings are stable, so
// ties keep their input order; SortRelevance keeps input order entirely.
func Sort(records []dataset.Record, mode SortMode) []dataset.Record {
	sorted := slices.Clone(records)

	switch mode {
	case SortYearDesc:
		slices.SortStableFunc(sorted, func(a, b dataset.Record) int {
			return b.PublicationYear - a.PublicationYear
		})
	case SortYearAsc:
		slices.SortStableFunc(sorted, func(a, b dataset.Record) int {
			return a.PublicationYear - b.PublicationYear
		})
	case SortTitleAsc:
		slices.SortStableFunc(sorted, func(a, b dataset.Record) int {
			switch {
			case a.Title < b.Title:
				return -1
			case a.Title > b.Title:
				return 1
			}
			return 0
		})
	}
	return sorted
}
