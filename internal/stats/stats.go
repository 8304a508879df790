// Package stats computes the dashboard aggregates over a dataset.
package stats

import (
	"cmp"
	"slices"
	"strconv"

	"github.com/TobiSchelling/PaperSearch/internal/dataset"
)

// UnknownLabel is shown for records with no value in a grouped column.
const UnknownLabel = "Unknown"

// Count is the number of records sharing a label.
type Count struct {
	Label string `json:"label"`
	Value int    `json:"value"`
}

// Bar is a Count scaled for display against the largest count in its group.
type Bar struct {
	Count
	Width int // percent of the group maximum, 0-100
}

// Summary holds everything the dashboard shows.
type Summary struct {
	Total        int     `json:"total"`
	WithAbstract int     `json:"with_abstract"`
	MinYear      int     `json:"min_year"`
	MaxYear      int     `json:"max_year"`
	ByYear       []Count `json:"by_year"`
	ByType       []Count `json:"by_type"`
	ByCountry    []Count `json:"by_country"`
}

// Summarize aggregates records. Years are listed in ascending order with
// unknown years last; types and countries by descending count, then label.
func Summarize(records []dataset.Record) Summary {
	s := Summary{Total: len(records)}

	years := make(map[int]int)
	types := make(map[string]int)
	countries := make(map[string]int)
	for _, r := range records {
		if r.HasAbstract() {
			s.WithAbstract++
		}
		years[r.PublicationYear]++
		types[labelOf(r.PublicationType)]++
		countries[labelOf(r.SourceCountry)]++

		if y := r.PublicationYear; y != 0 {
			if s.MinYear == 0 || y < s.MinYear {
				s.MinYear = y
			}
			if y > s.MaxYear {
				s.MaxYear = y
			}
		}
	}

	s.ByYear = yearCounts(years)
	s.ByType = rankedCounts(types)
	s.ByCountry = rankedCounts(countries)
	return s
}

// Bars scales counts against the largest value in the slice.
func Bars(counts []Count) []Bar {
	maxValue := 0
	for _, c := range counts {
		maxValue = max(maxValue, c.Value)
	}
	bars := make([]Bar, len(counts))
	for i, c := range counts {
		bars[i] = Bar{Count: c}
		if maxValue > 0 {
			bars[i].Width = c.Value * 100 / maxValue
		}
	}
	return bars
}

func labelOf(v string) string {
	if v == "" {
		return UnknownLabel
	}
	return v
}

func yearCounts(m map[int]int) []Count {
	keys := make([]int, 0, len(m))
	for y := range m {
		keys = append(keys, y)
	}
	slices.Sort(keys)

	out := make([]Count, 0, len(keys))
	unknown := 0
	for _, y := range keys {
		if y == 0 {
			unknown = m[y]
			continue
		}
		out = append(out, Count{Label: strconv.Itoa(y), Value: m[y]})
	}
	if unknown > 0 {
		out = append(out, Count{Label: UnknownLabel, Value: unknown})
	}
	return out
}

func rankedCounts(m map[string]int) []Count {
	out := make([]Count, 0, len(m))
	for label, n := range m {
		out = append(out, Count{Label: label, Value: n})
	}
	slices.SortFunc(out, func(a, b Count) int {
		if c := cmp.Compare(b.Value, a.Value); c != 0 {
			return c
		}
		return cmp.Compare(a.Label, b.Label)
	})
	return out
}
