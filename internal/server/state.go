package server

import (
	"net/url"
	"slices"
	"strconv"

	"github.com/TobiSchelling/PaperSearch/internal/dataset"
	"github.com/TobiSchelling/PaperSearch/internal/pipeline"
)

// Query parameters carrying the session State.
const (
	paramQuery     = "q"
	paramPrevQuery = "prev_q"
	paramYearMin   = "year_min"
	paramYearMax   = "year_max"
	paramType      = "type"
	paramCountry   = "country"
	paramFilters   = "filters"
	paramSort      = "sort"
	paramPage      = "page"
	paramPrevSel   = "prev_sel"
)

// parseState rebuilds the State for a request. Parameters that are absent
// or malformed keep the dataset defaults. The search form echoes the
// previous query in prev_q and the previous filters and sort order in
// prev_sel, so that changing any of them returns to page 1.
func parseState(v url.Values, f dataset.Facets) pipeline.State {
	s := pipeline.DefaultState(f)

	if n, err := strconv.Atoi(v.Get(paramPage)); err == nil {
		s = s.WithPage(n)
	}
	prev := v.Get(paramQuery)
	if _, ok := v[paramPrevQuery]; ok {
		prev = v.Get(paramPrevQuery)
	}
	s.Query = prev
	s = s.WithQuery(v.Get(paramQuery))

	yearMin, yearMax := s.YearMin, s.YearMax
	if n, err := strconv.Atoi(v.Get(paramYearMin)); err == nil {
		yearMin = n
	}
	if n, err := strconv.Atoi(v.Get(paramYearMax)); err == nil {
		yearMax = n
	}
	s = s.WithYears(yearMin, yearMax)

	explicit := v.Get(paramFilters) == "1"
	if types := v[paramType]; explicit || len(types) > 0 {
		s = s.WithTypes(types...)
	}
	if countries := v[paramCountry]; explicit || len(countries) > 0 {
		s = s.WithCountries(countries...)
	}

	if m, ok := pipeline.ParseSortMode(v.Get(paramSort)); ok {
		s = s.WithSort(m)
	}

	if _, ok := v[paramPrevSel]; ok && v.Get(paramPrevSel) != selectionKey(s, f) {
		s = s.WithPage(1)
	}
	return s
}

// selectionKey identifies the filters and sort order of s, ignoring the
// query and page.
func selectionKey(s pipeline.State, f dataset.Facets) string {
	s.Query = ""
	s.Page = 1
	s.Types = slices.Sorted(slices.Values(s.Types))
	s.Countries = slices.Sorted(slices.Values(s.Countries))
	return encodeState(s, f).Encode()
}

// encodeState is the inverse of parseState. Values equal to the dataset
// defaults are left out to keep links short.
func encodeState(s pipeline.State, f dataset.Facets) url.Values {
	def := pipeline.DefaultState(f)
	v := url.Values{}
	if s.Query != "" {
		v.Set(paramQuery, s.Query)
	}
	if s.YearMin != def.YearMin {
		v.Set(paramYearMin, strconv.Itoa(s.YearMin))
	}
	if s.YearMax != def.YearMax {
		v.Set(paramYearMax, strconv.Itoa(s.YearMax))
	}
	if !sameSet(s.Types, def.Types) || !sameSet(s.Countries, def.Countries) {
		v.Set(paramFilters, "1")
		v[paramType] = slices.Clone(s.Types)
		v[paramCountry] = slices.Clone(s.Countries)
	}
	if s.Sort != pipeline.SortRelevance {
		v.Set(paramSort, s.Sort.String())
	}
	if s.Page != 1 {
		v.Set(paramPage, strconv.Itoa(s.Page))
	}
	return v
}

func sameSet(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	sa, sb := slices.Clone(a), slices.Clone(b)
	slices.Sort(sa)
	slices.Sort(sb)
	return slices.Equal(sa, sb)
}
