package dataset

import (
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode"
)

// Column keys for the fields a Record carries. Header cells are matched
// against these after normalization, so "Author/s" and "authors" both map
// to ColAuthors.
const (
	ColTitle    = "title"
	ColAuthors  = "authors"
	ColKeywords = "keywords"
	ColAbstract = "abstract"
	ColType     = "publicationtype"
	ColYear     = "publicationyear"
	ColCountry  = "sourcecountry"
)

// CanonicalHeader is the header used when a dataset has no source file
// header of its own (e.g. the SQLite mirror).
var CanonicalHeader = []string{
	"Title",
	"Author/s",
	"Keywords",
	"Abstract",
	"Publication Type",
	"Publication Year",
	"Source Country",
}

var columnAliases = map[string]string{
	"title":           ColTitle,
	"authors":         ColAuthors,
	"author":          ColAuthors,
	"keywords":        ColKeywords,
	"keyword":         ColKeywords,
	"abstract":        ColAbstract,
	"publicationtype": ColType,
	"type":            ColType,
	"publicationyear": ColYear,
	"year":            ColYear,
	"sourcecountry":   ColCountry,
	"country":         ColCountry,
}

// Record is one research paper. All defaults are resolved when the record
// is built; the zero value of every field is the "absent" value.
type Record struct {
	Title           string
	Authors         string
	Keywords        string
	Abstract        string
	PublicationType string
	PublicationYear int // 0 when unknown
	SourceCountry   string

	// row holds the source cells exactly as read, aligned with the
	// dataset header.
	row []string
}

// HasAbstract reports whether the record carries a non-blank abstract.
func (r Record) HasAbstract() bool {
	return strings.TrimSpace(r.Abstract) != ""
}

// Row returns the record's cells aligned with header. Records read from a
// file return their source cells verbatim; others are rendered from their
// typed fields.
func (r Record) Row(header []string) []string {
	if r.row != nil && len(r.row) == len(header) {
		return slices.Clone(r.row)
	}
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = r.field(columnKey(h))
	}
	return out
}

func (r Record) field(key string) string {
	switch key {
	case ColTitle:
		return r.Title
	case ColAuthors:
		return r.Authors
	case ColKeywords:
		return r.Keywords
	case ColAbstract:
		return r.Abstract
	case ColType:
		return r.PublicationType
	case ColYear:
		if r.PublicationYear == 0 {
			return ""
		}
		return strconv.Itoa(r.PublicationYear)
	case ColCountry:
		return r.SourceCountry
	}
	return ""
}

// columnKey normalizes a header cell to one of the Col* keys, or returns
// the normalized text when it names no known field.
func columnKey(header string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(header) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	norm := b.String()
	if key, ok := columnAliases[norm]; ok {
		return key
	}
	return norm
}

// ParseYear coerces a year cell to an integer. Blank and non-numeric cells
// yield 0; whole floats such as "2019.0" are accepted.
func ParseYear(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return 0
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return int(f)
}
