package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// ErrMissingSource is returned when the dataset file does not exist.
var ErrMissingSource = errors.New("dataset file not found")

// Dataset is the full, read-only set of papers loaded from a source.
type Dataset struct {
	// Header is the source column header, preserved for export.
	Header  []string
	Records []Record
}

// Facets summarizes the values available for filtering.
type Facets struct {
	Types     []string // distinct publication types, sorted; may include ""
	Countries []string // distinct source countries, sorted; may include ""
	MinYear   int      // smallest known year, 0 if none
	MaxYear   int      // largest known year, 0 if none
	// UnknownYear is set when at least one record has no year.
	UnknownYear bool
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Facets computes the distinct filter values present in the dataset.
func (d *Dataset) Facets() Facets {
	var f Facets
	types := make(map[string]struct{})
	countries := make(map[string]struct{})
	for _, r := range d.Records {
		types[r.PublicationType] = struct{}{}
		countries[r.SourceCountry] = struct{}{}
		y := r.PublicationYear
		if y == 0 {
			f.UnknownYear = true
			continue
		}
		if f.MinYear == 0 || y < f.MinYear {
			f.MinYear = y
		}
		if f.MaxYear == 0 || y > f.MaxYear {
			f.MaxYear = y
		}
	}
	f.Types = sortedKeys(types)
	f.Countries = sortedKeys(countries)
	return f
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}

// Open loads a dataset from path. SQLite mirrors (.db, .sqlite, .sqlite3)
// are read from their papers table; anything else is parsed as CSV.
func Open(path string) (*Dataset, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingSource, path)
		}
		return nil, fmt.Errorf("checking dataset: %w", err)
	}
	if IsSQLitePath(path) {
		return LoadSQLite(path)
	}
	return LoadCSV(path)
}

// IsSQLitePath reports whether path names a SQLite mirror.
func IsSQLitePath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}

// LoadCSV reads a CSV dataset from disk.
func LoadCSV(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingSource, path)
		}
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	ds, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return ds, nil
}

// ReadCSV parses a CSV stream whose first row is the header. Short rows are
// padded with empty cells so every record aligns with the header.
func ReadCSV(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return &Dataset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}

	keys := make([]string, len(header))
	for i, h := range header {
		keys[i] = columnKey(h)
	}

	ds := &Dataset{Header: header}
	for {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(ds.Records)+2, err)
		}
		ds.Records = append(ds.Records, recordFromRow(keys, cells))
	}
	return ds, nil
}

func recordFromRow(keys, cells []string) Record {
	row := make([]string, len(keys))
	copy(row, cells)

	rec := Record{row: row}
	for i, key := range keys {
		v := row[i]
		switch key {
		case ColTitle:
			rec.Title = v
		case ColAuthors:
			rec.Authors = v
		case ColKeywords:
			rec.Keywords = v
		case ColAbstract:
			rec.Abstract = v
		case ColType:
			rec.PublicationType = v
		case ColYear:
			rec.PublicationYear = ParseYear(v)
		case ColCountry:
			rec.SourceCountry = v
		}
	}
	return rec
}

// WriteCSV writes header followed by one row per record. Records read from
// a source with the same header are written back unchanged.
func WriteCSV(w io.Writer, header []string, records []Record) error {
	if len(header) == 0 {
		header = CanonicalHeader
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write(r.Row(header)); err != nil {
			return fmt.Errorf("writing row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}
