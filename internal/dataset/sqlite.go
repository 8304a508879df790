package dataset

import (
	"fmt"
	"slices"

	"github.com/TobiSchelling/PaperSearch/internal/database"
)

// LoadSQLite reads every paper from a SQLite mirror. The dataset uses
// CanonicalHeader since the mirror keeps no source header.
func LoadSQLite(path string) (*Dataset, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	papers, err := db.GetAllPapers()
	if err != nil {
		return nil, fmt.Errorf("reading papers: %w", err)
	}

	ds := &Dataset{
		Header:  slices.Clone(CanonicalHeader),
		Records: make([]Record, len(papers)),
	}
	for i, p := range papers {
		ds.Records[i] = FromPaper(p)
	}
	return ds, nil
}

// FromPaper converts a mirror row to a Record.
func FromPaper(p database.Paper) Record {
	return Record{
		Title:           p.Title,
		Authors:         p.Authors,
		Keywords:        p.Keywords,
		Abstract:        p.Abstract,
		PublicationType: p.PublicationType,
		PublicationYear: p.PublicationYear,
		SourceCountry:   p.SourceCountry,
	}
}

// ToPaper converts a Record to a mirror row without a URL.
func ToPaper(r Record) database.Paper {
	return database.Paper{
		Title:           r.Title,
		Authors:         r.Authors,
		Keywords:        r.Keywords,
		Abstract:        r.Abstract,
		PublicationType: r.PublicationType,
		PublicationYear: r.PublicationYear,
		SourceCountry:   r.SourceCountry,
	}
}
