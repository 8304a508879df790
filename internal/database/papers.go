package database

import (
	"database/sql"
	"fmt"
)

const paperColumns = `id, url, title, authors, keywords, abstract, publication_type,
	publication_year, source_country, abstract_fetched, added_at`

// Papers with a URL are unique by URL. Papers without one (imported rows)
// are unique by title, authors and year.
const insertPaperSQL = `INSERT OR IGNORE INTO papers
	(url, title, authors, keywords, abstract, publication_type, publication_year, source_country)
	SELECT ?1, ?2, ?3, ?4, ?5, ?6, ?7, ?8
	WHERE ?1 IS NOT NULL OR NOT EXISTS (
		SELECT 1 FROM papers
		WHERE url IS NULL AND title = ?2 AND authors = ?3 AND publication_year = ?7
	)`

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

// InsertPaper inserts a paper. Returns the ID on success, 0 if the paper is
// already in the mirror.
func (db *DB) InsertPaper(p Paper) (int64, error) {
	return insertPaper(db.conn, p)
}

// InsertPapers inserts papers in a single transaction and returns how many
// were new.
func (db *DB) InsertPapers(papers []Paper) (int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin insert: %w", err)
	}
	inserted := 0
	for _, p := range papers {
		id, err := insertPaper(tx, p)
		if err != nil {
			tx.Rollback()
			return 0, err
		}
		if id > 0 {
			inserted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert: %w", err)
	}
	return inserted, nil
}

func insertPaper(e execer, p Paper) (int64, error) {
	result, err := e.Exec(insertPaperSQL,
		p.URL, p.Title, p.Authors, p.Keywords, p.Abstract,
		p.PublicationType, p.PublicationYear, p.SourceCountry,
	)
	if err != nil {
		return 0, fmt.Errorf("inserting paper %q: %w", p.Title, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, nil
	}
	return result.LastInsertId()
}

// GetAllPapers returns every paper in insertion order.
func (db *DB) GetAllPapers() ([]Paper, error) {
	rows, err := db.conn.Query(`SELECT ` + paperColumns + ` FROM papers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPapers(rows)
}

// GetPapersNeedingAbstract returns collected papers with an empty abstract
// that have not been fetched yet.
func (db *DB) GetPapersNeedingAbstract() ([]Paper, error) {
	rows, err := db.conn.Query(`SELECT ` + paperColumns + ` FROM papers
		WHERE url IS NOT NULL AND abstract = '' AND abstract_fetched = 0
		ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPapers(rows)
}

// UpdateAbstract stores a fetched abstract.
func (db *DB) UpdateAbstract(paperID int64, abstract string) error {
	_, err := db.conn.Exec(
		"UPDATE papers SET abstract = ?, abstract_fetched = 1 WHERE id = ?",
		abstract, paperID,
	)
	return err
}

// MarkAbstractAttempted records that fetching an abstract was tried.
func (db *DB) MarkAbstractAttempted(paperID int64) error {
	_, err := db.conn.Exec("UPDATE papers SET abstract_fetched = 1 WHERE id = ?", paperID)
	return err
}

// DeleteAllPapers empties the mirror.
func (db *DB) DeleteAllPapers() error {
	_, err := db.conn.Exec("DELETE FROM papers")
	return err
}

// GetStats returns aggregate counts over the mirror.
func (db *DB) GetStats() (*Stats, error) {
	var s Stats
	err := db.conn.QueryRow(`SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN abstract != '' THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN url IS NOT NULL THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN url IS NOT NULL AND abstract = '' AND abstract_fetched = 0 THEN 1 ELSE 0 END), 0)
		FROM papers`).Scan(&s.TotalPapers, &s.WithAbstract, &s.FromFeeds, &s.PendingAbstract)
	if err != nil {
		return nil, fmt.Errorf("counting papers: %w", err)
	}
	return &s, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPapers(rows *sql.Rows) ([]Paper, error) {
	var papers []Paper
	for rows.Next() {
		p, err := scanPaper(rows)
		if err != nil {
			return nil, err
		}
		papers = append(papers, *p)
	}
	return papers, rows.Err()
}

func scanPaper(s scanner) (*Paper, error) {
	var p Paper
	var fetched int
	if err := s.Scan(&p.ID, &p.URL, &p.Title, &p.Authors, &p.Keywords, &p.Abstract,
		&p.PublicationType, &p.PublicationYear, &p.SourceCountry, &fetched, &p.AddedAt); err != nil {
		return nil, err
	}
	p.AbstractFetched = fetched != 0
	return &p, nil
}
