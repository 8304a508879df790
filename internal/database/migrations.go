package database

import "database/sql"

// Migration represents a single schema migration step.
type Migration struct {
	Version     int
	Description string
	Up          func(tx *sql.Tx) error
}

// migrations is the ordered list of all schema migrations.
// Append new migrations to the end with incrementing Version numbers.
var migrations = []Migration{
	{
		Version:     1,
		Description: "papers table",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`
CREATE TABLE IF NOT EXISTS papers (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    url TEXT UNIQUE,
    title TEXT NOT NULL,
    authors TEXT NOT NULL DEFAULT '',
    keywords TEXT NOT NULL DEFAULT '',
    abstract TEXT NOT NULL DEFAULT '',
    publication_type TEXT NOT NULL DEFAULT '',
    publication_year INTEGER NOT NULL DEFAULT 0,
    source_country TEXT NOT NULL DEFAULT '',
    added_at TEXT DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_papers_year ON papers(publication_year);
CREATE INDEX IF NOT EXISTS idx_papers_type ON papers(publication_type);
`)
			return err
		},
	},
	{
		Version:     2,
		Description: "track abstract fetch attempts",
		Up: func(tx *sql.Tx) error {
			exists, err := columnExists(tx, "papers", "abstract_fetched")
			if err != nil || exists {
				return err
			}
			_, err = tx.Exec(`ALTER TABLE papers ADD COLUMN abstract_fetched INTEGER NOT NULL DEFAULT 0`)
			return err
		},
	},
	{
		Version:     3,
		Description: "index imported paper identity",
		Up: func(tx *sql.Tx) error {
			_, err := tx.Exec(`CREATE INDEX IF NOT EXISTS idx_papers_identity
    ON papers(title, authors, publication_year) WHERE url IS NULL`)
			return err
		},
	},
}

// latestVersion returns the highest migration version number.
func latestVersion() int {
	if len(migrations) == 0 {
		return 0
	}
	return migrations[len(migrations)-1].Version
}

func columnExists(tx *sql.Tx, table, column string) (bool, error) {
	var count int
	err := tx.QueryRow(
		"SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?", table, column,
	).Scan(&count)
	return count > 0, err
}
