package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/PaperSearch/internal/database"
	"github.com/TobiSchelling/PaperSearch/internal/dataset"
)

func TestImportRecordsTwiceAddsNothing(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "mirror.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	records := []dataset.Record{
		{Title: "Spawning behavior of milkfish", Authors: "Doe, J.", PublicationYear: 2019},
		{Title: "Mangrove carbon stocks", Authors: "Roe, R.", PublicationYear: 2015},
	}

	n, err := importRecords(db, records, false)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = importRecords(db, records, false)
	require.NoError(t, err)
	assert.Zero(t, n)

	papers, err := db.GetAllPapers()
	require.NoError(t, err)
	assert.Len(t, papers, 2)
}

func TestImportRecordsReplace(t *testing.T) {
	db, err := database.Open(filepath.Join(t.TempDir(), "mirror.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = importRecords(db, []dataset.Record{{Title: "Old"}}, false)
	require.NoError(t, err)

	n, err := importRecords(db, []dataset.Record{{Title: "New"}}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	papers, err := db.GetAllPapers()
	require.NoError(t, err)
	require.Len(t, papers, 1)
	assert.Equal(t, "New", papers[0].Title)
}
