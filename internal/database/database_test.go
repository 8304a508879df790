package database

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func ptr(s string) *string { return &s }

func paperByID(t *testing.T, db *DB, id int64) *Paper {
	t.Helper()
	papers, err := db.GetAllPapers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range papers {
		if papers[i].ID == id {
			return &papers[i]
		}
	}
	t.Fatalf("paper %d not found", id)
	return nil
}

func TestInsertPaper(t *testing.T) {
	db := openTestDB(t)
	id, err := db.InsertPaper(Paper{
		Title:           "Spawning Behavior of Reef Fish",
		Authors:         "Doe, J.; Roe, R.",
		Keywords:        "reef; spawning",
		PublicationType: "Journal Article",
		PublicationYear: 2019,
		SourceCountry:   "Philippines",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == 0 {
		t.Fatal("expected non-zero paper ID")
	}

	p := paperByID(t, db, id)
	if p.Title != "Spawning Behavior of Reef Fish" {
		t.Errorf("expected title to round-trip, got %q", p.Title)
	}
	if p.PublicationYear != 2019 {
		t.Errorf("expected year 2019, got %d", p.PublicationYear)
	}
	if p.URL != nil {
		t.Errorf("expected nil URL, got %q", *p.URL)
	}
}

func TestInsertDuplicateURL(t *testing.T) {
	db := openTestDB(t)
	_, _ = db.InsertPaper(Paper{URL: ptr("https://example.com/p1"), Title: "First"})
	id, err := db.InsertPaper(Paper{URL: ptr("https://example.com/p1"), Title: "Duplicate"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 0 {
		t.Error("expected 0 for duplicate paper")
	}
}

func TestPapersWithoutURLDedupeOnIdentity(t *testing.T) {
	db := openTestDB(t)
	n, err := db.InsertPapers([]Paper{
		{Title: "A", Authors: "Doe, J.", PublicationYear: 2019},
		{Title: "A", Authors: "Doe, J.", PublicationYear: 2020},
		{Title: "A", Authors: "Roe, R.", PublicationYear: 2019},
		{Title: "B", Authors: "Doe, J.", PublicationYear: 2019},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 4 {
		t.Errorf("expected 4 inserted, got %d", n)
	}

	// A second import of the same rows adds nothing.
	n, err = db.InsertPapers([]Paper{
		{Title: "A", Authors: "Doe, J.", PublicationYear: 2019},
		{Title: "B", Authors: "Doe, J.", PublicationYear: 2019},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 inserted on re-import, got %d", n)
	}
	papers, _ := db.GetAllPapers()
	if len(papers) != 4 {
		t.Errorf("expected 4 papers after re-import, got %d", len(papers))
	}
}

func TestCollectedPaperDoesNotShadowImportedOne(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.InsertPaper(Paper{URL: ptr("https://a.org/1"), Title: "A"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	id, err := db.InsertPaper(Paper{Title: "A"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id == 0 {
		t.Error("expected imported paper to be inserted alongside a collected one")
	}
}

func TestGetAllPapersKeepsInsertionOrder(t *testing.T) {
	db := openTestDB(t)
	db.InsertPapers([]Paper{{Title: "Zeta"}, {Title: "Alpha"}, {Title: "Mu"}})

	papers, err := db.GetAllPapers()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(papers) != 3 {
		t.Fatalf("expected 3 papers, got %d", len(papers))
	}
	want := []string{"Zeta", "Alpha", "Mu"}
	for i, p := range papers {
		if p.Title != want[i] {
			t.Errorf("paper %d: expected %q, got %q", i, want[i], p.Title)
		}
	}
}

func TestAbstractLifecycle(t *testing.T) {
	db := openTestDB(t)
	id1, _ := db.InsertPaper(Paper{URL: ptr("https://a.org/1"), Title: "No abstract"})
	db.InsertPaper(Paper{URL: ptr("https://a.org/2"), Title: "Has abstract", Abstract: "Text"})
	db.InsertPaper(Paper{Title: "Imported, no URL"})

	needing, err := db.GetPapersNeedingAbstract()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(needing) != 1 {
		t.Fatalf("expected 1 paper needing abstract, got %d", len(needing))
	}
	if needing[0].ID != id1 {
		t.Errorf("expected paper %d, got %d", id1, needing[0].ID)
	}

	if err := db.UpdateAbstract(id1, "Fetched abstract"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p := paperByID(t, db, id1)
	if p.Abstract != "Fetched abstract" {
		t.Errorf("expected abstract to be updated, got %q", p.Abstract)
	}
	if !p.AbstractFetched {
		t.Error("expected abstract_fetched to be true")
	}

	needing, _ = db.GetPapersNeedingAbstract()
	if len(needing) != 0 {
		t.Errorf("expected 0 papers needing abstract, got %d", len(needing))
	}
}

func TestMarkAbstractAttempted(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.InsertPaper(Paper{URL: ptr("https://a.org/1"), Title: "Unreachable"})

	if err := db.MarkAbstractAttempted(id); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	needing, _ := db.GetPapersNeedingAbstract()
	if len(needing) != 0 {
		t.Errorf("expected attempted paper to be skipped, got %d", len(needing))
	}
}

func TestGetStats(t *testing.T) {
	db := openTestDB(t)
	db.InsertPaper(Paper{Title: "Imported", Abstract: "x"})
	db.InsertPaper(Paper{URL: ptr("https://a.org/1"), Title: "Collected"})
	db.InsertPaper(Paper{URL: ptr("https://a.org/2"), Title: "Collected with abstract", Abstract: "y"})

	stats, err := db.GetStats()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.TotalPapers != 3 {
		t.Errorf("expected total 3, got %d", stats.TotalPapers)
	}
	if stats.WithAbstract != 2 {
		t.Errorf("expected 2 with abstract, got %d", stats.WithAbstract)
	}
	if stats.FromFeeds != 2 {
		t.Errorf("expected 2 from feeds, got %d", stats.FromFeeds)
	}
	if stats.PendingAbstract != 1 {
		t.Errorf("expected 1 pending abstract, got %d", stats.PendingAbstract)
	}
}

func TestDeleteAllPapers(t *testing.T) {
	db := openTestDB(t)
	db.InsertPapers([]Paper{{Title: "A"}, {Title: "B"}})

	if err := db.DeleteAllPapers(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	papers, _ := db.GetAllPapers()
	if len(papers) != 0 {
		t.Errorf("expected empty mirror, got %d papers", len(papers))
	}
}
