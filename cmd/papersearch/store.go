package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/PaperSearch/internal/collect"
	"github.com/TobiSchelling/PaperSearch/internal/database"
	"github.com/TobiSchelling/PaperSearch/internal/dataset"
	"github.com/TobiSchelling/PaperSearch/internal/fetch"
)

// --- import command ---

var (
	importDB      string
	importReplace bool
)

var importCmd = &cobra.Command{
	Use:   "import [csv]",
	Short: "Copy a CSV dataset into the SQLite mirror, skipping papers already there",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := dataset.LoadCSV(args[0])
		if err != nil {
			return err
		}

		db, err := openDB(importDB)
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := importRecords(db, ds.Records, importReplace)
		if err != nil {
			return err
		}

		fmt.Printf("Imported %d paper(s) into %s, skipped %d already present\n",
			n, db.Path(), len(ds.Records)-n)
		return printMirrorStats(db)
	},
}

// importRecords stores records in the mirror and returns how many were new.
// Records already in the mirror (same title, authors and year) are skipped.
func importRecords(db *database.DB, records []dataset.Record, replace bool) (int, error) {
	if replace {
		if err := db.DeleteAllPapers(); err != nil {
			return 0, fmt.Errorf("clearing mirror: %w", err)
		}
	}
	papers := make([]database.Paper, len(records))
	for i, r := range records {
		papers[i] = dataset.ToPaper(r)
	}
	n, err := db.InsertPapers(papers)
	if err != nil {
		return 0, fmt.Errorf("importing papers: %w", err)
	}
	return n, nil
}

func init() {
	importCmd.Flags().StringVar(&importDB, "db", "", "SQLite mirror path (default: database.path)")
	importCmd.Flags().BoolVar(&importReplace, "replace", false, "Delete existing papers before importing")
}

// --- collect command ---

var (
	collectDB string
	noFetch   bool
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect papers from configured feeds into the SQLite mirror",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB(collectDB)
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Println("Collecting papers from feeds...")
		collector := collect.NewCollector(cfg, db, nil)
		result, err := collector.Collect(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Println("\nCollection complete:")
		fmt.Printf("  Total found: %d\n", result.TotalFound)
		fmt.Printf("  New papers: %d\n", result.NewPapers)
		fmt.Printf("  Duplicates skipped: %d\n", result.Duplicates)

		if len(result.Sources) > 0 {
			fmt.Println("\nPapers by feed:")
			// Sort feeds by count descending
			type kv struct {
				key string
				val int
			}
			var sorted []kv
			for k, v := range result.Sources {
				sorted = append(sorted, kv{k, v})
			}
			sort.Slice(sorted, func(i, j int) bool { return sorted[i].val > sorted[j].val })
			for _, s := range sorted {
				fmt.Printf("  %s: %d\n", s.key, s.val)
			}
		}

		if !noFetch {
			fmt.Println("\nFetching missing abstracts...")
			fetcher := fetch.NewAbstractFetcher(db, cfg.FetchTimeout(), cfg.Fetch.UserAgent)
			fr, err := fetcher.FetchMissingAbstracts(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Printf("  Fetched: %d\n", fr.Fetched)
			fmt.Printf("  Failed: %d\n", fr.Failed)
		}

		fmt.Println()
		if err := printMirrorStats(db); err != nil {
			return err
		}
		if !dataset.IsSQLitePath(cfg.Dataset.Path) {
			fmt.Printf("\nSet dataset.path to %s to search the mirror.\n", db.Path())
		}
		return nil
	},
}

func init() {
	collectCmd.Flags().StringVar(&collectDB, "db", "", "SQLite mirror path (default: database.path)")
	collectCmd.Flags().BoolVar(&noFetch, "no-fetch", false, "Skip fetching missing abstracts")
}

func printMirrorStats(db *database.DB) error {
	stats, err := db.GetStats()
	if err != nil {
		return fmt.Errorf("getting stats: %w", err)
	}
	fmt.Println("Mirror:")
	fmt.Printf("  Total papers: %d\n", stats.TotalPapers)
	fmt.Printf("  With abstract: %d\n", stats.WithAbstract)
	fmt.Printf("  From feeds: %d\n", stats.FromFeeds)
	fmt.Printf("  Awaiting abstract: %d\n", stats.PendingAbstract)
	return nil
}
