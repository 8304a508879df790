// Package collect ingests papers from RSS/Atom feeds into the SQLite mirror.
package collect

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/TobiSchelling/PaperSearch/internal/config"
	"github.com/TobiSchelling/PaperSearch/internal/database"
)

// Result holds the results of a collection run.
type Result struct {
	TotalFound int
	NewPapers  int
	Duplicates int
	Sources    map[string]int
}

// Collector orchestrates paper collection from RSS feeds.
type Collector struct {
	db         *database.DB
	feedParser *FeedParser
}

// NewCollector creates a new paper collector for the feeds in cfg.
func NewCollector(cfg *config.Config, db *database.DB, client *http.Client) *Collector {
	c := &Collector{db: db}

	if len(cfg.Feeds) > 0 {
		feeds := make([]FeedConfig, len(cfg.Feeds))
		for i, f := range cfg.Feeds {
			feeds[i] = FeedConfig{
				URL:             f.URL,
				Name:            f.Name,
				PublicationType: f.PublicationType,
				SourceCountry:   f.SourceCountry,
			}
		}
		if client == nil {
			client = &http.Client{Timeout: cfg.FetchTimeout()}
		}
		c.feedParser = NewFeedParser(feeds, client, cfg.Fetch.UserAgent)
	}

	return c
}

// Collect collects papers from all configured feeds. Papers whose URL is
// already in the mirror count as duplicates. A paper that fails to store is
// logged and skipped.
func (c *Collector) Collect(ctx context.Context) (*Result, error) {
	r := &Result{Sources: make(map[string]int)}
	if c.feedParser == nil {
		log.Info().Str("component", "collect").Msg("No feeds configured")
		return r, nil
	}

	log.Info().Str("component", "collect").Msg("Collecting from RSS feeds...")
	papers, perFeed := c.feedParser.ParseAll(ctx)
	r.TotalFound = len(papers)

	for _, p := range papers {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		id, err := c.db.InsertPaper(p)
		if err != nil {
			log.Warn().Str("component", "collect").Str("url", *p.URL).Err(err).Msg("Failed to store paper")
			continue
		}
		if id > 0 {
			r.NewPapers++
		} else {
			r.Duplicates++
		}
	}
	for name, n := range perFeed {
		r.Sources[name] = n
	}

	log.Info().
		Str("component", "collect").
		Int("found", r.TotalFound).
		Int("new", r.NewPapers).
		Int("duplicates", r.Duplicates).
		Msg("Collection complete")
	return r, nil
}
