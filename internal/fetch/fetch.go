// Package fetch fills in missing abstracts of collected papers from their
// landing pages.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog/log"

	"github.com/TobiSchelling/PaperSearch/internal/database"
)

const (
	minAbstractLen = 100
	maxAbstractLen = 3000
	maxBodyBytes   = 5 << 20
)

// DefaultUserAgent is sent when no user agent is configured.
const DefaultUserAgent = "PaperSearch/1.0 (+abstract fetcher)"

// Result holds the results of an abstract fetch run.
type Result struct {
	Fetched int
	Failed  int
}

// AbstractFetcher fetches landing pages and extracts an abstract with
// readability.
type AbstractFetcher struct {
	db        *database.DB
	client    *http.Client
	userAgent string
}

// NewAbstractFetcher creates a new abstract fetcher.
func NewAbstractFetcher(db *database.DB, timeout time.Duration, userAgent string) *AbstractFetcher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &AbstractFetcher{
		db:        db,
		userAgent: userAgent,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// FetchMissingAbstracts fetches abstracts for collected papers that have
// none. Every paper is marked as attempted so it is not retried; after an
// HTTP error the remaining papers from that host are skipped.
func (f *AbstractFetcher) FetchMissingAbstracts(ctx context.Context) (*Result, error) {
	papers, err := f.db.GetPapersNeedingAbstract()
	if err != nil {
		return nil, fmt.Errorf("listing papers needing abstracts: %w", err)
	}

	result := &Result{}
	if len(papers) == 0 {
		log.Info().Str("component", "fetch").Msg("No papers need abstracts")
		return result, nil
	}

	failedHosts := make(map[string]struct{})

	for _, p := range papers {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if p.URL == nil {
			continue
		}
		paperURL := *p.URL
		host := ""
		if u, err := url.Parse(paperURL); err == nil {
			host = strings.ToLower(u.Host)
		}

		if _, failed := failedHosts[host]; failed {
			f.markAttempted(p.ID)
			result.Failed++
			continue
		}

		abstract, httpErr := f.fetchAbstract(ctx, paperURL)
		if httpErr != nil {
			f.markAttempted(p.ID)
			result.Failed++
			if host != "" {
				failedHosts[host] = struct{}{}
			}
			log.Warn().Str("component", "fetch").Str("url", paperURL).Err(httpErr).
				Msgf("HTTP error, skipping remaining papers from %s", host)
			continue
		}

		if abstract == "" {
			f.markAttempted(p.ID)
			result.Failed++
			log.Debug().Str("component", "fetch").Str("url", paperURL).Msg("No extractable abstract")
			continue
		}

		if err := f.db.UpdateAbstract(p.ID, abstract); err != nil {
			return result, fmt.Errorf("storing abstract for paper %d: %w", p.ID, err)
		}
		result.Fetched++
		log.Debug().Str("component", "fetch").Str("title", p.Title).Msg("Fetched abstract")
	}

	log.Info().Str("component", "fetch").Int("fetched", result.Fetched).Int("failed", result.Failed).
		Msg("Abstract fetch complete")
	return result, nil
}

func (f *AbstractFetcher) markAttempted(id int64) {
	if err := f.db.MarkAbstractAttempted(id); err != nil {
		log.Error().Str("component", "fetch").Int64("paper", id).Err(err).Msg("Marking fetch attempt")
	}
}

// fetchAbstract returns the extracted abstract, or "" when the page could
// not be read. Only HTTP status failures are returned as errors.
func (f *AbstractFetcher) fetchAbstract(ctx context.Context, paperURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, paperURL, nil)
	if err != nil {
		return "", nil
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", nil // connection error, not HTTP error
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return "", &httpError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", nil
	}

	parsedURL, _ := url.Parse(paperURL)
	article, err := readability.FromReader(strings.NewReader(string(body)), parsedURL)
	if err != nil {
		return "", nil
	}
	return pickAbstract(article.Excerpt, article.TextContent), nil
}

// pickAbstract prefers the page summary (usually the meta description)
// and falls back to the leading part of the readable text.
func pickAbstract(excerpt, text string) string {
	if e := strings.Join(strings.Fields(excerpt), " "); len(e) >= minAbstractLen {
		return truncate(e, maxAbstractLen)
	}
	if t := strings.Join(strings.Fields(text), " "); len(t) >= minAbstractLen {
		return truncate(t, maxAbstractLen)
	}
	return ""
}

// truncate cuts s to at most n bytes on a rune boundary.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimSpace(s[:cut]) + "…"
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return fmt.Sprintf("%d %s", e.code, http.StatusText(e.code))
}
