package collect

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog/log"

	"github.com/TobiSchelling/PaperSearch/internal/database"
)

const maxPerFeed = 100

// FeedConfig represents a single feed configuration.
type FeedConfig struct {
	URL             string
	Name            string
	PublicationType string
	SourceCountry   string
}

// FeedParser parses RSS/Atom feeds into papers.
type FeedParser struct {
	feeds  []FeedConfig
	parser *gofeed.Parser
}

// NewFeedParser creates a new FeedParser. A nil client uses one with a
// 30 second timeout.
func NewFeedParser(feeds []FeedConfig, client *http.Client, userAgent string) *FeedParser {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	if userAgent != "" {
		parser.UserAgent = userAgent
	}
	return &FeedParser{feeds: feeds, parser: parser}
}

// ParseAll parses every configured feed. A feed that fails is logged and
// skipped; the returned map counts papers per feed name.
func (fp *FeedParser) ParseAll(ctx context.Context) ([]database.Paper, map[string]int) {
	var all []database.Paper
	perFeed := make(map[string]int)

	for _, fc := range fp.feeds {
		if ctx.Err() != nil {
			break
		}
		if fc.Name == "" {
			fc.Name = extractSourceName(fc.URL)
		}

		papers, err := fp.parseFeed(ctx, fc)
		if err != nil {
			log.Warn().Str("component", "collect").Str("feed", fc.URL).Err(err).Msg("Failed to parse feed")
			continue
		}
		all = append(all, papers...)
		perFeed[fc.Name] += len(papers)
		log.Info().Str("component", "collect").Str("feed", fc.Name).Int("papers", len(papers)).Msg("Parsed feed")
	}

	return all, perFeed
}

func (fp *FeedParser) parseFeed(ctx context.Context, fc FeedConfig) ([]database.Paper, error) {
	feed, err := fp.parser.ParseURLWithContext(fc.URL, ctx)
	if err != nil {
		return nil, err
	}

	var papers []database.Paper
	for _, item := range feed.Items {
		if len(papers) >= maxPerFeed {
			break
		}
		if p := parseItem(item, fc); p != nil {
			papers = append(papers, *p)
		}
	}
	return papers, nil
}

func parseItem(item *gofeed.Item, fc FeedConfig) *database.Paper {
	itemURL := item.Link
	if itemURL == "" {
		itemURL = item.GUID
	}
	if itemURL == "" {
		return nil
	}

	title := normalizeSpace(item.Title)
	if title == "" {
		return nil
	}

	var year int
	if item.PublishedParsed != nil {
		year = item.PublishedParsed.Year()
	} else if item.UpdatedParsed != nil {
		year = item.UpdatedParsed.Year()
	}

	abstract := item.Description
	if abstract == "" {
		abstract = item.Content
	}

	return &database.Paper{
		URL:             &itemURL,
		Title:           title,
		Authors:         authorNames(item),
		Keywords:        strings.Join(item.Categories, "; "),
		Abstract:        cleanAbstract(abstract),
		PublicationType: fc.PublicationType,
		PublicationYear: year,
		SourceCountry:   fc.SourceCountry,
	}
}

func authorNames(item *gofeed.Item) string {
	var names []string
	for _, a := range item.Authors {
		if a != nil && strings.TrimSpace(a.Name) != "" {
			names = append(names, strings.TrimSpace(a.Name))
		}
	}
	if len(names) == 0 && item.Author != nil {
		return strings.TrimSpace(item.Author.Name)
	}
	return strings.Join(names, "; ")
}

// cleanAbstract reduces an item description to plain text. Feeds that
// prefix the abstract with announcement metadata ("... Abstract: text")
// keep only the text after the marker.
func cleanAbstract(description string) string {
	text := stripHTML(description)
	if i := strings.Index(text, "Abstract:"); i >= 0 {
		text = strings.TrimSpace(text[i+len("Abstract:"):])
	}
	return text
}

// stripHTML returns the text content of an HTML fragment with entities
// decoded and whitespace collapsed.
func stripHTML(fragment string) string {
	if !strings.Contains(fragment, "<") && !strings.Contains(fragment, "&") {
		return normalizeSpace(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return normalizeSpace(fragment)
	}
	// Keep words in adjacent blocks apart.
	doc.Find(blockElements).AppendHtml(" ")
	return normalizeSpace(doc.Text())
}

const blockElements = "p, br, div, li, tr, td, h1, h2, h3, h4, h5, h6, blockquote"

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func extractSourceName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Hostname() == "" {
		return feedURL
	}
	host := strings.ToLower(u.Hostname())

	for _, prefix := range []string{"www.", "blog.", "blogs.", "rss.", "feeds."} {
		host = strings.TrimPrefix(host, prefix)
	}

	parts := strings.Split(host, ".")
	if len(parts) >= 2 {
		name := parts[len(parts)-2]
		return strings.ToUpper(name[:1]) + name[1:]
	}
	return strings.ToUpper(host[:1]) + host[1:]
}
