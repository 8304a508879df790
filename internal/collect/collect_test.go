package collect

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/PaperSearch/internal/config"
	"github.com/TobiSchelling/PaperSearch/internal/database"
)

const fixtureFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:dc="http://purl.org/dc/elements/1.1/">
<channel>
  <title>Fixture Papers</title>
  <link>https://example.org</link>
  <description>Fixture feed</description>
  <item>
    <title>Spawning behavior
      of milkfish</title>
    <link>https://example.org/papers/1</link>
    <description>&lt;p&gt;arXiv:2401.00001 Announce Type: new Abstract: Milkfish &amp;amp; &lt;b&gt;spawning&lt;/b&gt;.&lt;/p&gt;</description>
    <category>aquaculture</category>
    <category>fish</category>
    <dc:creator>Ana Cruz</dc:creator>
    <pubDate>Mon, 15 Jan 2024 10:00:00 GMT</pubDate>
  </item>
  <item>
    <title>Item without a link</title>
  </item>
  <item>
    <title>Mangrove carbon stocks</title>
    <link>https://example.org/papers/2</link>
    <pubDate>Mon, 02 Jan 2023 10:00:00 GMT</pubDate>
  </item>
</channel>
</rss>`

func newFeedServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/feed.xml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(fixtureFeed))
	})
	mux.HandleFunc("/broken.xml", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func openTestDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestParseAllMapsItemsToPapers(t *testing.T) {
	srv := newFeedServer(t)
	fp := NewFeedParser([]FeedConfig{{
		URL:             srv.URL + "/feed.xml",
		Name:            "Fixture",
		PublicationType: "Preprint",
		SourceCountry:   "Philippines",
	}}, srv.Client(), "PaperSearch/test")

	papers, perFeed := fp.ParseAll(context.Background())
	require.Len(t, papers, 2)
	assert.Equal(t, 2, perFeed["Fixture"])

	p := papers[0]
	require.NotNil(t, p.URL)
	assert.Equal(t, "https://example.org/papers/1", *p.URL)
	assert.Equal(t, "Spawning behavior of milkfish", p.Title)
	assert.Equal(t, "Ana Cruz", p.Authors)
	assert.Equal(t, "aquaculture; fish", p.Keywords)
	assert.Equal(t, "Milkfish & spawning.", p.Abstract)
	assert.Equal(t, "Preprint", p.PublicationType)
	assert.Equal(t, 2024, p.PublicationYear)
	assert.Equal(t, "Philippines", p.SourceCountry)

	assert.Equal(t, 2023, papers[1].PublicationYear)
	assert.Empty(t, papers[1].Abstract)
}

func TestParseAllSkipsBrokenFeeds(t *testing.T) {
	srv := newFeedServer(t)
	fp := NewFeedParser([]FeedConfig{
		{URL: srv.URL + "/broken.xml", Name: "Broken"},
		{URL: srv.URL + "/feed.xml", Name: "Fixture"},
	}, srv.Client(), "")

	papers, perFeed := fp.ParseAll(context.Background())
	assert.Len(t, papers, 2)
	assert.NotContains(t, perFeed, "Broken")
}

func TestCollectStoresNewPapersOnce(t *testing.T) {
	srv := newFeedServer(t)
	db := openTestDB(t)
	cfg := &config.Config{Feeds: []config.Feed{{
		URL:             srv.URL + "/feed.xml",
		Name:            "Fixture",
		PublicationType: "Preprint",
	}}}
	c := NewCollector(cfg, db, srv.Client())

	r, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, r.TotalFound)
	assert.Equal(t, 2, r.NewPapers)
	assert.Equal(t, 0, r.Duplicates)
	assert.Equal(t, 2, r.Sources["Fixture"])

	r, err = c.Collect(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, r.NewPapers)
	assert.Equal(t, 2, r.Duplicates)

	papers, err := db.GetAllPapers()
	require.NoError(t, err)
	assert.Len(t, papers, 2)
}

func TestCollectWithoutFeeds(t *testing.T) {
	db := openTestDB(t)
	c := NewCollector(&config.Config{}, db, nil)

	r, err := c.Collect(context.Background())
	require.NoError(t, err)
	assert.Zero(t, r.TotalFound)
}

func TestStripHTML(t *testing.T) {
	tests := map[string]string{
		"plain text":                    "plain text",
		"  spaced \n  out  ":            "spaced out",
		"<p>one</p><p>two</p>":          "one two",
		"a &amp; b":                     "a & b",
		"<i>x</i>&lt;y&gt;":             "x<y>",
		"<ul><li>a</li><li>b</li></ul>": "a b",
		"":                              "",
	}
	for in, want := range tests {
		assert.Equal(t, want, stripHTML(in), "input %q", in)
	}
}

func TestExtractSourceName(t *testing.T) {
	assert.Equal(t, "Arxiv", extractSourceName("https://rss.arxiv.org/atom/q-bio.PE"))
	assert.Equal(t, "Nature", extractSourceName("https://www.nature.com/nature.rss"))
	assert.Equal(t, "not a url", extractSourceName("not a url"))
}
