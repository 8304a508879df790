package main

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TobiSchelling/PaperSearch/internal/dataset"
	"github.com/TobiSchelling/PaperSearch/internal/pipeline"
)

var facets = dataset.Facets{
	Types:     []string{"Report", "Thesis"},
	Countries: []string{"Indonesia", "Philippines"},
	MinYear:   2010,
	MaxYear:   2020,
}

func parseQueryFlags(t *testing.T, args ...string) (*cobra.Command, *queryFlags) {
	t.Helper()
	q := &queryFlags{}
	cmd := &cobra.Command{Use: "test"}
	q.register(cmd)
	cmd.Flags().IntVar(&q.page, "page", 1, "")
	require.NoError(t, cmd.ParseFlags(args))
	return cmd, q
}

func TestQueryFlagsDefaults(t *testing.T) {
	cmd, q := parseQueryFlags(t, "-q", "fish")

	s, err := q.state(cmd, facets)
	require.NoError(t, err)
	assert.Equal(t, "fish", s.Query)
	assert.Equal(t, 2010, s.YearMin)
	assert.Equal(t, 2020, s.YearMax)
	assert.Equal(t, facets.Types, s.Types)
	assert.Equal(t, facets.Countries, s.Countries)
	assert.Equal(t, pipeline.SortRelevance, s.Sort)
	assert.Equal(t, 1, s.Page)
}

func TestQueryFlagsOverrides(t *testing.T) {
	cmd, q := parseQueryFlags(t,
		"-q", "fish",
		"--year-min", "2012",
		"--type", "Thesis",
		"--country", "Indonesia,Philippines",
		"--sort", "title_asc",
		"--page", "3",
	)

	s, err := q.state(cmd, facets)
	require.NoError(t, err)
	assert.Equal(t, 2012, s.YearMin)
	assert.Equal(t, 2020, s.YearMax)
	assert.Equal(t, []string{"Thesis"}, s.Types)
	assert.Equal(t, []string{"Indonesia", "Philippines"}, s.Countries)
	assert.Equal(t, pipeline.SortTitleAsc, s.Sort)
	assert.Equal(t, 3, s.Page)
}

func TestQueryFlagsRejectsUnknownSort(t *testing.T) {
	cmd, q := parseQueryFlags(t, "--sort", "newest")

	_, err := q.state(cmd, facets)
	assert.ErrorContains(t, err, "unknown sort order")
}
