package stats

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/TobiSchelling/PaperSearch/internal/dataset"
)

func TestSummarize(t *testing.T) {
	recs := []dataset.Record{
		{PublicationType: "Journal Article", PublicationYear: 2019, SourceCountry: "Philippines", Abstract: "x"},
		{PublicationType: "Thesis", PublicationYear: 2021, SourceCountry: "Indonesia"},
		{PublicationType: "Journal Article", PublicationYear: 2019, SourceCountry: "Philippines"},
		{PublicationType: "", PublicationYear: 0, SourceCountry: ""},
		{PublicationType: "Report", PublicationYear: 2015, SourceCountry: "Indonesia", Abstract: "  "},
	}

	s := Summarize(recs)
	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 1, s.WithAbstract)
	assert.Equal(t, 2015, s.MinYear)
	assert.Equal(t, 2021, s.MaxYear)

	assert.Equal(t, []Count{
		{"2015", 1}, {"2019", 2}, {"2021", 1}, {UnknownLabel, 1},
	}, s.ByYear)
	assert.Equal(t, []Count{
		{"Journal Article", 2}, {"Report", 1}, {"Thesis", 1}, {UnknownLabel, 1},
	}, s.ByType)
	assert.Equal(t, []Count{
		{"Indonesia", 2}, {"Philippines", 2}, {UnknownLabel, 1},
	}, s.ByCountry)
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Total)
	assert.Empty(t, s.ByYear)
	assert.Empty(t, s.ByType)
}

func TestBars(t *testing.T) {
	bars := Bars([]Count{{"a", 4}, {"b", 2}, {"c", 0}})
	assert.Equal(t, 100, bars[0].Width)
	assert.Equal(t, 50, bars[1].Width)
	assert.Equal(t, 0, bars[2].Width)
	assert.Equal(t, "b", bars[1].Label)

	assert.Empty(t, Bars(nil))
}
