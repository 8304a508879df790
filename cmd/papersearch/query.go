package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/PaperSearch/internal/dataset"
	"github.com/TobiSchelling/PaperSearch/internal/pipeline"
	"github.com/TobiSchelling/PaperSearch/internal/server"
	"github.com/TobiSchelling/PaperSearch/internal/stats"
	"github.com/TobiSchelling/PaperSearch/internal/termview"
)

// queryFlags are the search and filter flags shared by search and export.
type queryFlags struct {
	query     string
	yearMin   int
	yearMax   int
	types     []string
	countries []string
	sort      string
	page      int
}

func (q *queryFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&q.query, "query", "q", "", "Text to search for in titles, authors, keywords and abstracts")
	cmd.Flags().IntVar(&q.yearMin, "year-min", 0, "Earliest publication year (default: dataset minimum)")
	cmd.Flags().IntVar(&q.yearMax, "year-max", 0, "Latest publication year (default: dataset maximum)")
	cmd.Flags().StringSliceVar(&q.types, "type", nil, "Publication types to include (default: all)")
	cmd.Flags().StringSliceVar(&q.countries, "country", nil, "Source countries to include (default: all)")
	cmd.Flags().StringVar(&q.sort, "sort", "relevance", "Sort order: relevance, year_desc, year_asc, title_asc")
}

// state builds the session State. Flags left unset keep the dataset
// defaults, so an unfiltered search covers every record.
func (q *queryFlags) state(cmd *cobra.Command, f dataset.Facets) (pipeline.State, error) {
	s := pipeline.DefaultState(f).WithQuery(q.query)

	yearMin, yearMax := s.YearMin, s.YearMax
	if cmd.Flags().Changed("year-min") {
		yearMin = q.yearMin
	}
	if cmd.Flags().Changed("year-max") {
		yearMax = q.yearMax
	}
	s = s.WithYears(yearMin, yearMax)

	if cmd.Flags().Changed("type") {
		s = s.WithTypes(q.types...)
	}
	if cmd.Flags().Changed("country") {
		s = s.WithCountries(q.countries...)
	}

	mode, ok := pipeline.ParseSortMode(q.sort)
	if !ok {
		return s, fmt.Errorf("unknown sort order %q", q.sort)
	}
	s = s.WithSort(mode)

	if q.page != 0 {
		s = s.WithPage(q.page)
	}
	return s, nil
}

// --- search command ---

var (
	searchFlags queryFlags
	searchJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search the dataset and print one page of results",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}

		state, err := searchFlags.state(cmd, ds.Facets())
		if err != nil {
			return err
		}
		res := pipeline.Run(ds.Records, state, cfg.Dataset.PageSize)

		if searchJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(server.NewSearchResponse(res))
		}
		return termview.New(cmd.OutOrStdout()).Results(res)
	},
}

func init() {
	searchFlags.register(searchCmd)
	searchCmd.Flags().IntVar(&searchFlags.page, "page", 1, "Page to show")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "Print the page as JSON")
}

// --- export command ---

var (
	exportFlags  queryFlags
	exportOutput string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every matching record as CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}

		state, err := exportFlags.state(cmd, ds.Facets())
		if err != nil {
			return err
		}
		res := pipeline.Run(ds.Records, state, cfg.Dataset.PageSize)

		var w io.Writer = cmd.OutOrStdout()
		if exportOutput != "" && exportOutput != "-" {
			f, err := os.Create(exportOutput)
			if err != nil {
				return fmt.Errorf("creating export file: %w", err)
			}
			defer f.Close()
			w = f
		}

		if err := dataset.WriteCSV(w, ds.Header, res.Matches); err != nil {
			return fmt.Errorf("writing export: %w", err)
		}
		if w != cmd.OutOrStdout() {
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d record(s) to %s\n", len(res.Matches), exportOutput)
		}
		return nil
	},
}

func init() {
	exportFlags.register(exportCmd)
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "Output file (default: stdout)")
}

// --- stats command ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dataset counts by year, type and country",
	RunE: func(cmd *cobra.Command, args []string) error {
		ds, err := loadDataset(cmd.Context())
		if err != nil {
			return err
		}
		return termview.New(cmd.OutOrStdout()).Summary(stats.Summarize(ds.Records))
	},
}
