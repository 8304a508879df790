// Package server serves the search UI, the dashboard and the CSV export.
package server

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"slices"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"

	"github.com/TobiSchelling/PaperSearch/internal/dataset"
	"github.com/TobiSchelling/PaperSearch/internal/pipeline"
	"github.com/TobiSchelling/PaperSearch/internal/stats"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static/*
var staticFS embed.FS

var md = goldmark.New()

// ExportFilename is the attachment name of the CSV download.
const ExportFilename = "search_results.csv"

// Server is the HTTP server for the search UI.
type Server struct {
	loader   *dataset.Loader
	pageSize int
	pages    map[string]*template.Template
	mux      *http.ServeMux
}

// New creates a new Server reading papers through loader. A pageSize of
// zero or less uses pipeline.DefaultPageSize.
func New(loader *dataset.Loader, pageSize int) (*Server, error) {
	if pageSize <= 0 {
		pageSize = pipeline.DefaultPageSize
	}

	funcMap := template.FuncMap{
		"markdown":  renderMarkdown,
		"highlight": pipeline.HighlightHTML,
		"bucket": func(publicationType string) string {
			return pipeline.Classify(publicationType).Class()
		},
		"typeLabel": typeLabel,
		"yearLabel": yearLabel,
		"optLabel": func(s string) string {
			if s == "" {
				return stats.UnknownLabel
			}
			return s
		},
		"contains": func(list []string, v string) bool {
			return slices.Contains(list, v)
		},
	}

	// Parse base template first
	base, err := template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("parsing base template: %w", err)
	}

	// Each page is parsed into its own clone of base so that every page
	// can define "title" and "content".
	pageNames := []string{"search.html", "dashboard.html", "error.html"}
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		clone, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("cloning base for %s: %w", name, err)
		}
		_, err = clone.ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		pages[name] = clone
	}

	s := &Server{loader: loader, pageSize: pageSize, pages: pages, mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

// Handler returns the HTTP handler for the server.
func (s *Server) Handler() http.Handler {
	return logRequests(s.mux)
}

func (s *Server) routes() {
	// Static files
	staticSub, _ := fs.Sub(staticFS, "static")
	s.mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Routes
	s.mux.HandleFunc("GET /{$}", s.handleSearch)
	s.mux.HandleFunc("GET /dashboard", s.handleDashboard)
	s.mux.HandleFunc("GET /export.csv", s.handleExport)
	s.mux.HandleFunc("GET /api/search", s.handleAPISearch)
}

// searchPage is the data behind search.html.
type searchPage struct {
	Result    pipeline.Result
	Facets    dataset.Facets
	SortModes []pipeline.SortMode
}

// PageURL links to page n of the current result list.
func (p searchPage) PageURL(n int) string {
	return "/?" + encodeState(p.Result.State.WithPage(n), p.Facets).Encode()
}

// SelectionKey is echoed by the search form so a changed filter or sort
// order starts again from the first page.
func (p searchPage) SelectionKey() string {
	return selectionKey(p.Result.State, p.Facets)
}

// PrevURL links to the previous page.
func (p searchPage) PrevURL() string {
	return p.PageURL(p.Result.Meta.CurrentPage - 1)
}

// NextURL links to the next page.
func (p searchPage) NextURL() string {
	return p.PageURL(p.Result.Meta.CurrentPage + 1)
}

// ExportURL links to the CSV download of the current result list.
func (p searchPage) ExportURL() string {
	v := encodeState(p.Result.State, p.Facets)
	v.Del(paramPage)
	return "/export.csv?" + v.Encode()
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}

	f := ds.Facets()
	state := parseState(r.URL.Query(), f)
	res := pipeline.Run(ds.Records, state, s.pageSize)

	s.render(w, http.StatusOK, "search.html", searchPage{
		Result:    res,
		Facets:    f,
		SortModes: pipeline.SortModes,
	})
}

// dashboardPage is the data behind dashboard.html.
type dashboardPage struct {
	Summary stats.Summary
	Charts  []chart
}

type chart struct {
	Title string
	Bars  []stats.Bar
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}

	sum := stats.Summarize(ds.Records)
	s.render(w, http.StatusOK, "dashboard.html", dashboardPage{
		Summary: sum,
		Charts: []chart{
			{Title: "Papers by year", Bars: stats.Bars(sum.ByYear)},
			{Title: "Papers by publication type", Bars: stats.Bars(sum.ByType)},
			{Title: "Papers by source country", Bars: stats.Bars(sum.ByCountry)},
		},
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	ds, ok := s.dataset(w, r)
	if !ok {
		return
	}

	state := parseState(r.URL.Query(), ds.Facets())
	res := pipeline.Run(ds.Records, state, s.pageSize)

	var buf bytes.Buffer
	if err := dataset.WriteCSV(&buf, ds.Header, res.Matches); err != nil {
		log.Error().Str("component", "server").Err(err).Msg("Writing export")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", ExportFilename))
	w.Write(buf.Bytes())
}

// SearchRecord is the JSON form of a result.
type SearchRecord struct {
	Title           string `json:"title"`
	Authors         string `json:"authors"`
	Keywords        string `json:"keywords"`
	Abstract        string `json:"abstract"`
	PublicationType string `json:"publication_type"`
	PublicationYear int    `json:"publication_year"`
	SourceCountry   string `json:"source_country"`
	Bucket          int    `json:"bucket"`
}

// SearchState is the JSON form of pipeline.State.
type SearchState struct {
	Query     string   `json:"query"`
	YearMin   int      `json:"year_min"`
	YearMax   int      `json:"year_max"`
	Types     []string `json:"types"`
	Countries []string `json:"countries"`
	Sort      string   `json:"sort"`
	Page      int      `json:"page"`
}

// SearchResponse is the body of GET /api/search and of `search --json`.
type SearchResponse struct {
	State        SearchState       `json:"state"`
	SearchActive bool              `json:"search_active"`
	Meta         pipeline.PageMeta `json:"meta"`
	Results      []SearchRecord    `json:"results"`
}

// NewSearchResponse converts one page of a pipeline run.
func NewSearchResponse(res pipeline.Result) SearchResponse {
	st := res.State
	resp := SearchResponse{
		State: SearchState{
			Query:     st.Query,
			YearMin:   st.YearMin,
			YearMax:   st.YearMax,
			Types:     nonNil(st.Types),
			Countries: nonNil(st.Countries),
			Sort:      st.Sort.String(),
			Page:      st.Page,
		},
		SearchActive: res.SearchActive(),
		Meta:         res.Meta,
		Results:      make([]SearchRecord, 0, len(res.Page)),
	}
	for _, rec := range res.Page {
		resp.Results = append(resp.Results, SearchRecord{
			Title:           rec.Title,
			Authors:         rec.Authors,
			Keywords:        rec.Keywords,
			Abstract:        rec.Abstract,
			PublicationType: rec.PublicationType,
			PublicationYear: rec.PublicationYear,
			SourceCountry:   rec.SourceCountry,
			Bucket:          int(pipeline.Classify(rec.PublicationType)),
		})
	}
	return resp
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	ds, err := s.loader.Get(r.Context())
	if err != nil {
		writeJSON(w, errorStatus(err), map[string]string{"error": err.Error()})
		return
	}

	state := parseState(r.URL.Query(), ds.Facets())
	writeJSON(w, http.StatusOK, NewSearchResponse(pipeline.Run(ds.Records, state, s.pageSize)))
}

// dataset loads the papers, rendering the error page when they are
// unavailable.
func (s *Server) dataset(w http.ResponseWriter, r *http.Request) (*dataset.Dataset, bool) {
	ds, err := s.loader.Get(r.Context())
	if err != nil {
		log.Warn().Str("component", "server").Err(err).Msg("Dataset unavailable")
		s.render(w, errorStatus(err), "error.html", map[string]any{
			"Missing": errors.Is(err, dataset.ErrMissingSource),
			"Path":    s.loader.Path(),
			"Error":   err.Error(),
		})
		return nil, false
	}
	return ds, true
}

func errorStatus(err error) int {
	if errors.Is(err, dataset.ErrMissingSource) {
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	tmpl, ok := s.pages[name]
	if !ok {
		log.Error().Str("component", "server").Str("template", name).Msg("Template not found")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base.html", data); err != nil {
		log.Error().Str("component", "server").Str("template", name).Err(err).Msg("Rendering template")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Str("component", "server").Err(err).Msg("Encoding JSON")
	}
}

func renderMarkdown(text string) template.HTML {
	var buf bytes.Buffer
	if err := md.Convert([]byte(text), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(text))
	}
	return template.HTML(buf.String()) //nolint: gosec
}

func typeLabel(t string) string {
	if t == "" {
		return "N/A"
	}
	return t
}

func yearLabel(y int) string {
	if y == 0 {
		return "N/A"
	}
	return fmt.Sprint(y)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Debug().
			Str("component", "server").
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("Request")
	})
}

// Serve starts the HTTP server on the given port and shuts it down when
// ctx is cancelled.
func Serve(ctx context.Context, loader *dataset.Loader, pageSize, port int) error {
	srv, err := New(loader, pageSize)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf("127.0.0.1:%d", port)
	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("component", "server").Msgf("Server listening on http://%s", addr)
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}
	return nil
}
