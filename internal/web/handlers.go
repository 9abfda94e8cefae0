package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/kalletarpila/osakedata-web-viewer/internal/store"
)

// clearDatabasePhrase is the literal safety phrase the clear form must carry
// in addition to the yes/no confirmation.
const clearDatabasePhrase = "POISTA KAIKKI TIEDOT"

// pageData feeds the index template. Rows are pre-formatted strings so the
// template stays dumb.
type pageData struct {
	DBType           string
	DBLabel          string
	AvailableSymbols []string
	Error            string
	Success          string
	SearchedTerms    []string
	FoundSymbols     []string
	RecordCount      int
	Columns          []string
	Rows             [][]string
}

// affirmative reports whether a confirmation token is accepted; both
// supported languages count.
func affirmative(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "kyllä", "kylla", "yes":
		return true
	}
	return false
}

// splitTerms splits comma-separated input into trimmed, upper-cased,
// non-empty terms.
func splitTerms(input string) []string {
	terms := []string{}
	for _, t := range strings.Split(input, ",") {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			terms = append(terms, t)
		}
	}
	return terms
}

func (s *Server) dbType(r *http.Request) string {
	key := r.FormValue("db_type")
	if key == "" {
		key = store.KeyOsakedata
	}
	return key
}

// render executes the index template into a buffer first so a template
// error never leaves a half-written page.
func (s *Server) render(w http.ResponseWriter, data pageData) {
	if data.DBType == "" {
		data.DBType = store.KeyOsakedata
	}
	_, data.DBLabel = s.store.Paths().Resolve(data.DBType)
	data.AvailableSymbols = s.store.Symbols(data.DBType)

	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, "index.html", data); err != nil {
		s.log.Errorw("render failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Errorw("encode response failed", "err", err)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("db_type")
	if key == "" {
		key = store.KeyOsakedata
	}
	s.render(w, pageData{DBType: key})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	key := s.dbType(r)
	terms := splitTerms(r.FormValue("tickers"))
	if len(terms) == 0 {
		s.render(w, pageData{DBType: key, Error: "Enter at least one search term (a symbol or its beginning)"})
		return
	}

	res, err := s.store.Search(key, terms)
	if err != nil {
		s.render(w, pageData{DBType: key, Error: err.Error(), SearchedTerms: terms})
		return
	}

	columns, rows := formatResult(key, res)
	s.render(w, pageData{
		DBType:        key,
		SearchedTerms: terms,
		FoundSymbols:  res.Found,
		RecordCount:   res.Len(),
		Columns:       columns,
		Rows:          rows,
	})
}

// formatResult flattens a query result into display strings: prices rounded
// to two decimals and volume with thousands separators.
func formatResult(key string, res *store.QueryResult) ([]string, [][]string) {
	if key == store.KeyAnalysis {
		rows := make([][]string, 0, len(res.Patterns))
		for _, f := range res.Patterns {
			rows = append(rows, []string{f.Ticker, f.Date, f.Pattern})
		}
		return []string{"ticker", "date", "pattern"}, rows
	}

	rows := make([][]string, 0, len(res.Prices))
	for _, p := range res.Prices {
		rows = append(rows, []string{
			p.Symbol,
			p.Date,
			fmt.Sprintf("%.2f", p.Open),
			fmt.Sprintf("%.2f", p.High),
			fmt.Sprintf("%.2f", p.Low),
			fmt.Sprintf("%.2f", p.Close),
			humanize.Comma(p.Volume),
		})
	}
	return []string{"osake", "pvm", "open", "high", "low", "close", "volume"}, rows
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	key := s.dbType(r)
	symbols := splitTerms(r.FormValue("delete_tickers"))
	if len(symbols) == 0 {
		s.render(w, pageData{DBType: key, Error: "Enter the symbols whose data should be deleted"})
		return
	}
	if !affirmative(r.FormValue("confirm_delete")) {
		s.render(w, pageData{DBType: key, Error: "Delete cancelled: confirmation missing or wrong"})
		return
	}

	n, err := s.store.DeleteSymbols(key, symbols)
	if err != nil {
		s.render(w, pageData{DBType: key, Error: err.Error()})
		return
	}
	s.render(w, pageData{
		DBType:  key,
		Success: fmt.Sprintf("Removed %d rows for symbols: %s", n, strings.Join(symbols, ", ")),
	})
}

func (s *Server) handleClearDatabase(w http.ResponseWriter, r *http.Request) {
	key := s.dbType(r)
	if !affirmative(r.FormValue("confirm_clear")) {
		s.render(w, pageData{Error: "Clear cancelled: confirmation missing or wrong"})
		return
	}
	// Second gate: the exact phrase, no trimming leniency beyond whitespace.
	if strings.TrimSpace(r.FormValue("double_confirm")) != clearDatabasePhrase {
		s.render(w, pageData{Error: fmt.Sprintf("Clear cancelled: type %q to confirm", clearDatabasePhrase)})
		return
	}

	if key == store.KeyBoth {
		total, msg, ok := s.store.TruncateAll()
		data := pageData{}
		if ok {
			data.Success = fmt.Sprintf("Cleared both databases (%d rows): %s", total, msg)
		} else {
			data.Error = fmt.Sprintf("Clearing failed: %s", msg)
		}
		s.render(w, data)
		return
	}

	n, err := s.store.Truncate(key)
	switch {
	case err != nil:
		s.render(w, pageData{DBType: key, Error: err.Error()})
	case n == 0:
		s.render(w, pageData{DBType: key, Success: fmt.Sprintf("%s is already empty (0 rows removed)", key)})
	default:
		s.render(w, pageData{DBType: key, Success: fmt.Sprintf("Removed %d rows from %s", n, key)})
	}
}

func (s *Server) handleFetchRemote(w http.ResponseWriter, r *http.Request) {
	res := s.importer.FetchRemote(splitTerms(r.FormValue("tickers")))
	data := pageData{DBType: store.KeyOsakedata}
	if res.OK {
		data.Success = res.Message
	} else {
		data.Error = res.Message
	}
	s.render(w, data)
}

func (s *Server) handleFetchTickers(w http.ResponseWriter, _ *http.Request) {
	res, stats := s.importer.ImportTickerFile()
	s.writeJSON(w, map[string]any{
		"success":       res.OK,
		"message":       res.Message,
		"processed":     stats.Processed,
		"success_count": stats.Succeeded,
		"error_count":   stats.Failed,
	})
}

func (s *Server) handleFetchCSV(w http.ResponseWriter, r *http.Request) {
	res := s.importer.ImportCSV(splitTerms(r.FormValue("tickers")))
	data := pageData{DBType: store.KeyOsakedata}
	if res.OK {
		data.Success = res.Message
	} else {
		data.Error = res.Message
	}
	s.render(w, data)
}

func (s *Server) handleAPISymbols(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := q.Get("db_type")
	if key == "" {
		key = store.KeyOsakedata
	}
	filter := q.Get("search")

	pageStr, limitStr := q.Get("page"), q.Get("limit")
	if pageStr == "" && limitStr == "" {
		s.writeJSON(w, s.store.FilterSymbols(key, filter))
		return
	}

	page, _ := strconv.Atoi(pageStr)
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(limitStr)
	if limit < 1 {
		limit = 50
	}
	s.writeJSON(w, s.store.SymbolPage(key, filter, page, limit))
}

func (s *Server) handleAPISymbolSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	key := q.Get("db_type")
	if key == "" {
		key = store.KeyOsakedata
	}
	query := q.Get("q")
	if query == "" {
		s.writeJSON(w, []string{})
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 10
	}
	s.writeJSON(w, s.store.SuggestSymbols(key, query, limit))
}
