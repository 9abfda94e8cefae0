package store

import (
	"fmt"
	"strings"
)

// SymbolPage is one bounded slice of the symbol directory.
type SymbolPage struct {
	Symbols    []string `json:"symbols"`
	Total      int      `json:"total"`
	Page       int      `json:"page"`
	Limit      int      `json:"limit"`
	TotalPages int      `json:"total_pages"`
}

// Symbols returns all distinct non-empty identifiers in a dataset, sorted
// case-insensitively. Any failure (missing file, unreadable database) yields
// an empty list so the web layer always has something to render.
func (s *Store) Symbols(key string) []string {
	db, err := s.open(key)
	if err != nil {
		s.log.Debugw("symbol listing unavailable", "dataset", key, "err", err)
		return []string{}
	}
	defer db.Close()

	ds := datasetFor(key)
	q := fmt.Sprintf(`SELECT DISTINCT %[1]s FROM %[2]s
		WHERE %[1]s IS NOT NULL AND %[1]s != ''
		ORDER BY %[1]s COLLATE NOCASE`, ds.symCol, ds.table)
	rows, err := db.Query(q)
	if err != nil {
		s.log.Warnw("symbol listing failed", "dataset", key, "err", err)
		return []string{}
	}
	defer rows.Close()

	symbols := []string{}
	for rows.Next() {
		var sym string
		if err := rows.Scan(&sym); err != nil {
			s.log.Warnw("symbol scan failed", "dataset", key, "err", err)
			return []string{}
		}
		symbols = append(symbols, sym)
	}
	if err := rows.Err(); err != nil {
		s.log.Warnw("symbol iteration failed", "dataset", key, "err", err)
		return []string{}
	}
	return symbols
}

// FilterSymbols returns the identifiers containing the given substring,
// case-insensitively. An empty filter returns everything.
func (s *Store) FilterSymbols(key, filter string) []string {
	symbols := s.Symbols(key)
	if filter == "" {
		return symbols
	}
	needle := strings.ToUpper(filter)
	kept := []string{}
	for _, sym := range symbols {
		if strings.Contains(strings.ToUpper(sym), needle) {
			kept = append(kept, sym)
		}
	}
	return kept
}

// SymbolPage returns one page of the (optionally filtered) directory plus
// totals. Page numbers start at 1; limit is clamped to 1..500.
func (s *Store) SymbolPage(key, filter string, page, limit int) SymbolPage {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if limit > 500 {
		limit = 500
	}

	all := s.FilterSymbols(key, filter)
	total := len(all)
	totalPages := (total + limit - 1) / limit

	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return SymbolPage{
		Symbols:    all[start:end],
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

// SuggestSymbols returns up to limit identifiers starting with q
// (case-insensitive), falling back to substring matches when nothing has
// that prefix. Used by the autocomplete endpoint.
func (s *Store) SuggestSymbols(key, q string, limit int) []string {
	if limit < 1 {
		limit = 10
	}
	needle := strings.ToUpper(q)

	all := s.Symbols(key)
	prefix := []string{}
	contains := []string{}
	for _, sym := range all {
		u := strings.ToUpper(sym)
		if strings.HasPrefix(u, needle) {
			prefix = append(prefix, sym)
		} else if strings.Contains(u, needle) {
			contains = append(contains, sym)
		}
	}

	matches := prefix
	if len(matches) == 0 {
		matches = contains
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}
