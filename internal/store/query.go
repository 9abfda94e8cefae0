package store

import (
	"fmt"
	"strings"

	"github.com/kalletarpila/osakedata-web-viewer/internal/model"
)

// QueryResult holds the rows matched by one search. Exactly one of Prices
// and Patterns is populated, depending on the dataset searched.
type QueryResult struct {
	Prices   []model.PriceRow
	Patterns []model.PatternFinding
	Found    []string // distinct identifiers in result order
}

// Len returns the number of matched rows.
func (r *QueryResult) Len() int {
	return len(r.Prices) + len(r.Patterns)
}

// Search matches rows whose identifier equals or starts with any of the
// given terms. Terms are expected upper-cased by the caller. Results are
// ordered identifier ascending, date descending.
//
// Failure taxonomy: a missing database file wraps ErrDatabaseMissing, zero
// matches wraps ErrNoMatch, and anything else is a wrapped "query failed"
// error. All failures return an empty result.
func (s *Store) Search(key string, terms []string) (*QueryResult, error) {
	empty := &QueryResult{Found: []string{}}
	if len(terms) == 0 {
		return empty, fmt.Errorf("%w: no search terms", ErrNoMatch)
	}

	db, err := s.open(key)
	if err != nil {
		return empty, err
	}
	defer db.Close()

	ds := datasetFor(key)

	// One (= OR prefix-LIKE) predicate per term, all OR-combined and fully
	// parameterized; the term list length is unbounded.
	conditions := make([]string, 0, len(terms))
	params := make([]any, 0, 2*len(terms))
	for _, term := range terms {
		conditions = append(conditions, fmt.Sprintf("(%[1]s = ? OR %[1]s LIKE ?)", ds.symCol))
		params = append(params, term, term+"%")
	}

	var q string
	if key == KeyAnalysis {
		q = fmt.Sprintf(`SELECT ticker, date, pattern FROM analysis_findings
			WHERE %s ORDER BY ticker, date DESC`, strings.Join(conditions, " OR "))
	} else {
		q = fmt.Sprintf(`SELECT osake, pvm, open, high, low, close, volume FROM osakedata
			WHERE %s ORDER BY osake, pvm DESC`, strings.Join(conditions, " OR "))
	}

	rows, err := db.Query(q, params...)
	if err != nil {
		return empty, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	res := &QueryResult{Found: []string{}}
	seen := map[string]bool{}
	for rows.Next() {
		var sym string
		if key == KeyAnalysis {
			var f model.PatternFinding
			if err := rows.Scan(&f.Ticker, &f.Date, &f.Pattern); err != nil {
				return empty, fmt.Errorf("query failed: %w", err)
			}
			res.Patterns = append(res.Patterns, f)
			sym = f.Ticker
		} else {
			var p model.PriceRow
			if err := rows.Scan(&p.Symbol, &p.Date, &p.Open, &p.High, &p.Low, &p.Close, &p.Volume); err != nil {
				return empty, fmt.Errorf("query failed: %w", err)
			}
			res.Prices = append(res.Prices, p)
			sym = p.Symbol
		}
		if !seen[sym] {
			seen[sym] = true
			res.Found = append(res.Found, sym)
		}
	}
	if err := rows.Err(); err != nil {
		return empty, fmt.Errorf("query failed: %w", err)
	}

	if res.Len() == 0 {
		return empty, fmt.Errorf("%w for terms: %s", ErrNoMatch, strings.Join(terms, ", "))
	}
	return res, nil
}
