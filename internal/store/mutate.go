package store

import (
	"fmt"
	"strings"
)

// DeleteSymbols removes all rows for the given identifiers. It counts the
// matching rows first and reports ErrNothingToDelete without writing when
// the count is zero, so callers can tell a no-op from a real removal.
func (s *Store) DeleteSymbols(key string, symbols []string) (int64, error) {
	if len(symbols) == 0 {
		return 0, fmt.Errorf("%w: no symbols given", ErrNothingToDelete)
	}

	db, err := s.open(key)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	ds := datasetFor(key)
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(symbols)), ",")
	params := make([]any, len(symbols))
	for i, sym := range symbols {
		params[i] = sym
	}

	var count int64
	countQ := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s IN (%s)", ds.table, ds.symCol, placeholders)
	if err := db.QueryRow(countQ, params...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows to delete: %w", err)
	}
	if count == 0 {
		return 0, fmt.Errorf("%w for symbols: %s", ErrNothingToDelete, strings.Join(symbols, ", "))
	}

	delQ := fmt.Sprintf("DELETE FROM %s WHERE %s IN (%s)", ds.table, ds.symCol, placeholders)
	if _, err := db.Exec(delQ, params...); err != nil {
		return 0, fmt.Errorf("delete rows: %w", err)
	}

	s.log.Infow("deleted rows", "dataset", key, "symbols", symbols, "rows", count)
	return count, nil
}

// Truncate removes every row in a dataset and resets its auto-increment
// counter. Truncating an already-empty table is a success with count 0.
func (s *Store) Truncate(key string) (int64, error) {
	db, err := s.open(key)
	if err != nil {
		return 0, err
	}
	defer db.Close()

	ds := datasetFor(key)

	var count int64
	if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", ds.table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("count rows: %w", err)
	}
	if count == 0 {
		return 0, nil
	}

	if _, err := db.Exec(fmt.Sprintf("DELETE FROM %s", ds.table)); err != nil {
		return 0, fmt.Errorf("truncate %s: %w", ds.table, err)
	}
	// Reset the AUTOINCREMENT sequence. The bookkeeping table only exists
	// once an AUTOINCREMENT insert has happened, so its absence is fine.
	if _, err := db.Exec("DELETE FROM sqlite_sequence WHERE name = ?", ds.table); err != nil {
		s.log.Debugw("sqlite_sequence reset skipped", "dataset", key, "err", err)
	}

	s.log.Infow("truncated dataset", "dataset", key, "rows", count)
	return count, nil
}

// TruncateAll truncates every known dataset independently. Overall success
// requires every sub-operation to succeed; the message is the concatenation
// of the per-dataset outcomes and the count is their sum.
func (s *Store) TruncateAll() (int64, string, bool) {
	var total int64
	parts := make([]string, 0, 2)
	ok := true

	for _, key := range s.paths.Keys() {
		n, err := s.Truncate(key)
		switch {
		case err != nil:
			ok = false
			parts = append(parts, fmt.Sprintf("%s: %v", key, err))
		case n == 0:
			parts = append(parts, fmt.Sprintf("%s: already empty", key))
		default:
			total += n
			parts = append(parts, fmt.Sprintf("%s: removed %d rows", key, n))
		}
	}

	return total, strings.Join(parts, "; "), ok
}
