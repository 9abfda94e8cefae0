package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// Sentinel errors forming the failure taxonomy. Callers match with errors.Is
// and render the wrapped message verbatim.
var (
	// ErrDatabaseMissing: the dataset's file does not exist on disk.
	ErrDatabaseMissing = errors.New("database not found")
	// ErrNoMatch: the query ran fine but matched zero rows.
	ErrNoMatch = errors.New("no data found")
	// ErrNothingToDelete: a delete matched zero rows; storage was not touched.
	ErrNothingToDelete = errors.New("nothing to delete")
)

// Store reads and mutates the two SQLite datasets. Every operation opens its
// own short-lived connection scoped to the call and closed unconditionally.
type Store struct {
	paths *Paths
	log   *zap.SugaredLogger
}

// New creates a Store over the given path resolver.
func New(paths *Paths, log *zap.SugaredLogger) *Store {
	return &Store{paths: paths, log: log}
}

// Paths exposes the resolver for callers that need labels.
func (s *Store) Paths() *Paths { return s.paths }

// open connects to the dataset's file. The file must already exist: the
// sqlite driver would otherwise silently create an empty database where the
// original contract is "missing database is a distinct failure".
func (s *Store) open(key string) (*sql.DB, error) {
	path, _ := s.paths.Resolve(key)
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrDatabaseMissing, path)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return db, nil
}

// Open returns a connection for a multi-statement run (the bulk importers
// hold one across their whole invocation). The schema is created on demand,
// so here a missing file is not an error.
func (s *Store) Open(key string) (*sql.DB, error) {
	path, _ := s.paths.Resolve(key)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return db, nil
}

// EnsurePriceSchema creates the osakedata table and its natural-key index if
// they do not exist yet. Importers call this before their first insert.
func EnsurePriceSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS osakedata (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			osake  TEXT,
			pvm    TEXT,
			open   REAL,
			high   REAL,
			low    REAL,
			close  REAL,
			volume INTEGER
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_osakedata_key ON osakedata(osake, pvm)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("ensure price schema: %w", err)
		}
	}
	return nil
}

// EnsurePatternSchema creates the analysis_findings table if it does not exist.
func EnsurePatternSchema(db *sql.DB) error {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS analysis_findings (
		id      INTEGER PRIMARY KEY AUTOINCREMENT,
		ticker  TEXT,
		date    TEXT,
		pattern TEXT,
		UNIQUE(ticker, date, pattern)
	)`)
	if err != nil {
		return fmt.Errorf("ensure pattern schema: %w", err)
	}
	return nil
}
