package importer

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kalletarpila/osakedata-web-viewer/internal/config"
	"github.com/kalletarpila/osakedata-web-viewer/internal/fetch"
	"github.com/kalletarpila/osakedata-web-viewer/internal/model"
	"github.com/kalletarpila/osakedata-web-viewer/internal/store"
)

// ErrPennyStock marks a ticker rejected by the penny-stock filter.
var ErrPennyStock = errors.New("penny stock")

// maxListedFailures caps how many failed tickers a result message names.
const maxListedFailures = 10

// Result is the shared outcome shape of every import path.
type Result struct {
	OK      bool
	Message string
	Rows    int
}

// Stats are the running counters of the ticker-file importer.
type Stats struct {
	Processed int `json:"processed"`
	Succeeded int `json:"success_count"`
	Failed    int `json:"error_count"`
	RowsSaved int `json:"rows_saved"`
}

// Importer runs the three ingestion paths against the price dataset.
type Importer struct {
	store   *store.Store
	fetcher fetch.Fetcher
	cfg     *config.Config
	log     *zap.SugaredLogger
}

// New creates an Importer with all collaborators injected.
func New(st *store.Store, fetcher fetch.Fetcher, cfg *config.Config, log *zap.SugaredLogger) *Importer {
	return &Importer{store: st, fetcher: fetcher, cfg: cfg, log: log}
}

// dbtx is satisfied by both *sql.DB and *sql.Tx so the shared insert logic
// works inside and outside an explicit transaction.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	QueryRow(query string, args ...any) *sql.Row
}

// NormalizeTickers trims, upper-cases and drops empty entries.
func NormalizeTickers(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// insertBars saves the bars whose OHLCV fields are all real numbers and
// whose (osake, pvm) key is not stored yet. Returns the number inserted.
func insertBars(db dbtx, ticker string, bars []model.Bar) (int, error) {
	saved := 0
	for _, b := range bars {
		if !b.Valid() {
			continue
		}
		date := b.Date.Format(model.DateLayout)

		var exists int
		err := db.QueryRow("SELECT COUNT(*) FROM osakedata WHERE osake = ? AND pvm = ?", ticker, date).Scan(&exists)
		if err != nil {
			return saved, fmt.Errorf("existence check %s %s: %w", ticker, date, err)
		}
		if exists > 0 {
			continue
		}

		_, err = db.Exec(`INSERT INTO osakedata (osake, pvm, open, high, low, close, volume)
			VALUES (?,?,?,?,?,?,?)`,
			ticker, date, b.Open, b.High, b.Low, b.Close, int64(b.Volume))
		if err != nil {
			return saved, fmt.Errorf("insert %s %s: %w", ticker, date, err)
		}
		saved++
	}
	return saved, nil
}

// fetchAndSave pulls the fixed history window for one ticker and stores the
// rows that pass the skip rules.
func (im *Importer) fetchAndSave(db dbtx, ticker string) (int, error) {
	start, end := im.cfg.FetchWindow()
	bars, err := im.fetcher.History(ticker, start, end)
	if err != nil {
		return 0, fmt.Errorf("no data: %w", err)
	}
	if len(bars) == 0 {
		return 0, fmt.Errorf("no data returned")
	}
	if IsPennyStock(bars) {
		return 0, ErrPennyStock
	}
	return insertBars(db, ticker, bars)
}

// FetchRemote imports history for the given raw tickers from the remote
// quote source. A failing ticker never aborts the batch; the result is OK
// when at least one row was saved across all tickers.
func (im *Importer) FetchRemote(rawTickers []string) Result {
	tickers := NormalizeTickers(rawTickers)
	if len(tickers) == 0 {
		return Result{OK: false, Message: "no valid tickers"}
	}

	db, err := im.store.Open(store.KeyOsakedata)
	if err != nil {
		return Result{OK: false, Message: fmt.Sprintf("import failed: %v", err)}
	}
	defer db.Close()
	if err := store.EnsurePriceSchema(db); err != nil {
		return Result{OK: false, Message: fmt.Sprintf("import failed: %v", err)}
	}

	total := 0
	failed := []string{}
	for _, ticker := range tickers {
		saved, err := im.fetchAndSave(db, ticker)
		total += saved
		if err != nil {
			failed = append(failed, fmt.Sprintf("%s (%v)", ticker, err))
			im.log.Warnw("ticker import failed", "ticker", ticker, "err", err)
			continue
		}
		im.log.Infow("ticker imported", "ticker", ticker, "rows", saved)
	}

	msg := fmt.Sprintf("Saved %d rows for %d tickers", total, len(tickers))
	if len(failed) > 0 {
		listed := failed
		if len(listed) > maxListedFailures {
			listed = append(listed[:maxListedFailures:maxListedFailures],
				fmt.Sprintf("and %d more", len(failed)-maxListedFailures))
		}
		msg += "; failed: " + strings.Join(listed, ", ")
	}
	return Result{OK: total > 0, Message: msg, Rows: total}
}
