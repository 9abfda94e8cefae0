package importer

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kalletarpila/osakedata-web-viewer/internal/store"
)

// ImportTickerFile reads the configured newline-delimited ticker list and
// imports every ticker through the remote source, pacing requests against
// the remote rate limit and committing in blocks so a mid-run failure loses
// at most the last uncommitted block.
func (im *Importer) ImportTickerFile() (Result, Stats) {
	var stats Stats

	data, err := os.ReadFile(im.cfg.Importer.TickerFile)
	if err != nil {
		return Result{OK: false, Message: fmt.Sprintf("ticker file not readable: %v", err)}, stats
	}
	tickers := NormalizeTickers(strings.Split(string(data), "\n"))
	if len(tickers) == 0 {
		return Result{OK: false, Message: "ticker file is empty"}, stats
	}

	db, err := im.store.Open(store.KeyOsakedata)
	if err != nil {
		return Result{OK: false, Message: fmt.Sprintf("import failed: %v", err)}, stats
	}
	defer db.Close()
	if err := store.EnsurePriceSchema(db); err != nil {
		return Result{OK: false, Message: fmt.Sprintf("import failed: %v", err)}, stats
	}

	tx, err := db.Begin()
	if err != nil {
		return Result{OK: false, Message: fmt.Sprintf("import failed: %v", err)}, stats
	}

	for i, ticker := range tickers {
		saved, err := im.fetchAndSave(tx, ticker)
		stats.Processed++
		stats.RowsSaved += saved
		if err != nil {
			stats.Failed++
			im.log.Warnw("ticker import failed", "ticker", ticker, "err", err)
		} else if saved > 0 {
			stats.Succeeded++
		}

		// Commit every block of tickers so partial progress survives.
		if stats.Processed%im.cfg.Importer.CommitEvery == 0 {
			if err := tx.Commit(); err != nil {
				return Result{OK: false, Message: fmt.Sprintf("commit failed after %d tickers: %v", stats.Processed, err)}, stats
			}
			if tx, err = db.Begin(); err != nil {
				return Result{OK: false, Message: fmt.Sprintf("import failed: %v", err)}, stats
			}
		}

		if i < len(tickers)-1 {
			time.Sleep(im.cfg.Importer.TickerDelay)
			if (i+1)%im.cfg.Importer.BlockSize == 0 {
				im.log.Infow("ticker file progress",
					"processed", stats.Processed, "total", len(tickers), "rows", stats.RowsSaved)
				time.Sleep(im.cfg.Importer.BlockDelay)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return Result{OK: false, Message: fmt.Sprintf("final commit failed: %v", err)}, stats
	}

	msg := fmt.Sprintf("Processed %d tickers: %d saved data, %d failed, %d rows saved",
		stats.Processed, stats.Succeeded, stats.Failed, stats.RowsSaved)
	return Result{OK: stats.RowsSaved > 0, Message: msg, Rows: stats.RowsSaved}, stats
}
