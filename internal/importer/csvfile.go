package importer

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/kalletarpila/osakedata-web-viewer/internal/model"
	"github.com/kalletarpila/osakedata-web-viewer/internal/store"
)

// csvGroupSize is the repeating field group on each line:
// date, open, high, low, close, volume.
const csvGroupSize = 6

// ImportCSV imports rows from the configured flat file where each line holds
// one ticker followed by its entire history as repeating 6-field groups.
// An empty ticker list means mass import: every line is processed. With an
// explicit subset, only matching lines are processed and tickers never seen
// in the file are reported. Malformed groups are skipped, never fatal.
func (im *Importer) ImportCSV(rawTickers []string) Result {
	wanted := NormalizeTickers(rawTickers)
	massImport := len(wanted) == 0

	data, err := os.ReadFile(im.cfg.Importer.CSVFile)
	if err != nil {
		return Result{OK: false, Message: fmt.Sprintf("csv file not readable: %v", err)}
	}

	db, err := im.store.Open(store.KeyOsakedata)
	if err != nil {
		return Result{OK: false, Message: fmt.Sprintf("import failed: %v", err)}
	}
	defer db.Close()
	if err := store.EnsurePriceSchema(db); err != nil {
		return Result{OK: false, Message: fmt.Sprintf("import failed: %v", err)}
	}

	wantedSet := map[string]bool{}
	for _, t := range wanted {
		wantedSet[t] = true
	}
	seen := map[string]bool{}

	saved := 0
	duplicates := 0
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		ticker := strings.ToUpper(strings.TrimSpace(fields[0]))
		if ticker == "" {
			continue
		}
		if !massImport && !wantedSet[ticker] {
			continue
		}
		seen[ticker] = true

		n, dup, err := im.importCSVLine(db, ticker, fields)
		if err != nil {
			return Result{OK: false, Message: fmt.Sprintf("import failed: %v", err)}
		}
		saved += n
		duplicates += dup
	}

	notFound := []string{}
	for _, t := range wanted {
		if !seen[t] {
			notFound = append(notFound, t)
		}
	}

	msg := fmt.Sprintf("Saved %d rows from CSV", saved)
	if saved == 0 && duplicates > 0 {
		msg = fmt.Sprintf("No new rows: %d rows already exists", duplicates)
	}
	if len(notFound) > 0 {
		msg += "; not found in file: " + strings.Join(notFound, ", ")
	}
	return Result{OK: saved > 0, Message: msg, Rows: saved}
}

// importCSVLine walks one line's field groups in fixed strides. A group is
// skipped when the line runs short, a number fails to parse, or the date
// does not match the expected format. Returns inserted and duplicate counts.
func (im *Importer) importCSVLine(db dbtx, ticker string, fields []string) (int, int, error) {
	saved := 0
	duplicates := 0
	for i := 1; i+csvGroupSize <= len(fields); i += csvGroupSize {
		date := strings.TrimSpace(fields[i])
		if _, err := time.Parse(model.DateLayout, date); err != nil {
			continue
		}

		nums := make([]float64, 0, 4)
		ok := true
		for _, raw := range fields[i+1 : i+5] {
			v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				ok = false
				break
			}
			nums = append(nums, v)
		}
		if !ok {
			continue
		}
		volume, err := strconv.ParseInt(strings.TrimSpace(fields[i+5]), 10, 64)
		if err != nil {
			continue
		}

		var exists int
		if err := db.QueryRow("SELECT COUNT(*) FROM osakedata WHERE osake = ? AND pvm = ?", ticker, date).Scan(&exists); err != nil {
			return saved, duplicates, fmt.Errorf("existence check %s %s: %w", ticker, date, err)
		}
		if exists > 0 {
			duplicates++
			continue
		}

		_, err = db.Exec(`INSERT INTO osakedata (osake, pvm, open, high, low, close, volume)
			VALUES (?,?,?,?,?,?,?)`,
			ticker, date, nums[0], nums[1], nums[2], nums[3], volume)
		if err != nil {
			return saved, duplicates, fmt.Errorf("insert %s %s: %w", ticker, date, err)
		}
		saved++
	}
	return saved, duplicates, nil
}
