package store

import (
	"path/filepath"

	"github.com/kalletarpila/osakedata-web-viewer/internal/config"
)

// Dataset keys understood by the store. KeyBoth is a sentinel accepted only
// by the clear-database surface, never by the resolver itself.
const (
	KeyOsakedata = "osakedata"
	KeyAnalysis  = "analysis"
	KeyBoth      = "both"
)

// Paths maps a dataset key to its SQLite file location and display label.
// Unrecognized keys resolve to a harmless placeholder so callers never crash
// on bad input; the placeholder file simply never exists.
type Paths struct {
	osakedata string
	analysis  string
}

// NewPaths builds the resolver from injected configuration.
func NewPaths(cfg *config.Config) *Paths {
	return &Paths{
		osakedata: cfg.Database.OsakedataPath,
		analysis:  cfg.Database.AnalysisPath,
	}
}

// Resolve returns the file path and human label for a dataset key.
func (p *Paths) Resolve(key string) (path, label string) {
	switch key {
	case KeyOsakedata:
		return p.osakedata, "Osakedata (OHLCV)"
	case KeyAnalysis:
		return p.analysis, "Analysis findings"
	default:
		return filepath.Join(filepath.Dir(p.osakedata), "unknown.db"), "Unknown database"
	}
}

// Keys lists the known datasets in fixed order.
func (p *Paths) Keys() []string {
	return []string{KeyOsakedata, KeyAnalysis}
}

// dataset describes the table layout behind a dataset key.
type dataset struct {
	table   string
	symCol  string
	dateCol string
}

func datasetFor(key string) dataset {
	if key == KeyAnalysis {
		return dataset{table: "analysis_findings", symCol: "ticker", dateCol: "date"}
	}
	return dataset{table: "osakedata", symCol: "osake", dateCol: "pvm"}
}
