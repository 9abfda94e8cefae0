package importer

import (
	"os"
	"strings"
	"testing"

	"github.com/kalletarpila/osakedata-web-viewer/internal/fetch"
	"github.com/kalletarpila/osakedata-web-viewer/internal/model"
)

func writeTickerFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestImportTickerFile_MissingFile(t *testing.T) {
	im, _, _ := newTestImporter(t, &fetch.MockFetcher{})

	res, stats := im.ImportTickerFile()
	if res.OK {
		t.Error("expected failure for missing file")
	}
	if stats.Processed != 0 || stats.Succeeded != 0 || stats.Failed != 0 || stats.RowsSaved != 0 {
		t.Errorf("expected zero stats, got %+v", stats)
	}
}

func TestImportTickerFile_EmptyFile(t *testing.T) {
	im, _, cfg := newTestImporter(t, &fetch.MockFetcher{})
	writeTickerFile(t, cfg.Importer.TickerFile, "\n   \n\t\n")

	res, stats := im.ImportTickerFile()
	if res.OK {
		t.Error("expected failure for empty file")
	}
	if !strings.Contains(res.Message, "empty") {
		t.Errorf("unexpected message: %s", res.Message)
	}
	if stats.Processed != 0 {
		t.Errorf("expected nothing processed, got %+v", stats)
	}
}

func TestImportTickerFile_MixedOutcomes(t *testing.T) {
	mock := &fetch.MockFetcher{Series: map[string][]model.Bar{
		"AAPL":  normalBars(12),
		"GOOGL": normalBars(12),
		// EMPTY missing: the fetcher reports no data for it
	}}
	im, st, cfg := newTestImporter(t, mock)
	writeTickerFile(t, cfg.Importer.TickerFile, "aapl\ngoogl\nempty\n")

	res, stats := im.ImportTickerFile()
	if !res.OK {
		t.Fatalf("expected success, got: %s", res.Message)
	}
	if stats.Processed != 3 {
		t.Errorf("expected processed=3, got %d", stats.Processed)
	}
	if stats.Succeeded != 2 {
		t.Errorf("expected success_count=2, got %d", stats.Succeeded)
	}
	if stats.Failed != 1 {
		t.Errorf("expected error_count=1, got %d", stats.Failed)
	}
	if stats.RowsSaved != 24 {
		t.Errorf("expected 24 rows saved, got %d", stats.RowsSaved)
	}
	if got := rowCount(t, st); got != 24 {
		t.Errorf("expected 24 stored rows, got %d", got)
	}
}

func TestImportTickerFile_CommitsAcrossBlocks(t *testing.T) {
	series := map[string][]model.Bar{}
	var lines []string
	for _, sym := range []string{"T01", "T02", "T03", "T04", "T05", "T06", "T07", "T08", "T09", "T10", "T11", "T12"} {
		series[sym] = normalBars(10)
		lines = append(lines, sym)
	}
	im, st, cfg := newTestImporter(t, &fetch.MockFetcher{Series: series})
	cfg.Importer.CommitEvery = 5
	writeTickerFile(t, cfg.Importer.TickerFile, strings.Join(lines, "\n"))

	res, stats := im.ImportTickerFile()
	if !res.OK {
		t.Fatalf("expected success, got: %s", res.Message)
	}
	if stats.Processed != 12 || stats.Succeeded != 12 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if got := rowCount(t, st); got != 120 {
		t.Errorf("expected 120 stored rows, got %d", got)
	}
}

func TestImportTickerFile_DuplicateRunAddsNothing(t *testing.T) {
	mock := &fetch.MockFetcher{Series: map[string][]model.Bar{"AAPL": normalBars(10)}}
	im, st, cfg := newTestImporter(t, mock)
	writeTickerFile(t, cfg.Importer.TickerFile, "AAPL\n")

	if res, _ := im.ImportTickerFile(); !res.OK {
		t.Fatalf("first run failed: %s", res.Message)
	}
	res, stats := im.ImportTickerFile()
	if stats.RowsSaved != 0 {
		t.Errorf("expected 0 new rows, got %d", stats.RowsSaved)
	}
	if res.OK {
		t.Error("run saving nothing should not report success")
	}
	if got := rowCount(t, st); got != 10 {
		t.Errorf("expected 10 stored rows, got %d", got)
	}
}
