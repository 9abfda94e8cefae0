package fetch

import (
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const chartResponse = `{
  "chart": {
    "result": [{
      "timestamp": [1688342400, 1688428800, 1688515200],
      "indicators": {
        "quote": [{
          "open":   [100.0, null, 102.0],
          "high":   [101.0, null, 103.0],
          "low":    [99.0,  null, 101.0],
          "close":  [100.5, null, 102.5],
          "volume": [1000000, null, 1200000]
        }]
      }
    }],
    "error": null
  }
}`

func testWindow() (time.Time, time.Time) {
	return time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2023, 7, 10, 0, 0, 0, 0, time.UTC)
}

func TestYahooFetcher_History(t *testing.T) {
	var gotPath, gotInterval string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		w.Write([]byte(chartResponse))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL

	start, end := testWindow()
	bars, err := f.History("^GSPC", start, end)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if gotPath != "/v8/finance/chart/^GSPC" {
		t.Errorf("unexpected request path: %s", gotPath)
	}
	if gotInterval != "1d" {
		t.Errorf("expected daily interval, got %q", gotInterval)
	}
	if len(bars) != 3 {
		t.Fatalf("expected 3 bars, got %d", len(bars))
	}
	if bars[0].Close != 100.5 || bars[0].Volume != 1000000 {
		t.Errorf("unexpected first bar: %+v", bars[0])
	}
	// null quote values become NaN so the importer skip rule can see them
	if !math.IsNaN(bars[1].Open) || !math.IsNaN(bars[1].Volume) {
		t.Errorf("expected NaN fields for null bar, got %+v", bars[1])
	}
	if !bars[0].Date.Before(bars[1].Date) || !bars[1].Date.Before(bars[2].Date) {
		t.Error("bars should be sorted by date ascending")
	}
}

func TestYahooFetcher_NoData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":null}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL

	start, end := testWindow()
	if _, err := f.History("NOPE", start, end); err == nil {
		t.Fatal("expected error for empty result")
	}
}

func TestYahooFetcher_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"chart":{"result":[],"error":{"code":"Not Found","description":"No data found"}}}`))
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL

	start, end := testWindow()
	_, err := f.History("NOPE", start, end)
	if err == nil {
		t.Fatal("expected error from api error payload")
	}
}

func TestYahooFetcher_HTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewYahooFetcher("")
	f.BaseURL = srv.URL

	start, end := testWindow()
	if _, err := f.History("AAPL", start, end); err == nil {
		t.Fatal("expected error for non-200 status")
	}
}

func TestMockFetcher_Valid(t *testing.T) {
	bars := GenerateBars(time.Date(2023, 7, 1, 0, 0, 0, 0, time.UTC), 100, 5)
	for i, b := range bars {
		if !b.Valid() {
			t.Errorf("generated bar %d should be valid: %+v", i, b)
		}
	}
}
