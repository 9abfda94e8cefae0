package fetch

import (
	"fmt"
	"time"

	"github.com/kalletarpila/osakedata-web-viewer/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
// Series maps a symbol to its canned bars; Err maps a symbol to a forced
// failure. A symbol present in neither returns "no data".
type MockFetcher struct {
	Series map[string][]model.Bar
	Err    map[string]error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) History(symbol string, _, _ time.Time) ([]model.Bar, error) {
	if err, ok := m.Err[symbol]; ok {
		return nil, err
	}
	if bars, ok := m.Series[symbol]; ok {
		return bars, nil
	}
	return nil, fmt.Errorf("mock: no data for %s", symbol)
}

// GenerateBars builds count consecutive daily bars around a base price,
// starting at the given date. Handy for fixtures.
func GenerateBars(start time.Time, basePrice float64, count int) []model.Bar {
	bars := make([]model.Bar, count)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.001)
		bars[i] = model.Bar{
			Date:   start.AddDate(0, 0, i),
			Open:   p * 0.999,
			High:   p * 1.005,
			Low:    p * 0.995,
			Close:  p,
			Volume: 1000000,
		}
	}
	return bars
}
