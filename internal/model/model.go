package model

import (
	"math"
	"time"
)

// Bar is a single daily candlestick as returned by a remote quote source.
// Fields that the source reported as null are NaN.
type Bar struct {
	Date   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Valid reports whether every OHLCV field carries a real number.
func (b Bar) Valid() bool {
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) {
			return false
		}
	}
	return true
}

// PriceRow is a stored OHLCV row. Natural key: (Symbol, Date).
type PriceRow struct {
	Symbol string
	Date   string // YYYY-MM-DD
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}

// PatternFinding is a stored candlestick-pattern hit.
// Natural key: (Ticker, Date, Pattern); one ticker/date may carry several patterns.
type PatternFinding struct {
	Ticker  string
	Date    string // YYYY-MM-DD
	Pattern string
}

// DateLayout is the storage and CSV date format.
const DateLayout = "2006-01-02"
