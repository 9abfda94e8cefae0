package importer

import (
	"math"

	"github.com/kalletarpila/osakedata-web-viewer/internal/model"
)

// pennyMinRows is the smallest history considered long enough to judge.
const pennyMinRows = 10

// pennyThreshold is the mean closing price below which an instrument is
// rejected, in its native currency unit.
const pennyThreshold = 1.00

// IsPennyStock reports whether a price series should be rejected. True when
// the series is empty, shorter than pennyMinRows, carries no usable closing
// prices, or its mean close is below pennyThreshold. Ambiguous or
// insufficient data is rejected rather than imported.
func IsPennyStock(bars []model.Bar) bool {
	if len(bars) < pennyMinRows {
		return true
	}
	sum := 0.0
	n := 0
	for _, b := range bars {
		if math.IsNaN(b.Close) {
			continue
		}
		sum += b.Close
		n++
	}
	if n == 0 {
		return true
	}
	return sum/float64(n) < pennyThreshold
}
