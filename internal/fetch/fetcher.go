package fetch

import (
	"time"

	"github.com/kalletarpila/osakedata-web-viewer/internal/model"
)

// Fetcher defines the interface for fetching daily history from a remote
// quote source.
type Fetcher interface {
	History(symbol string, start, end time.Time) ([]model.Bar, error)
	Name() string
}
