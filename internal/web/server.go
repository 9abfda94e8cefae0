package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kalletarpila/osakedata-web-viewer/internal/importer"
	"github.com/kalletarpila/osakedata-web-viewer/internal/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// Server holds the web layer's collaborators and renders the single page.
type Server struct {
	store    *store.Store
	importer *importer.Importer
	log      *zap.SugaredLogger
	tmpl     *template.Template
}

// NewServer parses the embedded templates and wires the handlers' collaborators.
func NewServer(st *store.Store, im *importer.Importer, log *zap.SugaredLogger) (*Server, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Server{store: st, importer: im, log: log, tmpl: tmpl}, nil
}

// Router builds the route table. chi answers 405 for wrong methods on its own.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogger)

	r.Get("/", s.handleIndex)
	r.Post("/search", s.handleSearch)
	r.Post("/delete", s.handleDelete)
	r.Post("/clear_database", s.handleClearDatabase)
	r.Post("/fetch_yfinance", s.handleFetchRemote)
	r.Post("/fetch_tickers", s.handleFetchTickers)
	r.Post("/fetch_csv", s.handleFetchCSV)
	r.Get("/api/symbols", s.handleAPISymbols)
	r.Get("/api/symbols/search", s.handleAPISymbolSearch)

	return r
}

// statusRecorder captures the response status for the access log.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.log.Infow("request",
			"id", uuid.NewString(),
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
