package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kalletarpila/osakedata-web-viewer/internal/config"
	"github.com/kalletarpila/osakedata-web-viewer/internal/fetch"
	"github.com/kalletarpila/osakedata-web-viewer/internal/importer"
	"github.com/kalletarpila/osakedata-web-viewer/internal/store"
	"github.com/kalletarpila/osakedata-web-viewer/internal/web"
)

var configFile string

func main() {
	rootCmd := &cobra.Command{
		Use:   "osaviewer",
		Short: "Web viewer and importers for OHLCV stock data in SQLite",
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "configs/config.yaml", "Path to config file")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the web server",
			RunE:  runServe,
		},
		&cobra.Command{
			Use:   "fetch-tickers",
			Short: "Import the configured ticker file through the remote quote source",
			RunE:  runFetchTickers,
		},
		&cobra.Command{
			Use:   "import-csv [tickers...]",
			Short: "Import the configured CSV file (no tickers = mass import)",
			RunE:  runImportCSV,
		},
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads .env and config and wires the component graph.
func setup() (*config.Config, *zap.SugaredLogger, *importer.Importer, *store.Store, error) {
	// .env is optional; real config comes from the yaml file and environment.
	_ = godotenv.Load()

	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, nil, fmt.Errorf("config validation: %w", err)
	}

	log, err := newLogger(cfg.Log.Level)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("init logger: %w", err)
	}

	st := store.New(store.NewPaths(cfg), log)
	fetcher := fetch.NewYahooFetcher(os.Getenv("HTTPS_PROXY"))
	im := importer.New(st, fetcher, cfg, log)
	log.Infow("components ready", "fetcher", fetcher.Name())
	return cfg, log, im, st, nil
}

func newLogger(level string) (*zap.SugaredLogger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	logger, err := zcfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, log, im, st, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	server, err := web.NewServer(st, im, log)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infow("listening", "addr", cfg.Server.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-sigCh:
		log.Infow("shutdown signal received", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Infow("stopped")
	return nil
}

func runFetchTickers(_ *cobra.Command, _ []string) error {
	_, log, im, _, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	res, stats := im.ImportTickerFile()
	log.Infow("ticker file import finished",
		"success", res.OK,
		"message", res.Message,
		"processed", stats.Processed,
		"succeeded", stats.Succeeded,
		"failed", stats.Failed,
		"rows", stats.RowsSaved,
	)
	if !res.OK {
		return fmt.Errorf("import failed: %s", res.Message)
	}
	return nil
}

func runImportCSV(_ *cobra.Command, args []string) error {
	_, log, im, _, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	res := im.ImportCSV(args)
	log.Infow("csv import finished", "success", res.OK, "message", res.Message, "rows", res.Rows)
	if !res.OK {
		return fmt.Errorf("import failed: %s", res.Message)
	}
	return nil
}
