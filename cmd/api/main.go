package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/mattn/go-sqlite3" // CGo-based SQLite driver

	"bikedash.nycbikeshare.org/internal/app"
	"bikedash.nycbikeshare.org/internal/appconf"
	"bikedash.nycbikeshare.org/internal/bikeshare"
	"bikedash.nycbikeshare.org/internal/logging"
)

func main() {
	var (
		port       = flag.Int("port", 4000, "API server port")
		envFlag    = flag.String("env", "development", "Environment (development|test|production)")
		apiKeys    = flag.String("api-keys", "test", "Comma-separated list of valid API keys")
		rateLimit  = flag.Int("rate-limit", 100, "Requests per second allowed per API key")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		datasetURL = flag.String("dataset-url", "", "URL or local path of the trips+weather CSV")
		dataPath   = flag.String("data-path", "./data/trips.db", "Path to the SQLite mirror database")
		configFile = flag.String("config", "", "Path to JSON configuration file (overrides flags)")
	)
	flag.Parse()

	cfg := appconf.Config{
		Port:      *port,
		Env:       appconf.EnvFlagToEnvironment(*envFlag),
		ApiKeys:   ParseAPIKeys(*apiKeys),
		RateLimit: *rateLimit,
		Verbose:   *verbose,
	}
	dataCfg := bikeshare.Config{
		DatasetURL: *datasetURL,
		DataPath:   *dataPath,
		Env:        cfg.Env,
		Verbose:    cfg.Verbose,
	}

	if *configFile != "" {
		fileCfg, err := appconf.LoadFromFile(*configFile)
		if err != nil {
			slog.Error("failed to load config file", "path", *configFile, "error", err)
			os.Exit(1)
		}
		cfg = mergeAppConfig(cfg, fileCfg)
		dataCfg = mergeDataConfig(dataCfg, fileCfg.ToDatasetConfigData(), cfg)
	}

	if dataCfg.DatasetURL == "" {
		slog.Error("no dataset source configured; set -dataset-url or the dataset-url config key")
		os.Exit(1)
	}

	coreApp, err := BuildApplication(cfg, dataCfg)
	if err != nil {
		slog.Error("failed to build application", "error", err)
		os.Exit(1)
	}

	if err := Run(coreApp, cfg); err != nil {
		logging.LogError(coreApp.Logger, "server exited with error", err)
		os.Exit(1)
	}
}

func mergeAppConfig(cfg appconf.Config, fileCfg *appconf.JSONConfig) appconf.Config {
	fromFile := fileCfg.ToAppConfig()
	if fromFile.Port != 0 {
		cfg.Port = fromFile.Port
	}
	if fileCfg.Env != "" {
		cfg.Env = fromFile.Env
	}
	if len(fromFile.ApiKeys) > 0 {
		cfg.ApiKeys = fromFile.ApiKeys
	}
	if fromFile.RateLimit != 0 {
		cfg.RateLimit = fromFile.RateLimit
	}
	if fromFile.Verbose {
		cfg.Verbose = true
	}
	return cfg
}

func mergeDataConfig(dataCfg bikeshare.Config, fromFile appconf.DatasetConfigData, cfg appconf.Config) bikeshare.Config {
	if fromFile.DatasetURL != "" {
		dataCfg.DatasetURL = fromFile.DatasetURL
	}
	if fromFile.DataPath != "" {
		dataCfg.DataPath = fromFile.DataPath
	}
	dataCfg.AuthHeaderKey = fromFile.AuthHeaderKey
	dataCfg.AuthHeaderValue = fromFile.AuthHeaderVal
	dataCfg.Env = cfg.Env
	dataCfg.Verbose = cfg.Verbose
	return dataCfg
}

// Run starts the HTTP server and blocks until shutdown. SIGINT/SIGTERM
// trigger a graceful drain before the data manager and metrics are released.
func Run(coreApp *app.Application, cfg appconf.Config) error {
	srv, api := CreateServer(coreApp, cfg)
	defer api.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		coreApp.Logger.Info("starting server",
			slog.String("addr", srv.Addr),
			slog.String("env", cfg.Env.String()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		coreApp.Logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}

	if err := coreApp.DataManager.Shutdown(); err != nil {
		logging.LogError(coreApp.Logger, "failed to shut down data manager", err)
	}
	coreApp.Metrics.Shutdown()

	return nil
}
