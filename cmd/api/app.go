package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"bikedash.nycbikeshare.org/internal/app"
	"bikedash.nycbikeshare.org/internal/appconf"
	"bikedash.nycbikeshare.org/internal/bikeshare"
	"bikedash.nycbikeshare.org/internal/clock"
	"bikedash.nycbikeshare.org/internal/metrics"
	"bikedash.nycbikeshare.org/internal/restapi"
	"bikedash.nycbikeshare.org/internal/webui"
)

// ParseAPIKeys splits a comma-separated key list, dropping whitespace and
// empty entries.
func ParseAPIKeys(apiKeys string) []string {
	keys := []string{}
	for _, part := range strings.Split(apiKeys, ",") {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

// BuildApplication wires up logging, metrics and the dataset manager.
func BuildApplication(cfg appconf.Config, dataCfg bikeshare.Config) (*app.Application, error) {
	logLevel := slog.LevelInfo
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	appMetrics := metrics.NewWithLogger(logger)

	dataManager, err := bikeshare.InitDataManager(dataCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dataset manager: %w", err)
	}

	dataManager.RLock()
	ds := dataManager.Dataset()
	appMetrics.DatasetRowsLoaded.Set(float64(len(ds.Records)))
	appMetrics.DatasetRowsDropped.Set(float64(ds.Dropped.Total()))
	dataManager.RUnlock()
	appMetrics.DatasetLoadsTotal.Inc()

	appMetrics.StartDBStatsCollector(dataManager.TripDB.DB, 15*time.Second)

	coreApp := &app.Application{
		Config:      cfg,
		DataConfig:  dataCfg,
		Logger:      logger,
		DataManager: dataManager,
		Clock:       clock.RealClock{},
		Metrics:     appMetrics,
	}

	return coreApp, nil
}

// CreateServer assembles the HTTP server: routes from the REST API and the
// web UI, wrapped in request-ID, logging and metrics middleware.
func CreateServer(coreApp *app.Application, cfg appconf.Config) (*http.Server, *restapi.RestAPI) {
	mux := http.NewServeMux()

	api := restapi.NewRestAPI(coreApp)
	api.SetRoutes(mux)

	ui := webui.NewWebUI(coreApp)
	ui.SetRoutes(mux)

	var handler http.Handler = mux
	handler = restapi.MetricsHandler(coreApp.Metrics)(handler)
	handler = restapi.NewRequestLoggingMiddleware(coreApp.Logger)(handler)
	handler = restapi.RequestIDMiddleware(handler)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	return srv, api
}
