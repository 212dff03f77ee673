package app

import (
	"log/slog"

	"bikedash.nycbikeshare.org/internal/appconf"
	"bikedash.nycbikeshare.org/internal/bikeshare"
	"bikedash.nycbikeshare.org/internal/clock"
	"bikedash.nycbikeshare.org/internal/metrics"
)

// Application holds the dependencies shared by HTTP handlers, helpers, and
// middleware: configuration, the dataset manager, a clock, and metrics.
type Application struct {
	Config      appconf.Config
	DataConfig  bikeshare.Config
	Logger      *slog.Logger
	DataManager *bikeshare.Manager
	Clock       clock.Clock
	Metrics     *metrics.Metrics
}
