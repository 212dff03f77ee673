package bikeshare

import (
	"bikedash.nycbikeshare.org/internal/appconf"
)

// Config holds dataset configuration for the manager.
type Config struct {
	// DatasetURL is either a local CSV path or an HTTP(S) URL.
	DatasetURL string

	// Optional auth header for HTTP sources.
	AuthHeaderKey   string
	AuthHeaderValue string

	// DataPath is the SQLite path the imported dataset is mirrored into
	// (":memory:" under test).
	DataPath string

	Env     appconf.Environment
	Verbose bool
}
