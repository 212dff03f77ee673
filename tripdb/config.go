package tripdb

import (
	"bikedash.nycbikeshare.org/internal/appconf"
)

// Config holds the SQLite settings for a Client.
type Config struct {
	DBPath  string
	Env     appconf.Environment
	verbose bool
}

// NewConfig creates a new Config with the provided values.
func NewConfig(dbPath string, env appconf.Environment, verbose bool) Config {
	return Config{
		DBPath:  dbPath,
		Env:     env,
		verbose: verbose,
	}
}
