// Package tripdb mirrors the loaded trip dataset into SQLite so overview
// queries, health checks and exports run against a real database while the
// aggregation pipeline works off the in-memory snapshot.
package tripdb

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"log/slog"
	"runtime"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3" // CGo-based SQLite driver

	"bikedash.nycbikeshare.org/internal/appconf"
	"bikedash.nycbikeshare.org/internal/logging"
)

//go:embed schema.sql
var ddl string

// Client is the main entry point for the library
type Client struct {
	config        Config
	DB            *sql.DB
	Queries       *Queries
	importRuntime time.Duration
}

// NewClient creates a new Client with the provided configuration
func NewClient(config Config) (*Client, error) {
	db, err := createDB(config)
	if err != nil {
		return nil, fmt.Errorf("unable to create DB: %w", err)
	} else if config.verbose {
		log.Println("Successfully created tables")
	}

	queries := New(db)

	client := &Client{
		config:  config,
		DB:      db,
		Queries: queries,
	}
	return client, nil
}

func (c *Client) Close() error {
	return c.DB.Close()
}

func (c *Client) GetDBPath() string {
	return c.config.DBPath
}

// ImportRuntime reports how long the last StoreTrips call took.
func (c *Client) ImportRuntime() time.Duration {
	return c.importRuntime
}

// createDB creates a new SQLite database with tables for the trip dataset
func createDB(config Config) (*sql.DB, error) {
	if config.Env == appconf.Test && config.DBPath != ":memory:" {
		return nil, fmt.Errorf("test database must use in-memory storage, got path: %s", config.DBPath)
	}

	db, err := sql.Open("sqlite3", config.DBPath)
	if err != nil {
		return nil, err
	}

	// Configure SQLite performance settings immediately after opening
	ctx := context.Background()
	err = configureSQLitePerformance(ctx, db, config)
	if err != nil {
		return nil, fmt.Errorf("error configuring SQLite performance: %w", err)
	}

	err = performDatabaseMigration(ctx, db)
	if err != nil {
		return nil, fmt.Errorf("error performing database migration: %w", err)
	}

	// Configure connection pool settings
	configureConnectionPool(db, config)

	return db, nil
}

func configureSQLitePerformance(ctx context.Context, db *sql.DB, config Config) error {
	pragmas := []string{
		"PRAGMA synchronous = NORMAL",
		"PRAGMA cache_size = -20000",
		"PRAGMA temp_store = MEMORY",
	}
	// WAL only applies to on-disk databases.
	if config.DBPath != ":memory:" {
		pragmas = append([]string{"PRAGMA journal_mode = WAL"}, pragmas...)
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("error executing %q: %w", pragma, err)
		}
	}
	return nil
}

func configureConnectionPool(db *sql.DB, config Config) {
	// In-memory databases must stay on a single connection or each
	// connection sees its own empty database.
	if config.DBPath == ":memory:" {
		db.SetMaxOpenConns(1)
		return
	}
	db.SetMaxOpenConns(runtime.NumCPU())
	db.SetMaxIdleConns(runtime.NumCPU())
	db.SetConnMaxIdleTime(5 * time.Minute)
}

func performDatabaseMigration(ctx context.Context, db *sql.DB) error {
	statements := strings.Split(ddl, "-- migrate") // Split DDL into individual statements
	for _, stmt := range statements {
		trimmedStmt := strings.TrimSpace(stmt)
		if trimmedStmt == "" {
			continue // Skip empty statements
		}
		if _, err := db.ExecContext(ctx, trimmedStmt); err != nil {
			return fmt.Errorf("error executing DDL statement [%s]: %w", trimmedStmt, err)
		}
	}
	return nil
}

// StoreTrips replaces the trips table with the given rows, keyed by the
// content hash of the source bytes. When the hash and source match the
// previous import the call is a no-op and reports imported=false.
func (c *Client) StoreTrips(ctx context.Context, trips []Trip, hash, source string) (bool, error) {
	logger := slog.Default().With(slog.String("component", "trip_importer"))

	startTime := time.Now()
	defer func() {
		c.importRuntime = time.Since(startTime)

		logging.LogOperation(logger, "trip_data_import_completed",
			slog.Duration("duration", c.importRuntime),
			slog.String("source", source))
	}()

	// Check if we already have this data imported
	existingMetadata, err := c.Queries.GetImportMetadata(ctx)
	if err == nil {
		if existingMetadata.FileHash == hash && existingMetadata.FileSource == source {
			logging.LogOperation(logger, "trip_data_unchanged_skipping_import",
				slog.String("hash", hash[:8]))
			return false, nil
		}
		logging.LogOperation(logger, "trip_data_changed_reimporting",
			slog.String("old_hash", existingMetadata.FileHash[:8]),
			slog.String("new_hash", hash[:8]))
		if err := c.Queries.DeleteAllTrips(ctx); err != nil {
			return false, fmt.Errorf("error clearing existing trip data: %w", err)
		}
	} else if err != sql.ErrNoRows {
		return false, fmt.Errorf("error checking import metadata: %w", err)
	}
	// If err == sql.ErrNoRows, this is the first import, continue normally

	if err := c.Queries.InsertTrips(ctx, trips); err != nil {
		return false, fmt.Errorf("error inserting trips: %w", err)
	}

	if err := c.Queries.UpsertImportMetadata(ctx, hash, source, time.Now()); err != nil {
		return false, fmt.Errorf("error recording import metadata: %w", err)
	}

	return true, nil
}
