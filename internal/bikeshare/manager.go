package bikeshare

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"bikedash.nycbikeshare.org/internal/logging"
	"bikedash.nycbikeshare.org/tripdb"
)

// Manager owns the loaded dataset and its derived indexes. The dataset is
// effectively immutable between reloads; readers take RLock for the duration
// of a request so a reload can never swap state out from under them.
type Manager struct {
	config      Config
	isLocalFile bool

	TripDB *tripdb.Client

	staticMutex  sync.RWMutex
	dataset      *Dataset
	stationIndex *StationIndex
	lastUpdated  time.Time
	isHealthy    bool
}

// InitDataManager loads the dataset from the configured source, mirrors it
// into SQLite and builds the station index.
func InitDataManager(config Config) (*Manager, error) {
	isLocalFile := !strings.HasPrefix(config.DatasetURL, "http://") &&
		!strings.HasPrefix(config.DatasetURL, "https://")

	manager := &Manager{
		config:      config,
		isLocalFile: isLocalFile,
	}

	ds, err := loadDataset(config.DatasetURL, isLocalFile, config)
	if err != nil {
		return nil, err
	}

	dbConfig := tripdb.NewConfig(config.DataPath, config.Env, config.Verbose)
	client, err := tripdb.NewClient(dbConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create trip database client: %w", err)
	}
	manager.TripDB = client

	ctx := context.Background()
	if _, err := client.StoreTrips(ctx, datasetToRows(ds), ds.SourceHash, config.DatasetURL); err != nil {
		if closeErr := client.Close(); closeErr != nil {
			logger := slog.Default().With(slog.String("component", "data_manager"))
			logging.LogError(logger, "failed to close trip DB after import failure", closeErr)
		}
		return nil, fmt.Errorf("failed to store trips: %w", err)
	}

	manager.setDataset(ds)

	return manager, nil
}

// setDataset swaps in a freshly parsed dataset and its indexes.
func (manager *Manager) setDataset(ds *Dataset) {
	manager.staticMutex.Lock()
	defer manager.staticMutex.Unlock()

	manager.dataset = ds
	manager.stationIndex = BuildStationIndex(ds)
	manager.lastUpdated = time.Now()
	manager.isHealthy = true

	if manager.config.Verbose {
		logger := slog.Default().With(slog.String("component", "data_manager"))
		logging.LogOperation(logger, "dataset_loaded",
			slog.String("source", manager.config.DatasetURL),
			slog.Int("records", len(ds.Records)),
			slog.Int("rows_dropped", ds.Dropped.Total()),
			slog.Int("stations_indexed", manager.stationIndex.Len()))
	}
}

// ForceReload re-reads the source and hot-swaps the in-memory dataset. The
// SQLite mirror is refreshed through the same content-hash gate as the
// initial import, so an unchanged source is a cheap no-op there.
func (manager *Manager) ForceReload(ctx context.Context) error {
	logger := slog.Default().With(slog.String("component", "dataset_updater"))

	ds, err := loadDataset(manager.config.DatasetURL, manager.isLocalFile, manager.config)
	if err != nil {
		logging.LogError(logger, "error reloading dataset", err,
			slog.String("source", manager.config.DatasetURL))
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := manager.TripDB.StoreTrips(ctx, datasetToRows(ds), ds.SourceHash, manager.config.DatasetURL); err != nil {
		logging.LogError(logger, "error refreshing trip database", err)
		return err
	}

	manager.setDataset(ds)

	logging.LogOperation(logger, "dataset_reloaded",
		slog.String("source", manager.config.DatasetURL),
		slog.Int("records", len(ds.Records)))
	return nil
}

// RLock acquires the read lock. Callers must pair it with RUnlock and hold it
// across every Dataset()/StationIndex() access within a request.
func (manager *Manager) RLock() {
	manager.staticMutex.RLock()
}

func (manager *Manager) RUnlock() {
	manager.staticMutex.RUnlock()
}

// Dataset returns the current dataset snapshot.
// Caller must hold RLock.
func (manager *Manager) Dataset() *Dataset {
	return manager.dataset
}

// StationIndex returns the current station spatial index.
// Caller must hold RLock.
func (manager *Manager) StationIndex() *StationIndex {
	return manager.stationIndex
}

func (manager *Manager) IsHealthy() bool {
	manager.staticMutex.RLock()
	defer manager.staticMutex.RUnlock()
	return manager.isHealthy
}

// IsReady reports whether a dataset snapshot and its indexes are in place.
func (manager *Manager) IsReady() bool {
	manager.staticMutex.RLock()
	defer manager.staticMutex.RUnlock()
	return manager.dataset != nil && manager.stationIndex != nil
}

func (manager *Manager) LastUpdated() time.Time {
	manager.staticMutex.RLock()
	defer manager.staticMutex.RUnlock()
	return manager.lastUpdated
}

// Shutdown releases the SQLite handle.
func (manager *Manager) Shutdown() error {
	if manager.TripDB != nil {
		return manager.TripDB.Close()
	}
	return nil
}

func datasetToRows(ds *Dataset) []tripdb.Trip {
	trips := make([]tripdb.Trip, 0, len(ds.Records))
	for _, rec := range ds.Records {
		trips = append(trips, tripdb.Trip{
			RideID:           nullString(rec.RideID),
			StartedAt:        nullTime(rec.StartedAt),
			StartStationID:   nullString(rec.StartStationID),
			StartStationName: nullString(rec.StartStationName),
			EndStationID:     nullString(rec.EndStationID),
			EndStationName:   nullString(rec.EndStationName),
			StartLat:         rec.StartLat,
			StartLng:         rec.StartLng,
			EndLat:           rec.EndLat,
			EndLng:           rec.EndLng,
			RiderType:        nullString(rec.RiderType),
			Tmax:             rec.TMax,
			Tmin:             rec.TMin,
			Prcp:             rec.Precipitation,
		})
	}
	return trips
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullTime(v time.Time) sql.NullTime {
	return sql.NullTime{Time: v, Valid: !v.IsZero()}
}
