package tripdb

import (
	"context"
	"database/sql"
	"time"
)

// Trip is one stored row of the trips table.
type Trip struct {
	ID               int64
	RideID           sql.NullString
	StartedAt        sql.NullTime
	StartStationID   sql.NullString
	StartStationName sql.NullString
	EndStationID     sql.NullString
	EndStationName   sql.NullString
	StartLat         sql.NullFloat64
	StartLng         sql.NullFloat64
	EndLat           sql.NullFloat64
	EndLng           sql.NullFloat64
	RiderType        sql.NullString
	Tmax             sql.NullFloat64
	Tmin             sql.NullFloat64
	Prcp             sql.NullFloat64
}

// ImportMetadata records which source bytes are currently imported.
type ImportMetadata struct {
	FileHash   string
	FileSource string
	ImportedAt time.Time
}

// DateBounds is the observed min/max start timestamp of the stored trips.
type DateBounds struct {
	Min sql.NullTime
	Max sql.NullTime
}

// Queries wraps a database handle with the query set the application uses.
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

func (q *Queries) GetImportMetadata(ctx context.Context) (ImportMetadata, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT file_hash, file_source, imported_at FROM import_metadata WHERE id = 1`)

	var meta ImportMetadata
	err := row.Scan(&meta.FileHash, &meta.FileSource, &meta.ImportedAt)
	return meta, err
}

func (q *Queries) UpsertImportMetadata(ctx context.Context, hash, source string, importedAt time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`INSERT INTO import_metadata (id, file_hash, file_source, imported_at)
		 VALUES (1, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   file_hash = excluded.file_hash,
		   file_source = excluded.file_source,
		   imported_at = excluded.imported_at`,
		hash, source, importedAt)
	return err
}

func (q *Queries) DeleteAllTrips(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM trips`)
	return err
}

const insertTripSQL = `INSERT INTO trips (
    ride_id, started_at,
    start_station_id, start_station_name,
    end_station_id, end_station_name,
    start_lat, start_lng, end_lat, end_lng,
    rider_type, tmax, tmin, prcp
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsertTrips bulk-inserts rows inside one transaction.
func (q *Queries) InsertTrips(ctx context.Context, trips []Trip) error {
	tx, err := q.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertTripSQL)
	if err != nil {
		return err
	}
	defer func() { _ = stmt.Close() }()

	for _, t := range trips {
		_, err := stmt.ExecContext(ctx,
			t.RideID, t.StartedAt,
			t.StartStationID, t.StartStationName,
			t.EndStationID, t.EndStationName,
			t.StartLat, t.StartLng, t.EndLat, t.EndLng,
			t.RiderType, t.Tmax, t.Tmin, t.Prcp)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (q *Queries) CountTrips(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trips`).Scan(&count)
	return count, err
}

func (q *Queries) GetTripDateBounds(ctx context.Context) (DateBounds, error) {
	var bounds DateBounds
	err := q.db.QueryRowContext(ctx,
		`SELECT MIN(started_at), MAX(started_at) FROM trips WHERE started_at IS NOT NULL`).
		Scan(&bounds.Min, &bounds.Max)
	return bounds, err
}

// ListTrips returns stored rows in insertion order, for export.
func (q *Queries) ListTrips(ctx context.Context) (*sql.Rows, error) {
	return q.db.QueryContext(ctx,
		`SELECT ride_id, started_at,
		        start_station_id, start_station_name,
		        end_station_id, end_station_name,
		        start_lat, start_lng, end_lat, end_lng,
		        rider_type, tmax, tmin, prcp
		 FROM trips ORDER BY id`)
}
