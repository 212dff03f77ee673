package bikeshare

import (
	"bytes"
	"crypto/sha256"
	"database/sql"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"bikedash.nycbikeshare.org/internal/logging"
)

// tripTimeFormats are the timestamp layouts accepted for started_at, tried in
// order. Citi Bike exports use the first; the rest cover re-exports.
var tripTimeFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02",
}

func rawDatasetData(source string, isLocalFile bool, config Config) ([]byte, error) {
	var b []byte
	var err error

	logger := slog.Default().With(slog.String("component", "dataset_loader"))

	if isLocalFile {
		b, err = os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("error reading local dataset file: %w", err)
		}
	} else {
		req, err := http.NewRequest("GET", source, nil)
		if err != nil {
			return nil, fmt.Errorf("error creating dataset request: %w", err)
		}

		// Add auth header if provided
		if config.AuthHeaderKey != "" && config.AuthHeaderValue != "" {
			req.Header.Set(config.AuthHeaderKey, config.AuthHeaderValue)
		}

		client := &http.Client{
			Timeout: 5 * time.Minute,
			Transport: &http.Transport{
				TLSHandshakeTimeout:   10 * time.Second,
				ResponseHeaderTimeout: 30 * time.Second,
				IdleConnTimeout:       90 * time.Second,
			}}

		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("error downloading dataset: %w", err)
		}
		defer logging.SafeCloseWithLogging(resp.Body, logger, "http_response_body")

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("failed to download dataset: received HTTP status %s", resp.Status)
		}
		const maxDatasetSize = 200 * 1024 * 1024
		b, err = io.ReadAll(io.LimitReader(resp.Body, maxDatasetSize+1))
		if err != nil {
			return nil, fmt.Errorf("error reading dataset: %w", err)
		}
		if int64(len(b)) > maxDatasetSize {
			return nil, fmt.Errorf("dataset response exceeds size limit of %d bytes", maxDatasetSize)
		}
	}

	return b, nil
}

// ParseCSV parses the raw CSV bytes into a Dataset. Unrecognized columns are
// ignored; recognized columns whose values fail to parse are left invalid on
// the record and counted, never defaulted.
func ParseCSV(b []byte) (*Dataset, error) {
	reader := csv.NewReader(bytes.NewReader(b))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV header: %w", err)
	}

	colIndex := make(map[string]int, len(header))
	for i, name := range header {
		colIndex[strings.TrimSpace(name)] = i
	}

	known := []string{
		ColRideID, ColStartedAt,
		ColStartStationID, ColStartStationName,
		ColEndStationID, ColEndStationName,
		ColStartLat, ColStartLng, ColEndLat, ColEndLng,
		ColMemberCasual, ColTMax, ColTMin, ColPrcp,
	}

	columns := make(map[string]bool)
	maxIndex := -1
	for _, name := range known {
		if i, ok := colIndex[name]; ok {
			columns[name] = true
			if i > maxIndex {
				maxIndex = i
			}
		}
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("no recognized columns in CSV header: %v", header)
	}

	hash := sha256.Sum256(b)

	ds := &Dataset{
		columns:    columns,
		SourceHash: hex.EncodeToString(hash[:]),
	}

	field := func(row []string, name string) (string, bool) {
		if !columns[name] {
			return "", false
		}
		return strings.TrimSpace(row[colIndex[name]]), true
	}

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading CSV row: %w", err)
		}
		if len(row) <= maxIndex {
			ds.Dropped.ShortRow++
			continue
		}

		var rec TripRecord
		badNumeric := false

		if v, ok := field(row, ColRideID); ok {
			rec.RideID = v
		}
		if v, ok := field(row, ColStartedAt); ok {
			if ts, ok := parseTripTime(v); ok {
				rec.StartedAt = ts
			} else {
				ds.Dropped.BadTimestamp++
			}
		}
		if v, ok := field(row, ColStartStationID); ok {
			rec.StartStationID = v
		}
		if v, ok := field(row, ColStartStationName); ok {
			rec.StartStationName = v
		}
		if v, ok := field(row, ColEndStationID); ok {
			rec.EndStationID = v
		}
		if v, ok := field(row, ColEndStationName); ok {
			rec.EndStationName = v
		}
		if v, ok := field(row, ColMemberCasual); ok {
			rec.RiderType = strings.ToLower(v)
		}

		rec.StartLat = parseNullFloat(row, colIndex, columns, ColStartLat, &badNumeric)
		rec.StartLng = parseNullFloat(row, colIndex, columns, ColStartLng, &badNumeric)
		rec.EndLat = parseNullFloat(row, colIndex, columns, ColEndLat, &badNumeric)
		rec.EndLng = parseNullFloat(row, colIndex, columns, ColEndLng, &badNumeric)
		rec.TMax = parseNullFloat(row, colIndex, columns, ColTMax, &badNumeric)
		rec.TMin = parseNullFloat(row, colIndex, columns, ColTMin, &badNumeric)
		rec.Precipitation = parseNullFloat(row, colIndex, columns, ColPrcp, &badNumeric)

		if badNumeric {
			ds.Dropped.BadNumeric++
		}

		if rec.HasStartedAt() {
			day := rec.Date()
			if ds.MinDate.IsZero() || day.Before(ds.MinDate) {
				ds.MinDate = day
			}
			if ds.MaxDate.IsZero() || day.After(ds.MaxDate) {
				ds.MaxDate = day
			}
		}

		ds.Records = append(ds.Records, rec)
	}

	return ds, nil
}

func parseTripTime(v string) (time.Time, bool) {
	if v == "" {
		return time.Time{}, false
	}
	for _, layout := range tripTimeFormats {
		if ts, err := time.ParseInLocation(layout, v, time.UTC); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// parseNullFloat parses a numeric column value; empty values are simply
// invalid, non-numeric values are invalid and flagged.
func parseNullFloat(row []string, colIndex map[string]int, columns map[string]bool, name string, bad *bool) sql.NullFloat64 {
	if !columns[name] {
		return sql.NullFloat64{}
	}
	v := strings.TrimSpace(row[colIndex[name]])
	if v == "" {
		return sql.NullFloat64{}
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		*bad = true
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: f, Valid: true}
}

// loadDataset loads and parses the dataset from either a URL or a local file.
func loadDataset(source string, isLocalFile bool, config Config) (*Dataset, error) {
	b, err := rawDatasetData(source, isLocalFile, config)
	if err != nil {
		return nil, fmt.Errorf("error reading dataset: %w", err)
	}

	ds, err := ParseCSV(b)
	if err != nil {
		return nil, fmt.Errorf("error parsing dataset: %w", err)
	}

	return ds, nil
}
