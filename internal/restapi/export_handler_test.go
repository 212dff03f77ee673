package restapi

import (
	"encoding/csv"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportHandler(t *testing.T) {
	api := createTestApi(t)

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/dataset/export.csv.gz?key=TEST")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/gzip", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "trips.csv.gz")

	gz, err := gzip.NewReader(resp.Body)
	require.NoError(t, err)
	defer func() { _ = gz.Close() }()

	records, err := csv.NewReader(gz).ReadAll()
	require.NoError(t, err)

	// header plus every source row, including ones without a usable timestamp
	require.Len(t, records, 9)
	assert.Equal(t, "ride_id", records[0][0])
	assert.Equal(t, "R001", records[1][0])
}

func TestExportHandlerRequiresValidApiKey(t *testing.T) {
	api := createTestApi(t)

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	server := httptest.NewServer(mux)
	defer server.Close()

	resp, err := http.Get(server.URL + "/api/dataset/export.csv.gz")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
