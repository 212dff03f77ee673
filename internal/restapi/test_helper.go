// test_helper.go contains shared utilities for standing up a fully wired API
// over the sample dataset in integration tests.
package restapi

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"bikedash.nycbikeshare.org/internal/app"
	"bikedash.nycbikeshare.org/internal/appconf"
	"bikedash.nycbikeshare.org/internal/bikeshare"
	"bikedash.nycbikeshare.org/internal/clock"
	"bikedash.nycbikeshare.org/internal/models"
)

func testDatasetPath(t *testing.T) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "testdata", "trips_weather.csv"))
	require.NoError(t, err)
	return path
}

func createTestApi(t *testing.T) *RestAPI {
	t.Helper()
	return createTestApiWithClock(t, clock.RealClock{})
}

func createTestApiWithClock(t *testing.T, clk clock.Clock) *RestAPI {
	t.Helper()

	dataConfig := bikeshare.Config{
		DatasetURL: testDatasetPath(t),
		DataPath:   ":memory:",
		Env:        appconf.Test,
	}

	manager, err := bikeshare.InitDataManager(dataConfig)
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Shutdown() })

	application := &app.Application{
		Config: appconf.Config{
			Env:       appconf.Test,
			ApiKeys:   []string{"TEST"},
			RateLimit: 100,
		},
		DataConfig:  dataConfig,
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		DataManager: manager,
		Clock:       clk,
	}

	api := NewRestAPI(application)
	t.Cleanup(api.Shutdown)
	return api
}

// serveAndRetrieveEndpoint spins up a test server over a fresh API instance,
// performs a GET against endpoint, and decodes the response envelope.
func serveAndRetrieveEndpoint(t *testing.T, endpoint string) (*RestAPI, *http.Response, models.ResponseModel) {
	t.Helper()
	api := createTestApi(t)
	resp, model := serveApiAndRetrieveEndpoint(t, api, endpoint)
	return api, resp, model
}

func serveApiAndRetrieveEndpoint(t *testing.T, api *RestAPI, endpoint string) (*http.Response, models.ResponseModel) {
	t.Helper()

	mux := http.NewServeMux()
	api.SetRoutes(mux)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + endpoint)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })

	var model models.ResponseModel
	err = json.NewDecoder(resp.Body).Decode(&model)
	require.NoError(t, err)

	return resp, model
}

// getList digs the list payload out of a decoded response envelope.
func getList(t *testing.T, model models.ResponseModel) []interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "response data is not an object")
	list, ok := data["list"].([]interface{})
	require.True(t, ok, "response data has no list")
	return list
}

// getEntry digs the entry payload out of a decoded response envelope.
func getEntry(t *testing.T, model models.ResponseModel) map[string]interface{} {
	t.Helper()
	data, ok := model.Data.(map[string]interface{})
	require.True(t, ok, "response data is not an object")
	entry, ok := data["entry"].(map[string]interface{})
	require.True(t, ok, "response data has no entry")
	return entry
}
