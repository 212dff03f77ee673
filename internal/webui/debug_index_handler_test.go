package webui

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bikedash.nycbikeshare.org/internal/app"
	"bikedash.nycbikeshare.org/internal/appconf"
	"bikedash.nycbikeshare.org/internal/bikeshare"
)

func TestDebugIndexHandler_ProductionReturns404(t *testing.T) {
	webUI := &WebUI{
		Application: &app.Application{
			Config: appconf.Config{Env: appconf.Production},
		},
	}

	req, _ := http.NewRequest("GET", "/debug?dataType=columns", nil)
	rr := httptest.NewRecorder()

	webUI.debugIndexHandler(rr, req)

	assert.Equal(t, http.StatusNotFound, rr.Code, "Should return 404 in Production")
}

func TestDebugIndexHandler_DevelopmentReturns200(t *testing.T) {
	manager, err := bikeshare.InitDataManager(bikeshare.Config{
		DatasetURL: "../../testdata/trips_weather.csv",
		DataPath:   ":memory:",
		Env:        appconf.Test,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = manager.Shutdown() })

	webUI := &WebUI{
		Application: &app.Application{
			Config:      appconf.Config{Env: appconf.Development},
			DataManager: manager,
		},
	}

	for _, dataType := range []string{"columns", "dropped", "records", "bounds", "stations", ""} {
		req, _ := http.NewRequest("GET", "/debug?dataType="+dataType, nil)
		rr := httptest.NewRecorder()

		webUI.debugIndexHandler(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code, "dataType=%q", dataType)
		assert.Contains(t, rr.Header().Get("Content-Type"), "text/html")
	}
}
