package restapi

import (
	"encoding/json"
	"net/http"

	"bikedash.nycbikeshare.org/internal/logging"
)

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// healthHandler reports readiness. It stays at 503 until the dataset is
// parsed, indexed and the SQLite mirror answers a ping.
func (api *RestAPI) healthHandler(w http.ResponseWriter, r *http.Request) {
	if api.Application == nil || api.DataManager == nil || api.DataManager.TripDB == nil || api.DataManager.TripDB.DB == nil {
		writeHealth(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Detail: "manager or database not initialized",
		})
		return
	}

	if !api.DataManager.IsReady() {
		writeHealth(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "starting",
			Detail: "dataset is being loaded and indexed",
		})
		return
	}

	if err := api.DataManager.TripDB.DB.PingContext(r.Context()); err != nil {
		logging.LogError(api.Logger, "trip DB ping failed", err)
		writeHealth(w, http.StatusServiceUnavailable, HealthResponse{
			Status: "unavailable",
			Detail: "database connection failed",
		})
		return
	}

	writeHealth(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func writeHealth(w http.ResponseWriter, code int, body HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}
