package restapi

import (
	"net/http"

	"bikedash.nycbikeshare.org/internal/logging"
)

// exportHandler streams the full trip table as gzipped CSV straight from the
// SQLite mirror, so the in-memory snapshot stays untouched by large exports.
func (api *RestAPI) exportHandler(w http.ResponseWriter, r *http.Request) {
	if !api.DataManager.IsReady() {
		api.sendError(w, r, http.StatusServiceUnavailable, "dataset not loaded")
		return
	}

	w.Header().Set("Content-Type", "application/gzip")
	w.Header().Set("Content-Disposition", `attachment; filename="trips.csv.gz"`)

	if err := api.DataManager.TripDB.ExportCSVGz(r.Context(), w); err != nil {
		// Headers are already gone; all we can do is log it.
		logging.LogError(api.Logger, "trip export failed", err)
	}
}
