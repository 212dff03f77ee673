package restapi

import (
	"net/http"

	"bikedash.nycbikeshare.org/internal/models"
)

// currentTimeHandler writes a JSON response with information about the
// current time.
func (api *RestAPI) currentTimeHandler(w http.ResponseWriter, r *http.Request) {
	if !api.DataManager.IsHealthy() {
		http.Error(w, "Service Unavailable: dataset invalid", http.StatusServiceUnavailable)
		return
	}

	timeData := models.NewCurrentTimeData(api.Clock.Now())
	response := models.NewEntryResponse(timeData, api.Clock)

	api.sendResponse(w, r, response)
}
