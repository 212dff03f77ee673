package restapi

import (
	"net/http"

	"bikedash.nycbikeshare.org/internal/bikeshare"
	"bikedash.nycbikeshare.org/internal/models"
	"bikedash.nycbikeshare.org/internal/pipeline"
)

// overviewHandler describes the loaded dataset itself: row counts, the column
// contract, date bounds, and how many source rows were dropped during import.
func (api *RestAPI) overviewHandler(w http.ResponseWriter, r *http.Request) {
	api.DataManager.RLock()
	defer api.DataManager.RUnlock()

	ds, ok := api.datasetOrUnavailable(w, r)
	if !ok {
		return
	}

	strategy := pipeline.CountRows
	if ds.HasColumn(bikeshare.ColRideID) {
		strategy = pipeline.CountRideIDs
	}

	entry := models.NewOverviewEntry(ds, api.DataManager.LastUpdated(), strategy)
	api.sendResponse(w, r, models.NewEntryResponse(entry, api.Clock))
}
