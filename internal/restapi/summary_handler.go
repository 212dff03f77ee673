package restapi

import (
	"net/http"

	"bikedash.nycbikeshare.org/internal/models"
	"bikedash.nycbikeshare.org/internal/pipeline"
)

func (api *RestAPI) summaryHandler(w http.ResponseWriter, r *http.Request) {
	api.DataManager.RLock()
	defer api.DataManager.RUnlock()

	ds, ok := api.datasetOrUnavailable(w, r)
	if !ok {
		return
	}
	rows, ok := api.filteredRowsFromRequest(w, r, ds)
	if !ok {
		return
	}

	stats := pipeline.Summarize(rows, pipeline.CountStrategyFor(rows))
	api.sendResponse(w, r, models.NewEntryResponse(models.NewSummaryEntry(stats), api.Clock))
}
