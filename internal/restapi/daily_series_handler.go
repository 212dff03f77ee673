package restapi

import (
	"net/http"

	"bikedash.nycbikeshare.org/internal/models"
	"bikedash.nycbikeshare.org/internal/pipeline"
)

func (api *RestAPI) dailySeriesHandler(w http.ResponseWriter, r *http.Request) {
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

	series := pipeline.AggregateDaily(rows, pipeline.CountStrategyFor(rows))
	response := models.NewListResponse(models.NewDailySeriesEntries(series), false, api.Clock)
	api.sendResponse(w, r, response)
}
