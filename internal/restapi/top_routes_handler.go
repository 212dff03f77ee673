package restapi

import (
	"net/http"

	"bikedash.nycbikeshare.org/internal/models"
	"bikedash.nycbikeshare.org/internal/pipeline"
	"bikedash.nycbikeshare.org/internal/utils"
)

func (api *RestAPI) topRoutesHandler(w http.ResponseWriter, r *http.Request) {
	maxCount, err := utils.ParseIntParam(r.URL.Query(), "maxCount", defaultRankSize)
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"maxCount": {err.Error()},
		})
		return
	}

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

	ranked, err := pipeline.RouteCounts(rows, maxCount)
	if err != nil {
		api.pipelineErrorResponse(w, r, err)
		return
	}

	limitExceeded := len(ranked) == maxCount
	response := models.NewListResponse(models.NewRankedCountEntries(ranked), limitExceeded, api.Clock)
	api.sendResponse(w, r, response)
}
