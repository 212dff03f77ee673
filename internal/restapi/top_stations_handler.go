package restapi

import (
	"net/http"

	"bikedash.nycbikeshare.org/internal/bikeshare"
	"bikedash.nycbikeshare.org/internal/models"
	"bikedash.nycbikeshare.org/internal/pipeline"
	"bikedash.nycbikeshare.org/internal/utils"
)

const defaultRankSize = 10

func (api *RestAPI) topStationsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var column string
	switch query.Get("side") {
	case "", "start":
		column = bikeshare.ColStartStationName
	case "end":
		column = bikeshare.ColEndStationName
	default:
		api.validationErrorResponse(w, r, map[string][]string{
			"side": {"must be one of: start, end"},
		})
		return
	}

	ascending, err := parseRankOrder(query.Get("order"))
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"order": {err.Error()},
		})
		return
	}

	maxCount, err := utils.ParseIntParam(query, "maxCount", defaultRankSize)
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

	ranked, err := pipeline.TopN(rows, column, maxCount, ascending)
	if err != nil {
		api.pipelineErrorResponse(w, r, err)
		return
	}

	limitExceeded := len(ranked) == maxCount
	response := models.NewListResponse(models.NewRankedCountEntries(ranked), limitExceeded, api.Clock)
	api.sendResponse(w, r, response)
}
