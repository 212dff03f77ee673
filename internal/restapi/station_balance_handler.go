package restapi

import (
	"net/http"

	"bikedash.nycbikeshare.org/internal/models"
	"bikedash.nycbikeshare.org/internal/pipeline"
	"bikedash.nycbikeshare.org/internal/utils"
)

// stationBalanceHandler returns per-station departure/arrival tallies.
// tail=losing (the default) keeps the most negative nets first; tail=gaining
// reverses the order so accumulating stations lead.
func (api *RestAPI) stationBalanceHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	tail := query.Get("tail")
	if tail == "" {
		tail = "losing"
	}
	if tail != "losing" && tail != "gaining" {
		api.validationErrorResponse(w, r, map[string][]string{
			"tail": {"must be one of: losing, gaining"},
		})
		return
	}

	maxCount, err := utils.ParseIntParam(query, "maxCount", 0)
	if err != nil || maxCount < 0 {
		api.validationErrorResponse(w, r, map[string][]string{
			"maxCount": {"must be a non-negative integer"},
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

	balances, err := pipeline.ComputeStationBalance(rows)
	if err != nil {
		api.pipelineErrorResponse(w, r, err)
		return
	}

	if tail == "gaining" {
		for i, j := 0, len(balances)-1; i < j; i, j = i+1, j-1 {
			balances[i], balances[j] = balances[j], balances[i]
		}
	}
	limitExceeded := false
	if maxCount > 0 && len(balances) > maxCount {
		balances = balances[:maxCount]
		limitExceeded = true
	}

	response := models.NewListResponse(models.NewStationBalanceEntries(balances), limitExceeded, api.Clock)
	api.sendResponse(w, r, response)
}
