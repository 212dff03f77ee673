package restapi

import (
	"net/http"

	"bikedash.nycbikeshare.org/internal/models"
	"bikedash.nycbikeshare.org/internal/pipeline"
)

func (api *RestAPI) weatherComparisonHandler(w http.ResponseWriter, r *http.Request) {
	variable, err := pipeline.ParseWeatherVariable(r.URL.Query().Get("variable"))
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"variable": {"must be one of: temperature, precipitation"},
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

	points, err := pipeline.WeatherComparison(rows, variable, pipeline.CountStrategyFor(rows))
	if err != nil {
		api.pipelineErrorResponse(w, r, err)
		return
	}

	response := models.NewListResponse(models.NewWeatherPointEntries(points), false, api.Clock)
	api.sendResponse(w, r, response)
}
