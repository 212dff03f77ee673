package restapi

import (
	"errors"
	"net/http"

	"bikedash.nycbikeshare.org/internal/bikeshare"
	"bikedash.nycbikeshare.org/internal/pipeline"
	"bikedash.nycbikeshare.org/internal/utils"
)

// filteredRowsFromRequest parses the shared filter parameters (startDate,
// endDate, riderType) and applies them to the current dataset snapshot.
// Missing date parameters default to the dataset's observed bounds. It writes
// the error response itself and returns ok=false when the request is invalid.
// Caller must hold the manager's read lock.
func (api *RestAPI) filteredRowsFromRequest(w http.ResponseWriter, r *http.Request, ds *bikeshare.Dataset) (pipeline.Rows, bool) {
	query := r.URL.Query()
	fieldErrors := make(map[string][]string)

	start, err := utils.ParseDateParam(query, "startDate", ds.MinDate)
	if err != nil {
		fieldErrors["startDate"] = []string{err.Error()}
	}
	end, err := utils.ParseDateParam(query, "endDate", ds.MaxDate)
	if err != nil {
		fieldErrors["endDate"] = []string{err.Error()}
	}
	riderFilter, err := pipeline.ParseRiderFilter(query.Get("riderType"))
	if err != nil {
		fieldErrors["riderType"] = []string{err.Error()}
	}
	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return pipeline.Rows{}, false
	}

	dateRange, err := pipeline.NewDateRange(start, end)
	if err != nil {
		api.validationErrorResponse(w, r, map[string][]string{
			"startDate": {"must not be after endDate"},
		})
		return pipeline.Rows{}, false
	}

	rows, err := pipeline.FilterRows(ds, dateRange, riderFilter)
	if err != nil {
		api.pipelineErrorResponse(w, r, err)
		return pipeline.Rows{}, false
	}
	return rows, true
}

// datasetOrUnavailable fetches the dataset snapshot, answering 503 when the
// manager has no data yet. Caller must hold the manager's read lock.
func (api *RestAPI) datasetOrUnavailable(w http.ResponseWriter, r *http.Request) (*bikeshare.Dataset, bool) {
	ds := api.DataManager.Dataset()
	if ds == nil {
		api.sendError(w, r, http.StatusServiceUnavailable, "dataset not loaded")
		return nil, false
	}
	return ds, true
}

var errUnknownOrder = errors.New("must be one of: top, bottom")

func parseRankOrder(value string) (ascending bool, err error) {
	switch value {
	case "", "top":
		return false, nil
	case "bottom":
		return true, nil
	default:
		return false, errUnknownOrder
	}
}
