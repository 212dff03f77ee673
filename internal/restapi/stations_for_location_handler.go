package restapi

import (
	"net/http"

	"bikedash.nycbikeshare.org/internal/models"
	"bikedash.nycbikeshare.org/internal/utils"
)

const (
	defaultSearchRadiusMeters = 500.0
	maxSearchRadiusMeters     = 15000.0
	defaultNearbyStations     = 20
)

func (api *RestAPI) stationsForLocationHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	fieldErrors := make(map[string][]string)

	lat, err := utils.ParseFloatParam(query, "lat")
	if err != nil {
		fieldErrors["lat"] = []string{err.Error()}
	} else if lat < -90 || lat > 90 {
		fieldErrors["lat"] = []string{"must be between -90 and 90"}
	}

	lon, err := utils.ParseFloatParam(query, "lon")
	if err != nil {
		fieldErrors["lon"] = []string{err.Error()}
	} else if lon < -180 || lon > 180 {
		fieldErrors["lon"] = []string{"must be between -180 and 180"}
	}

	radius, err := utils.ParseFloatParamWithFallback(query, "radius", defaultSearchRadiusMeters)
	if err != nil {
		fieldErrors["radius"] = []string{err.Error()}
	} else if radius <= 0 || radius > maxSearchRadiusMeters {
		fieldErrors["radius"] = []string{"must be positive and at most 15000"}
	}

	maxCount, err := utils.ParseIntParam(query, "maxCount", defaultNearbyStations)
	if err != nil || maxCount < 1 {
		fieldErrors["maxCount"] = []string{"must be a positive integer"}
	}

	if len(fieldErrors) > 0 {
		api.validationErrorResponse(w, r, fieldErrors)
		return
	}

	api.DataManager.RLock()
	defer api.DataManager.RUnlock()

	if _, ok := api.datasetOrUnavailable(w, r); !ok {
		return
	}

	nearby := api.DataManager.StationIndex().StationsWithinRadius(lat, lon, radius, maxCount)
	limitExceeded := len(nearby) == maxCount
	response := models.NewListResponse(models.NewStationNearbyEntries(nearby), limitExceeded, api.Clock)
	api.sendResponse(w, r, response)
}
