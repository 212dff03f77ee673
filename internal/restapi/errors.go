package restapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"bikedash.nycbikeshare.org/internal/logging"
	"bikedash.nycbikeshare.org/internal/models"
	"bikedash.nycbikeshare.org/internal/pipeline"
)

func (api *RestAPI) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	logging.LogError(api.Logger, "internal server error", err)
	http.Error(w, "the server encountered a problem and could not process your request", http.StatusInternalServerError)
}

// validationErrorResponse reports bad query parameters: one message list per
// offending field.
func (api *RestAPI) validationErrorResponse(w http.ResponseWriter, r *http.Request, fieldErrors map[string][]string) {
	setJSONResponseType(&w)
	w.WriteHeader(http.StatusBadRequest)

	response := models.ResponseModel{
		Code:        http.StatusBadRequest,
		CurrentTime: models.ResponseCurrentTime(api.Clock),
		Data:        map[string]interface{}{"fieldErrors": fieldErrors},
		Text:        "invalid request parameters",
		Version:     2,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		api.serverErrorResponse(w, r, err)
	}
}

// pipelineErrorResponse maps aggregation failures to HTTP statuses: a column
// the dataset never carried is a client problem (the view cannot exist), an
// invalid n likewise; anything else is a server fault.
func (api *RestAPI) pipelineErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var missing *pipeline.MissingColumnError
	switch {
	case errors.As(err, &missing):
		api.sendError(w, r, http.StatusUnprocessableEntity, missing.Error())
	case errors.Is(err, pipeline.ErrInvalidN):
		api.sendError(w, r, http.StatusBadRequest, err.Error())
	default:
		api.serverErrorResponse(w, r, err)
	}
}
