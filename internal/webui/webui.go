// Package webui serves the non-API surfaces: a static landing page and a
// developer-only debug dump of the loaded dataset.
package webui

import (
	"net/http"

	"bikedash.nycbikeshare.org/internal/app"
)

type WebUI struct {
	*app.Application
}

func NewWebUI(application *app.Application) *WebUI {
	return &WebUI{Application: application}
}

func (webUI *WebUI) SetRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /debug", webUI.debugIndexHandler)
	mux.HandleFunc("GET /site/", webUI.siteHandler)
}
