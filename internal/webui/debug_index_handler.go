package webui

import (
	"embed"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/davecgh/go-spew/spew"

	"bikedash.nycbikeshare.org/internal/appconf"
)

//go:embed debug_index.html
var templateFS embed.FS

type debugData struct {
	Title string
	Pre   string
}

func writeDebugData(w http.ResponseWriter, title string, data interface{}) {
	content := spew.Sdump(data)
	w.Header().Set("Content-Type", "text/html")
	tmpl, err := template.ParseFS(templateFS, "debug_index.html")
	if err != nil {
		slog.Error("failed to parse debug template", "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	dataStruct := debugData{
		Title: title,
		Pre:   content,
	}

	err = tmpl.Execute(w, dataStruct)
	if err != nil {
		slog.Error("failed to execute debug template", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (webUI *WebUI) debugIndexHandler(w http.ResponseWriter, r *http.Request) {
	if webUI.Config.Env == appconf.Production {
		http.NotFound(w, r)
		return
	}
	dataType := r.URL.Query().Get("dataType")

	var data interface{}
	var title string

	webUI.DataManager.RLock()
	defer webUI.DataManager.RUnlock()

	ds := webUI.DataManager.Dataset()

	switch dataType {
	case "columns":
		data = ds.Columns()
		title = "Dataset - Columns"
	case "dropped":
		data = ds.Dropped
		title = "Dataset - Dropped Rows"
	case "records":
		head := ds.Records
		if len(head) > 100 {
			head = head[:100]
		}
		data = head
		title = "Dataset - Records (first 100)"
	case "bounds":
		data = map[string]interface{}{
			"minDate":    ds.MinDate,
			"maxDate":    ds.MaxDate,
			"sourceHash": ds.SourceHash,
		}
		title = "Dataset - Bounds"
	case "stations":
		data = webUI.DataManager.StationIndex().Len()
		title = "Dataset - Indexed Stations"
	default:
		data = map[string]string{
			"error": "Please use one of the following: columns, dropped, records, bounds, stations.",
		}
		title = "Choose a data type"
	}

	writeDebugData(w, title, data)
}
