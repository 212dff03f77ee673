package webui

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

var servableExtensions = map[string]bool{
	".html": true, ".css": true, ".js": true,
	".png": true, ".jpg": true, ".jpeg": true, ".svg": true,
	".ico": true,
}

// siteHandler serves the static landing pages from ./site. Only whitelisted
// extensions are served and every resolved path must stay inside the site
// directory.
func (webUI *WebUI) siteHandler(w http.ResponseWriter, r *http.Request) {
	fileName := filepath.Base(r.URL.Path)
	if fileName == "site" || fileName == "." {
		fileName = "index.html"
	}

	if !servableExtensions[strings.ToLower(filepath.Ext(fileName))] {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	if strings.Contains(fileName, "..") || strings.ContainsAny(fileName, `/\`) {
		http.Error(w, "Invalid file name", http.StatusBadRequest)
		return
	}

	absPath, err := filepath.Abs(filepath.Join(".", "site", fileName))
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	siteDir, err := filepath.Abs("./site")
	if err != nil {
		http.Error(w, "Internal configuration error", http.StatusInternalServerError)
		return
	}
	if rel, err := filepath.Rel(siteDir, absPath); err != nil || strings.HasPrefix(rel, "..") {
		slog.Warn("potential path traversal attempt blocked", "path", absPath)
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	stat, err := os.Stat(absPath)
	if err != nil || stat.IsDir() {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	http.ServeFile(w, r, absPath)
}
