package app

import (
	"crypto/subtle"
	"net/http"
)

// RequestHasInvalidAPIKey checks the ?key= query parameter against the
// configured API keys.
func (app *Application) RequestHasInvalidAPIKey(r *http.Request) bool {
	return app.IsInvalidAPIKey(r.URL.Query().Get("key"))
}

// IsInvalidAPIKey reports whether key is absent or unknown. Comparison is
// constant time per configured key.
func (app *Application) IsInvalidAPIKey(key string) bool {
	if key == "" {
		return true
	}

	for _, valid := range app.Config.ApiKeys {
		if subtle.ConstantTimeCompare([]byte(key), []byte(valid)) == 1 {
			return false
		}
	}

	return true
}
