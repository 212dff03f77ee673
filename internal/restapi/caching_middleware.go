package restapi

import (
	"fmt"
	"net/http"
)

const noCacheValue = "no-cache, no-store, must-revalidate"

// CacheControlMiddleware stamps Cache-Control on responses. Successful
// responses get a public max-age of durationSeconds; errors and zero-second
// routes are never cacheable. The header is decided at write time because
// the status code isn't known until the handler commits it.
func CacheControlMiddleware(durationSeconds int, next http.Handler) http.Handler {
	cacheable := noCacheValue
	if durationSeconds > 0 {
		cacheable = fmt.Sprintf("public, max-age=%d", durationSeconds)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(&cacheControlWriter{ResponseWriter: w, onSuccess: cacheable}, r)
	})
}

type cacheControlWriter struct {
	http.ResponseWriter
	onSuccess string
	committed bool
}

func (w *cacheControlWriter) WriteHeader(code int) {
	if !w.committed {
		w.committed = true
		value := noCacheValue
		if code >= 200 && code < 300 {
			value = w.onSuccess
		}
		w.ResponseWriter.Header().Set("Cache-Control", value)
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *cacheControlWriter) Write(b []byte) (int, error) {
	if !w.committed {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}
