// Package restapi exposes the dataset's aggregations over HTTP as JSON
// endpoints, plus health, metrics and a gzipped CSV export.
package restapi

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"bikedash.nycbikeshare.org/internal/app"
)

type RestAPI struct {
	*app.Application
	rateLimiter *RateLimitMiddleware
}

func NewRestAPI(application *app.Application) *RestAPI {
	return &RestAPI{
		Application: application,
		rateLimiter: NewRateLimitMiddleware(
			application.Config.RateLimit,
			time.Second,
			application.Config.ApiKeys,
			application.Clock,
		),
	}
}

// Shutdown stops the rate limiter's background cleanup goroutine.
func (api *RestAPI) Shutdown() {
	if api.rateLimiter != nil {
		api.rateLimiter.Stop()
	}
}

// SetRoutes registers all endpoints on the mux. /api routes require a valid
// API key and are rate limited per key; stats responses are cacheable for a
// short window since the dataset only changes on reload.
func (api *RestAPI) SetRoutes(mux *http.ServeMux) {
	limited := api.rateLimiter.Handler()

	apiRoute := func(pattern string, cacheSeconds int, handler http.HandlerFunc) {
		h := http.Handler(handler)
		h = CacheControlMiddleware(cacheSeconds, h)
		h = api.requireValidAPIKey(h)
		h = limited(h)
		mux.Handle(pattern, h)
	}

	apiRoute("GET /api/where/current-time.json", 0, api.currentTimeHandler)

	apiRoute("GET /api/stats/daily-series.json", 60, api.dailySeriesHandler)
	apiRoute("GET /api/stats/top-stations.json", 60, api.topStationsHandler)
	apiRoute("GET /api/stats/top-routes.json", 60, api.topRoutesHandler)
	apiRoute("GET /api/stats/station-balance.json", 60, api.stationBalanceHandler)
	apiRoute("GET /api/stats/weather-comparison.json", 60, api.weatherComparisonHandler)
	apiRoute("GET /api/stats/time-trends.json", 60, api.timeTrendsHandler)
	apiRoute("GET /api/stats/summary.json", 60, api.summaryHandler)
	apiRoute("GET /api/stats/overview.json", 60, api.overviewHandler)
	apiRoute("GET /api/stats/stations-for-location.json", 60, api.stationsForLocationHandler)

	apiRoute("GET /api/dataset/export.csv.gz", 0, api.exportHandler)

	mux.HandleFunc("GET /healthz", api.healthHandler)
	if api.Metrics != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(api.Metrics.Registry, promhttp.HandlerOpts{}))
	}
}

func (api *RestAPI) requireValidAPIKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if api.RequestHasInvalidAPIKey(r) {
			api.sendUnauthorized(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
