// Package handler is the serverless entry point for the HTTP API. The
// expiry sweeper and the notification consumer are not started here and
// must run as `app worker` elsewhere.
package handler

import (
	"net/http"
	"sync"

	"aspen/config"
	"aspen/di"
	"aspen/shared/logger"
)

var api = sync.OnceValue(func() http.Handler {
	cfg := config.Get()

	logger.InitLogger()
	logger.SetLogLevel(cfg)

	return di.InitializeService()
})

// Handler serves one request, wiring dependencies on the first call of a
// warm instance.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	api().ServeHTTP(w, r)
}
