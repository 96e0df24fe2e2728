// Package api serves the estimation and bill calibration operations over HTTP.
package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/kthomasking-debug/joule-hvac-sub010/internal/metrics"
	"github.com/kthomasking-debug/joule-hvac-sub010/internal/service"
)

// Server handles API requests. Defaults fill any profile section a request
// leaves out.
type Server struct {
	svc      *service.Service
	defaults service.Profile
	metrics  *metrics.Metrics
}

func NewServer(svc *service.Service, defaults service.Profile, m *metrics.Metrics) *Server {
	return &Server{svc: svc, defaults: defaults, metrics: m}
}

// NewRouter registers every route. The caller may add more, e.g. /ws.
func (s *Server) NewRouter() *mux.Router {
	r := mux.NewRouter()

	route := func(path string, h http.HandlerFunc, methods ...string) {
		r.Handle(path, s.metrics.WrapHandler(path, h)).Methods(methods...)
	}

	route("/health", s.health, http.MethodGet)
	route("/api/heatloss", s.heatLoss, http.MethodPost)
	route("/api/estimate/annual", s.annualEstimate, http.MethodPost)
	route("/api/expected/{month:[0-9]+}", s.expected, http.MethodPost)
	route("/api/diagnose", s.diagnose, http.MethodPost)
	route("/api/history", s.history, http.MethodGet)
	route("/api/history/{year:[0-9]+}/{month:[0-9]+}", s.putHistory, http.MethodPut)
	route("/api/trend", s.trend, http.MethodGet)
	r.Handle("/metrics", s.metrics.Handler()).Methods(http.MethodGet)

	return r
}
