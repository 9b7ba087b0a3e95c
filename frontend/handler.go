package frontend

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsPath is the URL path at which Prometheus metrics are served.
const MetricsPath = "/metrics"

// Handler provides the main http.Handler implementation.
type Handler struct {
	// Handlers are consulted in order. The first that can handle a request
	// serves it.
	Handlers []ConditionalHandler

	// Proxy serves every request that no other handler can.
	Proxy http.Handler
}

func (handler *Handler) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	for _, h := range handler.Handlers {
		if h.CanHandle(request) {
			h.ServeHTTP(writer, request)
			return
		}
	}

	handler.Proxy.ServeHTTP(writer, request)
}

// NewMetricsHandler returns a handler that serves the metrics gathered by
// gatherer at MetricsPath.
func NewMetricsHandler(gatherer prometheus.Gatherer) *PathHandler {
	return &PathHandler{
		Path:    MetricsPath,
		Handler: promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}),
	}
}
