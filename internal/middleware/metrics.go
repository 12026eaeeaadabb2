package middleware

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// InFlight tracks concurrently served requests on gauge. A nil gauge
// disables it.
func InFlight(gauge prometheus.Gauge) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if gauge == nil {
			return next
		}
		return promhttp.InstrumentHandlerInFlight(gauge, next)
	}
}
