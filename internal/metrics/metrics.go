// Package metrics exposes the Prometheus registry for the gateway: HTTP
// serving counters, upstream call outcomes and latency, and how often
// synthetic fallback data was served.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agrimarket-gateway/internal/upstream"
)

type Registry struct {
	reg *prometheus.Registry

	HTTPRequests    *prometheus.CounterVec
	HTTPLatency     *prometheus.HistogramVec
	UpstreamCalls   *prometheus.CounterVec
	UpstreamLatency *prometheus.HistogramVec
	FallbackServed  *prometheus.CounterVec
}

func NewRegistry() *Registry {
	httpRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agrimarket_http_requests_total",
	}, []string{"route", "status"})
	httpLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agrimarket_http_request_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	upstreamCalls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agrimarket_upstream_requests_total",
	}, []string{"source", "outcome"})
	upstreamLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agrimarket_upstream_request_seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	fallbackServed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "agrimarket_fallback_served_total",
	}, []string{"route"})

	reg := prometheus.NewRegistry()
	reg.MustRegister(httpRequests, httpLatency, upstreamCalls, upstreamLatency, fallbackServed)
	return &Registry{
		reg:             reg,
		HTTPRequests:    httpRequests,
		HTTPLatency:     httpLatency,
		UpstreamCalls:   upstreamCalls,
		UpstreamLatency: upstreamLatency,
		FallbackServed:  fallbackServed,
	}
}

// ObserveUpstream satisfies upstream.Observer: one increment per completed
// call, labeled ok or by failure kind.
func (r *Registry) ObserveUpstream(source string, status int, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
		var ue *upstream.Error
		if errors.As(err, &ue) {
			outcome = string(ue.Kind)
		}
	}
	r.UpstreamCalls.WithLabelValues(source, outcome).Inc()
	r.UpstreamLatency.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObserveHTTP records one served request.
func (r *Registry) ObserveHTTP(route string, status int, elapsed time.Duration) {
	r.HTTPRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	r.HTTPLatency.WithLabelValues(route).Observe(elapsed.Seconds())
}

// Fallback records one response served from synthetic data.
func (r *Registry) Fallback(route string) {
	r.FallbackServed.WithLabelValues(route).Inc()
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
