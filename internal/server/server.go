// Package server is the HTTP surface of the gateway: route registration,
// CORS, access logging, and the per-endpoint handlers that tie the upstream
// sources to the response envelopes.
package server

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"agrimarket-gateway/internal/market"
	"agrimarket-gateway/internal/metrics"
	"agrimarket-gateway/internal/upstream"
)

// Options carries the server's collaborators. A nil source means the
// credentials for it are not configured; each handler decides whether that
// is a 500 (required credential) or a synthetic fallback.
type Options struct {
	Log     *zap.Logger
	Metrics *metrics.Registry

	Synthetic *market.Synthetic

	Wholesale market.WholesaleSource
	Online    market.OnlineSource
	Trend     market.TrendSource
	Region    market.RegionSource
	Volume    market.VolumeSource
	Auction   market.AuctionSource

	Naver  *upstream.Naver
	Portal *upstream.Portal

	Now func() time.Time
}

// Server serves the dashboard API.
type Server struct {
	log     *zap.Logger
	metrics *metrics.Registry

	synth *market.Synthetic

	wholesale market.WholesaleSource
	online    market.OnlineSource
	trend     market.TrendSource
	region    market.RegionSource
	volume    market.VolumeSource
	auction   market.AuctionSource

	naver  *upstream.Naver
	portal *upstream.Portal

	now func() time.Time
}

func New(opts Options) *Server {
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	synth := opts.Synthetic
	if synth == nil {
		synth = market.NewSynthetic(0)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Server{
		log:       log,
		metrics:   opts.Metrics,
		synth:     synth,
		wholesale: opts.Wholesale,
		online:    opts.Online,
		trend:     opts.Trend,
		region:    opts.Region,
		volume:    opts.Volume,
		auction:   opts.Auction,
		naver:     opts.Naver,
		portal:    opts.Portal,
		now:       now,
	}
}

// Handler builds the route table. Every API route is GET plus a CORS
// preflight; /metrics is registered only when a registry is present.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/api/product-price-compare", s.route("product-price-compare", s.handlePriceCompare))
	mux.Handle("/api/price-trend", s.route("price-trend", s.handlePriceTrend))
	mux.Handle("/api/region-price", s.route("region-price", s.handleRegionPrice))
	mux.Handle("/api/volume-info", s.route("volume-info", s.handleVolumeInfo))
	mux.Handle("/api/general-search", s.route("general-search", s.handleGeneralSearch))
	mux.Handle("/api/auction-info", s.route("auction-info", s.handleAuctionInfo))
	mux.Handle("/api/origin-info", s.route("origin-info", s.handleOriginInfo))
	mux.Handle("/api/product-search", s.route("product-search", s.handleProductSearch))
	mux.Handle("/healthz", s.route("healthz", s.handleHealthz))
	if s.metrics != nil {
		mux.Handle("/metrics", s.metrics.Handler())
	}
	return mux
}

// route wraps one handler with CORS headers, the OPTIONS preflight
// short-circuit, method enforcement, panic recovery, access logging, and
// per-route metrics.
func (s *Server) route(name string, h http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "X-Requested-With,content-type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				s.log.Error("handler panicked",
					zap.String("route", name), zap.Any("panic", p))
				if !rec.wrote {
					s.internalError(rec, "내부 서버 오류가 발생했습니다.")
				}
			}
			elapsed := time.Since(start)
			if s.metrics != nil {
				s.metrics.ObserveHTTP(name, rec.status, elapsed)
			}
			s.log.Info("request",
				zap.String("route", name),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", rec.status),
				zap.Duration("elapsed", elapsed))
		}()

		h(rec, r)
	})
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.wrote = true
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	r.wrote = true
	return r.ResponseWriter.Write(b)
}

// fallbackServed records one synthetic response on the route's counter.
func (s *Server) fallbackServed(route string) {
	if s.metrics != nil {
		s.metrics.Fallback(route)
	}
}
