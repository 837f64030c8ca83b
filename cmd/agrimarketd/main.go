// Command agrimarketd serves the agricultural market dashboard API: wholesale
// auction volumes, KAMIS retail/wholesale prices, Garak settlement volumes,
// and Naver Shopping price samples, normalized into one JSON surface.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"agrimarket-gateway/internal/config"
	"agrimarket-gateway/internal/market"
	"agrimarket-gateway/internal/metrics"
	"agrimarket-gateway/internal/server"
	"agrimarket-gateway/internal/upstream"
)

const shutdownGrace = 10 * time.Second

func main() {
	cfg := config.ParseFlags()

	log := buildLogger(cfg.DevLogging)
	defer log.Sync() //nolint:errcheck

	reg := metrics.NewRegistry()
	opts := server.Options{
		Log:       log,
		Metrics:   reg,
		Synthetic: market.NewSynthetic(cfg.SyntheticSeed),
	}

	if cfg.HasKamis() {
		kamis := upstream.NewKamis(cfg.KamisBaseURL, cfg.KamisCertKey, cfg.KamisCertID, cfg.UpstreamTimeout, log, reg)
		opts.Wholesale = &market.LiveWholesale{Kamis: kamis}
		opts.Trend = &market.LiveTrend{Kamis: kamis}
		opts.Region = &market.LiveRegion{Kamis: kamis}
	} else {
		log.Warn("KAMIS credentials missing, price endpoints serve reference data",
			zap.String("env", "KAMIS_API_KEY, KAMIS_CERT_ID"))
	}

	if cfg.HasNaver() {
		naver := upstream.NewNaver(cfg.NaverBaseURL, cfg.NaverClientID, cfg.NaverClientSecret, cfg.UpstreamTimeout, log, reg)
		opts.Naver = naver
		opts.Online = &market.LiveOnline{Naver: naver}
	} else {
		log.Warn("Naver credentials missing, search endpoints disabled",
			zap.String("env", "NAVER_CLIENT_ID, NAVER_CLIENT_SECRET"))
	}

	if cfg.HasSeoul() {
		seoul := upstream.NewSeoul(cfg.SeoulBaseURL, cfg.SeoulAPIKey, cfg.UpstreamTimeout, log, reg)
		opts.Volume = &market.LiveVolume{Seoul: seoul}
	} else {
		log.Warn("Seoul open-data key missing, volume endpoint serves reference data",
			zap.String("env", "SEOUL_API_KEY"))
	}

	if cfg.HasPortal() {
		portal := upstream.NewPortal(cfg.PortalBaseURL, cfg.PortalAPIKey, cfg.UpstreamTimeout, log, reg)
		opts.Portal = portal
		opts.Auction = &market.LiveAuction{Portal: portal}
	} else {
		log.Warn("public-data portal key missing, auction endpoints disabled",
			zap.String("env", "PUBLIC_DATA_API_KEY"))
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.New(opts).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", zap.Error(err))
			os.Exit(1)
		}
		return
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("shutdown incomplete", zap.Error(err))
	}
	log.Info("stopped")
}

func buildLogger(dev bool) *zap.Logger {
	var (
		log *zap.Logger
		err error
	)
	if dev {
		log, err = zap.NewDevelopment()
	} else {
		log, err = zap.NewProduction()
	}
	if err != nil {
		panic(err)
	}
	return log
}
