// Package config loads the gateway configuration from flags and environment
// variables. Flags win over environment values; every flag documents its env
// counterpart.
package config

import (
	"flag"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is everything the process needs at startup. Credentials are loaded
// here but only validated at the endpoints that use them, so the server can
// run partially configured and serve synthetic data for the rest.
type Config struct {
	Addr string

	KamisCertKey string
	KamisCertID  string

	NaverClientID     string
	NaverClientSecret string

	SeoulAPIKey  string
	PortalAPIKey string

	KamisBaseURL  string
	NaverBaseURL  string
	SeoulBaseURL  string
	PortalBaseURL string

	UpstreamTimeout time.Duration
	SyntheticSeed   int64

	DevLogging bool
}

// HasKamis reports whether both KAMIS credentials are present.
func (c Config) HasKamis() bool { return c.KamisCertKey != "" && c.KamisCertID != "" }

// HasNaver reports whether both Naver OpenAPI credentials are present.
func (c Config) HasNaver() bool { return c.NaverClientID != "" && c.NaverClientSecret != "" }

func (c Config) HasSeoul() bool { return c.SeoulAPIKey != "" }

func (c Config) HasPortal() bool { return c.PortalAPIKey != "" }

// ParseFlags reads the default flag set and the environment.
func ParseFlags() Config {
	var cfg Config

	flag.StringVar(&cfg.Addr, "addr", envString("ADDR", ":"+envString("PORT", "8080")), "HTTP listen address. Env: ADDR (or PORT)")

	flag.StringVar(&cfg.KamisCertKey, "kamis-cert-key", envString("KAMIS_API_KEY", ""), "KAMIS p_cert_key credential. Env: KAMIS_API_KEY")
	flag.StringVar(&cfg.KamisCertID, "kamis-cert-id", envString("KAMIS_CERT_ID", ""), "KAMIS p_cert_id credential. Env: KAMIS_CERT_ID")
	flag.StringVar(&cfg.NaverClientID, "naver-client-id", envString("NAVER_CLIENT_ID", ""), "Naver OpenAPI client id. Env: NAVER_CLIENT_ID")
	flag.StringVar(&cfg.NaverClientSecret, "naver-client-secret", envString("NAVER_CLIENT_SECRET", ""), "Naver OpenAPI client secret. Env: NAVER_CLIENT_SECRET")
	flag.StringVar(&cfg.SeoulAPIKey, "seoul-api-key", envString("SEOUL_API_KEY", ""), "Seoul open-data key. Env: SEOUL_API_KEY")
	flag.StringVar(&cfg.PortalAPIKey, "portal-api-key", envString("PUBLIC_DATA_API_KEY", ""), "Public-data portal serviceKey. Env: PUBLIC_DATA_API_KEY")

	flag.StringVar(&cfg.KamisBaseURL, "kamis-base-url", envString("KAMIS_BASE_URL", ""), "Override KAMIS base URL (tests). Env: KAMIS_BASE_URL")
	flag.StringVar(&cfg.NaverBaseURL, "naver-base-url", envString("NAVER_BASE_URL", ""), "Override Naver base URL (tests). Env: NAVER_BASE_URL")
	flag.StringVar(&cfg.SeoulBaseURL, "seoul-base-url", envString("SEOUL_BASE_URL", ""), "Override Seoul base URL (tests). Env: SEOUL_BASE_URL")
	flag.StringVar(&cfg.PortalBaseURL, "portal-base-url", envString("PORTAL_BASE_URL", ""), "Override portal base URL (tests). Env: PORTAL_BASE_URL")

	timeoutSec := flag.Int("upstream-timeout-sec", envInt("UPSTREAM_TIMEOUT_SEC", 10), "Per-call upstream timeout in seconds. Env: UPSTREAM_TIMEOUT_SEC")
	seed := flag.Int("synthetic-seed", envInt("SYNTHETIC_SEED", 0), "Seed for synthetic fallback data (0 = time-based). Env: SYNTHETIC_SEED")
	flag.BoolVar(&cfg.DevLogging, "dev-logging", envBool("DEV_LOGGING", false), "Human-readable console logs instead of JSON. Env: DEV_LOGGING")

	flag.Parse()

	cfg.UpstreamTimeout = time.Duration(*timeoutSec) * time.Second
	cfg.SyntheticSeed = int64(*seed)
	return cfg
}

func envString(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func envInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	switch strings.ToLower(v) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return def
	}
}
