// Package upstream issues the outbound HTTP calls to the external data
// providers: the KAMIS price service, the Naver Shopping OpenAPI, the Seoul
// open-data volume feed, and the public-data portal auction services.
//
// Every call is a single best-effort GET with a fixed timeout. Failures are
// never thrown upward as panics; they come back as *Error values carrying
// the failure kind, so callers can distinguish a transport problem from a
// bad status or an empty body and decide to fall back.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// ErrorKind classifies an upstream failure.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport" // dial/TLS/timeout, no HTTP status
	KindStatus    ErrorKind = "status"    // non-2xx HTTP status
	KindEmpty     ErrorKind = "empty"     // 2xx but zero-length body
)

// Error is a typed upstream failure.
type Error struct {
	Source string
	Kind   ErrorKind
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s (http %d)", e.Source, e.Kind, e.Status)
}

func (e *Error) Unwrap() error { return e.Err }

// IsTransport reports whether err is an upstream transport or timeout
// failure, the cases where synthetic fallback data is appropriate.
func IsTransport(err error) bool {
	var ue *Error
	return errors.As(err, &ue) && ue.Kind == KindTransport
}

// Observer receives one notification per completed upstream call. The
// metrics registry implements it; a nil observer is allowed.
type Observer interface {
	ObserveUpstream(source string, status int, elapsed time.Duration, err error)
}

// Client is the shared GET machinery under every source-specific client.
type Client struct {
	source    string
	http      *http.Client
	userAgent string
	log       *zap.Logger
	obs       Observer
}

// NewClient builds the shared call layer for one named source.
func NewClient(source string, timeout time.Duration, userAgent string, log *zap.Logger, obs Observer) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		source:    source,
		http:      &http.Client{Timeout: timeout},
		userAgent: userAgent,
		log:       log,
		obs:       obs,
	}
}

// getJSON performs one GET and returns the raw body. Non-2xx statuses and
// empty bodies come back as *Error; the body is read fully either way so
// connections can be reused.
func (c *Client) getJSON(ctx context.Context, u string, header http.Header) ([]byte, error) {
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &Error{Source: c.source, Kind: KindTransport, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(0, start, err)
		c.log.Warn("upstream call failed",
			zap.String("source", c.source), zap.Error(err))
		return nil, &Error{Source: c.source, Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	body, readErr := io.ReadAll(resp.Body)
	status := resp.StatusCode
	if status < 200 || status >= 300 {
		err := &Error{Source: c.source, Kind: KindStatus, Status: status}
		c.observe(status, start, err)
		c.log.Warn("upstream returned error status",
			zap.String("source", c.source), zap.Int("status", status))
		return nil, err
	}
	if readErr != nil {
		c.observe(status, start, readErr)
		return nil, &Error{Source: c.source, Kind: KindTransport, Err: readErr}
	}
	if len(body) == 0 {
		err := &Error{Source: c.source, Kind: KindEmpty, Status: status}
		c.observe(status, start, err)
		return nil, err
	}
	c.observe(status, start, nil)
	c.log.Debug("upstream call ok",
		zap.String("source", c.source),
		zap.Int("status", status),
		zap.Int("bytes", len(body)),
		zap.Duration("elapsed", time.Since(start)))
	return body, nil
}

func (c *Client) observe(status int, start time.Time, err error) {
	if c.obs != nil {
		c.obs.ObserveUpstream(c.source, status, time.Since(start), err)
	}
}
