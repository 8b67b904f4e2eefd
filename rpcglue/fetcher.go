package rpcglue

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// Method enumerates the HTTP verbs a DataRequest may use, per spec.md
// §3's data-request tuple.
type Method int

const (
	MethodGET Method = iota
	MethodPOST
	MethodPUT
	MethodDELETE
)

func (m Method) String() string {
	switch m {
	case MethodGET:
		return http.MethodGet
	case MethodPOST:
		return http.MethodPost
	case MethodPUT:
		return http.MethodPut
	case MethodDELETE:
		return http.MethodDelete
	default:
		return http.MethodGet
	}
}

// Fetcher is the host-provided async request executor spec.md §1
// keeps out of the core's scope; the proofer only ever calls Fetch and
// waits for it to resolve a DataRequest's response or error.
type Fetcher interface {
	Fetch(ctx context.Context, method Method, url string, payload []byte) ([]byte, error)
}

var (
	fetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "c4go",
		Subsystem: "fetcher",
		Name:      "requests_total",
		Help:      "HTTP requests issued by the default fetcher, by method and outcome.",
	}, []string{"method", "outcome"})
	fetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "c4go",
		Subsystem: "fetcher",
		Name:      "request_duration_seconds",
		Help:      "Latency of HTTP requests issued by the default fetcher.",
	}, []string{"method"})
)

func init() {
	prometheus.MustRegister(fetchTotal, fetchDuration)
}

// HTTPFetcher is the default Fetcher, a thin instrumented wrapper
// around net/http — sufficient for the companion CLIs and for driving
// the proofer against a live node; a host embedding this module in a
// larger service is free to supply its own Fetcher (e.g. one pooling
// connections across chains).
type HTTPFetcher struct {
	Client  *http.Client
	Timeout time.Duration
}

// NewHTTPFetcher returns an HTTPFetcher with sane defaults.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{Client: &http.Client{}, Timeout: 30 * time.Second}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, method Method, url string, payload []byte) ([]byte, error) {
	start := time.Now()
	if f.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.Timeout)
		defer cancel()
	}
	req, err := http.NewRequestWithContext(ctx, method.String(), url, bytes.NewReader(payload))
	if err != nil {
		fetchTotal.WithLabelValues(method.String(), "build_error").Inc()
		return nil, errors.Wrap(err, "rpcglue: building request")
	}
	if len(payload) > 0 {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := f.Client.Do(req)
	fetchDuration.WithLabelValues(method.String()).Observe(time.Since(start).Seconds())
	if err != nil {
		fetchTotal.WithLabelValues(method.String(), "transport_error").Inc()
		return nil, errors.Wrap(err, "rpcglue: http request failed")
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		fetchTotal.WithLabelValues(method.String(), "read_error").Inc()
		return nil, errors.Wrap(err, "rpcglue: reading response body")
	}
	if resp.StatusCode >= 300 {
		fetchTotal.WithLabelValues(method.String(), "http_error").Inc()
		return nil, errors.Errorf("rpcglue: http status %d", resp.StatusCode)
	}
	fetchTotal.WithLabelValues(method.String(), "ok").Inc()
	return body, nil
}
