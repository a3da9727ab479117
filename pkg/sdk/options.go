package propsync

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	httpClient     *http.Client
	timeout        time.Duration
	embeddedExtras bool
	userAgent      string

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithHTTPClient sets the underlying HTTP client. Default: a new http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return optionFunc(func(c *clientConfig) {
		c.httpClient = hc
	})
}

// WithTimeout bounds every request. Ingest runs can take minutes, so the
// default is no client-side timeout beyond the caller's context.
func WithTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.timeout = d
	})
}

// WithEmbeddedExtras sends extra filters in the single extra.* parameter
// (extra.*=extra.country=Japan&extra.name=Loft) instead of repeated
// extra.<field> parameters.
func WithEmbeddedExtras() Option {
	return optionFunc(func(c *clientConfig) {
		c.embeddedExtras = true
	})
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return optionFunc(func(c *clientConfig) {
		c.userAgent = ua
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
