// Package feed opens remote JSON feeds as live byte streams.
package feed

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/kailas-cloud/propsync/internal/domain"
	"github.com/kailas-cloud/propsync/internal/domain/source"
)

// Default timeouts.
const (
	DefaultProbeTimeout = 10 * time.Second
	DefaultFetchTimeout = 5 * time.Minute
)

// acceptEncoding is sent explicitly, which also disables the transport's
// transparent gzip handling.
const acceptEncoding = "gzip, br, zstd"

// errEmptyBody is reported when a successful response carries no bytes.
var errEmptyBody = errors.New("Empty response body") //nolint:staticcheck // surfaced verbatim in reports

// Client fetches feeds over HTTP.
type Client struct {
	http         *http.Client
	probeTimeout time.Duration
	fetchTimeout time.Duration
	userAgent    string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithProbeTimeout bounds the metadata probe.
func WithProbeTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.probeTimeout = d
		}
	}
}

// WithFetchTimeout bounds a whole body download, streaming included.
func WithFetchTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.fetchTimeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a feed client.
func New(opts ...Option) *Client {
	c := &Client{
		http:         &http.Client{},
		probeTimeout: DefaultProbeTimeout,
		fetchTimeout: DefaultFetchTimeout,
		userAgent:    "propsync",
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Probe issues a HEAD request and returns the feed's validators. Any
// failure yields a zero fingerprint plus the error; callers treat that as
// "changed".
func (c *Client) Probe(ctx context.Context, url string) (source.Fingerprint, error) {
	ctx, cancel := context.WithTimeout(ctx, c.probeTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodHead, url)
	if err != nil {
		return source.Fingerprint{}, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return source.Fingerprint{}, &domain.FetchError{URL: url, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return source.Fingerprint{}, statusError(url, resp)
	}
	return source.Fingerprint{
		Validator:    resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
	}, nil
}

// Open starts a GET and returns the decoded body as a live stream. The
// caller must Close it. Non-2xx statuses and empty bodies fail with
// *domain.FetchError.
func (c *Client) Open(ctx context.Context, url string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)

	req, err := c.newRequest(ctx, http.MethodGet, url)
	if err != nil {
		cancel()
		return nil, err
	}
	req.Header.Set("Accept-Encoding", acceptEncoding)

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_ = resp.Body.Close()
		cancel()
		return nil, statusError(url, resp)
	}

	decoded, closeDecoder, err := decode(resp.Body, resp.Header.Get("Content-Encoding"))
	if err != nil {
		_ = resp.Body.Close()
		cancel()
		return nil, &domain.FetchError{URL: url, Err: err}
	}

	stream := &bodyStream{
		Reader: bufio.NewReaderSize(decoded, 64<<10),
		closers: []func() error{
			closeDecoder,
			resp.Body.Close,
			func() error { cancel(); return nil },
		},
	}
	if _, err := stream.Peek(1); err != nil {
		_ = stream.Close()
		if errors.Is(err, io.EOF) {
			return nil, &domain.FetchError{URL: url, Err: errEmptyBody}
		}
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	return stream, nil
}

func (c *Client) newRequest(ctx context.Context, method, url string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: url, Err: err}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	return req, nil
}

func statusError(url string, resp *http.Response) error {
	return &domain.FetchError{
		URL:    url,
		Status: resp.StatusCode,
		Err:    errors.New(http.StatusText(resp.StatusCode)),
	}
}

// decode wraps body according to Content-Encoding.
func decode(body io.Reader, contentEncoding string) (io.Reader, func() error, error) {
	noop := func() error { return nil }
	switch strings.ToLower(strings.TrimSpace(contentEncoding)) {
	case "", "identity":
		return body, noop, nil
	case "gzip", "x-gzip":
		gz, err := gzip.NewReader(body)
		if err != nil {
			return nil, nil, fmt.Errorf("open gzip reader: %w", err)
		}
		return gz, gz.Close, nil
	case "br":
		return brotli.NewReader(body), noop, nil
	case "zstd":
		zr, err := zstd.NewReader(body, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, nil, fmt.Errorf("open zstd reader: %w", err)
		}
		return zr, func() error { zr.Close(); return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unsupported Content-Encoding: %q", contentEncoding)
	}
}

// bodyStream is a buffered, decoded response body.
type bodyStream struct {
	*bufio.Reader
	closers []func() error
}

// Close releases the decoder, the connection and the fetch deadline.
func (b *bodyStream) Close() error {
	var errs []error
	for _, c := range b.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
