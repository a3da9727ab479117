package propsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	extraPrefix      = "extra."
	embeddedExtraKey = "extra.*"
	maxErrorBody     = 64 << 10
)

// Client talks to a propsync server.
type Client struct {
	baseURL        *url.URL
	http           *http.Client
	embeddedExtras bool
	userAgent      string
	obs            *callObserver
}

// New creates a Client for baseURL (e.g. http://localhost:8080).
func New(baseURL string, opts ...Option) (*Client, error) {
	cfg := &clientConfig{userAgent: "propsync-go-sdk"}
	for _, o := range opts {
		o.apply(cfg)
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("propsync: parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("propsync: base url must be absolute http(s), got %q", baseURL)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{}
	}
	if cfg.timeout > 0 {
		clone := *hc
		clone.Timeout = cfg.timeout
		hc = &clone
	}

	obs, err := newCallObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL:        u,
		http:           hc,
		embeddedExtras: cfg.embeddedExtras,
		userAgent:      cfg.userAgent,
		obs:            obs,
	}, nil
}

// Ingest triggers an ingestion run and waits for its report. Per-source
// failures are reported inside Report, not as an error.
func (c *Client) Ingest(ctx context.Context) (report Report, err error) {
	defer func(start time.Time) { c.obs.done("ingest", start, report.TotalRecords, err) }(time.Now())

	err = c.do(ctx, http.MethodPost, "/ingest", nil, &report)
	return report, err
}

// Search queries properties. An empty result is a non-nil empty slice.
func (c *Client) Search(ctx context.Context, q Query) (props []Property, err error) {
	defer func(start time.Time) { c.obs.done("search", start, len(props), err) }(time.Now())

	props = []Property{}
	if err = c.do(ctx, http.MethodGet, "/properties", c.encodeQuery(q), &props); err != nil {
		return nil, err
	}
	return props, nil
}

// Health returns the service health. A degraded service answers 503 with a
// regular body, which is returned without error.
func (c *Client) Health(ctx context.Context) (h HealthStatus, err error) {
	defer func(start time.Time) { c.obs.done("health", start, 0, err) }(time.Now())

	err = c.do(ctx, http.MethodGet, "/health", nil, &h)
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusServiceUnavailable && h.Status != "" {
		return h, nil
	}
	return h, err
}

func (c *Client) encodeQuery(q Query) url.Values {
	v := url.Values{}
	if q.City != "" {
		v.Set("city", q.City)
	}
	if q.IsAvailable != nil {
		v.Set("isAvailable", strconv.FormatBool(*q.IsAvailable))
	}
	if q.PriceMin != nil {
		v.Set("priceMin", strconv.FormatFloat(*q.PriceMin, 'f', -1, 64))
	}
	if q.PriceMax != nil {
		v.Set("priceMax", strconv.FormatFloat(*q.PriceMax, 'f', -1, 64))
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	if q.Offset > 0 {
		v.Set("offset", strconv.Itoa(q.Offset))
	}

	keys := make([]string, 0, len(q.Extra))
	for k := range q.Extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var embedded []string
	for _, k := range keys {
		val := q.Extra[k]
		// The embedded form cannot carry '&' in a value.
		if c.embeddedExtras && !strings.Contains(val, "&") {
			embedded = append(embedded, extraPrefix+k+"="+val)
			continue
		}
		v.Set(extraPrefix+k, val)
	}
	if len(embedded) > 0 {
		v.Set(embeddedExtraKey, strings.Join(embedded, "&"))
	}
	return v
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, out any) error {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), nil)
	if err != nil {
		return fmt.Errorf("propsync: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("propsync: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp, out)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("propsync: decode %s response: %w", path, err)
	}
	return nil
}

// decodeError builds an APIError. Bodies that are not an error envelope are
// decoded into out, which lets /health return its 503 report.
func decodeError(resp *http.Response, out any) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(body) == 0 {
		return apiErr
	}

	var envelope struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &envelope) == nil && envelope.Code != "" {
		apiErr.Code = envelope.Code
		apiErr.Message = envelope.Message
		return apiErr
	}
	_ = json.Unmarshal(body, out)
	return apiErr
}
