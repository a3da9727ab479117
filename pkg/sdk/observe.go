package propsync

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Call outcomes used as the "outcome" metric label.
const (
	outcomeOK        = "ok"
	outcomeRejected  = "rejected"  // server answered with an error status
	outcomeTransport = "transport" // no usable answer: dial, timeout, decode
)

// callMetrics counts client calls and the records they moved.
type callMetrics struct {
	calls   *prometheus.CounterVec
	latency *prometheus.HistogramVec
	records *prometheus.CounterVec
}

func newCallMetrics(reg prometheus.Registerer) (*callMetrics, error) {
	m := &callMetrics{
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propsync",
			Subsystem: "client",
			Name:      "calls_total",
			Help:      "Calls to the propsync API by call and outcome.",
		}, []string{"call", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "propsync",
			Subsystem: "client",
			Name:      "call_duration_seconds",
			Help:      "Latency of propsync API calls. Ingest waits for a full run.",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 60, 300},
		}, []string{"call"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "propsync",
			Subsystem: "client",
			Name:      "records_total",
			Help:      "Records returned by search or persisted by ingest.",
		}, []string{"call"}),
	}
	if err := reuseRegistered(reg, &m.calls); err != nil {
		return nil, err
	}
	if err := reuseRegistered(reg, &m.latency); err != nil {
		return nil, err
	}
	if err := reuseRegistered(reg, &m.records); err != nil {
		return nil, err
	}
	return m, nil
}

// reuseRegistered registers c, or points c at the collector a previous
// client registered under the same name.
func reuseRegistered[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	err := reg.Register(*c)
	if err == nil {
		return nil
	}
	var are prometheus.AlreadyRegisteredError
	if !errors.As(err, &are) {
		return fmt.Errorf("propsync: register metric: %w", err)
	}
	existing, ok := are.ExistingCollector.(T)
	if !ok {
		return fmt.Errorf("propsync: metric registered with type %T", are.ExistingCollector)
	}
	*c = existing
	return nil
}

// callObserver records metrics and logs for each API call. Both sinks are
// optional.
type callObserver struct {
	logger  *slog.Logger
	metrics *callMetrics
}

func newCallObserver(logger *slog.Logger, reg prometheus.Registerer) (*callObserver, error) {
	o := &callObserver{logger: logger}
	if reg != nil {
		m, err := newCallMetrics(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// done is deferred by every call. records is the number of properties the
// call returned or the ingest run persisted.
func (o *callObserver) done(call string, start time.Time, records int, err error) {
	if o == nil {
		return
	}
	elapsed := time.Since(start)
	outcome := classify(err)

	if o.metrics != nil {
		o.metrics.calls.WithLabelValues(call, outcome).Inc()
		o.metrics.latency.WithLabelValues(call).Observe(elapsed.Seconds())
		if err == nil && records > 0 {
			o.metrics.records.WithLabelValues(call).Add(float64(records))
		}
	}

	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("propsync call failed", "call", call, "outcome", outcome, "elapsed", elapsed, "error", err)
		return
	}
	o.logger.Debug("propsync call done", "call", call, "records", records, "elapsed", elapsed)
}

func classify(err error) string {
	if err == nil {
		return outcomeOK
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return outcomeRejected
	}
	return outcomeTransport
}
