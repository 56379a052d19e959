// Package metrics decorates any sink with Prometheus instrumentation.
package metrics

import (
	"errors"
	"time"

	"github.com/aretw0/scopetrace/pkg/domain"
	"github.com/aretw0/scopetrace/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the metric vectors shared by every wrapped sink.
type Collector struct {
	offered  *prometheus.CounterVec
	admitted *prometheus.CounterVec
	dumps    *prometheus.CounterVec
	errors   *prometheus.CounterVec
	signals  *prometheus.GaugeVec
	latency  *prometheus.HistogramVec
}

// NewCollector creates the metric vectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		offered: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scopetrace_records_offered_total",
				Help: "Records offered to the sink by the dump engine",
			},
			[]string{"format"},
		),
		admitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scopetrace_records_encoded_total",
				Help: "Records admitted by the sink dump policy",
			},
			[]string{"format"},
		),
		dumps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scopetrace_dumps_total",
				Help: "Distinct dump times seen by the sink",
			},
			[]string{"format"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "scopetrace_sink_errors_total",
				Help: "Sink operations that returned an error",
			},
			[]string{"format", "op"},
		),
		signals: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "scopetrace_traced_signals",
				Help: "Signals declared in the header of the current trace",
			},
			[]string{"format"},
		),
		latency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "scopetrace_sink_op_duration_seconds",
				Help:    "Duration of sink operations",
				Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
			},
			[]string{"format", "op"},
		),
	}
	if reg == nil {
		return c, nil
	}

	var err error
	if c.offered, err = register(reg, c.offered); err != nil {
		return nil, err
	}
	if c.admitted, err = register(reg, c.admitted); err != nil {
		return nil, err
	}
	if c.dumps, err = register(reg, c.dumps); err != nil {
		return nil, err
	}
	if c.errors, err = register(reg, c.errors); err != nil {
		return nil, err
	}
	if c.signals, err = register(reg, c.signals); err != nil {
		return nil, err
	}
	if c.latency, err = register(reg, c.latency); err != nil {
		return nil, err
	}
	return c, nil
}

// register adopts an identical collector that is already registered.
func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	err := reg.Register(col)
	if err == nil {
		return col, nil
	}
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		if existing, ok := already.ExistingCollector.(T); ok {
			return existing, nil
		}
	}
	return col, err
}

// Wrap returns inner instrumented under the given format label.
func (c *Collector) Wrap(inner ports.Sink, format string) *Sink {
	return &Sink{inner: inner, format: format, c: c}
}

// Sink forwards every call to the wrapped sink and records what happened.
type Sink struct {
	inner   ports.Sink
	format  string
	c       *Collector
	hasTime bool
	last    uint64
}

var _ ports.Sink = (*Sink)(nil)
var _ ports.Flusher = (*Sink)(nil)

// Unwrap returns the decorated sink.
func (s *Sink) Unwrap() ports.Sink {
	return s.inner
}

func (s *Sink) observe(op string, start time.Time, err error) error {
	s.c.latency.WithLabelValues(s.format, op).Observe(time.Since(start).Seconds())
	if err != nil {
		s.c.errors.WithLabelValues(s.format, op).Inc()
	}
	return err
}

// Policy implements ports.Sink.
func (s *Sink) Policy() domain.DumpPolicy {
	return s.inner.Policy()
}

// Open implements ports.Sink.
func (s *Sink) Open(path string) error {
	s.hasTime = false
	start := time.Now()
	return s.observe("open", start, s.inner.Open(path))
}

// WriteHeader implements ports.Sink.
func (s *Sink) WriteHeader(h domain.Header) error {
	start := time.Now()
	err := s.inner.WriteHeader(h)
	if err == nil {
		s.c.signals.WithLabelValues(s.format).Set(float64(len(h.Signals)))
	}
	return s.observe("header", start, err)
}

// WriteRecord implements ports.Sink.
func (s *Sink) WriteRecord(rec domain.TraceRecord) error {
	s.c.offered.WithLabelValues(s.format).Inc()
	if !s.hasTime || rec.Time != s.last {
		s.hasTime = true
		s.last = rec.Time
		s.c.dumps.WithLabelValues(s.format).Inc()
	}
	start := time.Now()
	err := s.inner.WriteRecord(rec)
	if err == nil && s.inner.Policy().Admit(rec) {
		s.c.admitted.WithLabelValues(s.format).Inc()
	}
	return s.observe("write", start, err)
}

// Flush implements ports.Flusher when the wrapped sink does.
func (s *Sink) Flush() error {
	f, ok := s.inner.(ports.Flusher)
	if !ok {
		return nil
	}
	start := time.Now()
	return s.observe("flush", start, f.Flush())
}

// Close implements ports.Sink.
func (s *Sink) Close() error {
	start := time.Now()
	return s.observe("close", start, s.inner.Close())
}
