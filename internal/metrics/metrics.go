// Package metrics counts decoded records with Prometheus collectors. A
// *Metrics satisfies encoding.Observer.
package metrics

import (
	"errors"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"

	"github.com/ChenRenault/tracy/event"
)

// Metrics holds the collectors for one or more decoded streams.
type Metrics struct {
	Records *prometheus.CounterVec
	Bytes   *prometheus.CounterVec
	Errors  *prometheus.CounterVec
	Streams prometheus.Counter

	reg *prometheus.Registry
}

// New creates the collectors and registers them with a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		Records: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tracy_records_decoded_total",
			Help: "Total number of records decoded, by record type",
		}, []string{"type"}),
		Bytes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tracy_record_bytes_total",
			Help: "Total number of stream bytes decoded, by record type",
		}, []string{"type"}),
		Errors: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tracy_decode_errors_total",
			Help: "Total number of streams halted by a decoding error, by reason",
		}, []string{"reason"}),
		Streams: f.NewCounter(prometheus.CounterOpts{
			Name: "tracy_streams_terminated_total",
			Help: "Total number of streams that ended with a terminate record",
		}),
		reg: reg,
	}
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Observe counts a decoded record that occupied size stream bytes.
func (m *Metrics) Observe(rec *event.Record, size int) {
	name := rec.Type.Name()
	m.Records.WithLabelValues(name).Inc()
	m.Bytes.WithLabelValues(name).Add(float64(size))
	if rec.Type == event.EvTerminate {
		m.Streams.Inc()
	}
}

// ObserveError counts the error that halted a stream.
func (m *Metrics) ObserveError(err error) {
	m.Errors.WithLabelValues(Reason(err)).Inc()
}

// Reason classifies a decoding error into a short label value.
func Reason(err error) string {
	switch {
	case errors.Is(err, event.ErrUnknownType):
		return "unknown_type"
	case errors.Is(err, event.ErrTruncated):
		return "truncated"
	case errors.Is(err, event.ErrInvalidPlotKind):
		return "invalid_plot_kind"
	case errors.Is(err, event.ErrInvalidLockKind):
		return "invalid_lock_kind"
	}
	return "io"
}

// Sample is a single counter value.
type Sample struct {
	Name  string
	Label string
	Value float64
}

// Snapshot gathers the current counter values, ordered by metric name and
// label. Labelled counters appear once they have been incremented.
func (m *Metrics) Snapshot() ([]Sample, error) {
	mfs, err := m.reg.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range mfs {
		for _, metric := range mf.GetMetric() {
			out = append(out, Sample{
				Name:  mf.GetName(),
				Label: labelValue(metric),
				Value: metric.GetCounter().GetValue(),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Label < out[j].Label
	})
	return out, nil
}

func labelValue(metric *dto.Metric) string {
	if lps := metric.GetLabel(); len(lps) > 0 {
		return lps[0].GetValue()
	}
	return ""
}
