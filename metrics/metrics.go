// Package metrics exposes prometheus collectors describing the monitor
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "portsync"

// Recorder holds the collectors updated by the monitor. A nil *Recorder
// discards every observation.
type Recorder struct {
	ForwardedPort prometheus.Gauge
	Polls         *prometheus.CounterVec
	PortUpdates   *prometheus.CounterVec
	Retries       prometheus.Counter
	LastUpdate    prometheus.Gauge

	now func() time.Time
}

// NewRecorder creates the collectors and registers them with reg
func NewRecorder(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		ForwardedPort: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "forwarded_port",
			Help:      "Last forwarded port applied to the torrent client, 0 if none",
		}),
		Polls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "polls_total",
			Help:      "Total number of polls by outcome",
		}, []string{"outcome"}),
		PortUpdates: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "port_updates_total",
			Help:      "Total number of port update attempts by backend and result",
		}, []string{"backend", "result"}),
		Retries: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "retries_total",
			Help:      "Total number of failed attempts that were retried or gave up",
		}),
		LastUpdate: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_update_timestamp_seconds",
			Help:      "Unix time of the last successful port update",
		}),
		now: time.Now,
	}
}

// ObservePoll counts a finished poll
func (r *Recorder) ObservePoll(outcome string) {
	if r == nil {
		return
	}
	r.Polls.WithLabelValues(outcome).Inc()
}

// UpdateSucceeded records a port applied to backend
func (r *Recorder) UpdateSucceeded(backend string, port int) {
	if r == nil {
		return
	}
	r.PortUpdates.WithLabelValues(backend, "success").Inc()
	r.ForwardedPort.Set(float64(port))
	r.LastUpdate.Set(float64(r.now().Unix()))
}

// UpdateFailed records a port update that exhausted its retries
func (r *Recorder) UpdateFailed(backend string) {
	if r == nil {
		return
	}
	r.PortUpdates.WithLabelValues(backend, "failure").Inc()
}

// RetryAttempt counts a failed attempt
func (r *Recorder) RetryAttempt() {
	if r == nil {
		return
	}
	r.Retries.Inc()
}
