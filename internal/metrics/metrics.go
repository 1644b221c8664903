package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the VEN collectors on a private registry so several
// instances (tests, embedded use) don't collide on the default one.
type Metrics struct {
	reg *prometheus.Registry

	Polls            *prometheus.CounterVec
	PollDuration     prometheus.Histogram
	EventsFetched    prometheus.Counter
	EventsDispatched prometheus.Counter
	StatusChanges    *prometheus.CounterVec
	QueueLength      prometheus.Gauge
	QueuedEvents     prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		Polls: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ven_polls_total",
			Help: "Total number of event polls, labelled by result.",
		}, []string{"result"}),
		PollDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ven_poll_duration_seconds",
			Help:    "Poll latency (fetch plus dispatch) in seconds.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		EventsFetched: f.NewCounter(prometheus.CounterOpts{
			Name: "ven_events_fetched_total",
			Help: "Total number of events returned by the fetcher.",
		}),
		EventsDispatched: f.NewCounter(prometheus.CounterOpts{
			Name: "ven_events_dispatched_total",
			Help: "Total number of events taken off the queue and evaluated.",
		}),
		StatusChanges: f.NewCounterVec(prometheus.CounterOpts{
			Name: "ven_event_status_changes_total",
			Help: "Total number of event status transitions, labelled by new status.",
		}, []string{"status"}),
		QueueLength: f.NewGauge(prometheus.GaugeOpts{
			Name: "ven_queue_length",
			Help: "Current number of items on the dispatch queue.",
		}),
		QueuedEvents: f.NewGauge(prometheus.GaugeOpts{
			Name: "ven_queue_events",
			Help: "Current number of event items on the dispatch queue.",
		}),
	}
}

func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

// ObserveQueue records the current queue shape.
func (m *Metrics) ObserveQueue(length, events int) {
	if m == nil {
		return
	}
	m.QueueLength.Set(float64(length))
	m.QueuedEvents.Set(float64(events))
}
