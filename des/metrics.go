package des

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus instrumentation for one Model's Executive
// and ReplicationController, grounded on the teacher's PrometheusMetrics
// (graph/metrics.go), which wraps a promauto.With(registry) factory
// around a fixed set of counters/gauges/histograms keyed by engine name;
// here the label is the model's simulation name instead of a graph id.
type Metrics struct {
	eventsDispatched   *prometheus.CounterVec
	conditionalScans   *prometheus.CounterVec
	calendarDepth      *prometheus.GaugeVec
	replicationsRun    *prometheus.CounterVec
	replicationSeconds *prometheus.HistogramVec
	dispatchErrors     *prometheus.CounterVec
}

// NewMetrics registers a Metrics collector against reg. Passing a
// prometheus.NewRegistry() (rather than the global default registry)
// lets multiple models coexist in one process without label collisions,
// the same pattern the teacher's NewPrometheusMetrics follows.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		eventsDispatched: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "des_events_dispatched_total",
			Help: "Number of events dispatched by the executive.",
		}, []string{"model"}),
		conditionalScans: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "des_conditional_scans_total",
			Help: "Number of conditional-action processor scan passes run.",
		}, []string{"model"}),
		calendarDepth: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "des_calendar_depth",
			Help: "Number of events currently pending in the calendar.",
		}, []string{"model"}),
		replicationsRun: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "des_replications_total",
			Help: "Number of replications completed.",
		}, []string{"model"}),
		replicationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "des_replication_duration_seconds",
			Help:    "Wall-clock duration of a single replication.",
			Buckets: prometheus.DefBuckets,
		}, []string{"model"}),
		dispatchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "des_dispatch_errors_total",
			Help: "Number of dispatch errors raised by event actions or lifecycle hooks.",
		}, []string{"model"}),
	}
}

// Observer returns a StatusObserver that feeds this Metrics collector
// from a Model's executive events; attach it with Model's AddStatusObserver-
// equivalent (Executive.AddObserver) to wire it in.
func (m *Metrics) Observer(modelName string) StatusObserver {
	return &metricsObserver{m: m, model: modelName}
}

type metricsObserver struct {
	m     *Metrics
	model string
}

func (o *metricsObserver) OnStatusChange(elem Element, previous, current Status) {}

func (o *metricsObserver) OnEvent(exec *Executive, evt *Event) {
	o.m.eventsDispatched.WithLabelValues(o.model).Inc()
}

// RecordReplication records one completed replication's wall-clock
// duration.
func (m *Metrics) RecordReplication(modelName string, seconds float64) {
	m.replicationsRun.WithLabelValues(modelName).Inc()
	m.replicationSeconds.WithLabelValues(modelName).Observe(seconds)
}

// RecordDispatchError increments the dispatch-error counter.
func (m *Metrics) RecordDispatchError(modelName string) {
	m.dispatchErrors.WithLabelValues(modelName).Inc()
}

// SetCalendarDepth reports the calendar's current length as a gauge.
func (m *Metrics) SetCalendarDepth(modelName string, depth int) {
	m.calendarDepth.WithLabelValues(modelName).Set(float64(depth))
}

// RecordConditionalScan increments the conditional-scan counter.
func (m *Metrics) RecordConditionalScan(modelName string) {
	m.conditionalScans.WithLabelValues(modelName).Inc()
}
