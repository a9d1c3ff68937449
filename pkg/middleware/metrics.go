package middleware

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/vango-dev/navstack/pkg/nav"
)

// MetricsConfig configures the Prometheus reporter.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "navstack").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for stack depth.
	// Default: DefaultDepthBuckets
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// DefaultDepthBuckets suits stacks of a few dozen entries.
var DefaultDepthBuckets = []float64{1, 2, 3, 5, 8, 13, 21, 34}

// MetricsOption configures the Prometheus reporter.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the stack depth histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "navstack",
		Buckets:   DefaultDepthBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// MetricsReporter records navigation events as Prometheus metrics. Pass it
// to nav.WithReporter, and to nav.WithOwnerObserver for the owner gauge.
//
// Metrics collected:
//   - navstack_events_total: Counter of events by kind and action
//   - navstack_rejections_total: Counter of requests that changed nothing, by kind
//   - navstack_stack_depth: Histogram of stack size after each mutation
//   - navstack_owners: Gauge of attached owners
type MetricsReporter struct {
	eventsTotal *prometheus.CounterVec
	rejections  *prometheus.CounterVec
	stackDepth  prometheus.Histogram
	owners      prometheus.Gauge

	mu       sync.Mutex
	attached map[string]struct{}
}

// Metrics creates a reporter registered with the configured registry.
// Registering twice with the same registry panics, as promauto does.
//
// Example:
//
//	reg := prometheus.NewRegistry()
//	m := middleware.Metrics(middleware.WithRegistry(reg))
//	ctrl := nav.New(nav.WithReporter(m), nav.WithOwnerObserver(m))
//	http.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
func Metrics(opts ...MetricsOption) *MetricsReporter {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &MetricsReporter{
		eventsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "events_total",
			Help:        "Total number of navigation events",
			ConstLabels: config.ConstLabels,
		}, []string{"kind", "action"}),

		rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rejections_total",
			Help:        "Navigation requests that left the stack unchanged",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		stackDepth: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "stack_depth",
			Help:        "Stack size after each mutation",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		owners: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "owners",
			Help:        "Number of owners with an attached stack",
			ConstLabels: config.ConstLabels,
		}),

		attached: make(map[string]struct{}),
	}
}

// Report implements nav.Reporter.
func (m *MetricsReporter) Report(e nav.Event) {
	m.eventsTotal.WithLabelValues(string(e.Kind), e.Action.String()).Inc()
	switch e.Kind {
	case nav.EventPushed, nav.EventReplacedAll, nav.EventPopped, nav.EventFinished:
		if e.Depth >= 0 {
			m.stackDepth.Observe(float64(e.Depth))
		}
	case nav.EventCancelled, nav.EventDuplicateTop, nav.EventNotTransportable,
		nav.EventLastEntry, nav.EventNoStack:
		m.rejections.WithLabelValues(string(e.Kind)).Inc()
	}
}

// OwnerAttached implements nav.OwnerObserver.
func (m *MetricsReporter) OwnerAttached(id string, _ *nav.Stack) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attached[id]; ok {
		return
	}
	m.attached[id] = struct{}{}
	m.owners.Inc()
}

// OwnerDetached implements nav.OwnerObserver.
func (m *MetricsReporter) OwnerDetached(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.attached[id]; !ok {
		return
	}
	delete(m.attached, id)
	m.owners.Dec()
}
