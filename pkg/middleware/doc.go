// Package middleware provides observability reporters for the navigation
// controller.
//
// This package includes:
//   - Prometheus metrics for navigation events and attached owners
//   - OpenTelemetry spans, one per navigation event
//
// # Prometheus Metrics
//
// The metrics reporter counts events and observes stack depth:
//   - navstack_events_total: Events by kind and action
//   - navstack_rejections_total: Requests that left the stack unchanged
//   - navstack_stack_depth: Stack size after each mutation
//   - navstack_owners: Owners with an attached stack
//
//	m := middleware.Metrics(middleware.WithNamespace("myapp"))
//	ctrl := nav.New(nav.WithReporter(m), nav.WithOwnerObserver(m))
//
// Then expose metrics:
//
//	http.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
// The tracing reporter uses the global tracer provider unless one is given:
//
//	ctrl := nav.New(nav.WithReporter(middleware.Tracing(
//	    middleware.WithEventFilter(func(e nav.Event) bool {
//	        return e.Kind != nav.EventLastEntry
//	    }),
//	)))
package middleware
