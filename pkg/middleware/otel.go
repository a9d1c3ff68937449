package middleware

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/vango-dev/navstack/pkg/nav"
)

// Default tracer name for navigation spans.
const defaultTracerName = "navstack"

// OTelConfig configures the OpenTelemetry reporter.
type OTelConfig struct {
	// TracerName is the name of the tracer (default: "navstack").
	TracerName string

	// TracerProvider overrides the global provider.
	TracerProvider trace.TracerProvider

	// IncludeOwner adds the owner id to spans. Enabled by default.
	IncludeOwner bool

	// Filter determines which events to trace.
	// If nil, all events are traced.
	Filter func(e nav.Event) bool

	// AttributeExtractor adds custom attributes per event.
	AttributeExtractor func(e nav.Event) []attribute.KeyValue

	// Context returns the parent context of each span. Default:
	// context.Background.
	Context func() context.Context
}

// OTelOption configures the OpenTelemetry reporter.
type OTelOption func(*OTelConfig)

// WithTracerName sets the tracer name.
func WithTracerName(name string) OTelOption {
	return func(c *OTelConfig) {
		c.TracerName = name
	}
}

// WithTracerProvider uses tp instead of otel.GetTracerProvider().
func WithTracerProvider(tp trace.TracerProvider) OTelOption {
	return func(c *OTelConfig) {
		c.TracerProvider = tp
	}
}

// WithIncludeOwner enables/disables the owner id attribute.
func WithIncludeOwner(include bool) OTelOption {
	return func(c *OTelConfig) {
		c.IncludeOwner = include
	}
}

// WithEventFilter sets a filter function for events.
func WithEventFilter(filter func(e nav.Event) bool) OTelOption {
	return func(c *OTelConfig) {
		c.Filter = filter
	}
}

// WithAttributeExtractor sets a custom attribute extractor.
func WithAttributeExtractor(extractor func(e nav.Event) []attribute.KeyValue) OTelOption {
	return func(c *OTelConfig) {
		c.AttributeExtractor = extractor
	}
}

// WithParentContext sets where spans are parented.
func WithParentContext(fn func() context.Context) OTelOption {
	return func(c *OTelConfig) {
		c.Context = fn
	}
}

func defaultOTelConfig() OTelConfig {
	return OTelConfig{
		TracerName:   defaultTracerName,
		IncludeOwner: true,
		Context:      context.Background,
	}
}

// TracingReporter records one span per navigation event.
type TracingReporter struct {
	config OTelConfig
	tracer trace.Tracer
}

// Tracing creates a reporter that traces navigation events.
//
// Each span is named "nav.<kind>" and carries the action, the key type,
// the redirect source, the cancel reason and the resulting depth. Misuse
// such as a missing stack or an untransportable key sets the span status
// to Error; cancellations by interceptors do not.
//
// Example:
//
//	ctrl := nav.New(nav.WithReporter(middleware.Tracing(
//	    middleware.WithTracerName("my-app"),
//	)))
func Tracing(opts ...OTelOption) *TracingReporter {
	config := defaultOTelConfig()
	for _, opt := range opts {
		opt(&config)
	}
	tp := config.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &TracingReporter{config: config, tracer: tp.Tracer(config.TracerName)}
}

// Report implements nav.Reporter.
func (r *TracingReporter) Report(e nav.Event) {
	if r.config.Filter != nil && !r.config.Filter(e) {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("nav.kind", string(e.Kind)),
		attribute.String("nav.action", e.Action.String()),
	}
	if e.Key != nil {
		attrs = append(attrs, attribute.String("nav.key", nav.TypeName(e.Key)))
	}
	if e.From != nil {
		attrs = append(attrs, attribute.String("nav.from", nav.TypeName(e.From)))
	}
	if e.Reason != "" {
		attrs = append(attrs, attribute.String("nav.reason", e.Reason))
	}
	if e.Depth >= 0 {
		attrs = append(attrs, attribute.Int("nav.depth", e.Depth))
	}
	if r.config.IncludeOwner && e.Owner != "" {
		attrs = append(attrs, attribute.String("nav.owner", e.Owner))
	}
	if r.config.AttributeExtractor != nil {
		attrs = append(attrs, r.config.AttributeExtractor(e)...)
	}

	ctx := context.Background()
	if r.config.Context != nil {
		ctx = r.config.Context()
	}
	_, span := r.tracer.Start(ctx, "nav."+string(e.Kind),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
		trace.WithTimestamp(time.Now()),
	)
	defer span.End()

	switch e.Kind {
	case nav.EventNoStack, nav.EventNotTransportable:
		span.SetStatus(codes.Error, string(e.Kind))
	default:
		span.SetStatus(codes.Ok, "")
	}
}
