package emit

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// OtelObserver records each event as an OpenTelemetry span, so an
// experiment's replications can be viewed in a distributed tracing
// backend alongside any other instrumented service that consumes its
// output.
type OtelObserver struct {
	tracer trace.Tracer
}

// NewOtelObserver returns an OtelObserver using tracer.
func NewOtelObserver(tracer trace.Tracer) *OtelObserver {
	return &OtelObserver{tracer: tracer}
}

func (o *OtelObserver) Emit(event Event) {
	_, span := o.tracer.Start(context.Background(), event.Msg)
	defer span.End()
	o.annotate(span, event)
}

func (o *OtelObserver) EmitBatch(ctx context.Context, events []Event) error {
	for _, event := range events {
		_, span := o.tracer.Start(ctx, event.Msg)
		o.annotate(span, event)
		span.End()
	}
	return nil
}

func (o *OtelObserver) annotate(span trace.Span, event Event) {
	span.SetAttributes(
		attribute.String("des.model", event.ModelName),
		attribute.Int("des.replication", event.Replication),
		attribute.Float64("des.time", event.Time),
		attribute.String("des.element", event.ElementName),
		attribute.Int64("des.event_id", event.EventID),
	)
	for k, v := range event.Meta {
		span.SetAttributes(attribute.String("des.meta."+k, fmt.Sprintf("%v", v)))
	}
}

// Flush force-flushes the active tracer provider, if it supports it.
func (o *OtelObserver) Flush(ctx context.Context) error {
	type flusher interface {
		ForceFlush(context.Context) error
	}
	if f, ok := otel.GetTracerProvider().(flusher); ok {
		return f.ForceFlush(ctx)
	}
	return nil
}
