package otelhelper

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// SetError marks the span failed and records err on it.
func SetError(span trace.Span, err error, attrs ...attribute.KeyValue) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	span.AddEvent("error_occurred", trace.WithAttributes(
		attrs...,
	))
}

// SetNoop annotates a span whose operation had nothing to do.
func SetNoop(span trace.Span, reason string) {
	span.SetAttributes(attribute.Bool("operion.history.noop", true))
	span.AddEvent("noop", trace.WithAttributes(attribute.String("reason", reason)))
}
