package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Attribute keys recorded on UI spans.
const (
	AttrLocator      = "ui.locator"
	AttrAction       = "ui.action"
	AttrAttempt      = "ui.attempt"
	AttrInvocationID = "ui.invocation_id"
	AttrCondition    = "ui.condition"
)

type Span struct {
	span   trace.Span
	logger *zap.Logger
	ctx    context.Context
}

func StartSpan(ctx context.Context, tracer trace.Tracer, logger *zap.Logger, name string, attrs ...attribute.KeyValue) (context.Context, *Span) {
	ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))

	return ctx, &Span{
		span:   span,
		logger: logger,
		ctx:    ctx,
	}
}

// End closes the span. Only a non-nil err marks it failed; disengaged waits and
// unapplied actions end with status Ok and carry the outcome as an attribute.
func (s *Span) End(err error) {
	if err != nil {
		s.span.SetStatus(codes.Error, err.Error())
		s.span.RecordError(err)
	} else {
		s.span.SetStatus(codes.Ok, "")
	}

	s.span.End()
}

func (s *Span) AddEvent(name string, attrs ...attribute.KeyValue) {
	s.span.AddEvent(name, trace.WithAttributes(attrs...))
}

// Attempt records a numbered retry attempt and the fault that ended it, if any.
func (s *Span) Attempt(n int, fault error) {
	attrs := []attribute.KeyValue{attribute.Int(AttrAttempt, n)}
	if fault != nil {
		attrs = append(attrs, attribute.String("fault", fault.Error()))
		s.logger.Debug("Attempt failed", zap.Int("attempt", n), zap.Error(fault))
	}

	s.span.AddEvent("attempt", trace.WithAttributes(attrs...))
}

func (s *Span) SetAttributes(attrs ...attribute.KeyValue) {
	s.span.SetAttributes(attrs...)
}

func (s *Span) Context() context.Context {
	return s.ctx
}
