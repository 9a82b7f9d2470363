package tracing

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Span names.
const (
	SpanRun       = "pipeline.run"
	SpanLoad      = "pipeline.load"
	SpanEnrich    = "pipeline.enrich"
	SpanClassify  = "pipeline.classify"
	SpanAggregate = "pipeline.aggregate"
	SpanWrite     = "pipeline.write"
)

// Attribute keys.
const (
	AttrInputPath      = "input.path"
	AttrEnrichmentPath = "enrichment.path"
	AttrRecordCount    = "records.count"
	AttrWarningCount   = "warnings.count"
	AttrProviderCount  = "providers.count"
	AttrGrandTotal     = "domains.total"
	AttrOutputDir      = "output.dir"
)

// Event names.
const (
	EventDuplicateIDs = "duplicate_ids"
	EventOrphans      = "orphans"
)

// StartStage opens a span for one pipeline stage. The returned finish
// function records err (if any) and ends the span.
func StartStage(ctx context.Context, tracer trace.Tracer, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span, func(err error)) {
	ctx, span := tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, span, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()
	}
}
