// Package pipeline runs the analysis stages in order: load, classify,
// enrich, aggregate. A run has no side effects beyond reading its inputs.
package pipeline

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/rdapgw/internal/aggregate"
	"github.com/zjrosen/rdapgw/internal/classifier"
	"github.com/zjrosen/rdapgw/internal/enrich"
	"github.com/zjrosen/rdapgw/internal/loader"
	"github.com/zjrosen/rdapgw/internal/log"
	"github.com/zjrosen/rdapgw/internal/registrar"
	"github.com/zjrosen/rdapgw/internal/tracing"
)

// Input names the files a run reads.
type Input struct {
	WorkbookPath string
	// EnrichmentPath is optional.
	EnrichmentPath string
}

// Options tunes a run.
type Options struct {
	Aggregate aggregate.Options
	// Gateways are appended to the built-in gateway table.
	Gateways []classifier.Gateway
	// DeriveWebsites fills missing websites from registrar names after the
	// enrichment merge.
	DeriveWebsites bool
	// Tracer receives one span per stage. Nil disables tracing.
	Tracer trace.Tracer
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{Aggregate: aggregate.DefaultOptions()}
}

// Result is everything a run produces.
type Result struct {
	Records    []registrar.Record
	Analysis   *aggregate.Analysis
	Report     registrar.Report
	Enrichment enrich.Summary
}

// Run loads the inputs and processes them.
func Run(ctx context.Context, in Input, opts Options) (*Result, error) {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("pipeline")
	}
	opts.Tracer = tracer

	ctx, span, finish := tracing.StartStage(ctx, tracer, tracing.SpanRun,
		attribute.String(tracing.AttrInputPath, in.WorkbookPath))
	res, err := run(ctx, in, opts)
	if res != nil {
		span.SetAttributes(
			attribute.Int(tracing.AttrRecordCount, len(res.Records)),
			attribute.Int(tracing.AttrWarningCount, len(res.Report.Warnings)),
		)
	}
	finish(err)
	return res, err
}

func run(ctx context.Context, in Input, opts Options) (*Result, error) {
	_, loadSpan, finishLoad := tracing.StartStage(ctx, opts.Tracer, tracing.SpanLoad,
		attribute.String(tracing.AttrInputPath, in.WorkbookPath),
		attribute.String(tracing.AttrEnrichmentPath, in.EnrichmentPath))

	ds, err := loader.LoadWorkbook(in.WorkbookPath)
	if err != nil {
		finishLoad(err)
		return nil, fmt.Errorf("loading workbook: %w", err)
	}

	var (
		entries  []registrar.Enrichment
		warnings []registrar.Warning
	)
	if in.EnrichmentPath != "" {
		entries, warnings, err = loader.LoadEnrichment(in.EnrichmentPath)
		if err != nil {
			finishLoad(err)
			return nil, fmt.Errorf("loading enrichment: %w", err)
		}
	}
	loadSpan.SetAttributes(attribute.Int(tracing.AttrRecordCount, len(ds.Records)))
	finishLoad(nil)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ds.Report.Add(warnings...)
	return Process(ctx, ds.Records, entries, ds.Report, opts)
}

// Process runs classification, enrichment and aggregation over records
// that are already loaded. report carries loader warnings forward.
func Process(ctx context.Context, records []registrar.Record, entries []registrar.Enrichment, report registrar.Report, opts Options) (*Result, error) {
	tracer := opts.Tracer
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("pipeline")
	}

	report.Warnings = append([]registrar.Warning(nil), report.Warnings...)
	if n := report.Count(registrar.DuplicateIDWarning); n > 0 {
		trace.SpanFromContext(ctx).AddEvent(tracing.EventDuplicateIDs,
			trace.WithAttributes(attribute.Int(tracing.AttrWarningCount, n)))
	}

	_, _, finish := tracing.StartStage(ctx, tracer, tracing.SpanClassify,
		attribute.Int(tracing.AttrRecordCount, len(records)))
	classified := classifier.Default(opts.Gateways...).ClassifyAll(records)
	finish(nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, enrichSpan, finish := tracing.StartStage(ctx, tracer, tracing.SpanEnrich)
	merged, warnings := enrich.Merge(classified, entries)
	report.Add(warnings...)
	if opts.DeriveWebsites {
		var n int
		merged, n = enrich.DeriveWebsites(merged)
		log.Info(log.CatEnrich, "derived websites", "count", n)
	}
	if orphans := countKind(warnings, registrar.JoinOrphanWarning); orphans > 0 {
		enrichSpan.AddEvent(tracing.EventOrphans, trace.WithAttributes(attribute.Int(tracing.AttrWarningCount, orphans)))
	}
	finish(nil)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	_, aggSpan, finish := tracing.StartStage(ctx, tracer, tracing.SpanAggregate)
	analysis := aggregate.Aggregate(merged, opts.Aggregate)
	aggSpan.SetAttributes(
		attribute.Int(tracing.AttrProviderCount, analysis.Summary.DistinctProviders),
		attribute.Int64(tracing.AttrGrandTotal, analysis.Summary.GrandTotalDomains),
	)
	finish(nil)

	report.Warnings = report.Sorted()
	log.Info(log.CatPipeline, "pipeline complete",
		"records", len(merged),
		"providers", analysis.Summary.DistinctProviders,
		"warnings", len(report.Warnings))

	return &Result{
		Records:    merged,
		Analysis:   analysis,
		Report:     report,
		Enrichment: enrich.Summarize(merged),
	}, nil
}

func countKind(ws []registrar.Warning, kind registrar.WarningKind) int {
	n := 0
	for _, w := range ws {
		if w.Kind == kind {
			n++
		}
	}
	return n
}
