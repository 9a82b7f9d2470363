package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestNewProvider_DisabledIsNoop(t *testing.T) {
	p, err := NewProvider(DefaultConfig())
	require.NoError(t, err)
	require.False(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "x")
	require.False(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProvider_Errors(t *testing.T) {
	_, err := NewProvider(Config{Enabled: true, Exporter: ExporterFile})
	require.ErrorContains(t, err, "file_path required")

	_, err = NewProvider(Config{Enabled: true, Exporter: "zipkin"})
	require.ErrorContains(t, err, "unsupported exporter type: zipkin")
}

func TestNewProvider_NoneExporterStillTraces(t *testing.T) {
	p, err := NewProvider(Config{Enabled: true, Exporter: ExporterNone})
	require.NoError(t, err)
	require.True(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "x")
	require.True(t, span.SpanContext().IsValid())
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestStartStage_RecordsStatus(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	p := NewProviderWithExporter(exp)
	ctx := context.Background()

	ctx, _, finishRun := StartStage(ctx, p.Tracer(), SpanRun)
	_, _, finishLoad := StartStage(ctx, p.Tracer(), SpanLoad, attribute.String(AttrInputPath, "in.xlsx"))
	finishLoad(errors.New("missing sheet"))
	finishRun(nil)

	spans := exp.GetSpans()
	require.Len(t, spans, 2)

	load := spans[0]
	require.Equal(t, SpanLoad, load.Name)
	require.Equal(t, codes.Error, load.Status.Code)
	require.Equal(t, "missing sheet", load.Status.Description)
	require.Contains(t, load.Attributes, attribute.String(AttrInputPath, "in.xlsx"))
	require.Equal(t, spans[1].SpanContext.SpanID(), load.Parent.SpanID())

	require.Equal(t, SpanRun, spans[1].Name)
	require.Equal(t, codes.Ok, spans[1].Status.Code)
}

func TestFileExporter_WritesJSONL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "traces.jsonl")
	exp, err := NewFileExporter(path)
	require.NoError(t, err)

	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	stub := tracetest.SpanStub{
		Name:       SpanAggregate,
		StartTime:  start,
		EndTime:    start.Add(1500 * time.Microsecond),
		Attributes: []attribute.KeyValue{attribute.Int(AttrProviderCount, 4)},
		Status:     sdktrace.Status{Code: codes.Ok},
	}
	require.NoError(t, exp.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot(), stub.Snapshot()}))
	require.NoError(t, exp.Shutdown(context.Background()))
	require.NoError(t, exp.Shutdown(context.Background()))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	var lines []SpanLine
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var l SpanLine
		require.NoError(t, json.Unmarshal(sc.Bytes(), &l))
		lines = append(lines, l)
	}
	require.Len(t, lines, 2)
	require.Equal(t, SpanAggregate, lines[0].Name)
	require.Equal(t, "OK", lines[0].Status)
	require.Equal(t, 1.5, lines[0].DurationMs)
	require.Equal(t, float64(4), lines[0].Attributes[AttrProviderCount])
}

func TestFileExporter_ExportAfterShutdown(t *testing.T) {
	exp, err := NewFileExporter(filepath.Join(t.TempDir(), "t.jsonl"))
	require.NoError(t, err)
	require.NoError(t, exp.Shutdown(context.Background()))

	stub := tracetest.SpanStub{Name: "late"}
	require.Error(t, exp.ExportSpans(context.Background(), []sdktrace.ReadOnlySpan{stub.Snapshot()}))
}
