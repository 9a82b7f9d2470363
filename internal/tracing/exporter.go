package tracing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// FileExporter appends finished spans to a JSONL file, one span per line.
type FileExporter struct {
	mu sync.Mutex
	w  io.WriteCloser
}

// NewFileExporter opens path for appending, creating parent directories.
func NewFileExporter(path string) (*FileExporter, error) {
	clean := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(clean), 0750); err != nil {
		return nil, fmt.Errorf("create trace directory: %w", err)
	}
	f, err := os.OpenFile(clean, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600) // #nosec G304 -- path is cleaned above
	if err != nil {
		return nil, fmt.Errorf("open trace file: %w", err)
	}
	return &FileExporter{w: f}, nil
}

// ExportSpans implements sdktrace.SpanExporter.
func (e *FileExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.w == nil {
		return fmt.Errorf("trace exporter is shut down")
	}
	enc := json.NewEncoder(e.w)
	for _, s := range spans {
		if err := enc.Encode(newSpanLine(s)); err != nil {
			return fmt.Errorf("encode span: %w", err)
		}
	}
	return nil
}

// Shutdown implements sdktrace.SpanExporter. It is safe to call twice.
func (e *FileExporter) Shutdown(context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.w == nil {
		return nil
	}
	err := e.w.Close()
	e.w = nil
	return err
}

// SpanLine is one line of the JSONL trace file.
type SpanLine struct {
	TraceID    string         `json:"trace_id"`
	SpanID     string         `json:"span_id"`
	ParentID   string         `json:"parent_span_id,omitempty"`
	Name       string         `json:"name"`
	Start      string         `json:"start_time"`
	DurationMs float64        `json:"duration_ms"`
	Status     string         `json:"status"`
	Message    string         `json:"status_message,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Events     []string       `json:"events,omitempty"`
}

func newSpanLine(s sdktrace.ReadOnlySpan) SpanLine {
	line := SpanLine{
		TraceID:    s.SpanContext().TraceID().String(),
		SpanID:     s.SpanContext().SpanID().String(),
		Name:       s.Name(),
		Start:      s.StartTime().Format(time.RFC3339Nano),
		DurationMs: float64(s.EndTime().Sub(s.StartTime()).Microseconds()) / 1000.0,
		Status:     "UNSET",
		Message:    s.Status().Description,
	}
	if s.Parent().IsValid() {
		line.ParentID = s.Parent().SpanID().String()
	}
	switch s.Status().Code {
	case codes.Ok:
		line.Status = "OK"
	case codes.Error:
		line.Status = "ERROR"
	}
	if attrs := s.Attributes(); len(attrs) > 0 {
		line.Attributes = make(map[string]any, len(attrs))
		for _, kv := range attrs {
			line.Attributes[string(kv.Key)] = kv.Value.AsInterface()
		}
	}
	for _, ev := range s.Events() {
		line.Events = append(line.Events, ev.Name)
	}
	return line
}
