// Package log provides structured logging for rdapgw.
// Entries carry a level, a category and key=value fields. Logging is off until
// one of the Init functions runs, so library code can log unconditionally.
package log

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Level represents log severity.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps a level name to a Level. Unknown names fall back to info.
func ParseLevel(s string) Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Category groups related log messages.
type Category string

const (
	CatLoader    Category = "loader"    // Workbook and enrichment parsing
	CatClassify  Category = "classify"  // Provider classification
	CatEnrich    Category = "enrich"    // Enrichment merge
	CatAggregate Category = "aggregate" // Provider statistics
	CatPipeline  Category = "pipeline"  // Stage orchestration
	CatOutput    Category = "output"    // JSON/CSV/markdown artifacts
	CatConfig    Category = "config"    // Configuration loading/saving
	CatUI        Category = "ui"        // Browser updates
	CatStore     Category = "store"     // Snapshot database
	CatCache     Category = "cache"     // Query cache
	CatWatcher   Category = "watcher"   // File watcher events
)

// Logger provides structured logging.
type Logger struct {
	mu       sync.Mutex
	closer   io.Closer
	writer   io.Writer
	enabled  bool
	minLevel Level
	now      func() time.Time
}

var (
	defaultMu     sync.Mutex
	defaultLogger *Logger
)

// Init opens (or appends to) the log file at path and makes it the global
// logger. The returned function closes the file.
func Init(path string) (func(), error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644) //nolint:gosec // G304: debug log path comes from the user
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	install(&Logger{closer: f, writer: f, enabled: true, minLevel: LevelDebug, now: time.Now})
	return func() { _ = f.Close() }, nil
}

// InitWithTeaLog uses tea.LogToFile so log output does not fight the
// terminal UI for stdout.
func InitWithTeaLog(path string, prefix string) (func(), error) {
	f, err := tea.LogToFile(path, prefix)
	if err != nil {
		return nil, err
	}
	install(&Logger{closer: f, writer: f, enabled: true, minLevel: LevelDebug, now: time.Now})
	return func() { _ = f.Close() }, nil
}

// InitWriter logs to an arbitrary writer, typically stderr for --verbose runs
// or a buffer in tests.
func InitWriter(w io.Writer, minLevel Level) {
	install(&Logger{writer: w, enabled: true, minLevel: minLevel, now: time.Now})
}

// Reset disables the global logger.
func Reset() {
	install(nil)
}

func install(l *Logger) {
	defaultMu.Lock()
	defaultLogger = l
	defaultMu.Unlock()
}

func current() *Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	return defaultLogger
}

// SetEnabled toggles logging on/off.
func SetEnabled(enabled bool) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.enabled = enabled
		l.mu.Unlock()
	}
}

// SetMinLevel sets the minimum log level.
func SetMinLevel(level Level) {
	if l := current(); l != nil {
		l.mu.Lock()
		l.minLevel = level
		l.mu.Unlock()
	}
}

// Debug logs at debug level.
func Debug(cat Category, msg string, fields ...any) {
	log(LevelDebug, cat, msg, fields...)
}

// Info logs at info level.
func Info(cat Category, msg string, fields ...any) {
	log(LevelInfo, cat, msg, fields...)
}

// Warn logs at warning level.
func Warn(cat Category, msg string, fields ...any) {
	log(LevelWarn, cat, msg, fields...)
}

// Error logs at error level.
func Error(cat Category, msg string, fields ...any) {
	log(LevelError, cat, msg, fields...)
}

// ErrorErr logs an error with the error value.
func ErrorErr(cat Category, msg string, err error, fields ...any) {
	if err != nil {
		fields = append(fields, "error", err.Error())
	} else {
		fields = append(fields, "error", "<nil>")
	}
	log(LevelError, cat, msg, fields...)
}

func log(level Level, cat Category, msg string, fields ...any) {
	l := current()
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled || level < l.minLevel || l.writer == nil {
		return
	}

	// Format: 2025-12-06T10:45:00 [WARN] [loader] message key=value key2=value2
	var b strings.Builder
	b.WriteString(l.now().Format("2006-01-02T15:04:05"))
	fmt.Fprintf(&b, " [%s] [%s] %s", level, cat, msg)

	for i := 0; i+1 < len(fields); i += 2 {
		fmt.Fprintf(&b, " %v=%v", fields[i], quoteIfNeeded(fields[i+1]))
	}
	// Odd field count: keep the orphan key visible
	if len(fields)%2 != 0 {
		fmt.Fprintf(&b, " %v=<missing>", fields[len(fields)-1])
	}
	b.WriteByte('\n')

	_, _ = io.WriteString(l.writer, b.String())
}

// quoteIfNeeded quotes string values containing spaces so lines stay greppable.
func quoteIfNeeded(v any) any {
	s, ok := v.(string)
	if !ok || !strings.ContainsAny(s, " \t\"") {
		return v
	}
	return fmt.Sprintf("%q", s)
}
