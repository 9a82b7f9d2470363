package log

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func useBuffer(t *testing.T, min Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	InitWriter(&buf, min)
	current().now = func() time.Time { return time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC) }
	t.Cleanup(Reset)
	return &buf
}

func TestLog_DisabledUntilInit(t *testing.T) {
	Reset()
	require.NotPanics(t, func() {
		Info(CatLoader, "nothing happens")
	})
}

func TestLog_FormatsFields(t *testing.T) {
	buf := useBuffer(t, LevelDebug)

	Warn(CatLoader, "skipped row", "row", 12, "sheet", "Domain count")

	require.Equal(t, "2025-03-01T09:30:00 [WARN] [loader] skipped row row=12 sheet=\"Domain count\"\n", buf.String())
}

func TestLog_OddFieldCount(t *testing.T) {
	buf := useBuffer(t, LevelDebug)

	Info(CatPipeline, "stage done", "stage")

	require.Contains(t, buf.String(), "stage=<missing>")
}

func TestLog_MinLevelFilters(t *testing.T) {
	buf := useBuffer(t, LevelWarn)

	Debug(CatClassify, "hidden")
	Info(CatClassify, "hidden too")
	Error(CatClassify, "shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "[ERROR] [classify] shown")

	SetMinLevel(LevelDebug)
	Debug(CatClassify, "now visible")
	require.Contains(t, buf.String(), "now visible")
}

func TestLog_SetEnabled(t *testing.T) {
	buf := useBuffer(t, LevelDebug)

	SetEnabled(false)
	Info(CatUI, "muted")
	SetEnabled(true)
	Info(CatUI, "audible")

	require.NotContains(t, buf.String(), "muted")
	require.Contains(t, buf.String(), "audible")
}

func TestLog_ErrorErr(t *testing.T) {
	buf := useBuffer(t, LevelDebug)

	ErrorErr(CatStore, "insert failed", errors.New("disk full"), "run", "abc")
	ErrorErr(CatStore, "odd", nil)

	require.Contains(t, buf.String(), "run=abc error=\"disk full\"")
	require.Contains(t, buf.String(), "error=<nil>")
}

func TestInit_AppendsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")

	cleanup, err := Init(path)
	require.NoError(t, err)
	Info(CatConfig, "loaded")
	cleanup()
	Reset()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "[INFO] [config] loaded")
}

func TestParseLevel(t *testing.T) {
	require.Equal(t, LevelDebug, ParseLevel("DEBUG"))
	require.Equal(t, LevelWarn, ParseLevel("warning"))
	require.Equal(t, LevelError, ParseLevel(" error "))
	require.Equal(t, LevelInfo, ParseLevel("whatever"))
}
