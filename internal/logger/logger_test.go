package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func capture(t *testing.T, verbose bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verbose)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Debug("test message %s", "arg")

	assert.Equal(t, "[DEBUG] test message arg\n", buf.String())
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	buf := capture(t, false)

	Debug("test message")
	Info("info")
	Warn("warn")

	assert.Empty(t, buf.String())
}

func TestInfoAndWarn_WhenVerbose(t *testing.T) {
	buf := capture(t, true)

	Info("loaded %d files", 3)
	Warn("tree truncated")

	assert.Equal(t, "[INFO] loaded 3 files\n[WARN] tree truncated\n", buf.String())
}

func TestError_AlwaysWritten(t *testing.T) {
	buf := capture(t, false)

	Error("worker panic: %v", "boom")

	assert.Equal(t, "[ERROR] worker panic: boom\n", buf.String())
}

func TestSection(t *testing.T) {
	buf := capture(t, true)
	Section("Explorer")
	assert.Equal(t, "\n=== Explorer ===\n", buf.String())

	buf.Reset()
	SetVerbose(false)
	Section("Explorer")
	assert.Empty(t, buf.String())
}

func TestWithField(t *testing.T) {
	buf := capture(t, true)

	WithField("path", "a.md").WithField("phase", "ready").Debug("settled")

	assert.Equal(t, "[DEBUG] settled path=a.md phase=ready\n", buf.String())
}
