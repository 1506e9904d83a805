package output

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOutput_InfoHidesDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, false)
	t.Cleanup(func() { SetOutput(os.Stderr, false) })

	Debug("hidden-msg")
	Info("shown-msg", "pages", 3)

	out := buf.String()
	assert.NotContains(t, out, "hidden-msg")
	assert.Contains(t, out, "shown-msg")
	assert.Contains(t, out, "pages=3")
}

func TestSetOutput_DebugEnablesDebugLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, true)
	t.Cleanup(func() { SetOutput(os.Stderr, false) })

	Debug("verbose-msg")
	assert.Contains(t, buf.String(), "verbose-msg")
}

func TestWarn_WritesLevel(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, false)
	t.Cleanup(func() { SetOutput(os.Stderr, false) })

	Warn("disk full", "path", "public/techdocs_metadata.json")
	assert.Contains(t, buf.String(), "WARN")
	assert.Contains(t, buf.String(), "disk full")
}

func TestLogger_Prefix(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, false)
	t.Cleanup(func() { SetOutput(os.Stderr, false) })

	Error("rebuild failed")
	assert.Contains(t, buf.String(), "nibl")
	assert.Contains(t, buf.String(), "rebuild failed")
}

func TestHint_PrintsLinesVerbatim(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf, false)
	t.Cleanup(func() {
		SetOutput(os.Stderr, false)
		hintWriter = os.Stdout
	})

	Hint("first", "  second")
	assert.Equal(t, "first\n  second\n", buf.String())
}
