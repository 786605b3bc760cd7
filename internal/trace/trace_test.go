package trace

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoAlwaysLogged(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, false)

	log.Info("connected", "host", "c.example.com")

	out := buf.String()
	assert.Contains(t, out, "connected")
	assert.Contains(t, out, "c.example.com")
}

func TestDebugSuppressedWithoutFlag(t *testing.T) {
	var buf bytes.Buffer

	log := NewWithWriter(&buf, false)
	log.Request("GET", "/controller/rest/applications")
	assert.Empty(t, buf.String())

	log = NewWithWriter(&buf, true)
	log.Request("GET", "/controller/rest/applications")
	assert.Contains(t, buf.String(), "/controller/rest/applications")
}

func TestAttachSinkReceivesLines(t *testing.T) {
	var lines []string
	log := NewWithWriter(&bytes.Buffer{}, false)
	log.AttachSink(func(line string) { lines = append(lines, line) })

	log.Info("run complete", "errors", 0)
	log.Warn("category failed", "app", "shop")

	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "run complete")
	assert.Contains(t, lines[1], "shop")
}

func TestResponseTracesTiming(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(&buf, true)

	log.Response("GET", "/controller/rest/applications", 200, 120*time.Millisecond, 512)

	out := buf.String()
	assert.Contains(t, out, "200")
	assert.True(t, strings.Contains(out, "120ms"))
}

func TestNopDiscards(t *testing.T) {
	log := Nop()
	log.Info("nothing to see")
	log.Error("still nothing")
}
