package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf})
	log.Debug("hidden")
	log.Warn("shown", zap.String("unit", "a.txt"))
	_ = log.Sync()
	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "WARN")
	assert.Contains(t, out, "a.txt")

	buf.Reset()
	log = New(Options{Output: &buf, Verbose: true})
	log.Debug("visible")
	_ = log.Sync()
	assert.Contains(t, buf.String(), "visible")

	buf.Reset()
	log = New(Options{Output: &buf, Quiet: true})
	log.Warn("suppressed")
	_ = log.Sync()
	assert.Empty(t, buf.String())
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf, Format: "json"})
	log.Info("scan finished", zap.Int("findings", 3))
	_ = log.Sync()

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &entry))
	assert.Equal(t, "scan finished", entry["msg"])
	assert.Equal(t, float64(3), entry["findings"])
	assert.Contains(t, entry, "ts")
}
