package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactyl/lss/internal/types"
)

func sampleFindings() []types.Finding {
	return []types.Finding{
		{
			Location:     types.Location{Path: "a.txt", Line: 1},
			Snippet:      "key = AKIA1234567890ABCDEF",
			MatchedRules: []string{"AWS Access Key ID"},
			Confidence:   0.9,
			Entropy:      3.81,
			Tags:         []string{"aws", "cloud"},
		},
		{
			Location:     types.Location{Path: "b.txt", Line: 4, Repo: "svc", Commit: "0123456789abcdef0123"},
			Snippet:      "token = tok_abc",
			MatchedRules: []string{"T1", "T2"},
			Confidence:   0.75,
			Entropy:      3.2,
			Tags:         []string{},
		},
	}
}

func TestFormatLine(t *testing.T) {
	fs := sampleFindings()
	assert.Equal(t,
		"a.txt:1: key = AKIA1234567890ABCDEF [AWS Access Key ID] tags=aws,cloud conf=0.90 entropy=3.81",
		FormatLine(fs[0], true))
	assert.Equal(t,
		"svc::0123456789abcdef0123::b.txt:4: token = tok_abc [T1, T2] conf=0.75 entropy=3.20",
		FormatLine(fs[1], true))
	assert.Contains(t, FormatLine(fs[0], false), "\x1b[31m0.90\x1b[0m")
}

func TestPrintText_NoFindings_ShowsFooter(t *testing.T) {
	var buf bytes.Buffer
	PrintText(&buf, nil, PrintOptions{Duration: 1200 * time.Millisecond, FilesScanned: 10})
	out := buf.String()
	assert.Contains(t, out, "No secrets found")
	assert.Contains(t, out, "Files scanned: 10")
	assert.Contains(t, out, "Scan duration: 1.20s")
}

func TestPrintText_WithFindings(t *testing.T) {
	var buf bytes.Buffer
	PrintText(&buf, sampleFindings(), PrintOptions{NoColor: true, ReposScanned: 1, CommitsScanned: 3, Warnings: 2, FilesScanned: 2})
	out := buf.String()
	assert.Contains(t, out, "Found 2 potential secrets")
	assert.Contains(t, out, "Findings: 2 (high: 1, medium: 1, low: 0)")
	assert.Contains(t, out, "Repositories scanned: 1 (3 commits)")
	assert.Contains(t, out, "Skipped with warnings: 2")
	assert.NotContains(t, out, "\x1b[")
}

func TestPrintTable_WithFindings(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, sampleFindings(), PrintOptions{NoColor: true}))
	out := buf.String()
	assert.Contains(t, out, "LOCATION")
	assert.Contains(t, out, "AWS Access Key ID")
	assert.Contains(t, out, "svc/b.txt:4")
	assert.Contains(t, out, "0123456789ab")
	assert.Contains(t, out, "Found 2 potential secrets")
}

func TestPrintTable_NoFindings_ShowsFooter(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, PrintTable(&buf, nil, PrintOptions{Duration: 1200 * time.Millisecond, FilesScanned: 10}))
	out := buf.String()
	assert.Contains(t, out, "No secrets found")
	assert.Contains(t, out, "Files scanned: 10")
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, nil))
	assert.Equal(t, "[]", strings.TrimSpace(buf.String()))

	buf.Reset()
	require.NoError(t, WriteJSON(&buf, sampleFindings()))
	var got []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 2)
	loc := got[0]["location"].(map[string]any)
	assert.Equal(t, "a.txt", loc["path"])
	assert.Equal(t, float64(1), loc["line"])
	assert.NotContains(t, loc, "commit")
	assert.Equal(t, 0.9, got[0]["combined_confidence"])
	assert.Equal(t, []any{"AWS Access Key ID"}, got[0]["matched_rules"])

	hist := got[1]["location"].(map[string]any)
	assert.Equal(t, "svc", hist["repo"])
	assert.Equal(t, []any{}, got[1]["tags"])
}

func TestLevel(t *testing.T) {
	assert.Equal(t, "high", Level(0.8))
	assert.Equal(t, "medium", Level(0.5))
	assert.Equal(t, "low", Level(0.49))
}
