package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redactyl/lss/internal/types"
)

type sarifDoc struct {
	Version string `json:"version"`
	Runs    []struct {
		Tool struct {
			Driver struct {
				Name  string `json:"name"`
				Rules []struct {
					ID string `json:"id"`
				} `json:"rules"`
			} `json:"driver"`
		} `json:"tool"`
		Results []struct {
			RuleID    string `json:"ruleId"`
			RuleIndex int    `json:"ruleIndex"`
			Level     string `json:"level"`
			Locations []struct {
				PhysicalLocation struct {
					ArtifactLocation struct {
						URI string `json:"uri"`
					} `json:"artifactLocation"`
					Region struct {
						StartLine int `json:"startLine"`
					} `json:"region"`
				} `json:"physicalLocation"`
			} `json:"locations"`
			Properties map[string]any `json:"properties"`
		} `json:"results"`
	} `json:"runs"`
}

func TestWriteSARIF(t *testing.T) {
	fs := sampleFindings()
	fs = append(fs, types.Finding{
		Location:     types.Location{Path: "c.txt", Line: 2},
		Snippet:      "pk_test_x",
		MatchedRules: []string{"AWS Access Key ID"},
		Confidence:   0.2,
	})
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, fs, "test"))

	var doc sarifDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "2.1.0", doc.Version)
	require.Len(t, doc.Runs, 1)
	run := doc.Runs[0]
	assert.Equal(t, "lss", run.Tool.Driver.Name)
	require.Len(t, run.Tool.Driver.Rules, 2)
	require.Len(t, run.Results, 3)

	assert.Equal(t, "error", run.Results[0].Level)
	assert.Equal(t, "warning", run.Results[1].Level)
	assert.Equal(t, "note", run.Results[2].Level)

	assert.Equal(t, "T1", run.Results[1].RuleID)
	assert.Equal(t, 1, run.Results[1].RuleIndex)
	assert.Equal(t, 0, run.Results[2].RuleIndex)

	hist := run.Results[1]
	assert.Equal(t, "svc/b.txt", hist.Locations[0].PhysicalLocation.ArtifactLocation.URI)
	assert.Equal(t, 4, hist.Locations[0].PhysicalLocation.Region.StartLine)
	assert.Equal(t, "0123456789abcdef0123", hist.Properties["commit"])
}

func TestWriteSARIF_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteSARIF(&buf, nil, "test"))
	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))
	runs := doc["runs"].([]any)
	run := runs[0].(map[string]any)
	assert.Equal(t, []any{}, run["results"])
}
