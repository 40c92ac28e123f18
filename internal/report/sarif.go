package report

import (
	"encoding/json"
	"io"
	"strconv"

	"github.com/redactyl/lss/internal/types"
)

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifResult struct {
	RuleID              string            `json:"ruleId"`
	RuleIndex           int               `json:"ruleIndex"`
	Level               string            `json:"level"`
	Message             sarifMessage      `json:"message"`
	Locations           []sarifLoc        `json:"locations"`
	PartialFingerprints map[string]string `json:"partialFingerprints,omitempty"`
	Properties          map[string]any    `json:"properties,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

// SARIFLevel maps a combined confidence to a SARIF result level.
func SARIFLevel(confidence float64) string {
	switch Level(confidence) {
	case "high":
		return "error"
	case "medium":
		return "warning"
	default:
		return "note"
	}
}

// WriteSARIF writes findings as SARIF 2.1.0. Each result is keyed by the
// first matched rule.
func WriteSARIF(w io.Writer, findings []types.Finding, toolVersion string) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: "lss", Version: toolVersion, Rules: []sarifRule{}}},
		Results: []sarifResult{},
	}
	index := map[string]int{}
	for _, f := range findings {
		if len(f.MatchedRules) == 0 {
			continue
		}
		id := f.MatchedRules[0]
		idx, ok := index[id]
		if !ok {
			idx = len(run.Tool.Driver.Rules)
			index[id] = idx
			run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{ID: id, ShortDescription: sarifMessage{Text: id}})
		}
		uri := f.Location.Path
		if f.Location.Repo != "" && f.Location.Repo != "." {
			uri = f.Location.Repo + "/" + f.Location.Path
		}
		props := map[string]any{
			"matchedRules": f.MatchedRules,
			"tags":         f.Tags,
			"confidence":   f.Confidence,
			"entropy":      f.Entropy,
		}
		if f.Location.IsHistory() {
			props["commit"] = f.Location.Commit
			props["repository"] = f.Location.Repo
		}
		run.Results = append(run.Results, sarifResult{
			RuleID:    id,
			RuleIndex: idx,
			Level:     SARIFLevel(f.Confidence),
			Message:   sarifMessage{Text: id + " detected"},
			Locations: []sarifLoc{{
				PhysicalLocation: sarifPhys{
					ArtifactLocation: sarifArt{URI: uri},
					Region:           sarifRegion{StartLine: f.Location.Line},
				},
			}},
			PartialFingerprints: map[string]string{"lss/v1": strconv.FormatUint(f.Fingerprint(), 16)},
			Properties:          props,
		})
	}
	doc := sarif{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
