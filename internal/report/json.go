package report

import (
	"encoding/json"
	"io"

	"github.com/redactyl/lss/internal/types"
)

// WriteJSON writes findings as an indented JSON array. An empty result is
// written as [] rather than null.
func WriteJSON(w io.Writer, findings []types.Finding) error {
	if findings == nil {
		findings = []types.Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(findings)
}
