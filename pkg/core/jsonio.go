package core

import (
	"encoding/json"
	"io"
)

// MarshalFindings pretty-prints findings as JSON. A nil slice is written as [].
func MarshalFindings(w io.Writer, findings []Finding) error {
	if findings == nil {
		findings = []Finding{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(findings)
}

// UnmarshalFindings decodes findings JSON as written by MarshalFindings or
// the CLI's json format.
func UnmarshalFindings(r io.Reader) ([]Finding, error) {
	var fs []Finding
	if err := json.NewDecoder(r).Decode(&fs); err != nil {
		return nil, err
	}
	return fs, nil
}
