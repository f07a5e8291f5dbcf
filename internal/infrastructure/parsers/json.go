package parsers

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONParser parses datasets from JSON format.
type JSONParser struct{}

// Parse reads a {"nodes": [...], "links": [...]} document.
func (p *JSONParser) Parse(r io.Reader) (*RawDataset, error) {
	var ds RawDataset

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&ds); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	return &ds, nil
}
