package parsers

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLParser parses datasets from YAML format.
type YAMLParser struct{}

// Parse reads a YAML document with nodes and links sequences.
// An empty document yields an empty dataset.
func (p *YAMLParser) Parse(r io.Reader) (*RawDataset, error) {
	var ds RawDataset

	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&ds); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing YAML: %w", err)
	}

	return &ds, nil
}
