// Package parsers reads family datasets from JSON and YAML files.
package parsers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FlexID is a person id that may be written as a string or a number.
type FlexID string

// UnmarshalJSON accepts "7" and 7 alike.
func (id *FlexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = FlexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = FlexID(n.String())
	return nil
}

// UnmarshalYAML accepts any scalar.
func (id *FlexID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a scalar", value.Line)
	}
	*id = FlexID(value.Value)
	return nil
}

// RawDate is a partial date as written in a dataset file.
type RawDate struct {
	Day   *int `json:"day,omitempty" yaml:"day,omitempty" validate:"omitempty,min=1,max=31"`
	Month *int `json:"month,omitempty" yaml:"month,omitempty" validate:"omitempty,min=1,max=12"`
	Year  *int `json:"year,omitempty" yaml:"year,omitempty"`
}

// RawPerson is a node record before validation.
type RawPerson struct {
	ID          FlexID   `json:"id" yaml:"id" validate:"required"`
	Name        string   `json:"name" yaml:"name" validate:"required"`
	Surname     string   `json:"surname,omitempty" yaml:"surname,omitempty"`
	Gender      string   `json:"gender,omitempty" yaml:"gender,omitempty"`
	DateOfBirth *RawDate `json:"dateOfBirth,omitempty" yaml:"dateOfBirth,omitempty" validate:"omitempty"`
	DateOfDeath *RawDate `json:"dateOfDeath,omitempty" yaml:"dateOfDeath,omitempty" validate:"omitempty"`
}

// RawRelationship is an edge record before validation.
type RawRelationship struct {
	Source FlexID `json:"source" yaml:"source" validate:"required"`
	Target FlexID `json:"target" yaml:"target" validate:"required,nefield=Source"`
	Type   string `json:"type" yaml:"type" validate:"required"`
}

// RawDataset is a parsed dataset file. Edges is accepted as an alias of Links.
type RawDataset struct {
	Nodes []RawPerson       `json:"nodes" yaml:"nodes"`
	Links []RawRelationship `json:"links" yaml:"links"`
	Edges []RawRelationship `json:"edges,omitempty" yaml:"edges,omitempty"`
}

// Relationships returns links followed by edges.
func (d *RawDataset) Relationships() []RawRelationship {
	if len(d.Edges) == 0 {
		return d.Links
	}
	return append(append([]RawRelationship{}, d.Links...), d.Edges...)
}

// Parser defines the interface for parsing datasets from various formats.
type Parser interface {
	Parse(r io.Reader) (*RawDataset, error)
}

// ForFormat returns the appropriate parser for the given format.
// Supported formats: "json", "yaml".
func ForFormat(format string) Parser {
	switch strings.ToLower(format) {
	case "json":
		return &JSONParser{}
	case "yaml", "yml":
		return &YAMLParser{}
	default:
		return nil
	}
}

// ForFile returns the appropriate parser based on file extension.
func ForFile(filename string) Parser {
	ext := strings.ToLower(filepath.Ext(filename))
	return ForFormat(strings.TrimPrefix(ext, "."))
}
