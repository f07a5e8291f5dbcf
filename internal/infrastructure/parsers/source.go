package parsers

import (
	"context"
	"fmt"
	"os"

	"github.com/ersonp/lineage/internal/domain/ports"
)

// FileSource loads a dataset from a JSON or YAML file.
type FileSource struct {
	path   string
	parser Parser
}

// NewFileSource creates a FileSource. An empty or "auto" format is resolved
// from the file extension.
func NewFileSource(path, format string) (*FileSource, error) {
	if path == "" {
		return nil, fmt.Errorf("dataset path is required")
	}

	var parser Parser
	if format == "" || format == "auto" {
		parser = ForFile(path)
	} else {
		parser = ForFormat(format)
	}
	if parser == nil {
		return nil, fmt.Errorf("no parser for %q (format %q)", path, format)
	}

	return &FileSource{path: path, parser: parser}, nil
}

// Describe returns the file path.
func (s *FileSource) Describe() string {
	return s.path
}

// Path returns the file path.
func (s *FileSource) Path() string {
	return s.path
}

// LoadRaw parses the file without validating records.
func (s *FileSource) LoadRaw(_ context.Context) (*RawDataset, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening dataset: %w", err)
	}
	defer f.Close()

	raw, err := s.parser.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return raw, nil
}

// Load parses and validates the file. Any invalid record fails the load.
func (s *FileSource) Load(ctx context.Context) (*ports.Dataset, error) {
	raw, err := s.LoadRaw(ctx)
	if err != nil {
		return nil, err
	}

	ds, recordErrs := Convert(raw)
	if err := JoinRecordErrors(recordErrs); err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	return ds, nil
}
