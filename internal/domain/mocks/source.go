package mocks

import (
	"context"

	"github.com/ersonp/lineage/internal/domain/ports"
)

// Source is a mock implementation of ports.Source.
type Source struct {
	Dataset *ports.Dataset
	Err     error
	Name    string

	// Call tracking
	LoadCallCount int
}

// Load returns a copy of the configured dataset or error.
func (m *Source) Load(_ context.Context) (*ports.Dataset, error) {
	m.LoadCallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Dataset == nil {
		return &ports.Dataset{}, nil
	}
	ds := &ports.Dataset{
		People:        append(m.Dataset.People[:0:0], m.Dataset.People...),
		Relationships: append(m.Dataset.Relationships[:0:0], m.Dataset.Relationships...),
	}
	return ds, nil
}

// Describe returns the configured name.
func (m *Source) Describe() string {
	if m.Name == "" {
		return "mock"
	}
	return m.Name
}
