// Package mocks provides mock implementations for testing.
package mocks

import (
	"fmt"

	"github.com/ersonp/lineage/internal/domain/entities"
)

// GraphStore is a mock implementation of ports.GraphStore.
// Unlike the real store it performs no validation, so tests can feed it
// malformed data.
type GraphStore struct {
	People []entities.Person
	Rels   []entities.Relationship

	// AddErr is returned by AddEdge and AddEdges when set.
	AddErr error
	// AddErrAt limits AddErr to the edge at this 1-based position of an
	// AddEdges batch. Zero fails every call.
	AddErrAt int

	// Call tracking
	AddEdgeCallCount  int
	AddEdgesCallCount int
}

// NewGraphStore creates a mock store over the given data.
func NewGraphStore(people []entities.Person, rels []entities.Relationship) *GraphStore {
	return &GraphStore{People: people, Rels: rels}
}

// GetNode returns the person with the given id.
func (m *GraphStore) GetNode(id string) (*entities.Person, error) {
	for i := range m.People {
		if m.People[i].ID == id {
			p := m.People[i]
			return &p, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", entities.ErrPersonNotFound, id)
}

// Nodes returns all people.
func (m *GraphStore) Nodes() []entities.Person {
	return append([]entities.Person(nil), m.People...)
}

// Edges returns all edges.
func (m *GraphStore) Edges() []entities.Relationship {
	return append([]entities.Relationship(nil), m.Rels...)
}

// EdgesOfType returns edges of the given type.
func (m *GraphStore) EdgesOfType(relType entities.RelationType) []entities.Relationship {
	var out []entities.Relationship
	for _, rel := range m.Rels {
		if rel.Type == relType {
			out = append(out, rel)
		}
	}
	return out
}

// AddEdge appends the edge or returns AddErr.
func (m *GraphStore) AddEdge(rel entities.Relationship) error {
	m.AddEdgeCallCount++
	if m.AddErr != nil {
		return m.AddErr
	}
	m.Rels = append(m.Rels, rel)
	return nil
}

// AddEdges appends the batch, or nothing when AddErr applies to any edge.
func (m *GraphStore) AddEdges(rels []entities.Relationship) error {
	m.AddEdgesCallCount++
	if m.AddErr != nil && (m.AddErrAt == 0 || m.AddErrAt <= len(rels)) {
		return m.AddErr
	}
	m.Rels = append(m.Rels, rels...)
	return nil
}
