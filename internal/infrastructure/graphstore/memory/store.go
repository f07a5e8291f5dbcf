// Package memory provides the in-memory implementation of ports.GraphStore.
package memory

import (
	"fmt"

	"github.com/ersonp/lineage/internal/domain/entities"
)

// Store keeps people and edges in insertion-ordered slices with id and type
// indexes pointing into them.
type Store struct {
	people []entities.Person
	byID   map[string]int
	byName map[string][]int

	edges  []entities.Relationship
	byType map[entities.RelationType][]int
}

// NewStore indexes a dataset, failing fast on duplicate ids, unknown relation
// types and dangling references.
func NewStore(people []entities.Person, relationships []entities.Relationship) (*Store, error) {
	s := &Store{
		people: make([]entities.Person, 0, len(people)),
		byID:   make(map[string]int, len(people)),
		byName: make(map[string][]int, len(people)),
		edges:  make([]entities.Relationship, 0, len(relationships)),
		byType: make(map[entities.RelationType][]int, len(entities.RelationTypes)),
	}

	for i := range people {
		if err := s.addPerson(people[i]); err != nil {
			return nil, err
		}
	}

	for i := range relationships {
		if err := s.AddEdge(relationships[i]); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}

	return s, nil
}

func (s *Store) addPerson(p entities.Person) error {
	if p.ID == "" {
		return fmt.Errorf("%w: person %q has an empty id", entities.ErrInvalidDataset, p.Name)
	}
	if _, exists := s.byID[p.ID]; exists {
		return fmt.Errorf("%w: duplicate person id %s", entities.ErrInvalidDataset, p.ID)
	}
	if p.Gender == "" {
		p.Gender = entities.GenderUnknown
	}

	idx := len(s.people)
	s.people = append(s.people, p)
	s.byID[p.ID] = idx

	for _, key := range nameKeys(&p) {
		s.byName[key] = append(s.byName[key], idx)
	}
	return nil
}

// nameKeys returns the normalized keys a person can be found by.
func nameKeys(p *entities.Person) []string {
	name := entities.NormalizeName(p.Name)
	full := entities.NormalizeName(p.FullName())
	if name == "" {
		return nil
	}
	if full == name {
		return []string{name}
	}
	return []string{name, full}
}

// GetNode returns the person with the given id.
func (s *Store) GetNode(id string) (*entities.Person, error) {
	idx, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", entities.ErrPersonNotFound, id)
	}
	p := s.people[idx]
	return &p, nil
}

// Nodes returns all people in insertion order.
func (s *Store) Nodes() []entities.Person {
	out := make([]entities.Person, len(s.people))
	copy(out, s.people)
	return out
}

// FindByName returns people whose given name or full name matches,
// case-insensitively, in insertion order.
func (s *Store) FindByName(name string) []entities.Person {
	idxs := s.byName[entities.NormalizeName(name)]
	out := make([]entities.Person, 0, len(idxs))
	for _, idx := range idxs {
		out = append(out, s.people[idx])
	}
	return out
}

// Edges returns every edge in insertion order.
func (s *Store) Edges() []entities.Relationship {
	out := make([]entities.Relationship, len(s.edges))
	copy(out, s.edges)
	return out
}

// EdgesOfType returns the edges of one type in insertion order.
func (s *Store) EdgesOfType(relType entities.RelationType) []entities.Relationship {
	idxs := s.byType[relType]
	out := make([]entities.Relationship, 0, len(idxs))
	for _, idx := range idxs {
		out = append(out, s.edges[idx])
	}
	return out
}

// AddEdge appends an edge after checking its type and endpoints.
// Duplicates are accepted; deduplication belongs to the derivation.
func (s *Store) AddEdge(rel entities.Relationship) error {
	if err := s.checkEdge(rel); err != nil {
		return err
	}
	s.appendEdge(rel)
	return nil
}

// AddEdges checks every edge before appending any of them.
func (s *Store) AddEdges(rels []entities.Relationship) error {
	for i := range rels {
		if err := s.checkEdge(rels[i]); err != nil {
			return fmt.Errorf("edge %d of %d: %w", i+1, len(rels), err)
		}
	}
	for i := range rels {
		s.appendEdge(rels[i])
	}
	return nil
}

func (s *Store) checkEdge(rel entities.Relationship) error {
	if _, err := entities.ParseRelationType(string(rel.Type)); err != nil {
		return fmt.Errorf("%w: %v", entities.ErrInvalidDataset, err)
	}
	for _, id := range []string{rel.Source, rel.Target} {
		if _, ok := s.byID[id]; !ok {
			return fmt.Errorf("%w: %s references unknown person %q", entities.ErrDanglingReference, rel, id)
		}
	}
	if rel.Type == entities.RelationParent && rel.Source == rel.Target {
		return fmt.Errorf("%w: %s is its own parent", entities.ErrInvalidDataset, rel.Source)
	}
	return nil
}

func (s *Store) appendEdge(rel entities.Relationship) {
	s.byType[rel.Type] = append(s.byType[rel.Type], len(s.edges))
	s.edges = append(s.edges, rel)
}

// Stats returns node and per-type edge counts.
func (s *Store) Stats() (people int, edges map[entities.RelationType]int) {
	edges = make(map[entities.RelationType]int, len(s.byType))
	for t, idxs := range s.byType {
		edges[t] = len(idxs)
	}
	return len(s.people), edges
}
