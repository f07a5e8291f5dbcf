package services

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
	"github.com/ersonp/lineage/internal/infrastructure/metrics"
)

// PersonDetail aggregates everything the detail view shows for one person.
type PersonDetail struct {
	Person   entities.Person   `json:"person"`
	Parents  []entities.Person `json:"parents"`
	Spouses  []entities.Person `json:"spouses"`
	Siblings []entities.Person `json:"siblings"`
	Children []entities.Person `json:"children"`
	Cousins  []entities.Person `json:"cousins"`
}

// RelationshipService answers person-centric relationship queries over the
// full edge collection, authoritative and derived.
type RelationshipService struct {
	store  ports.GraphStore
	logger *zap.Logger
}

// NewRelationshipService creates a new RelationshipService.
func NewRelationshipService(store ports.GraphStore, logger *zap.Logger) *RelationshipService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelationshipService{
		store:  store,
		logger: logger.Named("relationships"),
	}
}

// Parents returns the sources of parent edges pointing at id.
func (s *RelationshipService) Parents(id string) ([]entities.Person, error) {
	return s.query("parents", id, func(rel entities.Relationship) (string, bool) {
		if rel.Type == entities.RelationParent && rel.Target == id {
			return rel.Source, true
		}
		return "", false
	}, entities.RelationParent)
}

// Children returns the targets of parent edges leaving id.
func (s *RelationshipService) Children(id string) ([]entities.Person, error) {
	return s.query("children", id, func(rel entities.Relationship) (string, bool) {
		if rel.Type == entities.RelationParent && rel.Source == id {
			return rel.Target, true
		}
		return "", false
	}, entities.RelationParent)
}

// Spouses returns the other endpoint of every spouse edge touching id.
func (s *RelationshipService) Spouses(id string) ([]entities.Person, error) {
	return s.symmetric("spouses", id, entities.RelationSpouse)
}

// Siblings returns the other endpoint of every sibling edge touching id.
func (s *RelationshipService) Siblings(id string) ([]entities.Person, error) {
	return s.symmetric("siblings", id, entities.RelationSibling)
}

// Cousins returns the other endpoint of every cousin edge touching id.
func (s *RelationshipService) Cousins(id string) ([]entities.Person, error) {
	return s.symmetric("cousins", id, entities.RelationCousin)
}

// Detail collects the person record and all five relationship lists.
func (s *RelationshipService) Detail(id string) (*PersonDetail, error) {
	person, err := s.store.GetNode(id)
	if err != nil {
		return nil, err
	}

	detail := &PersonDetail{Person: *person}
	queries := []struct {
		dst *[]entities.Person
		fn  func(string) ([]entities.Person, error)
	}{
		{&detail.Parents, s.Parents},
		{&detail.Spouses, s.Spouses},
		{&detail.Siblings, s.Siblings},
		{&detail.Children, s.Children},
		{&detail.Cousins, s.Cousins},
	}
	for _, q := range queries {
		people, err := q.fn(id)
		if err != nil {
			return nil, err
		}
		*q.dst = people
	}

	return detail, nil
}

func (s *RelationshipService) symmetric(name, id string, relType entities.RelationType) ([]entities.Person, error) {
	return s.query(name, id, func(rel entities.Relationship) (string, bool) {
		other, ok := rel.Other(id)
		if !ok || other == id {
			return "", false
		}
		return other, true
	}, relType)
}

// query scans edges of relType, resolving each match to a person. The result
// keeps edge order and lists every person once.
func (s *RelationshipService) query(
	name, id string,
	match func(entities.Relationship) (string, bool),
	relType entities.RelationType,
) ([]entities.Person, error) {
	if _, err := s.store.GetNode(id); err != nil {
		if errors.Is(err, entities.ErrPersonNotFound) {
			metrics.RelationshipQueries.WithLabelValues(name, "not_found").Inc()
		}
		return nil, err
	}

	result := []entities.Person{}
	seen := make(map[string]bool)
	for _, rel := range s.store.EdgesOfType(relType) {
		otherID, ok := match(rel)
		if !ok || seen[otherID] {
			continue
		}
		seen[otherID] = true

		other, err := s.store.GetNode(otherID)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", entities.ErrDanglingReference, rel, err)
		}
		result = append(result, *other)
	}

	metrics.RelationshipQueries.WithLabelValues(name, "ok").Inc()
	s.logger.Debug("relationship query",
		zap.String("relation", name),
		zap.String("person", id),
		zap.Int("results", len(result)),
	)
	return result, nil
}
