package services

import (
	"fmt"
	"sort"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"go.uber.org/zap"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
	"github.com/ersonp/lineage/internal/infrastructure/metrics"
)

// ParentIndex maps a person id to the ids of that person's parents.
// Every loaded person has an entry, possibly empty.
type ParentIndex map[string]mapset.Set[string]

// Of returns the parent ids of id in sorted order.
func (idx ParentIndex) Of(id string) []string {
	set, ok := idx[id]
	if !ok {
		return []string{}
	}
	ids := set.ToSlice()
	sort.Strings(ids)
	return ids
}

// HasParent reports whether parentID is a recorded parent of id.
func (idx ParentIndex) HasParent(id, parentID string) bool {
	set, ok := idx[id]
	return ok && set.Contains(parentID)
}

// DerivationResult describes one derivation pass.
type DerivationResult struct {
	Parents  ParentIndex
	Siblings []entities.Relationship
	Cousins  []entities.Relationship
	Duration time.Duration
}

// Total returns the number of edges added by the pass.
func (r *DerivationResult) Total() int {
	return len(r.Siblings) + len(r.Cousins)
}

// LineageService derives sibling and cousin edges from parent edges.
type LineageService struct {
	logger *zap.Logger
}

// NewLineageService creates a new LineageService.
func NewLineageService(logger *zap.Logger) *LineageService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LineageService{logger: logger.Named("lineage")}
}

// BuildParentIndex computes the parent set of every person from the parent
// edges in the store. A parent edge naming an unknown person fails the build.
func (s *LineageService) BuildParentIndex(store ports.GraphStore) (ParentIndex, error) {
	people := store.Nodes()
	idx := make(ParentIndex, len(people))
	for i := range people {
		idx[people[i].ID] = mapset.NewThreadUnsafeSet[string]()
	}

	for _, rel := range store.EdgesOfType(entities.RelationParent) {
		for _, id := range []string{rel.Source, rel.Target} {
			if _, err := store.GetNode(id); err != nil {
				return nil, fmt.Errorf("%w: %s: %v", entities.ErrDanglingReference, rel, err)
			}
		}
		idx[rel.Target].Add(rel.Source)
	}

	return idx, nil
}

// Derive materializes sibling and cousin edges into the store.
//
// Both phases write into a pending buffer, which is checked against the store
// and committed with a single AddEdges call, so a failure leaves no derived
// edges behind. Existing sibling and cousin edges,
// in either orientation, are respected; running Derive twice adds nothing the
// second time.
func (s *LineageService) Derive(store ports.GraphStore) (*DerivationResult, error) {
	start := time.Now()

	result, err := s.derive(store)
	if err != nil {
		metrics.DerivationFailures.Inc()
		s.logger.Error("derivation failed", zap.Error(err))
		return nil, err
	}

	result.Duration = time.Since(start)
	metrics.DerivationDuration.Observe(result.Duration.Seconds())
	metrics.DerivedEdges.WithLabelValues(string(entities.RelationSibling)).Add(float64(len(result.Siblings)))
	metrics.DerivedEdges.WithLabelValues(string(entities.RelationCousin)).Add(float64(len(result.Cousins)))

	s.logger.Info("derivation complete",
		zap.Int("siblings", len(result.Siblings)),
		zap.Int("cousins", len(result.Cousins)),
		zap.Duration("duration", result.Duration),
	)
	return result, nil
}

func (s *LineageService) derive(store ports.GraphStore) (*DerivationResult, error) {
	parents, err := s.BuildParentIndex(store)
	if err != nil {
		return nil, fmt.Errorf("building parent index: %w", err)
	}

	d := newDerivation(store, parents)

	siblings := d.siblings()
	s.logger.Debug("sibling phase done", zap.Int("added", len(siblings)))

	cousins := d.cousins()
	s.logger.Debug("cousin phase done", zap.Int("added", len(cousins)))

	pending := make([]entities.Relationship, 0, len(siblings)+len(cousins))
	pending = append(pending, siblings...)
	pending = append(pending, cousins...)

	for _, rel := range pending {
		for _, id := range []string{rel.Source, rel.Target} {
			if _, err := store.GetNode(id); err != nil {
				return nil, fmt.Errorf("%w: derived edge %s: %v", entities.ErrDanglingReference, rel, err)
			}
		}
	}

	if err := store.AddEdges(pending); err != nil {
		return nil, fmt.Errorf("committing %d derived edges: %w", len(pending), err)
	}

	return &DerivationResult{
		Parents:  parents,
		Siblings: siblings,
		Cousins:  cousins,
	}, nil
}

// pairKey identifies an unordered pair of ids.
type pairKey struct {
	lo, hi string
}

func newPairKey(a, b string) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{lo: a, hi: b}
}

// derivation holds the scratch state of one pass.
type derivation struct {
	people   []entities.Person
	parents  ParentIndex
	children map[string][]string
	seen     map[entities.RelationType]mapset.Set[pairKey]
}

func newDerivation(store ports.GraphStore, parents ParentIndex) *derivation {
	people := store.Nodes()

	// children lists follow node order so derived edges come out deterministic.
	children := make(map[string][]string, len(people))
	for i := range people {
		for _, p := range parents.Of(people[i].ID) {
			children[p] = append(children[p], people[i].ID)
		}
	}

	d := &derivation{
		people:   people,
		parents:  parents,
		children: children,
		seen:     make(map[entities.RelationType]mapset.Set[pairKey], 2),
	}

	for _, t := range []entities.RelationType{entities.RelationSibling, entities.RelationCousin} {
		set := mapset.NewThreadUnsafeSet[pairKey]()
		for _, rel := range store.EdgesOfType(t) {
			set.Add(newPairKey(rel.Source, rel.Target))
		}
		d.seen[t] = set
	}

	return d
}

// link records a symmetric edge a-b unless the pair already has one.
func (d *derivation) link(a, b string, relType entities.RelationType) (entities.Relationship, bool) {
	if a == b {
		return entities.Relationship{}, false
	}
	if !d.seen[relType].Add(newPairKey(a, b)) {
		return entities.Relationship{}, false
	}
	return entities.Relationship{Source: a, Target: b, Type: relType}, true
}

// siblings links every pair of people sharing at least one parent, so
// half-siblings are included.
func (d *derivation) siblings() []entities.Relationship {
	var added []entities.Relationship
	for i := range d.people {
		a := d.people[i].ID
		for _, parentID := range d.parents.Of(a) {
			for _, b := range d.children[parentID] {
				if rel, ok := d.link(a, b, entities.RelationSibling); ok {
					added = append(added, rel)
				}
			}
		}
	}
	return added
}

// cousins walks parent -> grandparent -> uncle/aunt -> child for each lineage
// branch independently. Only first cousins are produced.
func (d *derivation) cousins() []entities.Relationship {
	var added []entities.Relationship
	for i := range d.people {
		a := d.people[i].ID
		for _, p := range d.parents.Of(a) {
			for _, g := range d.parents.Of(p) {
				for _, u := range d.children[g] {
					if u == p {
						continue
					}
					for _, c := range d.children[u] {
						if rel, ok := d.link(a, c, entities.RelationCousin); ok {
							added = append(added, rel)
						}
					}
				}
			}
		}
	}
	return added
}
