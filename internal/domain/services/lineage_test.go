package services

import (
	"errors"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/mocks"
	"github.com/ersonp/lineage/internal/infrastructure/graphstore/memory"
)

func person(id, name string) entities.Person {
	return entities.Person{ID: id, Name: name, Gender: entities.GenderUnknown}
}

func parentOf(p, c string) entities.Relationship {
	return entities.Relationship{Source: p, Target: c, Type: entities.RelationParent}
}

func spouseOf(a, b string) entities.Relationship {
	return entities.Relationship{Source: a, Target: b, Type: entities.RelationSpouse}
}

// familyPeople is Anna and Bob with their children Carl and Dana.
func familyPeople() []entities.Person {
	return []entities.Person{
		person("1", "Anna"),
		person("2", "Bob"),
		person("3", "Carl"),
		person("4", "Dana"),
	}
}

func familyEdges() []entities.Relationship {
	return []entities.Relationship{
		parentOf("1", "3"),
		parentOf("2", "3"),
		parentOf("1", "4"),
		parentOf("2", "4"),
		spouseOf("1", "2"),
	}
}

// cousinPeople adds Eve (Anna's sister), Frank (Eve's child) and the shared
// grandparent Greta.
func cousinPeople() []entities.Person {
	return append(familyPeople(),
		person("5", "Eve"),
		person("6", "Frank"),
		person("7", "Greta"),
	)
}

func cousinEdges() []entities.Relationship {
	return append(familyEdges(),
		parentOf("7", "1"),
		parentOf("7", "5"),
		parentOf("5", "6"),
	)
}

func newStore(t *testing.T, people []entities.Person, rels []entities.Relationship) *memory.Store {
	t.Helper()
	s, err := memory.NewStore(people, rels)
	require.NoError(t, err)
	return s
}

// pairs returns the unordered endpoints of every edge of relType, sorted.
func pairs(store interface {
	EdgesOfType(entities.RelationType) []entities.Relationship
}, relType entities.RelationType) [][2]string {
	out := [][2]string{}
	for _, rel := range store.EdgesOfType(relType) {
		a, b := rel.Source, rel.Target
		if a > b {
			a, b = b, a
		}
		out = append(out, [2]string{a, b})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i][0] != out[j][0] {
			return out[i][0] < out[j][0]
		}
		return out[i][1] < out[j][1]
	})
	return out
}

func TestLineageService_BuildParentIndex(t *testing.T) {
	svc := NewLineageService(nil)
	store := newStore(t, cousinPeople(), cousinEdges())

	idx, err := svc.BuildParentIndex(store)
	require.NoError(t, err)

	assert.Len(t, idx, 7)
	assert.Equal(t, []string{"1", "2"}, idx.Of("3"))
	assert.Equal(t, []string{"7"}, idx.Of("5"))
	assert.Empty(t, idx.Of("2"))
	assert.Empty(t, idx.Of("unknown"))
	assert.True(t, idx.HasParent("6", "5"))
	assert.False(t, idx.HasParent("6", "1"))
}

func TestLineageService_BuildParentIndex_DanglingReference(t *testing.T) {
	svc := NewLineageService(nil)
	store := mocks.NewGraphStore(familyPeople(), []entities.Relationship{parentOf("1", "99")})

	_, err := svc.BuildParentIndex(store)
	require.ErrorIs(t, err, entities.ErrDanglingReference)
}

func TestLineageService_Derive_Scenario(t *testing.T) {
	svc := NewLineageService(nil)
	store := newStore(t, familyPeople(), familyEdges())

	result, err := svc.Derive(store)
	require.NoError(t, err)

	require.Len(t, result.Siblings, 1)
	assert.True(t, result.Siblings[0].Connects("3", "4"))
	assert.Empty(t, result.Cousins)
	assert.Equal(t, 1, result.Total())
	assert.Equal(t, [][2]string{{"3", "4"}}, pairs(store, entities.RelationSibling))
}

func TestLineageService_Derive_Idempotent(t *testing.T) {
	svc := NewLineageService(nil)
	store := newStore(t, cousinPeople(), cousinEdges())

	_, err := svc.Derive(store)
	require.NoError(t, err)
	first := store.Edges()

	second, err := svc.Derive(store)
	require.NoError(t, err)

	assert.Zero(t, second.Total())
	if diff := cmp.Diff(first, store.Edges()); diff != "" {
		t.Errorf("edges changed on second derivation (-first +second):\n%s", diff)
	}
}

func TestLineageService_Derive_HalfSiblings(t *testing.T) {
	svc := NewLineageService(nil)
	people := []entities.Person{
		person("m", "Mother"),
		person("f1", "Father One"),
		person("f2", "Father Two"),
		person("a", "Ava"),
		person("b", "Ben"),
	}
	rels := []entities.Relationship{
		parentOf("m", "a"),
		parentOf("f1", "a"),
		parentOf("m", "b"),
		parentOf("f2", "b"),
	}
	store := newStore(t, people, rels)

	_, err := svc.Derive(store)
	require.NoError(t, err)

	assert.Equal(t, [][2]string{{"a", "b"}}, pairs(store, entities.RelationSibling))
}

func TestLineageService_Derive_Cousins(t *testing.T) {
	svc := NewLineageService(nil)
	store := newStore(t, cousinPeople(), cousinEdges())

	result, err := svc.Derive(store)
	require.NoError(t, err)

	want := [][2]string{{"3", "6"}, {"4", "6"}}
	if diff := cmp.Diff(want, pairs(store, entities.RelationCousin)); diff != "" {
		t.Errorf("cousin pairs mismatch (-want +got):\n%s", diff)
	}
	assert.Len(t, result.Cousins, 2)

	// Anna is Frank's aunt, not his cousin.
	for _, rel := range store.EdgesOfType(entities.RelationCousin) {
		assert.False(t, rel.Connects("1", "6"), "unexpected cousin edge %s", rel)
	}

	// Anna and Eve share Greta.
	assert.Contains(t, pairs(store, entities.RelationSibling), [2]string{"1", "5"})
}

func TestLineageService_Derive_DoubleCousins(t *testing.T) {
	svc := NewLineageService(nil)
	// Two pairs of siblings marry across: x and y share both sets of grandparents.
	people := []entities.Person{
		person("g1", "Grandparent One"),
		person("g2", "Grandparent Two"),
		person("a1", "A1"),
		person("a2", "A2"),
		person("b1", "B1"),
		person("b2", "B2"),
		person("x", "X"),
		person("y", "Y"),
	}
	rels := []entities.Relationship{
		parentOf("g1", "a1"), parentOf("g1", "a2"),
		parentOf("g2", "b1"), parentOf("g2", "b2"),
		parentOf("a1", "x"), parentOf("b1", "x"),
		parentOf("a2", "y"), parentOf("b2", "y"),
	}
	store := newStore(t, people, rels)

	_, err := svc.Derive(store)
	require.NoError(t, err)

	assert.Equal(t, [][2]string{{"x", "y"}}, pairs(store, entities.RelationCousin))
}

func TestLineageService_Derive_NoSelfEdges(t *testing.T) {
	svc := NewLineageService(nil)
	// p and u are siblings and both parents of a, so the cousin walk from a
	// comes back to a through u.
	people := []entities.Person{
		person("g", "G"),
		person("p", "P"),
		person("u", "U"),
		person("a", "A"),
		person("c", "C"),
	}
	rels := []entities.Relationship{
		parentOf("g", "p"),
		parentOf("g", "u"),
		parentOf("p", "a"),
		parentOf("u", "a"),
		parentOf("u", "c"),
	}
	store := newStore(t, people, rels)

	_, err := svc.Derive(store)
	require.NoError(t, err)

	for _, rel := range store.Edges() {
		assert.NotEqual(t, rel.Source, rel.Target, "self edge %s", rel)
	}
}

func TestLineageService_Derive_RespectsExistingEdges(t *testing.T) {
	svc := NewLineageService(nil)
	rels := append(familyEdges(), entities.Relationship{Source: "4", Target: "3", Type: entities.RelationSibling})
	store := newStore(t, familyPeople(), rels)

	result, err := svc.Derive(store)
	require.NoError(t, err)

	assert.Empty(t, result.Siblings)
	sibs := store.EdgesOfType(entities.RelationSibling)
	require.Len(t, sibs, 1)
	assert.Equal(t, "4", sibs[0].Source, "pre-existing edge is kept as-is")
}

func TestLineageService_Derive_NoParents(t *testing.T) {
	svc := NewLineageService(nil)
	people := []entities.Person{person("1", "Anna"), person("2", "Bob")}
	store := newStore(t, people, []entities.Relationship{spouseOf("1", "2")})

	result, err := svc.Derive(store)
	require.NoError(t, err)

	assert.Zero(t, result.Total())
	assert.Empty(t, result.Parents.Of("1"))
	assert.Len(t, store.Edges(), 1)
}

func TestLineageService_Derive_Symmetry(t *testing.T) {
	svc := NewLineageService(nil)
	store := newStore(t, cousinPeople(), cousinEdges())
	_, err := svc.Derive(store)
	require.NoError(t, err)

	rs := NewRelationshipService(store, nil)
	for _, relType := range []entities.RelationType{entities.RelationSibling, entities.RelationCousin} {
		query := rs.Siblings
		if relType == entities.RelationCousin {
			query = rs.Cousins
		}
		for _, rel := range store.EdgesOfType(relType) {
			fromSource, err := query(rel.Source)
			require.NoError(t, err)
			fromTarget, err := query(rel.Target)
			require.NoError(t, err)

			assert.Contains(t, ids(fromSource), rel.Target)
			assert.Contains(t, ids(fromTarget), rel.Source)
		}
	}
}

func TestLineageService_Derive_DanglingReferenceAddsNothing(t *testing.T) {
	svc := NewLineageService(nil)
	rels := append(familyEdges(), parentOf("1", "ghost"))
	store := mocks.NewGraphStore(familyPeople(), rels)

	_, err := svc.Derive(store)
	require.ErrorIs(t, err, entities.ErrDanglingReference)
	assert.Zero(t, store.AddEdgeCallCount)
	assert.Zero(t, store.AddEdgesCallCount)
	assert.Empty(t, store.EdgesOfType(entities.RelationSibling))
}

func TestLineageService_Derive_CommitError(t *testing.T) {
	svc := NewLineageService(nil)
	store := mocks.NewGraphStore(familyPeople(), familyEdges())
	store.AddErr = errors.New("store closed")

	_, err := svc.Derive(store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store closed")
}

func TestLineageService_Derive_PartialCommitFailureAddsNothing(t *testing.T) {
	svc := NewLineageService(nil)
	store := mocks.NewGraphStore(cousinPeople(), cousinEdges())
	store.AddErr = errors.New("store closed")
	store.AddErrAt = 2

	_, err := svc.Derive(store)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store closed")
	assert.Equal(t, 1, store.AddEdgesCallCount)
	assert.Zero(t, store.AddEdgeCallCount)
	assert.Empty(t, store.EdgesOfType(entities.RelationSibling))
	assert.Empty(t, store.EdgesOfType(entities.RelationCousin))
	assert.Len(t, store.Edges(), len(cousinEdges()))
}

func ids(people []entities.Person) []string {
	out := make([]string, len(people))
	for i := range people {
		out[i] = people[i].ID
	}
	return out
}
