package memory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage/internal/domain/entities"
)

func testPeople() []entities.Person {
	return []entities.Person{
		{ID: "1", Name: "Anna", Surname: "Berg", Gender: entities.GenderFemale},
		{ID: "2", Name: "Bob", Surname: "Berg", Gender: entities.GenderMale},
		{ID: "3", Name: "Carl", Surname: "Berg"},
		{ID: "4", Name: "Dana", Surname: "Berg"},
	}
}

func parent(p, c string) entities.Relationship {
	return entities.Relationship{Source: p, Target: c, Type: entities.RelationParent}
}

func TestNewStore(t *testing.T) {
	t.Run("indexes people and edges", func(t *testing.T) {
		s, err := NewStore(testPeople(), []entities.Relationship{
			parent("1", "3"),
			{Source: "1", Target: "2", Type: entities.RelationSpouse},
			parent("2", "3"),
		})
		require.NoError(t, err)

		assert.Len(t, s.Nodes(), 4)
		assert.Len(t, s.Edges(), 3)
		assert.Equal(t, []entities.Relationship{parent("1", "3"), parent("2", "3")}, s.EdgesOfType(entities.RelationParent))
		assert.Empty(t, s.EdgesOfType(entities.RelationCousin))
	})

	t.Run("missing gender defaults to unknown", func(t *testing.T) {
		s, err := NewStore(testPeople(), nil)
		require.NoError(t, err)

		p, err := s.GetNode("3")
		require.NoError(t, err)
		assert.Equal(t, entities.GenderUnknown, p.Gender)
	})

	t.Run("duplicate id", func(t *testing.T) {
		people := append(testPeople(), entities.Person{ID: "1", Name: "Other"})
		_, err := NewStore(people, nil)
		require.ErrorIs(t, err, entities.ErrInvalidDataset)
	})

	t.Run("empty id", func(t *testing.T) {
		_, err := NewStore([]entities.Person{{Name: "Nobody"}}, nil)
		require.ErrorIs(t, err, entities.ErrInvalidDataset)
	})

	t.Run("dangling reference", func(t *testing.T) {
		_, err := NewStore(testPeople(), []entities.Relationship{parent("1", "99")})
		require.ErrorIs(t, err, entities.ErrDanglingReference)
		assert.Contains(t, err.Error(), "99")
	})

	t.Run("unknown relation type", func(t *testing.T) {
		_, err := NewStore(testPeople(), []entities.Relationship{{Source: "1", Target: "2", Type: "ally"}})
		require.ErrorIs(t, err, entities.ErrInvalidDataset)
	})

	t.Run("self parent", func(t *testing.T) {
		_, err := NewStore(testPeople(), []entities.Relationship{parent("1", "1")})
		require.ErrorIs(t, err, entities.ErrInvalidDataset)
	})
}

func TestStore_GetNode(t *testing.T) {
	s, err := NewStore(testPeople(), nil)
	require.NoError(t, err)

	p, err := s.GetNode("2")
	require.NoError(t, err)
	assert.Equal(t, "Bob", p.Name)

	_, err = s.GetNode("42")
	require.ErrorIs(t, err, entities.ErrPersonNotFound)
}

func TestStore_GetNode_ReturnsCopy(t *testing.T) {
	s, err := NewStore(testPeople(), nil)
	require.NoError(t, err)

	p, err := s.GetNode("1")
	require.NoError(t, err)
	p.Name = "Changed"

	again, err := s.GetNode("1")
	require.NoError(t, err)
	assert.Equal(t, "Anna", again.Name)
}

func TestStore_AddEdge(t *testing.T) {
	s, err := NewStore(testPeople(), nil)
	require.NoError(t, err)

	sib := entities.Relationship{Source: "3", Target: "4", Type: entities.RelationSibling}
	require.NoError(t, s.AddEdge(sib))
	// The store itself never deduplicates.
	require.NoError(t, s.AddEdge(sib))
	assert.Len(t, s.EdgesOfType(entities.RelationSibling), 2)

	err = s.AddEdge(entities.Relationship{Source: "3", Target: "x", Type: entities.RelationSibling})
	require.ErrorIs(t, err, entities.ErrDanglingReference)
	assert.Len(t, s.Edges(), 2)
}

func TestStore_AddEdges(t *testing.T) {
	s, err := NewStore(testPeople(), nil)
	require.NoError(t, err)

	batch := []entities.Relationship{
		{Source: "3", Target: "4", Type: entities.RelationSibling},
		{Source: "3", Target: "x", Type: entities.RelationCousin},
	}
	err = s.AddEdges(batch)
	require.ErrorIs(t, err, entities.ErrDanglingReference)
	assert.Contains(t, err.Error(), "edge 2 of 2")
	assert.Empty(t, s.Edges())
	assert.Empty(t, s.EdgesOfType(entities.RelationSibling))

	require.NoError(t, s.AddEdges(batch[:1]))
	assert.Equal(t, batch[:1], s.EdgesOfType(entities.RelationSibling))
}

func TestStore_FindByName(t *testing.T) {
	s, err := NewStore(testPeople(), nil)
	require.NoError(t, err)

	found := s.FindByName("anna")
	require.Len(t, found, 1)
	assert.Equal(t, "1", found[0].ID)

	found = s.FindByName("CARL BERG")
	require.Len(t, found, 1)
	assert.Equal(t, "3", found[0].ID)

	assert.Empty(t, s.FindByName("Eve"))
}

func TestStore_Stats(t *testing.T) {
	s, err := NewStore(testPeople(), []entities.Relationship{
		parent("1", "3"),
		parent("1", "4"),
		{Source: "1", Target: "2", Type: entities.RelationSpouse},
	})
	require.NoError(t, err)

	people, edges := s.Stats()
	assert.Equal(t, 4, people)
	assert.Equal(t, 2, edges[entities.RelationParent])
	assert.Equal(t, 1, edges[entities.RelationSpouse])
}
