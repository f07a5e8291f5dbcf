package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/mocks"
)

func derivedFamily(t *testing.T) *RelationshipService {
	t.Helper()
	store := newStore(t, cousinPeople(), cousinEdges())
	_, err := NewLineageService(nil).Derive(store)
	require.NoError(t, err)
	return NewRelationshipService(store, nil)
}

func TestRelationshipService_Queries(t *testing.T) {
	svc := derivedFamily(t)

	tests := []struct {
		name     string
		query    func(string) ([]entities.Person, error)
		id       string
		expected []string
	}{
		{name: "children of Anna", query: svc.Children, id: "1", expected: []string{"3", "4"}},
		{name: "spouse of Anna", query: svc.Spouses, id: "1", expected: []string{"2"}},
		{name: "spouse of Bob resolves source side", query: svc.Spouses, id: "2", expected: []string{"1"}},
		{name: "siblings of Carl", query: svc.Siblings, id: "3", expected: []string{"4"}},
		{name: "siblings of Dana", query: svc.Siblings, id: "4", expected: []string{"3"}},
		{name: "parents of Carl", query: svc.Parents, id: "3", expected: []string{"1", "2"}},
		{name: "parents of Bob", query: svc.Parents, id: "2", expected: []string{}},
		{name: "children of Carl", query: svc.Children, id: "3", expected: []string{}},
		{name: "cousins of Frank", query: svc.Cousins, id: "6", expected: []string{"3", "4"}},
		{name: "cousins of Anna", query: svc.Cousins, id: "1", expected: []string{}},
		{name: "siblings of Anna", query: svc.Siblings, id: "1", expected: []string{"5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			people, err := tt.query(tt.id)
			require.NoError(t, err)
			assert.ElementsMatch(t, tt.expected, ids(people))
		})
	}
}

func TestRelationshipService_EmptyResultIsNotNil(t *testing.T) {
	svc := derivedFamily(t)

	spouses, err := svc.Spouses("6")
	require.NoError(t, err)
	assert.NotNil(t, spouses)
	assert.Empty(t, spouses)
}

func TestRelationshipService_UnknownPerson(t *testing.T) {
	svc := derivedFamily(t)

	queries := map[string]func(string) ([]entities.Person, error){
		"parents":  svc.Parents,
		"children": svc.Children,
		"spouses":  svc.Spouses,
		"siblings": svc.Siblings,
		"cousins":  svc.Cousins,
	}
	for name, q := range queries {
		t.Run(name, func(t *testing.T) {
			_, err := q("nobody")
			require.ErrorIs(t, err, entities.ErrPersonNotFound)
		})
	}

	_, err := svc.Detail("nobody")
	require.ErrorIs(t, err, entities.ErrPersonNotFound)
}

func TestRelationshipService_DuplicateEdgesListedOnce(t *testing.T) {
	store := mocks.NewGraphStore(familyPeople(), []entities.Relationship{
		spouseOf("1", "2"),
		spouseOf("2", "1"),
	})
	svc := NewRelationshipService(store, nil)

	spouses, err := svc.Spouses("1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2"}, ids(spouses))
}

func TestRelationshipService_Detail(t *testing.T) {
	svc := derivedFamily(t)

	detail, err := svc.Detail("3")
	require.NoError(t, err)

	assert.Equal(t, "Carl", detail.Person.Name)
	assert.ElementsMatch(t, []string{"1", "2"}, ids(detail.Parents))
	assert.Empty(t, detail.Spouses)
	assert.Equal(t, []string{"4"}, ids(detail.Siblings))
	assert.Empty(t, detail.Children)
	assert.Equal(t, []string{"6"}, ids(detail.Cousins))
}
