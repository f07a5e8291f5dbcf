package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/mocks"
	"github.com/ersonp/lineage/internal/infrastructure/parsers"
)

func rawFamily() *parsers.RawDataset {
	return &parsers.RawDataset{
		Nodes: []parsers.RawPerson{
			{ID: "1", Name: "Anna", Gender: "female"},
			{ID: "2", Name: "Bob", Gender: "male"},
			{ID: "3", Name: "Carl"},
		},
		Links: []parsers.RawRelationship{
			{Source: "1", Target: "3", Type: "parent"},
			{Source: "2", Target: "3", Type: "parent"},
			{Source: "1", Target: "2", Type: "spouse"},
		},
	}
}

func TestImportService_Import(t *testing.T) {
	db := mocks.NewRelationalDB()
	svc := NewImportService(db, nil)

	result, err := svc.Import(context.Background(), rawFamily(), ImportOptions{Source: "family.json"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.People)
	assert.Equal(t, 3, result.Relationships)
	assert.Zero(t, result.Skipped)
	assert.Empty(t, result.Errors)

	assert.Len(t, db.People, 3)
	assert.Equal(t, entities.GenderFemale, db.People[0].Gender)
	assert.Len(t, db.Relationships, 3)

	require.Len(t, db.Audit, 1)
	assert.Equal(t, entities.AuditActionImport, db.Audit[0].Action)
	assert.Equal(t, "family.json", db.Audit[0].Source)
	assert.Equal(t, 3, db.Audit[0].Details["people"])
}

func TestImportService_Import_ReversedSpouseEdge(t *testing.T) {
	db := mocks.NewRelationalDB()
	svc := NewImportService(db, nil)
	ctx := context.Background()

	raw := rawFamily()
	raw.Links = append(raw.Links, parsers.RawRelationship{Source: "2", Target: "1", Type: "spouse"})

	result, err := svc.Import(ctx, raw, ImportOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.Relationships)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, db.Relationships, 3)

	again := &parsers.RawDataset{
		Links: []parsers.RawRelationship{{Source: "2", Target: "1", Type: "spouse"}},
	}
	result, err = svc.Import(ctx, again, ImportOptions{})
	require.NoError(t, err)
	assert.Zero(t, result.Relationships)
	assert.Equal(t, 1, result.Skipped)
	assert.Len(t, db.Relationships, 3)
}

func TestImportService_Import_DryRun(t *testing.T) {
	db := mocks.NewRelationalDB()
	svc := NewImportService(db, nil)

	result, err := svc.Import(context.Background(), rawFamily(), ImportOptions{DryRun: true})
	require.NoError(t, err)

	assert.Equal(t, 3, result.People)
	assert.Equal(t, 3, result.Relationships)
	assert.Zero(t, db.SavePersonCallCount)
	assert.Zero(t, db.SaveRelationshipCallCount)
	assert.Empty(t, db.Audit)
}

func TestImportService_Import_RecordErrors(t *testing.T) {
	raw := &parsers.RawDataset{
		Nodes: []parsers.RawPerson{
			{ID: "1", Name: "Anna"},
			{ID: "2"},
			{ID: "1", Name: "Anna again"},
			{ID: "4", Name: "Dana", Gender: "robot"},
		},
		Links: []parsers.RawRelationship{
			{Source: "1", Target: "9", Type: "parent"},
			{Source: "1", Target: "1", Type: "spouse"},
			{Source: "1", Target: "2", Type: "enemy"},
		},
	}

	db := mocks.NewRelationalDB()
	result, err := NewImportService(db, nil).Import(context.Background(), raw, ImportOptions{})
	require.NoError(t, err)

	assert.Equal(t, 1, result.People)
	assert.Zero(t, result.Relationships)
	require.Len(t, result.Errors, 6)

	fields := make([]string, len(result.Errors))
	for i, e := range result.Errors {
		fields[i] = e.Section + "." + e.Field
	}
	assert.Equal(t, []string{
		"nodes.name", "nodes.id", "nodes.gender",
		"links.target", "links.target", "links.type",
	}, fields)
	assert.Equal(t, "duplicate id", result.Errors[1].Message)
	assert.Contains(t, result.Errors[3].Message, "dangling reference")
}

func TestImportService_Import_Conflicts(t *testing.T) {
	tests := []struct {
		name        string
		strategy    ConflictStrategy
		wantName    string
		wantPeople  int
		wantSkipped int
	}{
		{name: "skip", strategy: ConflictSkip, wantName: "Anna", wantPeople: 2, wantSkipped: 2},
		{name: "overwrite", strategy: ConflictOverwrite, wantName: "Annika", wantPeople: 3, wantSkipped: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := mocks.NewRelationalDB()
			db.People = []entities.Person{{ID: "1", Name: "Anna"}}
			db.Relationships = []entities.Relationship{
				{Source: "1", Target: "3", Type: entities.RelationParent},
			}

			raw := rawFamily()
			raw.Nodes[0].Name = "Annika"

			result, err := NewImportService(db, nil).Import(context.Background(), raw, ImportOptions{OnConflict: tt.strategy})
			require.NoError(t, err)

			assert.Equal(t, tt.wantPeople, result.People)
			// the 1->3 parent edge is already stored
			assert.Equal(t, 2, result.Relationships)
			assert.Equal(t, tt.wantSkipped, result.Skipped)
			assert.Equal(t, tt.wantName, db.People[0].Name)
			assert.Len(t, db.People, 3)
		})
	}
}

func TestImportService_Import_EdgesToStoredPeople(t *testing.T) {
	db := mocks.NewRelationalDB()
	db.People = []entities.Person{{ID: "7", Name: "Greta"}}

	raw := &parsers.RawDataset{
		Nodes: []parsers.RawPerson{{ID: "1", Name: "Anna"}},
		Links: []parsers.RawRelationship{{Source: "7", Target: "1", Type: "parent"}},
	}

	result, err := NewImportService(db, nil).Import(context.Background(), raw, ImportOptions{})
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.Relationships)
}

func TestImportService_Import_DBError(t *testing.T) {
	db := mocks.NewRelationalDB()
	db.Err = errors.New("disk full")

	_, err := NewImportService(db, nil).Import(context.Background(), rawFamily(), ImportOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestParseConflictStrategy(t *testing.T) {
	s, err := ParseConflictStrategy("")
	require.NoError(t, err)
	assert.Equal(t, ConflictSkip, s)

	s, err = ParseConflictStrategy("overwrite")
	require.NoError(t, err)
	assert.Equal(t, ConflictOverwrite, s)

	_, err = ParseConflictStrategy("merge")
	require.Error(t, err)
}
