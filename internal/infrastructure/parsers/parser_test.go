package parsers

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/lineage/internal/domain/entities"
)

const familyJSON = `{
	"nodes": [
		{"id": 1, "name": "Anna", "surname": "Berg", "gender": "female",
		 "dateOfBirth": {"day": 3, "month": 4, "year": 1931}},
		{"id": "2", "name": "Bob", "gender": "M", "dateOfDeath": {"year": 1999}},
		{"id": 3, "name": "Carl"}
	],
	"links": [
		{"source": 1, "target": 3, "type": "parent"},
		{"source": "2", "target": "3", "type": "parent"},
		{"source": 1, "target": 2, "type": "spouse"}
	]
}`

const familyYAML = `
nodes:
  - id: 1
    name: Anna
    surname: Berg
    gender: female
    dateOfBirth: {day: 3, month: 4, year: 1931}
  - id: "2"
    name: Bob
    gender: M
    dateOfDeath: {year: 1999}
  - id: 3
    name: Carl
links:
  - {source: 1, target: 3, type: parent}
  - {source: "2", target: "3", type: parent}
  - {source: 1, target: 2, type: spouse}
`

func TestParsers_ParseFamily(t *testing.T) {
	tests := []struct {
		name   string
		parser Parser
		input  string
	}{
		{name: "json", parser: &JSONParser{}, input: familyJSON},
		{name: "yaml", parser: &YAMLParser{}, input: familyYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := tt.parser.Parse(strings.NewReader(tt.input))
			require.NoError(t, err)
			require.Len(t, raw.Nodes, 3)
			require.Len(t, raw.Links, 3)

			ds, errs := Convert(raw)
			require.Empty(t, errs)

			require.Len(t, ds.People, 3)
			anna := ds.People[0]
			assert.Equal(t, "1", anna.ID)
			assert.Equal(t, "Anna Berg", anna.FullName())
			assert.Equal(t, entities.GenderFemale, anna.Gender)
			assert.Equal(t, "3 4 1931", anna.DateOfBirth.String())
			assert.Nil(t, anna.DateOfDeath)

			bob := ds.People[1]
			assert.Equal(t, "2", bob.ID)
			assert.Equal(t, entities.GenderMale, bob.Gender)
			assert.Equal(t, "? ? 1999", bob.DateOfDeath.String())

			assert.Equal(t, entities.GenderUnknown, ds.People[2].Gender)

			assert.Equal(t, []entities.Relationship{
				{Source: "1", Target: "3", Type: entities.RelationParent},
				{Source: "2", Target: "3", Type: entities.RelationParent},
				{Source: "1", Target: "2", Type: entities.RelationSpouse},
			}, ds.Relationships)
		})
	}
}

func TestJSONParser_EdgesAlias(t *testing.T) {
	input := `{"nodes": [{"id": "a", "name": "A"}, {"id": "b", "name": "B"}],
		"edges": [{"source": "a", "target": "b", "type": "spouse"}]}`

	raw, err := (&JSONParser{}).Parse(strings.NewReader(input))
	require.NoError(t, err)

	ds, errs := Convert(raw)
	require.Empty(t, errs)
	require.Len(t, ds.Relationships, 1)
	assert.Equal(t, entities.RelationSpouse, ds.Relationships[0].Type)
}

func TestParsers_InvalidInput(t *testing.T) {
	_, err := (&JSONParser{}).Parse(strings.NewReader("not json"))
	require.Error(t, err)

	_, err = (&JSONParser{}).Parse(strings.NewReader(`{"nodes": [{"id": true}]}`))
	require.Error(t, err)

	_, err = (&YAMLParser{}).Parse(strings.NewReader("nodes: [unclosed"))
	require.Error(t, err)
}

func TestYAMLParser_EmptyDocument(t *testing.T) {
	raw, err := (&YAMLParser{}).Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, raw.Nodes)
}

func TestConvert_RecordErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{
			name:    "missing id",
			input:   `{"nodes": [{"name": "Anna"}]}`,
			wantErr: "nodes[1]: id: missing required field",
		},
		{
			name:    "missing name",
			input:   `{"nodes": [{"id": 1}]}`,
			wantErr: "nodes[1]: name: missing required field",
		},
		{
			name:    "invalid gender",
			input:   `{"nodes": [{"id": 1, "name": "Anna", "gender": "robot"}]}`,
			wantErr: "nodes[1]: gender: invalid gender",
		},
		{
			name:    "month out of range",
			input:   `{"nodes": [{"id": 1, "name": "Anna", "dateOfBirth": {"month": 13}}]}`,
			wantErr: "nodes[1]: dateOfBirth.month: value",
		},
		{
			name:    "invalid relation type",
			input:   `{"links": [{"source": 1, "target": 2, "type": "ally"}]}`,
			wantErr: "links[1]: type: invalid relationship type",
		},
		{
			name:    "self edge",
			input:   `{"links": [{"source": 1, "target": 1, "type": "spouse"}]}`,
			wantErr: "links[1]: target: must differ from source",
		},
		{
			name:    "missing target",
			input:   `{"links": [{"source": 1, "type": "parent"}]}`,
			wantErr: "links[1]: target: missing required field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := (&JSONParser{}).Parse(strings.NewReader(tt.input))
			require.NoError(t, err)

			_, errs := Convert(raw)
			require.Len(t, errs, 1)
			assert.Contains(t, errs[0].Error(), tt.wantErr)
		})
	}
}

func TestConvert_SkipsInvalidKeepsValid(t *testing.T) {
	input := `{"nodes": [{"id": 1, "name": "Anna"}, {"id": 2}, {"id": 3, "name": "Carl"}]}`
	raw, err := (&JSONParser{}).Parse(strings.NewReader(input))
	require.NoError(t, err)

	ds, errs := Convert(raw)
	require.Len(t, errs, 1)
	assert.Equal(t, 2, errs[0].Index)
	assert.Len(t, ds.People, 2)

	joined := JoinRecordErrors(errs)
	require.ErrorIs(t, joined, entities.ErrInvalidDataset)
	assert.Nil(t, JoinRecordErrors(nil))
}

func TestForFormat(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFormat("json"))
	assert.IsType(t, &YAMLParser{}, ForFormat("YAML"))
	assert.IsType(t, &YAMLParser{}, ForFormat("yml"))
	assert.Nil(t, ForFormat("csv"))
}

func TestForFile(t *testing.T) {
	assert.IsType(t, &JSONParser{}, ForFile("family.json"))
	assert.IsType(t, &YAMLParser{}, ForFile("family.yml"))
	assert.Nil(t, ForFile("file.txt"))
	assert.Nil(t, ForFile("noextension"))
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "family.json")
	require.NoError(t, os.WriteFile(path, []byte(familyJSON), 0600))

	src, err := NewFileSource(path, "auto")
	require.NoError(t, err)
	assert.Equal(t, path, src.Describe())

	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, ds.People, 3)
	assert.Len(t, ds.Relationships, 3)
}

func TestFileSource_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := NewFileSource("", "auto")
	require.Error(t, err)

	_, err = NewFileSource(filepath.Join(dir, "family.txt"), "auto")
	require.Error(t, err)

	src, err := NewFileSource(filepath.Join(dir, "missing.json"), "")
	require.NoError(t, err)
	_, err = src.Load(context.Background())
	require.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("nodes:\n  - id: 1\n"), 0600))
	src, err = NewFileSource(bad, "yaml")
	require.NoError(t, err)
	_, err = src.Load(context.Background())
	require.ErrorIs(t, err, entities.ErrInvalidDataset)
}
