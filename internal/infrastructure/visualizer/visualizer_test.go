package visualizer

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testGraph struct {
	Nodes []map[string]string `json:"nodes"`
	Links []map[string]string `json:"links"`
}

func samplePage() Page {
	return Page{
		Title: "Berg family",
		Graph: testGraph{
			Nodes: []map[string]string{{"id": "1", "label": "Anna </script>"}},
			Links: []map[string]string{},
		},
		NodeCount: 1,
	}
}

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, samplePage()))

	html := buf.String()
	assert.Contains(t, html, "<title>Berg family</title>")
	assert.Contains(t, html, "People: 1, Relationships: 0")
	assert.Contains(t, html, `"nodes":`)
	assert.Contains(t, html, "d3.v7.min.js")
	// the label must not close the script element
	assert.NotContains(t, html, "Anna </script>")
}

func TestRender_DefaultTitle(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, Page{}))
	assert.Contains(t, buf.String(), "<title>Family Tree</title>")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "family.html")
	require.NoError(t, WriteFile(path, samplePage()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Berg family")
}
