// Package visualizer renders family graphs as D3.js force-directed pages.
package visualizer

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
)

var page = template.Must(template.New("d3").Parse(pageTemplate))

// Page is the data rendered into the HTML template.
type Page struct {
	Title string
	// Graph must marshal to {"nodes": [...], "links": [...]}.
	Graph any
	// Details maps a person id to its detail view. Used by static exports.
	Details any
	// APIBase, when set, makes the page fetch details from the HTTP API.
	APIBase   string
	NodeCount int
	EdgeCount int
}

// Render writes the HTML page.
func Render(w io.Writer, p Page) error {
	if p.Title == "" {
		p.Title = "Family Tree"
	}
	if err := page.Execute(w, p); err != nil {
		return fmt.Errorf("rendering graph page: %w", err)
	}
	return nil
}

// WriteFile renders the page to path, creating parent directories.
func WriteFile(path string, p Page) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}

	var buf bytes.Buffer
	if err := Render(&buf, p); err != nil {
		return err
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
