package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/lineage/internal/application/handlers"
)

func newRelationsCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "relations <person-id-or-name>",
		Short: "Show a person's relatives",
		Long: `Shows parents, spouses, siblings, children and cousins of a person
after derivation. The person may be given by id or by full name.

Examples:
  lineage relations 3
  lineage relations "Anna Berg" --format list
  lineage relations Carl --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format, validRelationsFormats); err != nil {
				return err
			}
			return withGraph(cmd.Context(), func(_ *Deps, g *handlers.Graph) error {
				detail, err := g.Detail(args[0])
				if err != nil {
					return err
				}
				return printRelations(cmd.OutOrStdout(), detail, format)
			})
		},
	}

	cmd.Flags().StringVar(&format, "format", FormatTree, "Output format: tree, list, json")

	return cmd
}

type relationGroup struct {
	name   string
	people []handlers.PersonRef
}

func groups(d *handlers.DetailView) []relationGroup {
	return []relationGroup{
		{"parents", d.Parents},
		{"spouses", d.Spouses},
		{"siblings", d.Siblings},
		{"children", d.Children},
		{"cousins", d.Cousins},
	}
}

func printRelations(w io.Writer, d *handlers.DetailView, format string) error {
	switch format {
	case FormatJSON:
		return printRelationsJSON(w, d)
	case FormatList:
		printRelationsList(w, d)
	default:
		printRelationsTree(w, d)
	}
	return nil
}

func printRelationsJSON(w io.Writer, d *handlers.DetailView) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

func printRelationsList(w io.Writer, d *handlers.DetailView) {
	fmt.Fprintf(w, "Relatives of %s (%s):\n", d.Person.Label, d.Person.ID)
	fmt.Fprintln(w, strings.Repeat("-", 60))

	for _, g := range groups(d) {
		for _, p := range g.people {
			fmt.Fprintf(w, "%-9s %s (%s)\n", strings.TrimSuffix(g.name, "s"), p.Label, p.ID)
		}
	}
}

func printRelationsTree(w io.Writer, d *handlers.DetailView) {
	header := d.Person.Label
	if d.Person.Lifespan != "" {
		header += " [" + d.Person.Lifespan + "]"
	}
	fmt.Fprintln(w, header)

	all := groups(d)
	for i, g := range all {
		prefix, indent := "+-", "|  "
		if i == len(all)-1 {
			prefix, indent = "\\-", "   "
		}

		if len(g.people) == 0 {
			fmt.Fprintf(w, "%s %s: none\n", prefix, g.name)
			continue
		}
		fmt.Fprintf(w, "%s %s\n", prefix, g.name)
		for j, p := range g.people {
			branch := "+-"
			if j == len(g.people)-1 {
				branch = "\\-"
			}
			fmt.Fprintf(w, "%s%s %s (%s)\n", indent, branch, p.Label, p.ID)
		}
	}
}
