package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/lineage/internal/application/handlers"
	"github.com/ersonp/lineage/internal/domain/entities"
)

type deriveFlags struct {
	format string
	all    bool
}

func newDeriveCmd() *cobra.Command {
	var flags deriveFlags

	cmd := &cobra.Command{
		Use:   "derive",
		Short: "Derive sibling and cousin relationships",
		Long: `Loads the dataset, derives sibling and cousin edges from parent edges
and prints what was added.

Examples:
  lineage derive --data family.json
  lineage derive --format json --all`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDerive(cmd, flags)
		},
	}

	cmd.Flags().StringVar(&flags.format, "format", FormatList, "Output format: list, json")
	cmd.Flags().BoolVar(&flags.all, "all", false, "Print every edge, not only derived ones")

	return cmd
}

func runDerive(cmd *cobra.Command, flags deriveFlags) error {
	if err := validateFormat(flags.format, validDeriveFormats); err != nil {
		return err
	}

	return withGraph(cmd.Context(), func(_ *Deps, g *handlers.Graph) error {
		edges := g.DerivedEdges()
		if flags.all {
			edges = g.Edges()
		}

		out := cmd.OutOrStdout()
		if flags.format == FormatJSON {
			return printEdgesJSON(out, g, edges)
		}
		return printEdgesList(out, g, edges)
	})
}

// deriveOutput is the JSON shape of derive.
type deriveOutput struct {
	Stats handlers.GraphStats     `json:"stats"`
	Edges []entities.Relationship `json:"edges"`
}

func printEdgesJSON(w io.Writer, g *handlers.Graph, edges []entities.Relationship) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(deriveOutput{Stats: g.Stats(), Edges: edges}); err != nil {
		return fmt.Errorf("encoding JSON: %w", err)
	}
	return nil
}

func printEdgesList(w io.Writer, g *handlers.Graph, edges []entities.Relationship) error {
	labels := make(map[string]string)
	for _, p := range g.People() {
		labels[p.ID] = p.FullName()
	}

	for _, rel := range edges {
		arrow := "->"
		if rel.Type.IsSymmetric() {
			arrow = "<->"
		}
		fmt.Fprintf(w, "%-8s %s (%s) %s %s (%s)\n",
			rel.Type, labels[rel.Source], rel.Source, arrow, labels[rel.Target], rel.Target)
	}

	stats := g.Stats()
	fmt.Fprintf(w, "\n%d people, %d siblings and %d cousins derived in %s\n",
		stats.People, len(g.Derived.Siblings), len(g.Derived.Cousins), g.Derived.Duration)
	return nil
}
