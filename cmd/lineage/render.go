package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ersonp/lineage/internal/application/handlers"
	"github.com/ersonp/lineage/internal/infrastructure/visualizer"
)

type renderFlags struct {
	output string
	title  string
}

func newRenderCmd() *cobra.Command {
	var flags renderFlags

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the family graph as a standalone HTML page",
		Long:  "Renders a D3.js force-directed page with every person's relatives embedded.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "Output file (default from config render.output)")
	cmd.Flags().StringVar(&flags.title, "title", "", "Page title (default from config render.title)")

	return cmd
}

func runRender(cmd *cobra.Command, flags renderFlags) error {
	return withGraph(cmd.Context(), func(d *Deps, g *handlers.Graph) error {
		output := flags.output
		if output == "" {
			output = d.Config.Render.Output
		}
		title := flags.title
		if title == "" {
			title = d.Config.Render.Title
		}

		page, err := staticPage(g, title)
		if err != nil {
			return err
		}
		if err := visualizer.WriteFile(output, page); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d people, %d relationships)\n", output, page.NodeCount, page.EdgeCount)
		return nil
	})
}

// staticPage embeds every person's detail so the page works offline.
func staticPage(g *handlers.Graph, title string) (visualizer.Page, error) {
	view := g.View()
	details := make(map[string]*handlers.DetailView, len(view.Nodes))
	for _, n := range view.Nodes {
		d, err := g.Detail(n.ID)
		if err != nil {
			return visualizer.Page{}, fmt.Errorf("building detail for %s: %w", n.ID, err)
		}
		details[n.ID] = d
	}

	return visualizer.Page{
		Title:     title,
		Graph:     view,
		Details:   details,
		NodeCount: len(view.Nodes),
		EdgeCount: len(view.Links),
	}, nil
}
