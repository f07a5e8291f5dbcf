package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ersonp/lineage/internal/application/handlers"
)

func newPeopleCmd() *cobra.Command {
	var search string

	cmd := &cobra.Command{
		Use:   "people",
		Short: "List people in the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withGraph(cmd.Context(), func(_ *Deps, g *handlers.Graph) error {
				printPeople(cmd.OutOrStdout(), g.Search(search))
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only people whose name contains this text")

	return cmd
}

func printPeople(w io.Writer, people []handlers.PersonView) {
	if len(people) == 0 {
		fmt.Fprintln(w, "No people found.")
		return
	}

	fmt.Fprintf(w, "%-8s %-28s %-8s %-22s %s\n", "ID", "NAME", "GENDER", "LIFESPAN", "PARENTS")
	fmt.Fprintf(w, "%-8s %-28s %-8s %-22s %s\n", "--", "----", "------", "--------", "-------")
	for _, p := range people {
		fmt.Fprintf(w, "%-8s %-28s %-8s %-22s %s\n",
			p.ID, p.Label, p.Gender, p.Lifespan, strings.Join(p.Parents, ","))
	}
}
