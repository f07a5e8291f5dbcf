package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ersonp/lineage/internal/infrastructure/config"
)

func newTreesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trees",
		Short: "Manage named datasets",
		Long:  "Named datasets live in .lineage/trees.yaml and are selected with --tree.",
		RunE:  runTreesList,
	}

	cmd.AddCommand(
		newTreesListCmd(),
		newTreesAddCmd(),
		newTreesRemoveCmd(),
	)

	return cmd
}

func newTreesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List named datasets",
		Args:  cobra.NoArgs,
		RunE:  runTreesList,
	}
}

func runTreesList(cmd *cobra.Command, _ []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	trees, err := config.LoadTrees(cwd)
	if err != nil {
		return fmt.Errorf("loading trees: %w", err)
	}

	printTrees(cmd.OutOrStdout(), trees)
	return nil
}

func printTrees(w io.Writer, trees *config.TreesConfig) {
	if len(trees.Trees) == 0 {
		fmt.Fprintln(w, "No trees registered.")
		fmt.Fprintln(w, "Use 'lineage trees add NAME PATH' to register one.")
		return
	}

	fmt.Fprintf(w, "%-20s %-30s %-8s %s\n", "NAME", "PATH", "FORMAT", "DESCRIPTION")
	fmt.Fprintf(w, "%-20s %-30s %-8s %s\n", "----", "----", "------", "-----------")
	for _, name := range trees.Names() {
		entry := trees.Trees[name]
		fmt.Fprintf(w, "%-20s %-30s %-8s %s\n", name, entry.Path, entry.Source().Format, entry.Description)
	}
}

func newTreesAddCmd() *cobra.Command {
	var format, description string

	cmd := &cobra.Command{
		Use:   "add NAME PATH",
		Short: "Register a named dataset",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
			if err := addTree(cwd, args[0], config.TreeEntry{
				Path:        args[1],
				Format:      format,
				Description: description,
			}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Registered tree %q -> %s\n", args[0], args[1])
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "", "Dataset format: auto, json, yaml, sqlite")
	cmd.Flags().StringVar(&description, "description", "", "Tree description")

	return cmd
}

// addTree validates and registers a tree. Existing names are rejected.
func addTree(basePath, name string, entry config.TreeEntry) error {
	if config.SanitizeTreeName(name) != name {
		return fmt.Errorf("invalid tree name %q (use lowercase letters, digits and underscores, e.g. %q)",
			name, config.SanitizeTreeName(name))
	}
	if _, err := config.DetectFormat(entry.Path, entry.Format); err != nil {
		return err
	}

	trees, err := config.LoadTrees(basePath)
	if err != nil {
		return fmt.Errorf("loading trees: %w", err)
	}
	if trees.Exists(name) {
		return fmt.Errorf("tree %q already exists", name)
	}

	trees.Add(name, entry)
	if err := trees.Save(basePath); err != nil {
		return fmt.Errorf("saving trees: %w", err)
	}
	return nil
}

func newTreesRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove NAME",
		Short: "Unregister a named dataset",
		Long:  "Removes the registry entry. The dataset file itself is left alone.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("getting current directory: %w", err)
			}
			if err := removeTree(cwd, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed tree %q\n", args[0])
			return nil
		},
	}
}

func removeTree(basePath, name string) error {
	trees, err := config.LoadTrees(basePath)
	if err != nil {
		return fmt.Errorf("loading trees: %w", err)
	}
	if !trees.Exists(name) {
		return fmt.Errorf("tree %q not found", name)
	}

	trees.Remove(name)
	if err := trees.Save(basePath); err != nil {
		return fmt.Errorf("saving trees: %w", err)
	}
	return nil
}
