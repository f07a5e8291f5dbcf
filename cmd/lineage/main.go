// Package main provides the entry point for the lineage CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	version = "0.1.0-dev"

	globalData         string
	globalSourceFormat string
	globalTree         string
	globalLogLevel     string
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lineage",
		Short:         "Derive sibling and cousin relationships from a family graph",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&globalData, "data", "d", "", "Dataset file (.json, .yaml, .db); overrides config and LINEAGE_DATA")
	rootCmd.PersistentFlags().StringVar(&globalSourceFormat, "source-format", "", "Dataset format: auto, json, yaml, sqlite")
	rootCmd.PersistentFlags().StringVarP(&globalTree, "tree", "t", "", "Named dataset from .lineage/trees.yaml")
	rootCmd.PersistentFlags().StringVar(&globalLogLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newInitCmd(),
		newDeriveCmd(),
		newPeopleCmd(),
		newRelationsCmd(),
		newRenderCmd(),
		newServeCmd(),
		newImportCmd(),
		newTreesCmd(),
	)

	return rootCmd
}
