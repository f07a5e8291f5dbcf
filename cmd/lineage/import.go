package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ersonp/lineage/internal/application/handlers"
	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/services"
)

type importFlags struct {
	format     string
	db         string
	dryRun     bool
	onConflict string
	history    bool
}

func newImportCmd() *cobra.Command {
	var flags importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a JSON or YAML dataset into SQLite",
		Long: `Validates a dataset file and copies its people and relationships into a
SQLite database. Invalid records are reported and skipped. The database
defaults to the configured source when it is SQLite, otherwise to
.lineage/trees/<tree>/lineage.db.

Examples:
  lineage import family.json --db family.db
  lineage import family.yaml --dry-run
  lineage import --history --db family.db`,
		Args: func(cmd *cobra.Command, args []string) error {
			if flags.history {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.history {
				return runImportHistory(cmd, flags)
			}
			return runImport(cmd, args[0], flags)
		},
	}

	cmd.Flags().StringVarP(&flags.format, "format", "f", "auto", "File format (json, yaml, auto)")
	cmd.Flags().StringVar(&flags.db, "db", "", "Target SQLite database")
	cmd.Flags().BoolVar(&flags.dryRun, "dry-run", false, "Validate without saving")
	cmd.Flags().StringVar(&flags.onConflict, "on-conflict", "skip", "Existing people: skip, overwrite")
	cmd.Flags().BoolVar(&flags.history, "history", false, "List previous imports into the database")

	return cmd
}

func runImport(cmd *cobra.Command, filePath string, flags importFlags) error {
	strategy, err := services.ParseConflictStrategy(flags.onConflict)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	return withImportHandler(ctx, flags.db, func(_ *Deps, handler *handlers.ImportHandler) error {
		fmt.Fprintf(out, "Importing %s...\n", filePath)

		result, err := handler.Handle(ctx, filePath, handlers.ImportOptions{
			Format:     flags.format,
			DryRun:     flags.dryRun,
			OnConflict: strategy,
		})
		if err != nil {
			return fmt.Errorf("importing file: %w", err)
		}

		printImportResult(out, result, flags.dryRun)
		return nil
	})
}

func printImportResult(w io.Writer, result *services.ImportResult, dryRun bool) {
	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "\nValidation errors (%d):\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e.Error())
		}
	}

	fmt.Fprintln(w)
	if dryRun {
		fmt.Fprintf(w, "Dry run: %d people and %d relationships would be imported", result.People, result.Relationships)
	} else {
		fmt.Fprintf(w, "Imported: %d people, %d relationships", result.People, result.Relationships)
	}

	if result.Skipped > 0 {
		fmt.Fprintf(w, ", %d skipped (already exist)", result.Skipped)
	}

	if len(result.Errors) > 0 {
		fmt.Fprintf(w, ", %d errors", len(result.Errors))
	}

	fmt.Fprintln(w)
}

func runImportHistory(cmd *cobra.Command, flags importFlags) error {
	ctx := cmd.Context()

	return withImportHandler(ctx, flags.db, func(_ *Deps, handler *handlers.ImportHandler) error {
		entries, err := handler.History(ctx, DefaultHistoryLimit)
		if err != nil {
			return err
		}
		printImportHistory(cmd.OutOrStdout(), entries)
		return nil
	})
}

func printImportHistory(w io.Writer, entries []entities.AuditEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No imports recorded.")
		return
	}

	fmt.Fprintf(w, "%-20s %-30s %s\n", "WHEN", "SOURCE", "DETAILS")
	for _, e := range entries {
		fmt.Fprintf(w, "%-20s %-30s people=%v relationships=%v skipped=%v errors=%v\n",
			e.CreatedAt.Format("2006-01-02 15:04:05"), e.Source,
			e.Details["people"], e.Details["relationships"], e.Details["skipped"], e.Details["errors"])
	}
}
