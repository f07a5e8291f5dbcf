package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/ersonp/lineage/internal/application/handlers"
	"github.com/ersonp/lineage/internal/domain/services"
	"github.com/ersonp/lineage/internal/infrastructure/config"
	"github.com/ersonp/lineage/internal/infrastructure/datasource"
	"github.com/ersonp/lineage/internal/infrastructure/logging"
)

// Deps holds what every command needs: the working directory, the
// resolved configuration and a logger.
type Deps struct {
	Cwd    string
	Config *config.Config
	Logger *zap.Logger
}

// withDeps loads config, applies global flags and builds the logger, then
// calls fn. The logger is synced afterwards.
func withDeps(fn func(*Deps) error) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	cfg, err := config.Load(cwd)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := applyGlobalFlags(cwd, cfg); err != nil {
		return err
	}

	logger := logging.NewStderr(cfg.Log)
	defer func() { _ = logger.Sync() }()

	return fn(&Deps{Cwd: cwd, Config: cfg, Logger: logger})
}

// applyGlobalFlags resolves the dataset: --data wins over --tree, which
// wins over the config file and LINEAGE_DATA.
func applyGlobalFlags(cwd string, cfg *config.Config) error {
	if globalLogLevel != "" {
		cfg.Log.Level = globalLogLevel
	}

	switch {
	case globalData != "":
		cfg.Source.Path = globalData
	case globalTree != "":
		trees, err := config.LoadTrees(cwd)
		if err != nil {
			return fmt.Errorf("loading trees: %w", err)
		}
		entry, err := trees.Get(globalTree)
		if err != nil {
			return err
		}
		cfg.Source = entry.Source()
	}

	if globalSourceFormat != "" {
		cfg.Source.Format = globalSourceFormat
	}
	return nil
}

// withGraphHandler opens the configured dataset and provides a handler
// that loads it. The source is closed afterwards.
func withGraphHandler(ctx context.Context, fn func(*Deps, *handlers.GraphHandler, *datasource.Opened) error) error {
	return withDeps(func(d *Deps) error {
		src, err := datasource.Open(ctx, d.Config.Source)
		if err != nil {
			return err
		}
		defer src.Close()

		return fn(d, handlers.NewGraphHandler(src, d.Logger), src)
	})
}

// withGraph loads and derives the configured dataset, then calls fn.
func withGraph(ctx context.Context, fn func(*Deps, *handlers.Graph) error) error {
	return withGraphHandler(ctx, func(d *Deps, h *handlers.GraphHandler, _ *datasource.Opened) error {
		g, err := h.Load(ctx)
		if err != nil {
			return err
		}
		return fn(d, g)
	})
}

// withImportHandler opens (creating if needed) the SQLite database at
// dbPath and provides an ImportHandler for it.
func withImportHandler(ctx context.Context, dbPath string, fn func(*Deps, *handlers.ImportHandler) error) error {
	return withDeps(func(d *Deps) error {
		path := dbPath
		if path == "" {
			path = defaultDatabasePath(d)
		}

		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("creating database directory: %w", err)
		}

		repo, err := datasource.OpenDatabase(ctx, path)
		if err != nil {
			return fmt.Errorf("opening database %s: %w", path, err)
		}
		defer repo.Close()

		service := services.NewImportService(repo, d.Logger)
		return fn(d, handlers.NewImportHandler(service, repo))
	})
}

// defaultDatabasePath picks the configured source when it is a database,
// otherwise the per-tree database under .lineage.
func defaultDatabasePath(d *Deps) string {
	src := d.Config.Source
	if src.Path != "" {
		if format, err := config.DetectFormat(src.Path, src.Format); err == nil && format == config.FormatSQLite {
			return src.Path
		}
	}
	name := globalTree
	if name == "" {
		name = "default"
	}
	return config.SQLitePathForTree(d.Cwd, name)
}

func validateFormat(format string, valid []string) error {
	if !slices.Contains(valid, format) {
		return fmt.Errorf("invalid format: %s (valid: %s)", format, strings.Join(valid, ", "))
	}
	return nil
}
