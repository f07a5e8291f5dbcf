// Package datasource opens the configured dataset as a ports.Source.
package datasource

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ersonp/lineage/internal/domain/ports"
	"github.com/ersonp/lineage/internal/infrastructure/config"
	"github.com/ersonp/lineage/internal/infrastructure/parsers"
	"github.com/ersonp/lineage/internal/infrastructure/relationaldb/sqlite"
)

// ErrNoSource is returned when no dataset path is configured.
var ErrNoSource = errors.New("no dataset configured (use --data, --tree or LINEAGE_DATA)")

// Opened is a source plus whatever must be released after use.
type Opened struct {
	ports.Source
	// Path is the file to watch for changes.
	Path   string
	Format string
	close  func() error
}

// Close releases the source.
func (o *Opened) Close() error {
	if o.close == nil {
		return nil
	}
	return o.close()
}

// Open resolves the format of cfg and opens the matching source.
// SQLite databases must already exist.
func Open(ctx context.Context, cfg config.SourceConfig) (*Opened, error) {
	if cfg.Path == "" {
		return nil, ErrNoSource
	}

	format, err := config.DetectFormat(cfg.Path, cfg.Format)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(cfg.Path); err != nil {
		return nil, fmt.Errorf("dataset %s: %w", cfg.Path, err)
	}

	switch format {
	case config.FormatSQLite:
		repo, err := OpenDatabase(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return &Opened{Source: repo, Path: cfg.Path, Format: format, close: repo.Close}, nil
	default:
		src, err := parsers.NewFileSource(cfg.Path, format)
		if err != nil {
			return nil, err
		}
		return &Opened{Source: src, Path: cfg.Path, Format: format}, nil
	}
}

// OpenDatabase opens (creating if needed) a SQLite dataset database and
// ensures its schema.
func OpenDatabase(ctx context.Context, path string) (*sqlite.Repository, error) {
	repo, err := sqlite.NewRepository(config.SQLiteConfig{Path: path})
	if err != nil {
		return nil, err
	}
	if err := repo.EnsureSchema(ctx); err != nil {
		repo.Close()
		return nil, err
	}
	return repo, nil
}
