package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
	"github.com/ersonp/lineage/internal/domain/services"
	"github.com/ersonp/lineage/internal/infrastructure/parsers"
)

// ImportHandler handles importing dataset files into a database.
type ImportHandler struct {
	service *services.ImportService
	db      ports.RelationalDB
}

// NewImportHandler creates a new import handler.
func NewImportHandler(service *services.ImportService, db ports.RelationalDB) *ImportHandler {
	return &ImportHandler{
		service: service,
		db:      db,
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	Format     string                    // "json", "yaml", or "auto"
	DryRun     bool                      // Validate without saving
	OnConflict services.ConflictStrategy // How to handle existing people
}

// Handle imports people and relationships from a file.
func (h *ImportHandler) Handle(ctx context.Context, filePath string, opts ImportOptions) (*services.ImportResult, error) {
	src, err := parsers.NewFileSource(filePath, opts.Format)
	if err != nil {
		return nil, err
	}

	raw, err := src.LoadRaw(ctx)
	if err != nil {
		return nil, err
	}

	return h.service.Import(ctx, raw, services.ImportOptions{
		DryRun:     opts.DryRun,
		OnConflict: opts.OnConflict,
		Source:     filePath,
	})
}

// History returns the most recent imports, newest first.
func (h *ImportHandler) History(ctx context.Context, limit int) ([]entities.AuditEntry, error) {
	entries, err := h.db.FindAuditLogByAction(ctx, entities.AuditActionImport, limit)
	if err != nil {
		return nil, fmt.Errorf("reading import history: %w", err)
	}
	return entries, nil
}
