package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
	"github.com/ersonp/lineage/internal/infrastructure/parsers"
)

// ConflictStrategy defines how to handle people that already exist.
type ConflictStrategy string

const (
	// ConflictSkip keeps the stored person and ignores the imported record.
	ConflictSkip ConflictStrategy = "skip"
	// ConflictOverwrite replaces the stored person with the imported record.
	ConflictOverwrite ConflictStrategy = "overwrite"
)

// ParseConflictStrategy parses a strategy name. Empty means skip.
func ParseConflictStrategy(s string) (ConflictStrategy, error) {
	switch ConflictStrategy(s) {
	case "", ConflictSkip:
		return ConflictSkip, nil
	case ConflictOverwrite:
		return ConflictOverwrite, nil
	default:
		return "", fmt.Errorf("invalid conflict strategy %q (valid: skip, overwrite)", s)
	}
}

// ImportOptions controls import behavior.
type ImportOptions struct {
	DryRun     bool             // Validate without saving
	OnConflict ConflictStrategy // How to handle existing people
	Source     string           // Recorded in the audit log
}

// ImportResult contains the result of an import operation.
type ImportResult struct {
	People        int // people written (or that would be, on dry run)
	Relationships int // edges written
	Skipped       int // existing people and duplicate edges left alone
	Errors        []parsers.RecordError
}

// ImportService copies parsed datasets into a relational database.
type ImportService struct {
	db     ports.RelationalDB
	logger *zap.Logger
}

// NewImportService creates a new import service.
func NewImportService(db ports.RelationalDB, logger *zap.Logger) *ImportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ImportService{db: db, logger: logger.Named("import")}
}

// Import validates raw records and saves the valid ones. Invalid records,
// duplicate ids within the file and edges naming unknown people are skipped
// and reported in the result. Edges may reference people already stored.
func (s *ImportService) Import(ctx context.Context, raw *parsers.RawDataset, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}

	stored, err := s.db.ListPeople(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing stored people: %w", err)
	}
	existing := make(map[string]bool, len(stored))
	for _, p := range stored {
		existing[p.ID] = true
	}

	people := s.validatePeople(raw.Nodes, existing, opts.OnConflict, result)
	known := make(map[string]bool, len(existing)+len(people))
	for id := range existing {
		known[id] = true
	}
	for _, p := range people {
		known[p.ID] = true
	}
	rels := s.validateRelationships(raw.Relationships(), known, result)

	if opts.DryRun {
		result.People = len(people)
		result.Relationships = len(rels)
		return result, nil
	}

	for i := range people {
		if err := s.db.SavePerson(ctx, &people[i]); err != nil {
			return nil, fmt.Errorf("saving people: %w", err)
		}
		result.People++
	}

	for i := range rels {
		written, err := s.db.SaveRelationship(ctx, &rels[i])
		if err != nil {
			return nil, fmt.Errorf("saving relationships: %w", err)
		}
		if written {
			result.Relationships++
		} else {
			result.Skipped++
		}
	}

	details := map[string]any{
		"people":        result.People,
		"relationships": result.Relationships,
		"skipped":       result.Skipped,
		"errors":        len(result.Errors),
	}
	if err := s.db.LogAction(ctx, entities.AuditActionImport, opts.Source, details); err != nil {
		return nil, fmt.Errorf("recording import: %w", err)
	}

	s.logger.Info("import finished",
		zap.String("source", opts.Source),
		zap.Int("people", result.People),
		zap.Int("relationships", result.Relationships),
		zap.Int("skipped", result.Skipped),
		zap.Int("errors", len(result.Errors)),
	)
	return result, nil
}

func (s *ImportService) validatePeople(
	raw []parsers.RawPerson,
	existing map[string]bool,
	onConflict ConflictStrategy,
	result *ImportResult,
) []entities.Person {
	people := make([]entities.Person, 0, len(raw))
	seen := make(map[string]bool, len(raw))

	for i := range raw {
		p, recErr := parsers.ConvertPerson(&raw[i], i+1)
		if recErr != nil {
			result.Errors = append(result.Errors, *recErr)
			continue
		}
		if seen[p.ID] {
			result.Errors = append(result.Errors, parsers.RecordError{
				Section: "nodes", Index: i + 1, Field: "id", Value: p.ID, Message: "duplicate id",
			})
			continue
		}
		seen[p.ID] = true

		if existing[p.ID] && onConflict != ConflictOverwrite {
			result.Skipped++
			continue
		}
		people = append(people, p)
	}
	return people
}

func (s *ImportService) validateRelationships(
	raw []parsers.RawRelationship,
	known map[string]bool,
	result *ImportResult,
) []entities.Relationship {
	rels := make([]entities.Relationship, 0, len(raw))

next:
	for i := range raw {
		rel, recErr := parsers.ConvertRelationship(&raw[i], i+1)
		if recErr != nil {
			result.Errors = append(result.Errors, *recErr)
			continue
		}
		if !known[rel.Source] {
			result.Errors = append(result.Errors, unknownPerson(i+1, "source", rel.Source))
			continue
		}
		if !known[rel.Target] {
			result.Errors = append(result.Errors, unknownPerson(i+1, "target", rel.Target))
			continue
		}
		// spouse(1,2) and spouse(2,1) are one edge.
		for _, seen := range rels {
			if seen.Same(rel) {
				result.Skipped++
				continue next
			}
		}
		rels = append(rels, rel)
	}
	return rels
}

func unknownPerson(index int, field, id string) parsers.RecordError {
	return parsers.RecordError{
		Section: "links",
		Index:   index,
		Field:   field,
		Value:   id,
		Message: fmt.Sprintf("%s: %s", entities.ErrDanglingReference, id),
	}
}
