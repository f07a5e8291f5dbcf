package ports

import (
	"context"

	"github.com/ersonp/lineage/internal/domain/entities"
)

// RelationalDB defines the interface for relational dataset storage.
// It keeps the authoritative input (people, parent and spouse edges) so a
// dataset can be loaded without re-parsing files. Derived edges are never
// written back.
type RelationalDB interface {
	Source

	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// SavePerson saves or updates a person.
	SavePerson(ctx context.Context, person *entities.Person) error

	// FindPersonByID finds a person by id. Returns nil if not found.
	FindPersonByID(ctx context.Context, id string) (*entities.Person, error)

	// ListPeople lists all people ordered by insertion.
	ListPeople(ctx context.Context) ([]entities.Person, error)

	// CountPeople returns the number of stored people.
	CountPeople(ctx context.Context) (int, error)

	// SaveRelationship stores an edge unless the same (source, target, type)
	// already exists. Returns true when a row was written.
	SaveRelationship(ctx context.Context, rel *entities.Relationship) (bool, error)

	// ListRelationships lists all edges ordered by insertion.
	ListRelationships(ctx context.Context) ([]entities.Relationship, error)

	// CountRelationships returns the number of stored edges.
	CountRelationships(ctx context.Context) (int, error)

	// LogAction appends an entry to the audit log. Source names the input
	// the action came from and may be empty.
	LogAction(ctx context.Context, action, source string, details map[string]any) error

	// FindAuditLogByAction lists audit entries for an action, newest first.
	FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}
