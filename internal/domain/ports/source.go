package ports

import (
	"context"

	"github.com/ersonp/lineage/internal/domain/entities"
)

// Dataset is the raw input of the graph: people plus authoritative edges.
// Pre-existing sibling or cousin edges may be present and are kept as-is.
type Dataset struct {
	People        []entities.Person       `json:"nodes"`
	Relationships []entities.Relationship `json:"links"`
}

// Source loads a dataset from an external store (file, database).
type Source interface {
	// Load reads the full dataset. The engine only runs after Load returns.
	Load(ctx context.Context) (*Dataset, error)

	// Describe returns a short human-readable location, e.g. a file path.
	Describe() string
}
