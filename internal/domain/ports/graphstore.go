package ports

import "github.com/ersonp/lineage/internal/domain/entities"

// GraphStore holds people and typed edges for one loaded dataset.
// Implementations are not safe for concurrent writers; the graph is treated as
// read-only once derivation has committed.
type GraphStore interface {
	// GetNode returns the person with the given id.
	// Unknown ids yield an error wrapping entities.ErrPersonNotFound.
	GetNode(id string) (*entities.Person, error)

	// Nodes returns all people in insertion order.
	Nodes() []entities.Person

	// Edges returns every edge in insertion order.
	Edges() []entities.Relationship

	// EdgesOfType returns the edges of one type in insertion order.
	EdgesOfType(relType entities.RelationType) []entities.Relationship

	// AddEdge appends an edge. The store does not deduplicate.
	AddEdge(rel entities.Relationship) error
	// AddEdges appends a batch of edges, all or none: if any edge is
	// rejected the store is left unchanged.
	AddEdges(rels []entities.Relationship) error
}
