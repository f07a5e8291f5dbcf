package mocks

import (
	"context"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
)

// RelationalDB is a mock implementation of ports.RelationalDB.
// It keeps people and edges in insertion order.
type RelationalDB struct {
	People        []entities.Person
	Relationships []entities.Relationship
	Audit         []entities.AuditEntry
	Err           error

	// Call tracking
	SavePersonCallCount       int
	SaveRelationshipCallCount int
}

// NewRelationalDB creates a new mock RelationalDB.
func NewRelationalDB() *RelationalDB {
	return &RelationalDB{}
}

// Describe returns a fixed name.
func (m *RelationalDB) Describe() string {
	return "mock.db"
}

// Load returns copies of the stored people and edges.
func (m *RelationalDB) Load(_ context.Context) (*ports.Dataset, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return &ports.Dataset{
		People:        append([]entities.Person{}, m.People...),
		Relationships: append([]entities.Relationship{}, m.Relationships...),
	}, nil
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *RelationalDB) EnsureSchema(_ context.Context) error {
	return m.Err
}

// Close closes the database connection.
func (m *RelationalDB) Close() error {
	return nil
}

// SavePerson inserts or replaces a person in place.
func (m *RelationalDB) SavePerson(_ context.Context, p *entities.Person) error {
	m.SavePersonCallCount++
	if m.Err != nil {
		return m.Err
	}
	for i := range m.People {
		if m.People[i].ID == p.ID {
			m.People[i] = *p
			return nil
		}
	}
	m.People = append(m.People, *p)
	return nil
}

// FindPersonByID returns nil if the id is unknown.
func (m *RelationalDB) FindPersonByID(_ context.Context, id string) (*entities.Person, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.People {
		if m.People[i].ID == id {
			p := m.People[i]
			return &p, nil
		}
	}
	return nil, nil
}

// ListPeople lists all people.
func (m *RelationalDB) ListPeople(_ context.Context) ([]entities.Person, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]entities.Person{}, m.People...), nil
}

// CountPeople returns the number of people.
func (m *RelationalDB) CountPeople(_ context.Context) (int, error) {
	return len(m.People), m.Err
}

// SaveRelationship appends an edge unless the same one exists. Symmetric
// edges match in either orientation.
func (m *RelationalDB) SaveRelationship(_ context.Context, rel *entities.Relationship) (bool, error) {
	m.SaveRelationshipCallCount++
	if m.Err != nil {
		return false, m.Err
	}
	for _, existing := range m.Relationships {
		if existing.Same(*rel) {
			return false, nil
		}
	}
	m.Relationships = append(m.Relationships, *rel)
	return true, nil
}

// ListRelationships lists all edges.
func (m *RelationalDB) ListRelationships(_ context.Context) ([]entities.Relationship, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]entities.Relationship{}, m.Relationships...), nil
}

// CountRelationships returns the number of edges.
func (m *RelationalDB) CountRelationships(_ context.Context) (int, error) {
	return len(m.Relationships), m.Err
}

// LogAction records an audit entry.
func (m *RelationalDB) LogAction(_ context.Context, action, source string, details map[string]any) error {
	if m.Err != nil {
		return m.Err
	}
	m.Audit = append(m.Audit, entities.AuditEntry{
		ID:      int64(len(m.Audit) + 1),
		Action:  action,
		Source:  source,
		Details: details,
	})
	return nil
}

// FindAuditLogByAction returns matching entries, newest first.
func (m *RelationalDB) FindAuditLogByAction(_ context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for i := len(m.Audit) - 1; i >= 0 && len(result) < limit; i-- {
		if m.Audit[i].Action == action {
			result = append(result, m.Audit[i])
		}
	}
	return result, nil
}
