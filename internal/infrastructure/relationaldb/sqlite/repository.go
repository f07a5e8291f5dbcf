// Package sqlite provides a SQLite implementation of the RelationalDB interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
	"github.com/ersonp/lineage/internal/infrastructure/config"
)

// generateUUID returns a new UUID string.
func generateUUID() string {
	return uuid.New().String()
}

// Repository implements ports.RelationalDB using SQLite.
type Repository struct {
	db   *sql.DB
	path string
}

// NewRepository creates a new SQLite repository.
func NewRepository(cfg config.SQLiteConfig) (*Repository, error) {
	if cfg.Path == "" {
		return nil, errors.New("sqlite path is required")
	}

	db, err := sql.Open("sqlite", cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	// Every connection to :memory: is a separate database.
	if cfg.Path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	// Enable foreign keys for referential integrity
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	// Enable WAL mode for better concurrent read/write performance
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}

	// Set busy timeout to avoid "database is locked" errors
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	return &Repository{
		db:   db,
		path: cfg.Path,
	}, nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

// Path returns the database file path.
func (r *Repository) Path() string {
	return r.path
}

// Describe returns the database file path.
func (r *Repository) Describe() string {
	return r.path
}

// EnsureSchema creates the database schema if it doesn't exist.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	schema := `
	-- People (graph nodes); rowid keeps insertion order
	CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		surname TEXT NOT NULL DEFAULT '',
		normalized_name TEXT NOT NULL,
		gender TEXT NOT NULL DEFAULT 'unknown',
		birth_day INTEGER,
		birth_month INTEGER,
		birth_year INTEGER,
		death_day INTEGER,
		death_month INTEGER,
		death_year INTEGER,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_people_normalized ON people(normalized_name);

	-- Authored relationships (parent, spouse, and any explicit sibling/cousin)
	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL REFERENCES people(id) ON DELETE CASCADE,
		target_id TEXT NOT NULL REFERENCES people(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(source_id, target_id, type)
	);
	CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_type ON relationships(type);

	-- Audit log (tracks imports)
	CREATE TABLE IF NOT EXISTS audit_log (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		action TEXT NOT NULL,
		source TEXT,
		details TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_audit_log_action ON audit_log(action);
	`

	_, err := r.db.ExecContext(ctx, schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Load reads the whole dataset in insertion order.
func (r *Repository) Load(ctx context.Context) (*ports.Dataset, error) {
	people, err := r.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	rels, err := r.ListRelationships(ctx)
	if err != nil {
		return nil, err
	}
	return &ports.Dataset{People: people, Relationships: rels}, nil
}

// SavePerson saves or updates a person. Updates keep the original position.
func (r *Repository) SavePerson(ctx context.Context, person *entities.Person) error {
	query := `
		INSERT INTO people (id, name, surname, normalized_name, gender,
			birth_day, birth_month, birth_year, death_day, death_month, death_year)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			surname = excluded.surname,
			normalized_name = excluded.normalized_name,
			gender = excluded.gender,
			birth_day = excluded.birth_day,
			birth_month = excluded.birth_month,
			birth_year = excluded.birth_year,
			death_day = excluded.death_day,
			death_month = excluded.death_month,
			death_year = excluded.death_year
	`
	gender := person.Gender
	if gender == "" {
		gender = entities.GenderUnknown
	}

	birth := dateColumns(person.DateOfBirth)
	death := dateColumns(person.DateOfDeath)
	_, err := r.db.ExecContext(ctx, query,
		person.ID,
		person.Name,
		person.Surname,
		entities.NormalizeName(person.FullName()),
		string(gender),
		birth[0], birth[1], birth[2],
		death[0], death[1], death[2],
	)
	if err != nil {
		return fmt.Errorf("saving person %s: %w", person.ID, err)
	}
	return nil
}

const personColumns = `id, name, surname, gender,
	birth_day, birth_month, birth_year, death_day, death_month, death_year`

// FindPersonByID finds a person by id. Returns nil if not found.
func (r *Repository) FindPersonByID(ctx context.Context, id string) (*entities.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	person, err := scanPerson(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning person: %w", err)
	}
	return person, nil
}

// ListPeople lists all people in insertion order.
func (r *Repository) ListPeople(ctx context.Context) ([]entities.Person, error) {
	query := `SELECT ` + personColumns + ` FROM people ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying people: %w", err)
	}
	defer rows.Close()

	people := make([]entities.Person, 0, 16)
	for rows.Next() {
		person, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning person: %w", err)
		}
		people = append(people, *person)
	}
	return people, rows.Err()
}

// CountPeople returns the total number of people.
func (r *Repository) CountPeople(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM people`).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting people: %w", err)
	}
	return count, nil
}

// SaveRelationship stores an edge unless the same (source, target, type)
// already exists. Symmetric edges also match the reversed row. Returns true
// when a row was written.
func (r *Repository) SaveRelationship(ctx context.Context, rel *entities.Relationship) (bool, error) {
	query := `
		INSERT INTO relationships (id, source_id, target_id, type)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(source_id, target_id, type) DO NOTHING
	`
	args := []any{generateUUID(), rel.Source, rel.Target, string(rel.Type)}

	if rel.Type.IsSymmetric() {
		query = `
			INSERT INTO relationships (id, source_id, target_id, type)
			SELECT ?, ?, ?, ?
			WHERE NOT EXISTS (
				SELECT 1 FROM relationships
				WHERE source_id = ? AND target_id = ? AND type = ?
			)
			ON CONFLICT(source_id, target_id, type) DO NOTHING
		`
		args = append(args, rel.Target, rel.Source, string(rel.Type))
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("saving relationship %s: %w", rel, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("saving relationship %s: %w", rel, err)
	}
	return n > 0, nil
}

// ListRelationships lists all edges in insertion order.
func (r *Repository) ListRelationships(ctx context.Context) ([]entities.Relationship, error) {
	query := `SELECT source_id, target_id, type FROM relationships ORDER BY rowid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying relationships: %w", err)
	}
	defer rows.Close()

	rels := make([]entities.Relationship, 0, 16)
	for rows.Next() {
		var rel entities.Relationship
		var relType string
		if err := rows.Scan(&rel.Source, &rel.Target, &relType); err != nil {
			return nil, fmt.Errorf("scanning relationship: %w", err)
		}
		rel.Type = entities.RelationType(relType)
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}

// CountRelationships returns the total number of relationships in the database.
func (r *Repository) CountRelationships(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM relationships`
	var count int
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting relationships: %w", err)
	}
	return count, nil
}

// LogAction logs an action to the audit log.
func (r *Repository) LogAction(ctx context.Context, action, source string, details map[string]any) error {
	var detailsJSON sql.NullString
	if details != nil {
		data, err := json.Marshal(details)
		if err != nil {
			return fmt.Errorf("marshaling details: %w", err)
		}
		detailsJSON = sql.NullString{String: string(data), Valid: true}
	}

	var sourceCol sql.NullString
	if source != "" {
		sourceCol = sql.NullString{String: source, Valid: true}
	}

	query := `INSERT INTO audit_log (action, source, details) VALUES (?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, action, sourceCol, detailsJSON)
	if err != nil {
		return fmt.Errorf("logging action: %w", err)
	}
	return nil
}

// FindAuditLogByAction finds audit log entries by action type, newest first.
func (r *Repository) FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	query := `
		SELECT id, action, source, details, created_at
		FROM audit_log
		WHERE action = ?
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, action, limit)
	if err != nil {
		return nil, fmt.Errorf("querying audit log: %w", err)
	}
	defer rows.Close()

	entries := make([]entities.AuditEntry, 0, max(limit, 0))
	for rows.Next() {
		var entry entities.AuditEntry
		var source, details sql.NullString

		if err := rows.Scan(
			&entry.ID,
			&entry.Action,
			&source,
			&details,
			&entry.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scanning audit entry: %w", err)
		}

		entry.Source = source.String

		if details.Valid && details.String != "" {
			if err := json.Unmarshal([]byte(details.String), &entry.Details); err != nil {
				return nil, fmt.Errorf("unmarshaling details: %w", err)
			}
		}

		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanPerson(row rowScanner) (*entities.Person, error) {
	var p entities.Person
	var gender string
	var birth, death [3]sql.NullInt64
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Surname,
		&gender,
		&birth[0], &birth[1], &birth[2],
		&death[0], &death[1], &death[2],
	); err != nil {
		return nil, err
	}
	p.Gender = entities.Gender(gender)
	p.DateOfBirth = dateFromColumns(birth)
	p.DateOfDeath = dateFromColumns(death)
	return &p, nil
}

// dateColumns spreads a partial date into day, month, year columns.
func dateColumns(d *entities.PartialDate) [3]sql.NullInt64 {
	var cols [3]sql.NullInt64
	if d == nil {
		return cols
	}
	for i, v := range []*int{d.Day, d.Month, d.Year} {
		if v != nil {
			cols[i] = sql.NullInt64{Int64: int64(*v), Valid: true}
		}
	}
	return cols
}

func dateFromColumns(cols [3]sql.NullInt64) *entities.PartialDate {
	var parts [3]*int
	for i, c := range cols {
		if c.Valid {
			v := int(c.Int64)
			parts[i] = &v
		}
	}
	d := &entities.PartialDate{Day: parts[0], Month: parts[1], Year: parts[2]}
	if d.IsZero() {
		return nil
	}
	return d
}
