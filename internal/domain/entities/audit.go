package entities

import "time"

// AuditEntry records one write to a dataset database, such as an import.
type AuditEntry struct {
	ID        int64          `json:"id"`
	Action    string         `json:"action"`
	Source    string         `json:"source,omitempty"`
	Details   map[string]any `json:"details,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// Audit actions.
const (
	AuditActionImport = "import"
)
