package entities

import (
	"fmt"
	"strings"
)

// RelationType defines the kind of relationship between people.
type RelationType string

const (
	RelationParent  RelationType = "parent"
	RelationSpouse  RelationType = "spouse"
	RelationSibling RelationType = "sibling"
	RelationCousin  RelationType = "cousin"
)

// RelationTypes lists every supported relation type in display order.
var RelationTypes = []RelationType{
	RelationParent,
	RelationSpouse,
	RelationSibling,
	RelationCousin,
}

// ParseRelationType validates and converts a string to RelationType.
func ParseRelationType(s string) (RelationType, error) {
	switch RelationType(strings.ToLower(strings.TrimSpace(s))) {
	case RelationParent:
		return RelationParent, nil
	case RelationSpouse:
		return RelationSpouse, nil
	case RelationSibling:
		return RelationSibling, nil
	case RelationCousin:
		return RelationCousin, nil
	default:
		return "", fmt.Errorf("invalid relationship type: %s (valid: parent, spouse, sibling, cousin)", s)
	}
}

// IsSymmetric reports whether the relation reads the same in both directions.
// Only parent edges carry direction.
func (t RelationType) IsSymmetric() bool {
	return t != RelationParent
}

// IsDerived reports whether edges of this type are computed from parent edges
// rather than supplied as input.
func (t RelationType) IsDerived() bool {
	return t == RelationSibling || t == RelationCousin
}

// Relationship is a typed edge between two people. For parent edges Source is
// the parent and Target the child; every other type is stored once and read
// from either end.
type Relationship struct {
	Source string       `json:"source" yaml:"source"`
	Target string       `json:"target" yaml:"target"`
	Type   RelationType `json:"type" yaml:"type"`
}

// Other returns the endpoint opposite to id, or false when the edge does not
// touch id.
func (r Relationship) Other(id string) (string, bool) {
	switch id {
	case r.Source:
		return r.Target, true
	case r.Target:
		return r.Source, true
	default:
		return "", false
	}
}

// Connects reports whether the edge joins a and b in either orientation.
func (r Relationship) Connects(a, b string) bool {
	return (r.Source == a && r.Target == b) || (r.Source == b && r.Target == a)
}

// Same reports whether r and o are the same edge. Symmetric edges match in
// either orientation.
func (r Relationship) Same(o Relationship) bool {
	if r.Type != o.Type {
		return false
	}
	if r.Type.IsSymmetric() {
		return r.Connects(o.Source, o.Target)
	}
	return r.Source == o.Source && r.Target == o.Target
}

// String renders the edge as "source -[type]-> target".
func (r Relationship) String() string {
	arrow := "->"
	if r.Type.IsSymmetric() {
		arrow = "<->"
	}
	return fmt.Sprintf("%s -[%s]%s %s", r.Source, r.Type, arrow, r.Target)
}
