// Package entities contains core domain data structures.
package entities

import (
	"fmt"
	"strconv"
	"strings"
)

// Gender of a person. Unknown is the zero-information default.
type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// ParseGender converts a loosely formatted gender string to Gender.
// Empty input maps to GenderUnknown.
func ParseGender(s string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return GenderMale, nil
	case "female", "f":
		return GenderFemale, nil
	case "unknown", "u", "":
		return GenderUnknown, nil
	default:
		return "", fmt.Errorf("invalid gender: %s (valid: male, female, unknown)", s)
	}
}

// PartialDate is a date where day, month and year are each optional.
type PartialDate struct {
	Day   *int `json:"day,omitempty" yaml:"day,omitempty"`
	Month *int `json:"month,omitempty" yaml:"month,omitempty"`
	Year  *int `json:"year,omitempty" yaml:"year,omitempty"`
}

// NewPartialDate builds a PartialDate; zero arguments are treated as absent.
func NewPartialDate(day, month, year int) *PartialDate {
	d := &PartialDate{}
	if day > 0 {
		d.Day = &day
	}
	if month > 0 {
		d.Month = &month
	}
	if year != 0 {
		d.Year = &year
	}
	return d
}

// IsZero reports whether no component of the date is known.
func (d *PartialDate) IsZero() bool {
	return d == nil || (d.Day == nil && d.Month == nil && d.Year == nil)
}

// String formats the date as "day month year" with "?" for unknown parts.
func (d *PartialDate) String() string {
	if d.IsZero() {
		return ""
	}
	part := func(v *int) string {
		if v == nil {
			return "?"
		}
		return strconv.Itoa(*v)
	}
	return part(d.Day) + " " + part(d.Month) + " " + part(d.Year)
}

// Person is a node of the family graph.
type Person struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Surname     string       `json:"surname,omitempty"`
	Gender      Gender       `json:"gender"`
	DateOfBirth *PartialDate `json:"dateOfBirth,omitempty"`
	DateOfDeath *PartialDate `json:"dateOfDeath,omitempty"`
}

// FullName joins name and surname.
func (p *Person) FullName() string {
	if p.Surname == "" {
		return p.Name
	}
	return p.Name + " " + p.Surname
}

// Lifespan renders the known dates as "b. X", "d. Y" or "X - Y".
func (p *Person) Lifespan() string {
	switch {
	case p.DateOfBirth.IsZero() && p.DateOfDeath.IsZero():
		return ""
	case p.DateOfDeath.IsZero():
		return "b. " + p.DateOfBirth.String()
	case p.DateOfBirth.IsZero():
		return "d. " + p.DateOfDeath.String()
	default:
		return p.DateOfBirth.String() + " - " + p.DateOfDeath.String()
	}
}

// NormalizeName converts a name to lowercase for case-insensitive matching.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
