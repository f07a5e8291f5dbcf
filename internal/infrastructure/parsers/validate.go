package parsers

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ersonp/lineage/internal/domain/entities"
	"github.com/ersonp/lineage/internal/domain/ports"
)

var validate = newValidator()

// newValidator reports fields by their json names, e.g. "dateOfBirth.month".
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// RecordError describes one invalid record in a dataset file.
type RecordError struct {
	Section string // "nodes" or "links"
	Index   int    // 1-indexed position within the section
	Field   string // Which field has the error
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e RecordError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s[%d]: %s: %s", e.Section, e.Index, e.Field, e.Message)
	}
	return fmt.Sprintf("%s[%d]: %s", e.Section, e.Index, e.Message)
}

// JoinRecordErrors folds record errors into a single error, or nil.
func JoinRecordErrors(errs []RecordError) error {
	if len(errs) == 0 {
		return nil
	}
	joined := make([]error, len(errs))
	for i := range errs {
		joined[i] = errs[i]
	}
	return fmt.Errorf("%w: %d invalid records: %w", entities.ErrInvalidDataset, len(errs), errors.Join(joined...))
}

// Convert validates raw records and converts them to domain values.
// Invalid records are skipped and reported; valid ones are returned in file
// order. Referential checks (dangling ids) are left to the graph store.
func Convert(raw *RawDataset) (*ports.Dataset, []RecordError) {
	var errs []RecordError
	ds := &ports.Dataset{
		People:        make([]entities.Person, 0, len(raw.Nodes)),
		Relationships: make([]entities.Relationship, 0, len(raw.Links)+len(raw.Edges)),
	}

	for i := range raw.Nodes {
		p, err := ConvertPerson(&raw.Nodes[i], i+1)
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		ds.People = append(ds.People, p)
	}

	for i, rr := range raw.Relationships() {
		rel, err := ConvertRelationship(&rr, i+1)
		if err != nil {
			errs = append(errs, *err)
			continue
		}
		ds.Relationships = append(ds.Relationships, rel)
	}

	return ds, errs
}

// ConvertPerson validates one node record. index is 1-based.
func ConvertPerson(raw *RawPerson, index int) (entities.Person, *RecordError) {
	if err := validate.Struct(raw); err != nil {
		return entities.Person{}, fieldError("nodes", index, err)
	}

	gender, err := entities.ParseGender(raw.Gender)
	if err != nil {
		return entities.Person{}, &RecordError{
			Section: "nodes", Index: index, Field: "gender", Value: raw.Gender, Message: err.Error(),
		}
	}

	return entities.Person{
		ID:          strings.TrimSpace(string(raw.ID)),
		Name:        raw.Name,
		Surname:     raw.Surname,
		Gender:      gender,
		DateOfBirth: convertDate(raw.DateOfBirth),
		DateOfDeath: convertDate(raw.DateOfDeath),
	}, nil
}

func convertDate(raw *RawDate) *entities.PartialDate {
	if raw == nil {
		return nil
	}
	d := &entities.PartialDate{Day: raw.Day, Month: raw.Month, Year: raw.Year}
	if d.IsZero() {
		return nil
	}
	return d
}

// ConvertRelationship validates one edge record. index is 1-based.
func ConvertRelationship(raw *RawRelationship, index int) (entities.Relationship, *RecordError) {
	if err := validate.Struct(raw); err != nil {
		return entities.Relationship{}, fieldError("links", index, err)
	}

	relType, err := entities.ParseRelationType(raw.Type)
	if err != nil {
		return entities.Relationship{}, &RecordError{
			Section: "links", Index: index, Field: "type", Value: raw.Type, Message: err.Error(),
		}
	}

	return entities.Relationship{
		Source: strings.TrimSpace(string(raw.Source)),
		Target: strings.TrimSpace(string(raw.Target)),
		Type:   relType,
	}, nil
}

// fieldError reports the first failing validator rule as a RecordError.
func fieldError(section string, index int, err error) *RecordError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return &RecordError{Section: section, Index: index, Message: err.Error()}
	}

	fe := verrs[0]
	field := fieldPath(fe.Namespace())
	re := &RecordError{Section: section, Index: index, Field: field, Value: fmt.Sprint(fe.Value())}
	switch fe.Tag() {
	case "required":
		re.Message = "missing required field"
	case "nefield":
		re.Message = "must differ from " + lowerFirst(fe.Param())
	case "min", "max":
		re.Message = fmt.Sprintf("value %v out of range (%s %s)", fe.Value(), fe.Tag(), fe.Param())
	default:
		re.Message = fmt.Sprintf("failed %s validation", fe.Tag())
	}
	return re
}

// fieldPath drops the struct name: "RawPerson.dateOfBirth.day" becomes
// "dateOfBirth.day".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
