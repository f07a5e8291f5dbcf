package entities

import "errors"

var (
	// ErrPersonNotFound is returned when an id does not name a loaded person.
	ErrPersonNotFound = errors.New("person not found")

	// ErrDanglingReference marks an edge whose endpoint has no person record.
	// The dataset is malformed and the graph cannot be trusted.
	ErrDanglingReference = errors.New("dangling reference")

	// ErrAmbiguousName is returned when a name lookup matches several people.
	ErrAmbiguousName = errors.New("ambiguous name")

	// ErrInvalidDataset covers structural problems such as duplicate ids.
	ErrInvalidDataset = errors.New("invalid dataset")
)
