package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrRead is returned by Load when the source cannot be opened or read.
	ErrRead = errors.New("graph source unreadable")

	// ErrMalformed marks a record that has a known tag but bad fields.
	ErrMalformed = errors.New("malformed record")

	// ErrUnknownNode marks an edge record that names a node that was never declared.
	ErrUnknownNode = errors.New("unknown node reference")

	// ErrNodeNotFound is returned by lookups for ids absent from the graph.
	ErrNodeNotFound = errors.New("node not found")
)

// RecordError describes a record skipped during ingestion.
type RecordError struct {
	Err  error
	Tag  string
	Line int
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d (%s): %v", e.Line, e.Tag, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

func nodeNotFound(id string) error {
	return fmt.Errorf("%w: %q", ErrNodeNotFound, id)
}

func nodeRef(id string) error {
	return fmt.Errorf("%w: %q", ErrUnknownNode, id)
}
