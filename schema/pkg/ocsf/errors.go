package ocsf

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownEventClass is returned when a caption is not present in the graph.
	ErrUnknownEventClass = errors.New("unknown event class")

	// ErrUnresolvedObjectType is returned when an attribute references an
	// object that is missing from the graph. It signals a corrupt schema, not
	// a bad request.
	ErrUnresolvedObjectType = errors.New("unresolved object type")

	// ErrDuplicateDefinition is returned by NewGraph for repeated captions or object names.
	ErrDuplicateDefinition = errors.New("duplicate definition")
)

// UnresolvedObjectTypeError carries the dangling reference that broke a traversal.
type UnresolvedObjectTypeError struct {
	ObjectType string // referenced object name
	Owner      string // object or class holding the attribute
	Attribute  string // attribute name on the owner
}

func (e *UnresolvedObjectTypeError) Error() string {
	return fmt.Sprintf("%s: %q referenced by %s.%s", ErrUnresolvedObjectType, e.ObjectType, e.Owner, e.Attribute)
}

// Unwrap allows errors.Is(err, ErrUnresolvedObjectType).
func (e *UnresolvedObjectTypeError) Unwrap() error {
	return ErrUnresolvedObjectType
}

func unknownEventClass(caption string) error {
	return fmt.Errorf("%w: %q", ErrUnknownEventClass, caption)
}
