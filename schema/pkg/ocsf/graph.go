// Package ocsf models a single OCSF schema version as an immutable graph of
// event classes and object definitions.
//
// A Graph is built once by a loader and then shared read-only between any
// number of concurrent projection and validation calls. Nothing in this
// module mutates a Graph after NewGraph returns, so no locking is needed.
package ocsf

import (
	"errors"
	"fmt"
	"sort"
)

// Graph is one schema version: event classes keyed by caption and object
// definitions keyed by name.
type Graph struct {
	version string
	classes map[string]*EventClass
	objects map[string]*ObjectDefinition
}

// NewGraph builds a Graph. Captions and object names must be unique.
// Dangling object references are allowed here; see CheckReferences.
func NewGraph(version string, classes []*EventClass, objects []*ObjectDefinition) (*Graph, error) {
	g := &Graph{
		version: version,
		classes: make(map[string]*EventClass, len(classes)),
		objects: make(map[string]*ObjectDefinition, len(objects)),
	}

	for _, obj := range objects {
		if _, exists := g.objects[obj.Name]; exists {
			return nil, fmt.Errorf("%w: object %q", ErrDuplicateDefinition, obj.Name)
		}
		g.objects[obj.Name] = obj
	}

	for _, class := range classes {
		if _, exists := g.classes[class.Caption]; exists {
			return nil, fmt.Errorf("%w: event class %q", ErrDuplicateDefinition, class.Caption)
		}
		g.classes[class.Caption] = class
	}

	return g, nil
}

// Version returns the schema version string.
func (g *Graph) Version() string {
	return g.version
}

// Class returns the event class with the given caption.
func (g *Graph) Class(caption string) (*EventClass, error) {
	class, ok := g.classes[caption]
	if !ok {
		return nil, unknownEventClass(caption)
	}
	return class, nil
}

// ClassByUID returns the event class with the given numeric identifier.
func (g *Graph) ClassByUID(uid int) (*EventClass, error) {
	for _, class := range g.classes {
		if class.UID == uid {
			return class, nil
		}
	}
	return nil, fmt.Errorf("%w: uid %d", ErrUnknownEventClass, uid)
}

// Classes returns all event classes ordered by UID.
func (g *Graph) Classes() []*EventClass {
	out := make([]*EventClass, 0, len(g.classes))
	for _, class := range g.classes {
		out = append(out, class)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UID != out[j].UID {
			return out[i].UID < out[j].UID
		}
		return out[i].Caption < out[j].Caption
	})
	return out
}

// Object returns the object definition with the given name.
func (g *Graph) Object(name string) (*ObjectDefinition, bool) {
	obj, ok := g.objects[name]
	return obj, ok
}

// Objects returns all object definitions ordered by name.
func (g *Graph) Objects() []*ObjectDefinition {
	out := make([]*ObjectDefinition, 0, len(g.objects))
	for _, obj := range g.objects {
		out = append(out, obj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ResolveObject returns the object definition referenced by attr, which is
// owned by the object or class named owner.
func (g *Graph) ResolveObject(owner string, attr Attribute) (*ObjectDefinition, error) {
	obj, ok := g.objects[attr.ObjectType]
	if !ok {
		return nil, &UnresolvedObjectTypeError{
			ObjectType: attr.ObjectType,
			Owner:      owner,
			Attribute:  attr.Name,
		}
	}
	return obj, nil
}

// CheckReferences reports every object-typed attribute whose object is
// missing from the graph. It returns nil for a consistent graph.
func (g *Graph) CheckReferences() error {
	var errs []error
	check := func(owner *ObjectDefinition) {
		for _, name := range owner.AttributeNames() {
			attr := owner.Attributes[name]
			if !attr.IsObject() {
				continue
			}
			if _, err := g.ResolveObject(owner.Name, attr); err != nil {
				errs = append(errs, err)
			}
		}
	}

	for _, class := range g.Classes() {
		check(&class.ObjectDefinition)
	}
	for _, obj := range g.Objects() {
		check(obj)
	}
	return errors.Join(errs...)
}
