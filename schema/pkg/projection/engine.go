// Package projection computes the subset of an OCSF schema graph that a set
// of attribute paths touches, starting from one event class.
package projection

import (
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/pathset"
)

// ProjectedObject is one object reached from the event class.
//
// Leaf is set when some requested path ends exactly at this object; a leaf
// object exposes all of its attributes. Otherwise only the attributes that
// are themselves requested, or that lead to a requested path, are exposed.
type ProjectedObject struct {
	Object *ocsf.ObjectDefinition
	// Path is the first path the object was reached through.
	Path string
	Leaf bool

	relevant map[string]struct{}
}

// Attributes returns the exposed attributes in name order.
func (o *ProjectedObject) Attributes() []ocsf.Attribute {
	out := make([]ocsf.Attribute, 0, len(o.Object.Attributes))
	for _, name := range o.Object.AttributeNames() {
		if o.Leaf {
			out = append(out, o.Object.Attributes[name])
			continue
		}
		if _, ok := o.relevant[name]; ok {
			out = append(out, o.Object.Attributes[name])
		}
	}
	return out
}

// Projection is the result of Project.
type Projection struct {
	Class   *ocsf.EventClass
	Paths   pathset.PathSet
	Objects []*ProjectedObject // visit order

	index map[string]*ProjectedObject
}

// Attributes returns the class attributes whose name is the first segment of
// a requested path, in name order.
func (p *Projection) Attributes() []ocsf.Attribute {
	top := p.Paths.TopLevel()
	var out []ocsf.Attribute
	for _, name := range p.Class.AttributeNames() {
		if _, ok := top[name]; ok {
			out = append(out, p.Class.Attributes[name])
		}
	}
	return out
}

// Object returns the projected object with the given name.
func (p *Projection) Object(name string) (*ProjectedObject, bool) {
	obj, ok := p.index[name]
	return obj, ok
}

// Visited returns the names of all reached objects in visit order.
func (p *Projection) Visited() []string {
	names := make([]string, len(p.Objects))
	for i, obj := range p.Objects {
		names[i] = obj.Object.Name
	}
	return names
}

// Leaves returns the names of objects flagged as leaves, in visit order.
func (p *Projection) Leaves() []string {
	var names []string
	for _, obj := range p.Objects {
		if obj.Leaf {
			names = append(names, obj.Object.Name)
		}
	}
	return names
}

type queued struct {
	path   string
	object *ocsf.ObjectDefinition
}

// Project walks the graph breadth-first from the class with the given
// caption and records, for each reachable object, which attributes the
// requested paths need.
//
// Every object is expanded at most once, so self-referencing and mutually
// referencing objects terminate. A later path reaching an already expanded
// object can still raise its leaf flag but never re-expands it. Paths that
// match nothing are ignored. A reference to an object missing from the graph
// aborts the call with *ocsf.UnresolvedObjectTypeError.
func Project(g *ocsf.Graph, caption string, paths pathset.PathSet) (*Projection, error) {
	class, err := g.Class(caption)
	if err != nil {
		return nil, err
	}

	p := &Projection{
		Class: class,
		Paths: paths,
		index: make(map[string]*ProjectedObject),
	}

	var queue []queued
	for _, name := range class.AttributeNames() {
		attr := class.Attributes[name]
		if !attr.IsObject() {
			continue
		}
		obj, err := g.ResolveObject(class.Name, attr)
		if err != nil {
			return nil, err
		}
		queue = append(queue, queued{path: name, object: obj})
	}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		current, visited := p.index[item.object.Name]
		if !visited {
			current = &ProjectedObject{
				Object:   item.object,
				Path:     item.path,
				relevant: make(map[string]struct{}),
			}
		}
		if paths.Contains(item.path) {
			current.Leaf = true
		}
		if visited {
			continue
		}

		p.index[item.object.Name] = current
		p.Objects = append(p.Objects, current)

		for _, name := range item.object.AttributeNames() {
			attr := item.object.Attributes[name]
			child := item.path + "." + name
			if paths.Relevant(child) {
				current.relevant[name] = struct{}{}
			}
			if !attr.IsObject() {
				continue
			}
			next, err := g.ResolveObject(item.object.Name, attr)
			if err != nil {
				return nil, err
			}
			if _, seen := p.index[next.Name]; !seen {
				queue = append(queue, queued{path: child, object: next})
			}
		}
	}

	return p, nil
}
