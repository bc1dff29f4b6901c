package ocsf

import (
	"fmt"
	"sort"
	"strings"
)

// Requirement is the OCSF requirement level of an attribute.
type Requirement int

const (
	RequirementOptional Requirement = iota
	RequirementRecommended
	RequirementRequired
)

// String returns the capitalized requirement name used in rendered schemas.
func (r Requirement) String() string {
	switch r {
	case RequirementRecommended:
		return "Recommended"
	case RequirementRequired:
		return "Required"
	default:
		return "Optional"
	}
}

// ParseRequirement converts an OCSF requirement string to a Requirement.
// Matching is case-insensitive and an empty string means optional.
func ParseRequirement(s string) (Requirement, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "optional":
		return RequirementOptional, nil
	case "recommended":
		return RequirementRecommended, nil
	case "required":
		return RequirementRequired, nil
	default:
		return RequirementOptional, fmt.Errorf("invalid requirement %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (r Requirement) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Requirement) UnmarshalText(text []byte) error {
	parsed, err := ParseRequirement(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// EnumValue is one allowed value of an enumerated attribute.
type EnumValue struct {
	Name        string
	Caption     string
	Description string
}

// Attribute describes a single field of an object definition or event class.
//
// ObjectType names an entry in the owning Graph's object registry. It is a
// reference by name, which is what lets object definitions refer to
// themselves or to each other.
type Attribute struct {
	Name        string
	Caption     string
	Description string
	Type        string
	TypeName    string
	ObjectType  string
	ObjectName  string
	Requirement Requirement
	IsArray     bool
	Enum        []EnumValue
}

// IsObject reports whether the attribute references an object definition.
func (a Attribute) IsObject() bool {
	return a.ObjectType != ""
}

// IsRequired reports whether the attribute must be present.
func (a Attribute) IsRequired() bool {
	return a.Requirement == RequirementRequired
}

// ObjectDefinition is a named, reusable set of attributes.
type ObjectDefinition struct {
	Name        string
	Caption     string
	Description string
	Attributes  map[string]Attribute
}

// Attribute looks up an attribute by name.
func (o *ObjectDefinition) Attribute(name string) (Attribute, bool) {
	attr, ok := o.Attributes[name]
	return attr, ok
}

// AttributeNames returns the attribute names in sorted order.
func (o *ObjectDefinition) AttributeNames() []string {
	names := make([]string, 0, len(o.Attributes))
	for name := range o.Attributes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RequiredAttributes returns the names of required attributes in sorted order.
func (o *ObjectDefinition) RequiredAttributes() []string {
	var names []string
	for _, name := range o.AttributeNames() {
		if o.Attributes[name].IsRequired() {
			names = append(names, name)
		}
	}
	return names
}

// EventClass is an object definition that is also a top-level event category.
type EventClass struct {
	ObjectDefinition
	UID      int
	Category string
}

// Ref returns the caption/uid reference for the class.
func (c *EventClass) Ref() ClassRef {
	return ClassRef{Caption: c.Caption, UID: c.UID}
}
