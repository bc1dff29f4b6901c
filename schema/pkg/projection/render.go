package projection

import (
	"fmt"
	"strings"

	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
)

// Mode selects how much of a projection Render emits.
type Mode int

const (
	// ModeFull emits every attribute of the class and of each reached object.
	ModeFull Mode = iota
	// ModeFiltered emits only projected attributes and drops objects left empty.
	ModeFiltered
	// ModeSummary emits every attribute with shortened descriptions and
	// object attributes reduced to type and requirement.
	ModeSummary
)

const summaryDescriptionLimit = 100

func (m Mode) String() string {
	switch m {
	case ModeFull:
		return "full"
	case ModeFiltered:
		return "filtered"
	case ModeSummary:
		return "summary"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode parses "full", "filtered" or "summary". Empty means filtered.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "filtered":
		return ModeFiltered, nil
	case "full":
		return ModeFull, nil
	case "summary":
		return ModeSummary, nil
	default:
		return ModeFiltered, fmt.Errorf("unknown render mode %q", s)
	}
}

// EnumView is one enumerated value.
type EnumView struct {
	Name        string `json:"name" yaml:"name"`
	Value       string `json:"value" yaml:"value"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// AttributeView is the serializable form of an attribute.
type AttributeView struct {
	Caption     string     `json:"caption,omitempty" yaml:"caption,omitempty"`
	Description string     `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string     `json:"type" yaml:"type"`
	TypeName    string     `json:"type_name,omitempty" yaml:"type_name,omitempty"`
	ObjectType  string     `json:"object_type,omitempty" yaml:"object_type,omitempty"`
	ObjectName  string     `json:"object_name,omitempty" yaml:"object_name,omitempty"`
	Requirement string     `json:"requirement" yaml:"requirement"`
	IsArray     bool       `json:"is_array,omitempty" yaml:"is_array,omitempty"`
	Enum        []EnumView `json:"enum,omitempty" yaml:"enum,omitempty"`
}

// ClassView is the serializable form of an event class.
type ClassView struct {
	Caption     string                   `json:"caption" yaml:"caption"`
	Description string                   `json:"description,omitempty" yaml:"description,omitempty"`
	Name        string                   `json:"name" yaml:"name"`
	UID         int                      `json:"uid" yaml:"uid"`
	Attributes  map[string]AttributeView `json:"attributes" yaml:"attributes"`
}

// ObjectView is the serializable form of an object definition.
type ObjectView struct {
	Caption     string                   `json:"caption,omitempty" yaml:"caption,omitempty"`
	Description string                   `json:"description,omitempty" yaml:"description,omitempty"`
	Name        string                   `json:"name" yaml:"name"`
	Leaf        bool                     `json:"leaf,omitempty" yaml:"leaf,omitempty"`
	Attributes  map[string]AttributeView `json:"attributes" yaml:"attributes"`
}

// Document is a rendered projection.
type Document struct {
	Mode    string       `json:"mode" yaml:"mode"`
	Paths   []string     `json:"paths" yaml:"paths"`
	Class   ClassView    `json:"class" yaml:"class"`
	Objects []ObjectView `json:"objects" yaml:"objects"`
}

// Render converts the projection into a Document.
func (p *Projection) Render(mode Mode) Document {
	doc := Document{
		Mode:    mode.String(),
		Paths:   p.Paths.Paths(),
		Objects: make([]ObjectView, 0, len(p.Objects)),
	}

	classAttrs := p.Attributes()
	if mode != ModeFiltered {
		classAttrs = allAttributes(&p.Class.ObjectDefinition)
	}
	doc.Class = ClassView{
		Caption:     p.Class.Caption,
		Description: p.Class.Description,
		Name:        p.Class.Name,
		UID:         p.Class.UID,
		Attributes:  make(map[string]AttributeView, len(classAttrs)),
	}
	for _, attr := range classAttrs {
		view := attributeView(attr)
		if mode == ModeSummary {
			view = AttributeView{
				Type:        attr.Type,
				Description: truncate(attr.Description),
				Requirement: attr.Requirement.String(),
				IsArray:     attr.IsArray,
			}
		}
		doc.Class.Attributes[attr.Name] = view
	}

	for _, obj := range p.Objects {
		attrs := obj.Attributes()
		if mode != ModeFiltered {
			attrs = allAttributes(obj.Object)
		} else if len(attrs) == 0 {
			continue
		}

		view := ObjectView{
			Caption:     obj.Object.Caption,
			Description: obj.Object.Description,
			Name:        obj.Object.Name,
			Leaf:        obj.Leaf,
			Attributes:  make(map[string]AttributeView, len(attrs)),
		}
		if mode == ModeSummary {
			view.Caption = ""
			view.Description = truncate(view.Description)
		}
		for _, attr := range attrs {
			if mode == ModeSummary {
				view.Attributes[attr.Name] = AttributeView{
					Type:        attr.Type,
					Requirement: attr.Requirement.String(),
				}
				continue
			}
			view.Attributes[attr.Name] = attributeView(attr)
		}
		doc.Objects = append(doc.Objects, view)
	}

	return doc
}

func allAttributes(obj *ocsf.ObjectDefinition) []ocsf.Attribute {
	out := make([]ocsf.Attribute, 0, len(obj.Attributes))
	for _, name := range obj.AttributeNames() {
		out = append(out, obj.Attributes[name])
	}
	return out
}

func attributeView(attr ocsf.Attribute) AttributeView {
	view := AttributeView{
		Caption:     attr.Caption,
		Description: attr.Description,
		Type:        attr.Type,
		TypeName:    attr.TypeName,
		ObjectType:  attr.ObjectType,
		ObjectName:  attr.ObjectName,
		Requirement: attr.Requirement.String(),
		IsArray:     attr.IsArray,
	}
	for _, e := range attr.Enum {
		view.Enum = append(view.Enum, EnumView{
			Name:        e.Name,
			Value:       e.Caption,
			Description: e.Description,
		})
	}
	return view
}

func truncate(s string) string {
	r := []rune(s)
	if len(r) <= summaryDescriptionLimit {
		return s
	}
	return string(r[:summaryDescriptionLimit]) + "..."
}
