// Package loader reads OCSF schema exports and turns them into ocsf.Graph
// values. Exports come from a local directory or from an OCSF schema server.
package loader

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
)

// Export structures matching the OCSF /export/schema JSON format.

type exportDocument struct {
	Version string                  `json:"version"`
	Classes map[string]exportObject `json:"classes"`
	Objects map[string]exportObject `json:"objects"`
}

type exportObject struct {
	UID         int                        `json:"uid"`
	Name        string                     `json:"name"`
	Caption     string                     `json:"caption"`
	Description string                     `json:"description"`
	Category    string                     `json:"category"`
	Attributes  map[string]exportAttribute `json:"attributes"`
}

type exportAttribute struct {
	Caption     string                     `json:"caption"`
	Description string                     `json:"description"`
	Type        string                     `json:"type"`
	TypeName    string                     `json:"type_name"`
	ObjectType  string                     `json:"object_type"`
	ObjectName  string                     `json:"object_name"`
	Requirement string                     `json:"requirement"`
	IsArray     bool                       `json:"is_array"`
	Enum        map[string]exportEnumValue `json:"enum"`
}

type exportEnumValue struct {
	Caption     string `json:"caption"`
	Description string `json:"description"`
}

// Parse decodes an OCSF schema export. In strict mode unknown requirement
// levels and dangling object references are errors; otherwise unknown
// requirements are treated as optional and references are checked lazily
// by the projection and validation code.
func Parse(data []byte, strict bool) (*ocsf.Graph, error) {
	var doc exportDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode schema export: %w", err)
	}
	if len(doc.Classes) == 0 && len(doc.Objects) == 0 {
		return nil, fmt.Errorf("schema export for version %q has no classes or objects", doc.Version)
	}

	objects := make([]*ocsf.ObjectDefinition, 0, len(doc.Objects))
	for _, key := range sortedKeys(doc.Objects) {
		obj, err := convertObject(key, doc.Objects[key], strict)
		if err != nil {
			return nil, err
		}
		objects = append(objects, obj)
	}

	classes := make([]*ocsf.EventClass, 0, len(doc.Classes))
	for _, key := range sortedKeys(doc.Classes) {
		raw := doc.Classes[key]
		obj, err := convertObject(key, raw, strict)
		if err != nil {
			return nil, err
		}
		if obj.Caption == "" {
			obj.Caption = obj.Name
		}
		classes = append(classes, &ocsf.EventClass{
			ObjectDefinition: *obj,
			UID:              raw.UID,
			Category:         raw.Category,
		})
	}

	g, err := ocsf.NewGraph(doc.Version, classes, objects)
	if err != nil {
		return nil, err
	}
	if strict {
		if err := g.CheckReferences(); err != nil {
			return nil, fmt.Errorf("schema export for version %q is inconsistent: %w", doc.Version, err)
		}
	}
	return g, nil
}

func convertObject(key string, raw exportObject, strict bool) (*ocsf.ObjectDefinition, error) {
	name := raw.Name
	if name == "" {
		name = key
	}

	obj := &ocsf.ObjectDefinition{
		Name:        name,
		Caption:     raw.Caption,
		Description: raw.Description,
		Attributes:  make(map[string]ocsf.Attribute, len(raw.Attributes)),
	}

	for attrName, a := range raw.Attributes {
		req, err := ocsf.ParseRequirement(a.Requirement)
		if err != nil && strict {
			return nil, fmt.Errorf("%s.%s: %w", name, attrName, err)
		}

		obj.Attributes[attrName] = ocsf.Attribute{
			Name:        attrName,
			Caption:     a.Caption,
			Description: a.Description,
			Type:        a.Type,
			TypeName:    a.TypeName,
			ObjectType:  a.ObjectType,
			ObjectName:  a.ObjectName,
			Requirement: req,
			IsArray:     a.IsArray,
			Enum:        convertEnum(a.Enum),
		}
	}

	return obj, nil
}

// convertEnum orders numeric keys numerically and the rest lexically after them.
func convertEnum(raw map[string]exportEnumValue) []ocsf.EnumValue {
	if len(raw) == 0 {
		return nil
	}

	keys := sortedKeys(raw)
	sort.SliceStable(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		default:
			return false
		}
	})

	out := make([]ocsf.EnumValue, len(keys))
	for i, k := range keys {
		out[i] = ocsf.EnumValue{Name: k, Caption: raw[k].Caption, Description: raw[k].Description}
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
