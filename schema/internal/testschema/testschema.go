// Package testschema builds small OCSF graphs for tests.
package testschema

import (
	_ "embed"

	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
)

const (
	// ProcessActivity is the caption of the main fixture class.
	ProcessActivity = "Process Activity"
	// Authentication is a second fixture class without object attributes.
	Authentication = "Authentication"
	// BrokenActivity references an object missing from the graph.
	BrokenActivity = "Broken Activity"
)

func attr(name, typ string, req ocsf.Requirement) ocsf.Attribute {
	return ocsf.Attribute{
		Name:        name,
		Caption:     name,
		Description: "The " + name + " attribute.",
		Type:        typ,
		TypeName:    typeName(typ),
		Requirement: req,
	}
}

func objAttr(name, objectType string, req ocsf.Requirement) ocsf.Attribute {
	a := attr(name, "object_t", req)
	a.ObjectType = objectType
	a.ObjectName = objectType
	a.TypeName = "Object"
	return a
}

func arrayOf(a ocsf.Attribute) ocsf.Attribute {
	a.IsArray = true
	return a
}

func typeName(typ string) string {
	switch typ {
	case "integer_t":
		return "Integer"
	case "long_t", "timestamp_t":
		return "Long"
	case "boolean_t":
		return "Boolean"
	case "object_t":
		return "Object"
	default:
		return "String"
	}
}

func object(name string, attrs ...ocsf.Attribute) *ocsf.ObjectDefinition {
	m := make(map[string]ocsf.Attribute, len(attrs))
	for _, a := range attrs {
		m[a.Name] = a
	}
	return &ocsf.ObjectDefinition{
		Name:        name,
		Caption:     name,
		Description: "The " + name + " object.",
		Attributes:  m,
	}
}

func class(name, caption string, uid int, attrs ...ocsf.Attribute) *ocsf.EventClass {
	c := &ocsf.EventClass{
		ObjectDefinition: *object(name, attrs...),
		UID:              uid,
		Category:         "system",
	}
	c.Caption = caption
	return c
}

// Objects returns the fixture object definitions:
//
//	process  {pid: Required integer, name, cmd_line, file: File, parent_process: Process, user: User}
//	file     {name: Required string, path, size}
//	user     {name, uid, groups: [Group]}
//	group    {name: Required string, privileges: [string]}
//	actor    {process: Process, user: User}
//	metadata {version: Required string, product: Product}
//	product  {name, vendor_name: Required string}
//	object   {}
func Objects() []*ocsf.ObjectDefinition {
	return []*ocsf.ObjectDefinition{
		object("process",
			attr("pid", "integer_t", ocsf.RequirementRequired),
			attr("name", "string_t", ocsf.RequirementRecommended),
			attr("cmd_line", "string_t", ocsf.RequirementOptional),
			objAttr("file", "file", ocsf.RequirementOptional),
			objAttr("parent_process", "process", ocsf.RequirementOptional),
			objAttr("user", "user", ocsf.RequirementOptional),
		),
		object("file",
			attr("name", "string_t", ocsf.RequirementRequired),
			attr("path", "string_t", ocsf.RequirementRecommended),
			attr("size", "long_t", ocsf.RequirementOptional),
		),
		object("user",
			attr("name", "string_t", ocsf.RequirementRecommended),
			attr("uid", "string_t", ocsf.RequirementRecommended),
			arrayOf(objAttr("groups", "group", ocsf.RequirementOptional)),
		),
		object("group",
			attr("name", "string_t", ocsf.RequirementRequired),
			arrayOf(attr("privileges", "string_t", ocsf.RequirementOptional)),
		),
		object("actor",
			objAttr("process", "process", ocsf.RequirementOptional),
			objAttr("user", "user", ocsf.RequirementOptional),
		),
		object("metadata",
			attr("version", "string_t", ocsf.RequirementRequired),
			objAttr("product", "product", ocsf.RequirementRequired),
		),
		object("product",
			attr("name", "string_t", ocsf.RequirementRecommended),
			attr("vendor_name", "string_t", ocsf.RequirementRequired),
		),
		object("object"),
	}
}

// Classes returns the fixture event classes.
func Classes() []*ocsf.EventClass {
	activityID := attr("activity_id", "integer_t", ocsf.RequirementRequired)
	activityID.Enum = []ocsf.EnumValue{
		{Name: "0", Caption: "Unknown", Description: "The event activity is unknown."},
		{Name: "1", Caption: "Launch"},
		{Name: "2", Caption: "Terminate"},
		{Name: "99", Caption: "Other"},
	}

	return []*ocsf.EventClass{
		class("process_activity", ProcessActivity, 1007,
			activityID,
			attr("time", "timestamp_t", ocsf.RequirementRequired),
			attr("message", "string_t", ocsf.RequirementRecommended),
			objAttr("metadata", "metadata", ocsf.RequirementRequired),
			objAttr("actor", "actor", ocsf.RequirementRequired),
			objAttr("process", "process", ocsf.RequirementRequired),
			objAttr("unmapped", "object", ocsf.RequirementOptional),
		),
		class("authentication", Authentication, 3002,
			attr("time", "timestamp_t", ocsf.RequirementRequired),
			attr("message", "string_t", ocsf.RequirementOptional),
		),
		class("broken_activity", BrokenActivity, 9001,
			objAttr("device", "device", ocsf.RequirementRequired),
		),
	}
}

// ExportJSON is the same graph in OCSF export format, as served by
// /export/schema.
//
//go:embed testdata/export_1.1.0.json
var ExportJSON []byte

// Graph returns the fixture graph for version 1.1.0.
func Graph() *ocsf.Graph {
	g, err := ocsf.NewGraph("1.1.0", Classes(), Objects())
	if err != nil {
		panic(err)
	}
	return g
}
