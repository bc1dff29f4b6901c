package ocsf

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T) *Graph {
	t.Helper()

	process := &ObjectDefinition{
		Name:    "process",
		Caption: "Process",
		Attributes: map[string]Attribute{
			"pid":            {Name: "pid", Type: "integer_t", Requirement: RequirementRequired},
			"name":           {Name: "name", Type: "string_t", Requirement: RequirementRecommended},
			"parent_process": {Name: "parent_process", Type: "object_t", ObjectType: "process"},
			"file":           {Name: "file", Type: "object_t", ObjectType: "file"},
		},
	}
	file := &ObjectDefinition{
		Name:    "file",
		Caption: "File",
		Attributes: map[string]Attribute{
			"name": {Name: "name", Type: "string_t", Requirement: RequirementRequired},
		},
	}
	activity := &EventClass{
		ObjectDefinition: ObjectDefinition{
			Name:    "process_activity",
			Caption: "Process Activity",
			Attributes: map[string]Attribute{
				"process": {Name: "process", Type: "object_t", ObjectType: "process", Requirement: RequirementRequired},
			},
		},
		UID:      1007,
		Category: "system",
	}
	auth := &EventClass{
		ObjectDefinition: ObjectDefinition{
			Name:       "authentication",
			Caption:    "Authentication",
			Attributes: map[string]Attribute{},
		},
		UID: 3002,
	}

	g, err := NewGraph("1.1.0", []*EventClass{auth, activity}, []*ObjectDefinition{process, file})
	require.NoError(t, err)
	return g
}

func TestNewGraph_Duplicates(t *testing.T) {
	obj := &ObjectDefinition{Name: "file"}
	_, err := NewGraph("1.1.0", nil, []*ObjectDefinition{obj, obj})
	assert.ErrorIs(t, err, ErrDuplicateDefinition)

	class := &EventClass{ObjectDefinition: ObjectDefinition{Caption: "File Activity"}, UID: 1001}
	_, err = NewGraph("1.1.0", []*EventClass{class, class}, nil)
	assert.ErrorIs(t, err, ErrDuplicateDefinition)
}

func TestGraph_Class(t *testing.T) {
	g := newTestGraph(t)

	class, err := g.Class("Process Activity")
	require.NoError(t, err)
	assert.Equal(t, 1007, class.UID)
	assert.Equal(t, "Process Activity (1007)", class.Ref().String())

	_, err = g.Class("Nope")
	assert.ErrorIs(t, err, ErrUnknownEventClass)
	assert.Contains(t, err.Error(), `"Nope"`)
}

func TestGraph_ClassByUID(t *testing.T) {
	g := newTestGraph(t)

	class, err := g.ClassByUID(3002)
	require.NoError(t, err)
	assert.Equal(t, "Authentication", class.Caption)

	_, err = g.ClassByUID(9999)
	assert.ErrorIs(t, err, ErrUnknownEventClass)
}

func TestGraph_ClassesSortedByUID(t *testing.T) {
	g := newTestGraph(t)

	classes := g.Classes()
	require.Len(t, classes, 2)
	assert.Equal(t, 1007, classes[0].UID)
	assert.Equal(t, 3002, classes[1].UID)
}

func TestGraph_ObjectsSortedByName(t *testing.T) {
	g := newTestGraph(t)

	objects := g.Objects()
	require.Len(t, objects, 2)
	assert.Equal(t, "file", objects[0].Name)
	assert.Equal(t, "process", objects[1].Name)
}

func TestGraph_ResolveObject(t *testing.T) {
	g := newTestGraph(t)

	obj, err := g.ResolveObject("process", Attribute{Name: "file", ObjectType: "file"})
	require.NoError(t, err)
	assert.Equal(t, "File", obj.Caption)

	_, err = g.ResolveObject("process", Attribute{Name: "module", ObjectType: "module"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvedObjectType)

	var unresolved *UnresolvedObjectTypeError
	require.True(t, errors.As(err, &unresolved))
	assert.Equal(t, "module", unresolved.ObjectType)
	assert.Equal(t, "process", unresolved.Owner)
	assert.Equal(t, "module", unresolved.Attribute)
}

func TestGraph_CheckReferences(t *testing.T) {
	g := newTestGraph(t)
	assert.NoError(t, g.CheckReferences())

	broken := &ObjectDefinition{
		Name: "device",
		Attributes: map[string]Attribute{
			"os":  {Name: "os", ObjectType: "os"},
			"hw":  {Name: "hw", ObjectType: "device_hw_info"},
			"uid": {Name: "uid", Type: "string_t"},
		},
	}
	g, err := NewGraph("1.1.0", nil, []*ObjectDefinition{broken})
	require.NoError(t, err)

	err = g.CheckReferences()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnresolvedObjectType)
	assert.Contains(t, err.Error(), `"os"`)
	assert.Contains(t, err.Error(), `"device_hw_info"`)
}

func TestObjectDefinition_AttributeNames(t *testing.T) {
	g := newTestGraph(t)
	process, ok := g.Object("process")
	require.True(t, ok)

	assert.Equal(t, []string{"file", "name", "parent_process", "pid"}, process.AttributeNames())
	assert.Equal(t, []string{"pid"}, process.RequiredAttributes())
}

func TestParseRequirement(t *testing.T) {
	tests := []struct {
		input   string
		want    Requirement
		wantErr bool
	}{
		{"required", RequirementRequired, false},
		{"Required", RequirementRequired, false},
		{"recommended", RequirementRecommended, false},
		{"optional", RequirementOptional, false},
		{"", RequirementOptional, false},
		{"mandatory", RequirementOptional, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseRequirement(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequirement_Text(t *testing.T) {
	text, err := RequirementRecommended.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Recommended", string(text))

	var r Requirement
	require.NoError(t, r.UnmarshalText([]byte("required")))
	assert.Equal(t, RequirementRequired, r)
}

func TestParseVersion(t *testing.T) {
	tests := []struct {
		input   string
		want    Version
		wantErr bool
	}{
		{"1.1.0", V1_1_0, false},
		{"v1.3.0", V1_3_0, false},
		{"v1_7_0", V1_7_0, false},
		{"2.0.0", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseVersion(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVersion_Defaults(t *testing.T) {
	assert.Equal(t, V1_1_0, DefaultVersion())
	assert.Equal(t, V1_7_0, LatestVersion())
	assert.Equal(t, "v1_1_0", V1_1_0.URLSafeName())
	assert.Len(t, SupportedVersions, 8)
}
