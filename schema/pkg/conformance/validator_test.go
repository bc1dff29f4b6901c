package conformance

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/ocsf-mapper/common/logging"
	"github.com/telhawk-systems/ocsf-mapper/schema/internal/testschema"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
)

func newValidator(t *testing.T) *Validator {
	t.Helper()
	return New(testschema.Graph(), WithLogger(logging.Discard().Logger))
}

// validEvent returns a Process Activity candidate that passes validation.
func validEvent() map[string]any {
	return map[string]any{
		"activity_id": 1,
		"time":        1700000000000,
		"metadata": map[string]any{
			"version": "1.1.0",
			"product": map[string]any{"vendor_name": "Microsoft", "name": "Sysmon"},
		},
		"actor": map[string]any{
			"user": map[string]any{"name": "SYSTEM"},
		},
		"process": map[string]any{
			"pid":  4628,
			"name": "a.exe",
			"file": map[string]any{"name": "a.exe", "path": `C:\Temp\a.exe`},
		},
	}
}

func paths(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

// processCheckGraph is Process{pid: Required integer, file: object(File)},
// File{name: Required string} exposed as an event class.
func processCheckGraph(t *testing.T) *ocsf.Graph {
	t.Helper()

	class := &ocsf.EventClass{
		ObjectDefinition: ocsf.ObjectDefinition{
			Name:    "process_check",
			Caption: "Process Check",
			Attributes: map[string]ocsf.Attribute{
				"pid":  {Name: "pid", Type: "integer_t", Requirement: ocsf.RequirementRequired},
				"file": {Name: "file", Type: "object_t", ObjectType: "file"},
			},
		},
		UID: 1,
	}
	file := &ocsf.ObjectDefinition{
		Name: "file",
		Attributes: map[string]ocsf.Attribute{
			"name": {Name: "name", Type: "string_t", Requirement: ocsf.RequirementRequired},
		},
	}

	g, err := ocsf.NewGraph("1.1.0", []*ocsf.EventClass{class}, []*ocsf.ObjectDefinition{file})
	require.NoError(t, err)
	return g
}

func TestValidate_ProcessExamples(t *testing.T) {
	v := New(processCheckGraph(t), WithLogger(logging.Discard().Logger))

	tests := []struct {
		name      string
		candidate map[string]any
		passed    bool
		code      Code
		path      string
	}{
		{
			name:      "conforming",
			candidate: map[string]any{"pid": 4628, "file": map[string]any{"name": "a.exe"}},
			passed:    true,
		},
		{
			name:      "nested required missing",
			candidate: map[string]any{"pid": 4628, "file": map[string]any{}},
			code:      CodeMissingRequiredField,
			path:      "file.name",
		},
		{
			name:      "top-level required missing",
			candidate: map[string]any{"file": map[string]any{"name": "a.exe"}},
			code:      CodeMissingRequiredField,
			path:      "pid",
		},
		{
			name:      "unknown field",
			candidate: map[string]any{"pid": 4628, "owner": "x"},
			code:      CodeUnknownField,
			path:      "owner",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := v.Validate("Process Check", tt.candidate)

			assert.Equal(t, tt.passed, report.Passed)
			if tt.passed {
				assert.Empty(t, report.Failures())
				return
			}
			failures := report.Failures()
			require.Len(t, failures, 1)
			assert.Equal(t, tt.code, failures[0].Code)
			assert.Equal(t, tt.path, failures[0].Path)
			assert.Contains(t, failures[0].Message, tt.path)
		})
	}
}

func TestValidate_ValidEvent(t *testing.T) {
	report := newValidator(t).ValidateInput(testschema.ProcessActivity, "raw log line", validEvent())

	assert.True(t, report.Passed, report.Summary())
	assert.Empty(t, report.Failures())
	assert.Equal(t, "raw log line", report.Input)
	assert.Equal(t, validEvent(), report.Output[OutputKey])
	require.NotEmpty(t, report.Entries)
	assert.Equal(t, SeverityInfo, report.Entries[0].Severity)
	assert.Contains(t, report.Entries[0].Message, "Process Activity (1007)")
}

func TestValidate_UnknownEventClass(t *testing.T) {
	report := newValidator(t).Validate("Nope", validEvent())

	assert.False(t, report.Passed)
	assert.ErrorIs(t, report.Err, ocsf.ErrUnknownEventClass)
	require.Len(t, report.Failures(), 1)
	assert.Equal(t, CodeUnknownEventClass, report.Failures()[0].Code)
}

func TestValidate_NullsAccepted(t *testing.T) {
	event := validEvent()
	event["message"] = nil
	event["process"] = map[string]any{"pid": nil, "file": nil, "parent_process": nil}
	event["actor"] = nil

	report := newValidator(t).Validate(testschema.ProcessActivity, event)

	assert.True(t, report.Passed, report.Summary())
}

func TestValidate_UnmappedEscape(t *testing.T) {
	tests := map[string]any{
		"free-form object": map[string]any{"EventID": 4688, "nested": map[string]any{"anything": []any{1, "two"}}},
		"scalar":           "opaque",
		"array":            []any{"a", "b"},
	}

	for name, unmapped := range tests {
		t.Run(name, func(t *testing.T) {
			event := validEvent()
			event["unmapped"] = unmapped

			report := newValidator(t).Validate(testschema.ProcessActivity, event)
			assert.True(t, report.Passed, report.Summary())
		})
	}
}

func TestValidate_UnmappedOnlyAtTopLevel(t *testing.T) {
	event := validEvent()
	event["process"].(map[string]any)["unmapped"] = map[string]any{"x": 1}

	report := newValidator(t).Validate(testschema.ProcessActivity, event)

	assert.False(t, report.Passed)
	assert.Equal(t, []string{"process.unmapped"}, paths(report.Failures()))
}

func TestValidate_ShapeViolations(t *testing.T) {
	event := validEvent()
	event["process"] = []any{map[string]any{"pid": 1}}
	event["actor"] = map[string]any{
		"user": map[string]any{"groups": map[string]any{"name": "wheel"}},
	}
	event["metadata"] = "1.1.0"

	report := newValidator(t).Validate(testschema.ProcessActivity, event)

	assert.False(t, report.Passed)
	failures := report.Failures()
	require.Len(t, failures, 3)
	for _, f := range failures {
		assert.Equal(t, CodeShapeViolation, f.Code)
	}
	assert.Equal(t, []string{"actor.user.groups", "metadata", "process"}, paths(failures))
}

func TestValidate_ScalarArrays(t *testing.T) {
	event := validEvent()
	event["actor"] = map[string]any{
		"user": map[string]any{
			"groups": []any{
				map[string]any{"name": "wheel", "privileges": []string{"SeDebugPrivilege"}},
				map[string]any{"name": "users", "privileges": "SeShutdownPrivilege"},
			},
		},
	}

	report := newValidator(t).Validate(testschema.ProcessActivity, event)

	assert.False(t, report.Passed)
	assert.Equal(t, []string{"actor.user.groups[1].privileges"}, paths(report.Failures()))
}

func TestValidate_ArrayItems(t *testing.T) {
	event := validEvent()
	event["actor"] = map[string]any{
		"user": map[string]any{
			"groups": []any{
				map[string]any{"name": "wheel"},
				nil,
				map[string]any{"privileges": []any{"x"}},
				"admins",
			},
		},
	}

	report := newValidator(t).Validate(testschema.ProcessActivity, event)

	assert.False(t, report.Passed)
	failures := report.Failures()
	require.Len(t, failures, 2)
	assert.Equal(t, "actor.user.groups[2].name", failures[0].Path)
	assert.Equal(t, CodeMissingRequiredField, failures[0].Code)
	assert.Equal(t, "actor.user.groups[3]", failures[1].Path)
	assert.Equal(t, CodeShapeViolation, failures[1].Code)
}

func TestValidate_DeepSelfReference(t *testing.T) {
	leaf := map[string]any{"pid": 1}
	current := leaf
	for i := 0; i < 50; i++ {
		current = map[string]any{"pid": i + 2, "parent_process": current}
	}
	event := validEvent()
	event["process"] = current

	report := newValidator(t).Validate(testschema.ProcessActivity, event)
	assert.True(t, report.Passed, report.Summary())

	delete(leaf, "pid")
	report = newValidator(t).Validate(testschema.ProcessActivity, event)
	assert.False(t, report.Passed)
	require.Len(t, report.Failures(), 1)
	assert.Equal(t, CodeMissingRequiredField, report.Failures()[0].Code)
}

func TestValidate_AccumulatesViolations(t *testing.T) {
	candidate := map[string]any{
		"bogus":   true,
		"process": map[string]any{"file": map[string]any{}},
	}

	report := newValidator(t).Validate(testschema.ProcessActivity, candidate)

	assert.False(t, report.Passed)
	assert.Equal(t,
		[]string{"bogus", "process.file.name", "process.pid", "activity_id", "actor", "metadata", "time"},
		paths(report.Failures()))
}

func TestValidate_UnresolvedObjectType(t *testing.T) {
	report := newValidator(t).Validate(testschema.BrokenActivity, map[string]any{
		"device": map[string]any{"name": "host-1"},
	})

	assert.False(t, report.Passed)
	require.Len(t, report.Failures(), 1)
	failure := report.Failures()[0]
	assert.Equal(t, CodeUnresolvedObjectType, failure.Code)
	assert.Equal(t, SeverityError, failure.Severity)
	assert.Contains(t, failure.Message, `"device"`)
}

func TestValidate_RootNotAnObject(t *testing.T) {
	report := newValidator(t).Validate(testschema.ProcessActivity, []any{validEvent()})

	assert.False(t, report.Passed)
	require.Len(t, report.Failures(), 1)
	assert.Equal(t, CodeShapeViolation, report.Failures()[0].Code)
	assert.Contains(t, report.Failures()[0].Message, "<root>")
}

func TestValidate_NullRoot(t *testing.T) {
	report := newValidator(t).Validate(testschema.ProcessActivity, nil)

	assert.False(t, report.Passed)
	require.Len(t, report.Failures(), 1)
	assert.Equal(t, CodeShapeViolation, report.Failures()[0].Code)
	assert.Contains(t, report.Failures()[0].Message, "but is null")
}

func TestValidate_TypedMaps(t *testing.T) {
	event := validEvent()
	event["process"] = map[string]any{
		"pid":  1,
		"file": map[string]string{"name": "x"},
	}
	event["metadata"] = map[string]any{
		"version": "1.1.0",
		"product": map[string]string{"vendor_name": "Microsoft"},
	}

	report := newValidator(t).Validate(testschema.ProcessActivity, event)
	assert.True(t, report.Passed, report.Summary())
	assert.Empty(t, report.Failures())

	event["process"] = map[string]any{
		"pid":  1,
		"file": map[string]string{"path": "/tmp/x"},
	}

	report = newValidator(t).Validate(testschema.ProcessActivity, event)
	assert.False(t, report.Passed)
	require.Len(t, report.Failures(), 1)
	assert.Equal(t, CodeMissingRequiredField, report.Failures()[0].Code)
	assert.Equal(t, "process.file.name", report.Failures()[0].Path)
}

func TestValidate_RecoversPanics(t *testing.T) {
	v := &Validator{logger: logging.Discard().Logger}

	report := v.Validate(testschema.ProcessActivity, validEvent())

	assert.False(t, report.Passed)
	require.NotEmpty(t, report.Entries)
	last := report.Entries[len(report.Entries)-1]
	assert.Equal(t, CodeInternal, last.Code)
	assert.Contains(t, last.Message, "Error:")
}

func TestValidateJSON(t *testing.T) {
	v := newValidator(t)

	raw, err := json.Marshal(validEvent())
	require.NoError(t, err)
	report := v.ValidateJSON(testschema.ProcessActivity, "input", raw)
	assert.True(t, report.Passed, report.Summary())

	report = v.ValidateJSON(testschema.ProcessActivity, "input", []byte(`{"process": `))
	assert.False(t, report.Passed)
	require.Len(t, report.Failures(), 1)
	assert.Equal(t, CodeMalformedCandidate, report.Failures()[0].Code)
}

func TestReport_JSONShape(t *testing.T) {
	report := newValidator(t).ValidateInput(testschema.ProcessActivity, "line", map[string]any{"bogus": 1})

	data, err := json.Marshal(report)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "line", decoded["input"])
	assert.Equal(t, false, decoded["passed"])
	assert.Contains(t, decoded["output"], OutputKey)

	entries, ok := decoded["report_entries"].([]any)
	require.True(t, ok)
	require.NotEmpty(t, entries)
	first := entries[0].(map[string]any)
	assert.Contains(t, first, "message")
	assert.Contains(t, first, "severity")
}

func TestReport_Summary(t *testing.T) {
	v := newValidator(t)

	assert.Equal(t, "passed", v.Validate(testschema.ProcessActivity, validEvent()).Summary())

	summary := v.Validate(testschema.Authentication, map[string]any{"bogus": 1}).Summary()
	assert.Contains(t, summary, "2 violation(s)")
	assert.Contains(t, summary, "bogus")
	assert.Contains(t, summary, "time")
}

func TestValidate_Idempotent(t *testing.T) {
	v := New(testschema.Graph(), WithLogger(logging.Discard().Logger))

	keys := []interface{}{"process", "actor", "time", "bogus", "unmapped", "metadata", "activity_id"}
	values := []interface{}{
		nil, "x", 42, []any{1},
		map[string]any{"pid": 1},
		map[string]any{"user": map[string]any{"groups": []any{map[string]any{}}}},
		map[string]any{"version": "1.1.0"},
	}

	anyType := reflect.TypeOf((*any)(nil)).Elem()

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("identical inputs yield identical reports", prop.ForAll(
		func(ks []interface{}, vs []interface{}) bool {
			candidate := make(map[string]any)
			for i := 0; i < len(ks) && i < len(vs); i++ {
				candidate[ks[i].(string)] = vs[i]
			}

			first := v.Validate(testschema.ProcessActivity, candidate)
			second := v.Validate(testschema.ProcessActivity, candidate)
			return first.Passed == second.Passed && reflect.DeepEqual(first.Entries, second.Entries)
		},
		gen.SliceOf(gen.OneConstOf(keys...), anyType),
		gen.SliceOf(gen.OneConstOf(values...), anyType),
	))

	properties.TestingRun(t)
}
