// Package conformance checks candidate events against the full schema of an
// OCSF event class and records every violation in a Report.
package conformance

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"reflect"
	"sort"

	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
)

// unmappedPath is accepted without inspection at the top level of an event.
const unmappedPath = "unmapped"

// Validator validates candidates against one Graph. It is safe for
// concurrent use; all per-run state lives in the Report.
type Validator struct {
	graph   *ocsf.Graph
	objects map[string]*ocsf.ObjectDefinition
	logger  *slog.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// WithLogger sets the logger used for debug tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// New builds a Validator. The object lookup table is built here once and
// shared by every run.
func New(g *ocsf.Graph, opts ...Option) *Validator {
	v := &Validator{
		graph:   g,
		objects: make(map[string]*ocsf.ObjectDefinition),
		logger:  slog.Default(),
	}
	for _, obj := range g.Objects() {
		v.objects[obj.Name] = obj
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Graph returns the graph the validator was built from.
func (v *Validator) Graph() *ocsf.Graph {
	return v.graph
}

// Validate checks candidate against the event class with the given caption.
func (v *Validator) Validate(caption string, candidate any) *Report {
	return v.ValidateInput(caption, "", candidate)
}

// ValidateJSON decodes raw and validates the result. A decode failure is
// reported as a violation.
func (v *Validator) ValidateJSON(caption, input string, raw []byte) *Report {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var candidate any
	if err := dec.Decode(&candidate); err != nil {
		report := newReport(input, string(raw))
		report.violation(SeverityError, CodeMalformedCandidate, "", "Candidate is not valid JSON: %v", err)
		report.Passed = false
		return report
	}
	return v.ValidateInput(caption, input, candidate)
}

// ValidateInput is Validate with the source input echoed in the report.
func (v *Validator) ValidateInput(caption, input string, candidate any) (report *Report) {
	report = newReport(input, candidate)

	defer func() {
		if r := recover(); r != nil {
			report.Passed = false
			report.violation(SeverityError, CodeInternal, "", "Error: %v", r)
			v.logger.Error("validation panicked", slog.String("event_class", caption), slog.Any("panic", r))
		}
	}()

	class, err := v.graph.Class(caption)
	if err != nil {
		report.Err = err
		report.violation(SeverityError, CodeUnknownEventClass, "", "Event class %q is not defined in OCSF %s", caption, v.graph.Version())
		report.Passed = false
		return report
	}

	report.info("Validating candidate against event class %s in OCSF %s", class.Ref(), v.graph.Version())

	valid := v.validateObject(report, candidate, &class.ObjectDefinition, "")
	if valid {
		report.info("Candidate conforms to the event class")
	} else {
		report.Entries = append(report.Entries, Entry{
			Message:  "Candidate does not conform to the event class",
			Severity: SeverityError,
		})
	}
	report.Passed = valid

	v.logger.Debug("validation complete",
		slog.String("event_class", caption),
		slog.Bool("passed", valid),
		slog.Int("failures", len(report.Failures())))
	return report
}

func (v *Validator) validateObject(report *Report, candidate any, schema *ocsf.ObjectDefinition, path string) bool {
	if path == unmappedPath {
		v.logger.Debug("accepting free-form unmapped data")
		return true
	}

	data, ok := asMapping(candidate)
	if !ok {
		report.violation(SeverityWarning, CodeShapeViolation, path,
			"Field '%s' should be an object of type '%s' but is %s", displayPath(path), schema.Name, describe(candidate))
		return false
	}

	v.logger.Debug("validating object", slog.String("path", displayPath(path)), slog.String("object_type", schema.Name))

	valid := true
	for _, key := range sortedKeys(data) {
		keyPath := join(path, key)
		attr, known := schema.Attribute(key)
		if !known {
			report.violation(SeverityWarning, CodeUnknownField, keyPath,
				"Field '%s' present in candidate but not found in schema object '%s'", keyPath, schema.Name)
			valid = false
			continue
		}

		value := data[key]
		if value == nil {
			continue
		}

		if !v.validateValue(report, value, attr, schema.Name, keyPath) {
			valid = false
		}
	}

	for _, name := range schema.RequiredAttributes() {
		if _, present := data[name]; !present {
			keyPath := join(path, name)
			report.violation(SeverityWarning, CodeMissingRequiredField, keyPath,
				"Required field '%s' is missing", keyPath)
			valid = false
		}
	}

	return valid
}

func (v *Validator) validateValue(report *Report, value any, attr ocsf.Attribute, owner, path string) bool {
	if path == unmappedPath {
		return v.validateObject(report, value, nil, path)
	}

	items, isSeq := asSequence(value)

	switch {
	case attr.IsArray && !isSeq:
		report.violation(SeverityWarning, CodeShapeViolation, path,
			"Field '%s' should be an array but is %s", path, describe(value))
		return false
	case !attr.IsArray && isSeq:
		report.violation(SeverityWarning, CodeShapeViolation, path,
			"Field '%s' should not be an array", path)
		return false
	}

	if !attr.IsObject() {
		return true
	}

	obj, ok := v.objects[attr.ObjectType]
	if !ok {
		err := &ocsf.UnresolvedObjectTypeError{ObjectType: attr.ObjectType, Owner: owner, Attribute: attr.Name}
		report.violation(SeverityError, CodeUnresolvedObjectType, path, "Cannot check field '%s': %v", path, err)
		return false
	}

	if !attr.IsArray {
		return v.validateObject(report, value, obj, path)
	}

	valid := true
	for i, item := range items {
		if item == nil {
			continue
		}
		if !v.validateObject(report, item, obj, fmt.Sprintf("%s[%d]", path, i)) {
			valid = false
		}
	}
	return valid
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

func displayPath(path string) string {
	if path == "" {
		return "<root>"
	}
	return path
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// asSequence reports whether v is a list. Strings and byte slices are scalars.
func asSequence(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case string, []byte, json.Number:
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}

// asMapping reports whether v is an object. Any map keyed by a string kind
// qualifies.
func asMapping(v any) (map[string]any, bool) {
	if m, ok := v.(map[string]any); ok {
		return m, true
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	out := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		out[iter.Key().String()] = iter.Value().Interface()
	}
	return out, true
}

func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case map[string]any:
		return "an object"
	case string:
		return "a string"
	case bool:
		return "a boolean"
	case json.Number, float64, float32, int, int64, int32:
		return "a number"
	}
	if _, ok := asSequence(v); ok {
		return "an array"
	}
	if _, ok := asMapping(v); ok {
		return "an object"
	}
	return fmt.Sprintf("a %T", v)
}
