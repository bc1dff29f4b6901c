package logging

import (
	"log/slog"
	"time"
)

// Field names shared by the schema service, its workers and the CLI.
const (
	FieldService    = "service"
	FieldRequestID  = "request_id"
	FieldVersion    = "ocsf_version"
	FieldEventClass = "event_class"
	FieldPath       = "path"
	FieldObjectType = "object_type"
	FieldPaths      = "paths"
	FieldPassed     = "passed"
	FieldFailures   = "failures"
	FieldSource     = "source"
	FieldMethod     = "method"
	FieldStatus     = "status"
	FieldDuration   = "duration_ms"
	FieldError      = "error"
	FieldSubject    = "subject"
)

// Service returns a slog attribute for the service name.
func Service(name string) slog.Attr {
	return slog.String(FieldService, name)
}

// RequestID returns a slog attribute for a request or job ID.
func RequestID(id string) slog.Attr {
	return slog.String(FieldRequestID, id)
}

// Version returns a slog attribute for an OCSF schema version.
func Version(v string) slog.Attr {
	return slog.String(FieldVersion, v)
}

// EventClass returns a slog attribute for an event class caption.
func EventClass(caption string) slog.Attr {
	return slog.String(FieldEventClass, caption)
}

// Path returns a slog attribute for an attribute path or HTTP path.
func Path(path string) slog.Attr {
	return slog.String(FieldPath, path)
}

// ObjectType returns a slog attribute for an object definition name.
func ObjectType(name string) slog.Attr {
	return slog.String(FieldObjectType, name)
}

// Paths returns a slog attribute for the number of requested paths.
func Paths(n int) slog.Attr {
	return slog.Int(FieldPaths, n)
}

// Passed returns a slog attribute for a validation outcome.
func Passed(ok bool) slog.Attr {
	return slog.Bool(FieldPassed, ok)
}

// Failures returns a slog attribute for the number of failure entries.
func Failures(n int) slog.Attr {
	return slog.Int(FieldFailures, n)
}

// Source returns a slog attribute for a schema source location.
func Source(src string) slog.Attr {
	return slog.String(FieldSource, src)
}

// Method returns a slog attribute for the HTTP method.
func Method(method string) slog.Attr {
	return slog.String(FieldMethod, method)
}

// Status returns a slog attribute for the HTTP status code.
func Status(code int) slog.Attr {
	return slog.Int(FieldStatus, code)
}

// Duration returns a slog attribute for the elapsed time in milliseconds.
func Duration(d time.Duration) slog.Attr {
	return slog.Int64(FieldDuration, d.Milliseconds())
}

// Error returns a slog attribute for an error.
func Error(err error) slog.Attr {
	return slog.String(FieldError, err.Error())
}

// Subject returns a slog attribute for a NATS subject.
func Subject(subject string) slog.Attr {
	return slog.String(FieldSubject, subject)
}
