package ocsf

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var classRefPattern = regexp.MustCompile(`(?s)^(.+) \((\d+)\)$`)

// ClassRef identifies an event class by caption and uid. Its text form,
// "Process Activity (1007)", is what callers exchange at the API boundary.
type ClassRef struct {
	Caption string
	UID     int
}

// String formats the reference as "<caption> (<uid>)".
func (r ClassRef) String() string {
	return fmt.Sprintf("%s (%d)", r.Caption, r.UID)
}

// MarshalText implements encoding.TextMarshaler.
func (r ClassRef) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *ClassRef) UnmarshalText(text []byte) error {
	parsed, err := ParseClassRef(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseClassRef parses "<caption> (<uid>)". The uid must be digits only.
func ParseClassRef(s string) (ClassRef, error) {
	m := classRefPattern.FindStringSubmatch(s)
	if m == nil {
		return ClassRef{}, fmt.Errorf("invalid event class reference %q: expected \"Caption (uid)\"", s)
	}
	uid, err := strconv.Atoi(m[2])
	if err != nil {
		return ClassRef{}, fmt.Errorf("invalid event class uid in %q: %w", s, err)
	}
	return ClassRef{Caption: m[1], UID: uid}, nil
}

// CaptionOf extracts the caption from either a bare caption or the
// "Caption (uid)" form.
func CaptionOf(s string) string {
	idx := strings.Index(s, "(")
	if idx < 0 {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(s[:idx])
}
