// Package pathset holds the set of dot-delimited attribute paths a caller is
// interested in, e.g. "process.parent_process.pid".
package pathset

import (
	"encoding/json"
	"sort"
	"strings"
)

// PathSet is an unordered set of normalized attribute paths. The zero value
// is an empty set.
type PathSet struct {
	paths map[string]struct{}
}

// New builds a PathSet. Paths are trimmed, a single leading "." is removed
// (jq-style field references) and empty entries are dropped.
func New(paths ...string) PathSet {
	set := PathSet{paths: make(map[string]struct{}, len(paths))}
	for _, p := range paths {
		if n := normalize(p); n != "" {
			set.paths[n] = struct{}{}
		}
	}
	return set
}

func normalize(p string) string {
	p = strings.TrimSpace(p)
	return strings.TrimPrefix(p, ".")
}

// Len returns the number of paths.
func (s PathSet) Len() int {
	return len(s.paths)
}

// IsEmpty reports whether the set has no paths.
func (s PathSet) IsEmpty() bool {
	return len(s.paths) == 0
}

// Contains reports whether path is itself a member of the set.
func (s PathSet) Contains(path string) bool {
	_, ok := s.paths[path]
	return ok
}

// HasDescendant reports whether some member lies strictly below path, i.e.
// path is a proper prefix of it on a segment boundary. "process.file" is a
// prefix of "process.file.name" but not of "process.file_name".
func (s PathSet) HasDescendant(path string) bool {
	prefix := path + "."
	for p := range s.paths {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

// Relevant reports whether path is a target (leaf) or lies on the way to one (transition).
func (s PathSet) Relevant(path string) bool {
	return s.Contains(path) || s.HasDescendant(path)
}

// TopLevel returns the set of first path segments.
func (s PathSet) TopLevel() map[string]struct{} {
	top := make(map[string]struct{}, len(s.paths))
	for p := range s.paths {
		first, _, _ := strings.Cut(p, ".")
		top[first] = struct{}{}
	}
	return top
}

// Paths returns the members in sorted order.
func (s PathSet) Paths() []string {
	out := make([]string, 0, len(s.paths))
	for p := range s.paths {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted string array.
func (s PathSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Paths())
}

// UnmarshalJSON decodes a string array, normalizing each entry.
func (s *PathSet) UnmarshalJSON(data []byte) error {
	var paths []string
	if err := json.Unmarshal(data, &paths); err != nil {
		return err
	}
	*s = New(paths...)
	return nil
}
