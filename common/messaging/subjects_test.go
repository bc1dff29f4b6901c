package messaging

import (
	"strings"
	"testing"
)

func TestSubjects_FollowNamingConvention(t *testing.T) {
	subjects := append(JobSubjects(), SubjectSchemaEventsLoaded, SubjectSchemaEventsCleared)

	seen := make(map[string]bool)
	for _, s := range subjects {
		parts := strings.Split(s, ".")
		if len(parts) != 3 {
			t.Errorf("subject %q should have 3 segments, got %d", s, len(parts))
		}
		if parts[0] != "schema" {
			t.Errorf("subject %q should start with the schema domain", s)
		}
		if seen[s] {
			t.Errorf("duplicate subject %q", s)
		}
		seen[s] = true
	}
}

func TestJobSubjects(t *testing.T) {
	jobs := JobSubjects()
	if len(jobs) != 3 {
		t.Fatalf("expected 3 job subjects, got %d", len(jobs))
	}
	for _, s := range jobs {
		if !strings.HasPrefix(s, "schema.jobs.") {
			t.Errorf("job subject %q is outside schema.jobs", s)
		}
	}
}
