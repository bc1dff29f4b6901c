// Package models holds the request and response shapes shared by the HTTP
// and NATS surfaces of the schema service.
package models

import (
	"encoding/json"
	"time"

	"github.com/telhawk-systems/ocsf-mapper/common/messaging"
)

// EventClassSummary describes one event class in a catalog listing.
type EventClassSummary struct {
	Name     string `json:"event_name" yaml:"event_name"`
	ID       int    `json:"event_id" yaml:"event_id"`
	Details  string `json:"event_details" yaml:"event_details"`
	Category string `json:"category,omitempty" yaml:"category,omitempty"`
}

// ProjectionRequest asks for the schema subset relevant to Paths.
type ProjectionRequest struct {
	Version string   `json:"version,omitempty"`
	Class   string   `json:"class"`
	Paths   []string `json:"paths"`
	// Mode is full, filtered or summary. Empty means filtered.
	Mode string `json:"mode,omitempty"`
}

// ValidationRequest asks whether Candidate conforms to Class.
type ValidationRequest struct {
	Version string `json:"version,omitempty"`
	Class   string `json:"class"`
	// Input is the source record the candidate was produced from. It is
	// echoed in the report and never inspected.
	Input     string          `json:"input,omitempty"`
	Candidate json.RawMessage `json:"candidate"`
}

// SampleRequest asks for a fabricated conformant event.
type SampleRequest struct {
	Version            string `json:"version,omitempty"`
	Class              string `json:"class"`
	IncludeRecommended bool   `json:"include_recommended,omitempty"`
	// Seed makes the sample reproducible. Zero picks one at random.
	Seed int64 `json:"seed,omitempty"`
}

// Sample is a generated event.
type Sample struct {
	Version string         `json:"version" yaml:"version"`
	Class   string         `json:"class" yaml:"class"`
	Event   map[string]any `json:"event" yaml:"event"`
}

// HealthResponse reports service state.
type HealthResponse struct {
	Status    string                  `json:"status"`
	Source    string                  `json:"source"`
	Versions  []string                `json:"versions"`
	Uptime    string                  `json:"uptime"`
	StartedAt time.Time               `json:"started_at"`
	NATS      *messaging.HealthStatus `json:"nats,omitempty"`
}
