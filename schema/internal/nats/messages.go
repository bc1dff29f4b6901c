package nats

import (
	"time"

	"github.com/telhawk-systems/ocsf-mapper/schema/internal/models"
)

// ProjectionJob is the payload on schema.jobs.project.
type ProjectionJob struct {
	JobID string `json:"job_id"`
	models.ProjectionRequest
}

// ValidationJob is the payload on schema.jobs.validate.
type ValidationJob struct {
	JobID string `json:"job_id"`
	models.ValidationRequest
}

// SampleJob is the payload on schema.jobs.sample.
type SampleJob struct {
	JobID string `json:"job_id"`
	models.SampleRequest
}

// JobResponse is the reply to every job subject. Result holds the projection
// document, validation report or sample, depending on the subject.
type JobResponse struct {
	JobID   string `json:"job_id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	TookMs  int64  `json:"took_ms"`
	Result  any    `json:"result,omitempty"`
}

// SchemaEvent announces a change to the set of resident schema versions.
type SchemaEvent struct {
	Version   string    `json:"version"`
	Source    string    `json:"source,omitempty"`
	Classes   int       `json:"classes,omitempty"`
	Objects   int       `json:"objects,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
