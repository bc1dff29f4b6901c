package messaging

// Subject names follow {domain}.{kind}.{action}.
const (
	// Projection requests: {class, version, paths, mode}.
	SubjectSchemaJobsProject = "schema.jobs.project"
	// Conformance requests: {class, version, input, candidate}.
	SubjectSchemaJobsValidate = "schema.jobs.validate"
	// Sample event requests: {class, version, include_recommended, seed}.
	SubjectSchemaJobsSample = "schema.jobs.sample"

	// Published when a schema version is loaded or evicted.
	SubjectSchemaEventsLoaded  = "schema.events.loaded"
	SubjectSchemaEventsCleared = "schema.events.cleared"
)

// QueueSchemaWorkers load-balances job subjects across service instances.
const QueueSchemaWorkers = "schema-workers"

// JobSubjects lists every subject the schema workers answer.
func JobSubjects() []string {
	return []string{SubjectSchemaJobsProject, SubjectSchemaJobsValidate, SubjectSchemaJobsSample}
}
