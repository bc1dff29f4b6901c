// Package nats serves schema jobs over the message bus. Each job subject is
// queue-subscribed so a request is answered by exactly one instance.
package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/telhawk-systems/ocsf-mapper/common/messaging"
	"github.com/telhawk-systems/ocsf-mapper/schema/internal/metrics"
	"github.com/telhawk-systems/ocsf-mapper/schema/internal/service"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
)

// Handler processes NATS messages for schema operations.
type Handler struct {
	client messaging.Client
	svc    *service.SchemaService
	subs   []messaging.Subscription
	logger *slog.Logger
}

// NewHandler creates a new NATS handler for schema operations.
func NewHandler(client messaging.Client, svc *service.SchemaService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		client: client,
		svc:    svc,
		logger: logger.With(slog.String("component", "nats-handler")),
	}
}

// Start subscribes to the job subjects.
func (h *Handler) Start(ctx context.Context) error {
	handlers := map[string]messaging.MessageHandler{
		messaging.SubjectSchemaJobsProject:  h.handleProjectionJob,
		messaging.SubjectSchemaJobsValidate: h.handleValidationJob,
		messaging.SubjectSchemaJobsSample:   h.handleSampleJob,
	}
	for _, subject := range messaging.JobSubjects() {
		sub, err := h.client.QueueSubscribe(subject, messaging.QueueSchemaWorkers, handlers[subject])
		if err != nil {
			_ = h.Stop()
			return fmt.Errorf("failed to subscribe to %s: %w", subject, err)
		}
		h.subs = append(h.subs, sub)
	}

	h.logger.InfoContext(ctx, "NATS handler started",
		slog.Any("subjects", messaging.JobSubjects()),
		slog.String("queue_group", messaging.QueueSchemaWorkers))
	return nil
}

// Stop unsubscribes from all subjects.
func (h *Handler) Stop() error {
	for _, sub := range h.subs {
		if err := sub.Unsubscribe(); err != nil {
			h.logger.Warn("Failed to unsubscribe",
				slog.String("subject", sub.Subject()),
				slog.String("error", err.Error()))
		}
	}
	h.subs = nil
	return nil
}

func (h *Handler) handleProjectionJob(ctx context.Context, msg *messaging.Message) error {
	var job ProjectionJob
	return h.run(ctx, msg, &job, &job.JobID, func() (any, error) {
		return h.svc.Project(ctx, &job.ProjectionRequest)
	})
}

func (h *Handler) handleValidationJob(ctx context.Context, msg *messaging.Message) error {
	var job ValidationJob
	return h.run(ctx, msg, &job, &job.JobID, func() (any, error) {
		return h.svc.Validate(ctx, &job.ValidationRequest)
	})
}

func (h *Handler) handleSampleJob(ctx context.Context, msg *messaging.Message) error {
	var job SampleJob
	return h.run(ctx, msg, &job, &job.JobID, func() (any, error) {
		return h.svc.Sample(ctx, &job.SampleRequest)
	})
}

// run decodes msg into job, executes it and replies. Service failures are
// reported in the reply rather than returned, so they are not logged twice.
func (h *Handler) run(ctx context.Context, msg *messaging.Message, job any, jobID *string, exec func() (any, error)) error {
	start := time.Now()

	var (
		result any
		err    error
	)
	if err = json.Unmarshal(msg.Data, job); err != nil {
		err = fmt.Errorf("%w: malformed job: %v", service.ErrInvalidRequest, err)
	}
	if *jobID == "" {
		*jobID = uuid.NewString()
	}
	if err == nil {
		result, err = exec()
	}

	resp := JobResponse{
		JobID:  *jobID,
		TookMs: time.Since(start).Milliseconds(),
	}
	status := "ok"
	if err != nil {
		status = "error"
		resp.Error = err.Error()
		h.logger.WarnContext(ctx, "Schema job failed",
			slog.String("subject", msg.Subject),
			slog.String("job_id", resp.JobID),
			slog.String("error", err.Error()))
	} else {
		resp.Success = true
		resp.Result = result
		h.logger.DebugContext(ctx, "Schema job completed",
			slog.String("subject", msg.Subject),
			slog.String("job_id", resp.JobID),
			slog.Int64("took_ms", resp.TookMs))
	}
	metrics.JobsTotal.WithLabelValues(msg.Subject, status).Inc()

	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to encode job response: %w", err)
	}
	if err := messaging.Respond(ctx, h.client, msg, data); err != nil {
		if errors.Is(err, messaging.ErrNoReply) {
			h.logger.DebugContext(ctx, "Job has no reply subject, result dropped",
				slog.String("job_id", resp.JobID))
			return nil
		}
		return fmt.Errorf("failed to reply to job %s: %w", resp.JobID, err)
	}
	return nil
}

// PublishLoaded announces that version became resident.
func (h *Handler) PublishLoaded(ctx context.Context, version ocsf.Version, g *ocsf.Graph) {
	h.publish(ctx, messaging.SubjectSchemaEventsLoaded, SchemaEvent{
		Version:   version.String(),
		Source:    h.svc.Source(),
		Classes:   len(g.Classes()),
		Objects:   len(g.Objects()),
		Timestamp: time.Now().UTC(),
	})
}

// PublishCleared announces that version was evicted.
func (h *Handler) PublishCleared(ctx context.Context, version ocsf.Version) {
	h.publish(ctx, messaging.SubjectSchemaEventsCleared, SchemaEvent{
		Version:   version.String(),
		Timestamp: time.Now().UTC(),
	})
}

func (h *Handler) publish(ctx context.Context, subject string, event SchemaEvent) {
	data, err := json.Marshal(event)
	if err == nil {
		err = h.client.Publish(ctx, subject, data)
	}
	if err != nil {
		h.logger.WarnContext(ctx, "Failed to publish schema event",
			slog.String("subject", subject),
			slog.String("ocsf_version", event.Version),
			slog.String("error", err.Error()))
	}
}
