// Package service implements the schema API on top of the registry: class
// catalogs, projections, conformance checks and sample events.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/telhawk-systems/ocsf-mapper/common/logging"
	"github.com/telhawk-systems/ocsf-mapper/common/messaging"
	"github.com/telhawk-systems/ocsf-mapper/schema/internal/metrics"
	"github.com/telhawk-systems/ocsf-mapper/schema/internal/models"
	"github.com/telhawk-systems/ocsf-mapper/schema/internal/registry"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/conformance"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/loader"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/pathset"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/projection"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/sample"
)

// ErrInvalidRequest marks requests rejected before any schema work starts.
var ErrInvalidRequest = errors.New("invalid request")

// SchemaService is safe for concurrent use.
type SchemaService struct {
	registry       *registry.Registry
	defaultVersion ocsf.Version
	nats           messaging.Client
	logger         *logging.Logger
	startedAt      time.Time
	onClear        func(context.Context, ocsf.Version)

	mu         sync.Mutex
	validators map[ocsf.Version]*conformance.Validator
}

// Option configures a SchemaService.
type Option func(*SchemaService)

// WithDefaultVersion sets the version used when a request names none.
func WithDefaultVersion(v ocsf.Version) Option {
	return func(s *SchemaService) {
		s.defaultVersion = v
	}
}

// WithMessaging lets Health report on the broker connection.
func WithMessaging(client messaging.Client) Option {
	return func(s *SchemaService) {
		s.nats = client
	}
}

// WithClearHook registers fn to run after a version is evicted.
func WithClearHook(fn func(context.Context, ocsf.Version)) Option {
	return func(s *SchemaService) {
		s.onClear = fn
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(s *SchemaService) {
		s.logger = logger
	}
}

// New creates a SchemaService.
func New(reg *registry.Registry, opts ...Option) *SchemaService {
	s := &SchemaService{
		registry:       reg,
		defaultVersion: ocsf.DefaultVersion(),
		logger:         logging.Default(),
		startedAt:      time.Now().UTC(),
		validators:     make(map[ocsf.Version]*conformance.Validator),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ResolveVersion maps a request's version string to a supported version. An
// empty string or "default" selects the default; "latest" the newest.
func (s *SchemaService) ResolveVersion(raw string) (ocsf.Version, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "default":
		return s.defaultVersion, nil
	case "latest":
		return ocsf.LatestVersion(), nil
	}
	v, err := ocsf.ParseVersion(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", loader.ErrUnknownVersion, err)
	}
	return v, nil
}

func (s *SchemaService) graph(ctx context.Context, raw string) (*ocsf.Graph, ocsf.Version, error) {
	v, err := s.ResolveVersion(raw)
	if err != nil {
		return nil, "", err
	}
	g, err := s.registry.Get(ctx, v)
	if err != nil {
		return nil, v, err
	}
	return g, v, nil
}

func className(raw string) (string, error) {
	caption := ocsf.CaptionOf(raw)
	if caption == "" {
		return "", fmt.Errorf("%w: class is required", ErrInvalidRequest)
	}
	return caption, nil
}

// Versions lists every version the service can serve.
func (s *SchemaService) Versions() []ocsf.Version {
	return ocsf.SupportedVersions
}

// ListClasses returns the event classes of a version ordered by uid.
func (s *SchemaService) ListClasses(ctx context.Context, version string) ([]models.EventClassSummary, error) {
	g, _, err := s.graph(ctx, version)
	if err != nil {
		return nil, err
	}

	classes := g.Classes()
	out := make([]models.EventClassSummary, 0, len(classes))
	for _, class := range classes {
		out = append(out, summarize(class))
	}
	return out, nil
}

// ClassKnowledge returns the catalog entry for one event class.
func (s *SchemaService) ClassKnowledge(ctx context.Context, version, class string) (models.EventClassSummary, error) {
	caption, err := className(class)
	if err != nil {
		return models.EventClassSummary{}, err
	}
	g, _, err := s.graph(ctx, version)
	if err != nil {
		return models.EventClassSummary{}, err
	}
	c, err := g.Class(caption)
	if err != nil {
		return models.EventClassSummary{}, err
	}
	return summarize(c), nil
}

// Catalog renders the event classes of a version as a markdown list.
func (s *SchemaService) Catalog(ctx context.Context, version string) (string, error) {
	classes, err := s.ListClasses(ctx, version)
	if err != nil {
		return "", err
	}
	v, _ := s.ResolveVersion(version)

	var b strings.Builder
	fmt.Fprintf(&b, "# OCSF Event Classes - Version %s\n", v)
	b.WriteString("The following OCSF Event Classes are available:\n\n")
	for _, c := range classes {
		fmt.Fprintf(&b, "## %s (ID: %d)\n%s\n\n", c.Name, c.ID, c.Details)
	}
	return b.String(), nil
}

func summarize(class *ocsf.EventClass) models.EventClassSummary {
	details := class.Description
	if details == "" {
		details = "Event class for " + class.Caption
	}
	return models.EventClassSummary{
		Name:     class.Caption,
		ID:       class.UID,
		Details:  details,
		Category: class.Category,
	}
}

// Project computes and renders the projection described by req.
func (s *SchemaService) Project(ctx context.Context, req *models.ProjectionRequest) (*projection.Document, error) {
	start := time.Now()

	caption, err := className(req.Class)
	if err != nil {
		return nil, err
	}
	mode, err := projection.ParseMode(req.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	g, v, err := s.graph(ctx, req.Version)
	if err != nil {
		return nil, err
	}

	p, err := projection.Project(g, caption, pathset.New(req.Paths...))
	metrics.ProjectionDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ProjectionsTotal.WithLabelValues(v.String(), "error").Inc()
		s.logger.WarnContext(ctx, "projection failed",
			logging.Version(v.String()), logging.EventClass(caption), logging.Error(err))
		return nil, err
	}
	metrics.ProjectionsTotal.WithLabelValues(v.String(), "ok").Inc()

	doc := p.Render(mode)
	s.logger.DebugContext(ctx, "projection complete",
		logging.Version(v.String()),
		logging.EventClass(caption),
		logging.Paths(p.Paths.Len()),
		logging.Duration(time.Since(start)))
	return &doc, nil
}

// Validate checks req.Candidate against the event class. A report that did
// not pass is a normal result; an error means no report could be produced.
func (s *SchemaService) Validate(ctx context.Context, req *models.ValidationRequest) (*conformance.Report, error) {
	start := time.Now()

	caption, err := className(req.Class)
	if err != nil {
		return nil, err
	}
	if len(req.Candidate) == 0 {
		return nil, fmt.Errorf("%w: candidate is required", ErrInvalidRequest)
	}
	g, v, err := s.graph(ctx, req.Version)
	if err != nil {
		return nil, err
	}

	report := s.validator(v, g).ValidateJSON(caption, req.Input, req.Candidate)
	metrics.ValidationDuration.Observe(time.Since(start).Seconds())
	if report.Err != nil {
		metrics.ValidationsTotal.WithLabelValues(v.String(), "error").Inc()
		return nil, report.Err
	}

	outcome := "passed"
	if !report.Passed {
		outcome = "failed"
	}
	metrics.ValidationsTotal.WithLabelValues(v.String(), outcome).Inc()
	failures := report.Failures()
	for _, f := range failures {
		metrics.ValidationFailures.WithLabelValues(string(f.Code)).Inc()
	}

	s.logger.InfoContext(ctx, "candidate validated",
		logging.Version(v.String()),
		logging.EventClass(caption),
		logging.Passed(report.Passed),
		logging.Failures(len(failures)),
		logging.Duration(time.Since(start)))
	return report, nil
}

// validator returns the cached validator for v, rebuilding it when the
// registry has since reloaded the graph.
func (s *SchemaService) validator(v ocsf.Version, g *ocsf.Graph) *conformance.Validator {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cached, ok := s.validators[v]; ok && cached.Graph() == g {
		return cached
	}
	val := conformance.New(g, conformance.WithLogger(s.logger.Logger))
	s.validators[v] = val
	return val
}

// Sample generates a conformant event for the class.
func (s *SchemaService) Sample(ctx context.Context, req *models.SampleRequest) (*models.Sample, error) {
	caption, err := className(req.Class)
	if err != nil {
		return nil, err
	}
	g, v, err := s.graph(ctx, req.Version)
	if err != nil {
		return nil, err
	}

	gen := sample.New(g, sample.Options{IncludeRecommended: req.IncludeRecommended, Seed: req.Seed})
	event, err := gen.Event(caption)
	if err != nil {
		metrics.SamplesTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.SamplesTotal.WithLabelValues("ok").Inc()

	return &models.Sample{Version: v.String(), Class: caption, Event: event}, nil
}

// Clear evicts a version so the next request reloads it.
func (s *SchemaService) Clear(ctx context.Context, version string) error {
	v, err := s.ResolveVersion(version)
	if err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.validators, v)
	s.mu.Unlock()

	if err := s.registry.Clear(ctx, v); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "schema evicted", logging.Version(v.String()))
	if s.onClear != nil {
		s.onClear(ctx, v)
	}
	return nil
}

// Resident lists the versions currently held in memory.
func (s *SchemaService) Resident() []ocsf.Version {
	return s.registry.Versions()
}

// Source describes where schemas are loaded from.
func (s *SchemaService) Source() string {
	return s.registry.Source()
}

// Health reports loaded versions and, when configured, the broker connection.
// Status is "degraded" when the broker is configured but unhealthy.
func (s *SchemaService) Health(ctx context.Context) models.HealthResponse {
	loaded := s.Resident()
	versions := make([]string, len(loaded))
	for i, v := range loaded {
		versions[i] = v.String()
	}

	resp := models.HealthResponse{
		Status:    "healthy",
		Source:    s.Source(),
		Versions:  versions,
		StartedAt: s.startedAt,
		Uptime:    time.Since(s.startedAt).Round(time.Second).String(),
	}
	if s.nats != nil {
		status := messaging.CheckClientHealth(ctx, s.nats)
		resp.NATS = &status
		if status.Error != "" {
			resp.Status = "degraded"
		}
	}
	return resp
}
