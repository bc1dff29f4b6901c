// Package local answers ocsfctl commands in-process from a schema directory
// or an OCSF schema server, without a running schema service.
package local

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/telhawk-systems/ocsf-mapper/cli/internal/client"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/conformance"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/loader"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/pathset"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/projection"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/sample"
)

// ErrClassRequired is returned when a command names no event class.
var ErrClassRequired = errors.New("event class is required")

// Engine implements client.Backend over a loader.Source. Graphs are loaded
// once per version.
type Engine struct {
	source         loader.Source
	defaultVersion ocsf.Version

	mu     sync.Mutex
	graphs map[ocsf.Version]*ocsf.Graph
}

var _ client.Backend = (*Engine)(nil)

func New(source loader.Source, defaultVersion ocsf.Version) *Engine {
	return &Engine{
		source:         source,
		defaultVersion: defaultVersion,
		graphs:         make(map[ocsf.Version]*ocsf.Graph),
	}
}

func (e *Engine) resolve(raw string) (ocsf.Version, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "default":
		return e.defaultVersion, nil
	case "latest":
		return ocsf.LatestVersion(), nil
	}
	v, err := ocsf.ParseVersion(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", loader.ErrUnknownVersion, err)
	}
	return v, nil
}

func (e *Engine) graph(ctx context.Context, raw string) (*ocsf.Graph, ocsf.Version, error) {
	v, err := e.resolve(raw)
	if err != nil {
		return nil, "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if g, ok := e.graphs[v]; ok {
		return g, v, nil
	}
	g, err := loader.Load(ctx, e.source, v, false)
	if err != nil {
		return nil, v, err
	}
	e.graphs[v] = g
	return g, v, nil
}

func caption(class string) (string, error) {
	c := ocsf.CaptionOf(class)
	if c == "" {
		return "", ErrClassRequired
	}
	return c, nil
}

func (e *Engine) Versions(ctx context.Context) ([]client.Version, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]client.Version, 0, len(ocsf.SupportedVersions))
	for _, v := range ocsf.SupportedVersions {
		_, resident := e.graphs[v]
		out = append(out, client.Version{
			Version:  v.String(),
			URLSafe:  v.URLSafeName(),
			Default:  v == e.defaultVersion,
			Latest:   v == ocsf.LatestVersion(),
			Resident: resident,
		})
	}
	return out, nil
}

func (e *Engine) Classes(ctx context.Context, version string) ([]client.EventClass, error) {
	g, _, err := e.graph(ctx, version)
	if err != nil {
		return nil, err
	}
	classes := g.Classes()
	out := make([]client.EventClass, 0, len(classes))
	for _, c := range classes {
		out = append(out, summarize(c))
	}
	return out, nil
}

func (e *Engine) Class(ctx context.Context, version, class string) (*client.EventClass, error) {
	name, err := caption(class)
	if err != nil {
		return nil, err
	}
	g, _, err := e.graph(ctx, version)
	if err != nil {
		return nil, err
	}
	c, err := g.Class(name)
	if err != nil {
		return nil, err
	}
	out := summarize(c)
	return &out, nil
}

func summarize(c *ocsf.EventClass) client.EventClass {
	details := c.Description
	if details == "" {
		details = "Event class for " + c.Caption
	}
	return client.EventClass{Name: c.Caption, ID: c.UID, Details: details, Category: c.Category}
}

func (e *Engine) Project(ctx context.Context, version string, req client.ProjectionRequest) (*projection.Document, error) {
	name, err := caption(req.Class)
	if err != nil {
		return nil, err
	}
	mode, err := projection.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	g, _, err := e.graph(ctx, version)
	if err != nil {
		return nil, err
	}
	p, err := projection.Project(g, name, pathset.New(req.Paths...))
	if err != nil {
		return nil, err
	}
	doc := p.Render(mode)
	return &doc, nil
}

func (e *Engine) Validate(ctx context.Context, version string, req client.ValidationRequest) (*conformance.Report, error) {
	name, err := caption(req.Class)
	if err != nil {
		return nil, err
	}
	g, _, err := e.graph(ctx, version)
	if err != nil {
		return nil, err
	}
	report := conformance.New(g).ValidateJSON(name, req.Input, req.Candidate)
	if report.Err != nil {
		return nil, report.Err
	}
	return report, nil
}

func (e *Engine) Sample(ctx context.Context, version string, req client.SampleRequest) (*client.Sample, error) {
	name, err := caption(req.Class)
	if err != nil {
		return nil, err
	}
	g, v, err := e.graph(ctx, version)
	if err != nil {
		return nil, err
	}
	event, err := sample.New(g, sample.Options{IncludeRecommended: req.IncludeRecommended, Seed: req.Seed}).Event(name)
	if err != nil {
		return nil, err
	}
	return &client.Sample{Version: v.String(), Class: name, Event: event}, nil
}
