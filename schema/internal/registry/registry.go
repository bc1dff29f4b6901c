// Package registry hands out immutable schema graphs by version, loading
// each one on first use.
//
// Lookups go memory, then the optional shared Store, then the Source.
// Concurrent misses for the same version may each load it; loads are
// deterministic, so the last write wins harmlessly.
package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/telhawk-systems/ocsf-mapper/schema/internal/metrics"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/loader"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
)

// Registry is safe for concurrent use.
type Registry struct {
	source loader.Source
	store  Store
	strict bool
	logger *slog.Logger
	onLoad func(ocsf.Version, *ocsf.Graph)

	mu     sync.RWMutex
	graphs map[ocsf.Version]*ocsf.Graph
}

// Option configures a Registry.
type Option func(*Registry)

// WithStore adds a shared tier between memory and the source.
func WithStore(store Store) Option {
	return func(r *Registry) {
		r.store = store
	}
}

// WithStrict rejects exports with dangling object references at load time.
func WithStrict(strict bool) Option {
	return func(r *Registry) {
		r.strict = strict
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithLoadHook registers fn to run after a version becomes resident.
func WithLoadHook(fn func(ocsf.Version, *ocsf.Graph)) Option {
	return func(r *Registry) {
		r.onLoad = fn
	}
}

// New creates a Registry reading from source.
func New(source loader.Source, opts ...Option) *Registry {
	r := &Registry{
		source: source,
		logger: slog.Default(),
		graphs: make(map[ocsf.Version]*ocsf.Graph),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Get returns the graph for version, loading it if needed.
func (r *Registry) Get(ctx context.Context, version ocsf.Version) (*ocsf.Graph, error) {
	r.mu.RLock()
	g, ok := r.graphs[version]
	r.mu.RUnlock()
	if ok {
		metrics.SchemaLoadsTotal.WithLabelValues(version.String(), "memory").Inc()
		return g, nil
	}

	g, err := r.load(ctx, version)
	if err != nil {
		metrics.SchemaLoadErrors.WithLabelValues(version.String()).Inc()
		return nil, err
	}

	// A concurrent miss may have won the race; keep its graph so the version
	// is announced once.
	r.mu.Lock()
	if existing, loaded := r.graphs[version]; loaded {
		r.mu.Unlock()
		return existing, nil
	}
	r.graphs[version] = g
	metrics.SchemasCached.Set(float64(len(r.graphs)))
	r.mu.Unlock()

	if r.onLoad != nil {
		r.onLoad(version, g)
	}
	return g, nil
}

func (r *Registry) load(ctx context.Context, version ocsf.Version) (*ocsf.Graph, error) {
	start := time.Now()
	defer func() {
		metrics.SchemaLoadDuration.Observe(time.Since(start).Seconds())
	}()

	if r.store != nil {
		data, err := r.store.Get(ctx, version)
		switch {
		case err != nil:
			r.logger.Warn("schema store unavailable, falling back to source",
				slog.String("ocsf_version", version.String()), slog.String("error", err.Error()))
		case data != nil:
			g, err := loader.ParseVersion(data, version, r.strict)
			if err == nil {
				metrics.SchemaLoadsTotal.WithLabelValues(version.String(), "store").Inc()
				r.logger.Debug("schema loaded from store", slog.String("ocsf_version", version.String()))
				return g, nil
			}
			r.logger.Warn("discarding unreadable schema from store",
				slog.String("ocsf_version", version.String()), slog.String("error", err.Error()))
		}
	}

	data, err := r.source.Fetch(ctx, version)
	if err != nil {
		return nil, err
	}
	g, err := loader.ParseVersion(data, version, r.strict)
	if err != nil {
		return nil, err
	}
	metrics.SchemaLoadsTotal.WithLabelValues(version.String(), "source").Inc()
	r.logger.Info("schema loaded",
		slog.String("ocsf_version", version.String()),
		slog.String("source", r.source.String()),
		slog.Int("classes", len(g.Classes())),
		slog.Int("objects", len(g.Objects())))

	if r.store != nil {
		if err := r.store.Set(ctx, version, data); err != nil {
			r.logger.Warn("failed to populate schema store",
				slog.String("ocsf_version", version.String()), slog.String("error", err.Error()))
		}
	}
	return g, nil
}

// Clear drops one version from memory and from the store.
func (r *Registry) Clear(ctx context.Context, version ocsf.Version) error {
	r.mu.Lock()
	delete(r.graphs, version)
	metrics.SchemasCached.Set(float64(len(r.graphs)))
	r.mu.Unlock()

	if r.store != nil {
		return r.store.Delete(ctx, version)
	}
	return nil
}

// ClearAll drops every version from memory and from the store.
func (r *Registry) ClearAll(ctx context.Context) error {
	r.mu.Lock()
	r.graphs = make(map[ocsf.Version]*ocsf.Graph)
	metrics.SchemasCached.Set(0)
	r.mu.Unlock()

	if r.store != nil {
		return r.store.Delete(ctx, ocsf.SupportedVersions...)
	}
	return nil
}

// Preload loads versions concurrently. A version that fails to load is
// logged and skipped; the failures are returned joined once every load has
// finished.
func (r *Registry) Preload(ctx context.Context, versions []ocsf.Version) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for _, v := range versions {
		g.Go(func() error {
			if _, err := r.Get(gctx, v); err != nil {
				r.logger.Warn("could not preload schema",
					slog.String("ocsf_version", v.String()), slog.String("error", err.Error()))
				mu.Lock()
				errs = append(errs, fmt.Errorf("preload %s: %w", v, err))
				mu.Unlock()
				return nil
			}
			r.logger.Info("preloaded schema", slog.String("ocsf_version", v.String()))
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// Versions returns the versions held in memory, oldest first.
func (r *Registry) Versions() []ocsf.Version {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []ocsf.Version
	for _, v := range ocsf.SupportedVersions {
		if _, ok := r.graphs[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Source describes where schemas come from.
func (r *Registry) Source() string {
	return r.source.String()
}
