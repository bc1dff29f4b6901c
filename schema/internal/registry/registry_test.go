package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/telhawk-systems/ocsf-mapper/common/logging"
	"github.com/telhawk-systems/ocsf-mapper/schema/internal/testschema"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/loader"
	"github.com/telhawk-systems/ocsf-mapper/schema/pkg/ocsf"
)

type fakeSource struct {
	mu      sync.Mutex
	exports map[ocsf.Version][]byte
	fetches map[ocsf.Version]int
}

func newFakeSource(versions ...ocsf.Version) *fakeSource {
	s := &fakeSource{
		exports: make(map[ocsf.Version][]byte),
		fetches: make(map[ocsf.Version]int),
	}
	for _, v := range versions {
		s.exports[v] = []byte(fmt.Sprintf(
			`{"version": %q, "objects": {"file": {"attributes": {"name": {"type": "string_t", "requirement": "required"}}}}}`, v))
	}
	return s
}

func (s *fakeSource) Fetch(ctx context.Context, version ocsf.Version) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetches[version]++
	data, ok := s.exports[version]
	if !ok {
		return nil, fmt.Errorf("%w: %s", loader.ErrUnknownVersion, version)
	}
	return data, nil
}

func (s *fakeSource) String() string { return "fake" }

func (s *fakeSource) count(v ocsf.Version) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches[v]
}

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func quiet() Option {
	return WithLogger(logging.Discard().Logger)
}

func TestRegistry_GetCachesInMemory(t *testing.T) {
	src := newFakeSource(ocsf.V1_1_0)
	r := New(src, quiet())
	ctx := context.Background()

	first, err := r.Get(ctx, ocsf.V1_1_0)
	require.NoError(t, err)
	second, err := r.Get(ctx, ocsf.V1_1_0)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, src.count(ocsf.V1_1_0))
	assert.Equal(t, []ocsf.Version{ocsf.V1_1_0}, r.Versions())
	assert.Equal(t, "fake", r.Source())
}

func TestRegistry_LoadHook(t *testing.T) {
	var loaded []ocsf.Version
	r := New(newFakeSource(ocsf.V1_1_0), quiet(), WithLoadHook(func(v ocsf.Version, g *ocsf.Graph) {
		assert.NotNil(t, g)
		loaded = append(loaded, v)
	}))
	ctx := context.Background()

	_, err := r.Get(ctx, ocsf.V1_1_0)
	require.NoError(t, err)
	_, err = r.Get(ctx, ocsf.V1_1_0)
	require.NoError(t, err)
	_, err = r.Get(ctx, ocsf.V1_2_0)
	require.Error(t, err)

	assert.Equal(t, []ocsf.Version{ocsf.V1_1_0}, loaded)
}

func TestRegistry_UnknownVersion(t *testing.T) {
	r := New(newFakeSource(), quiet())

	_, err := r.Get(context.Background(), ocsf.V1_7_0)
	assert.ErrorIs(t, err, loader.ErrUnknownVersion)
	assert.Empty(t, r.Versions())
}

func TestRegistry_Strict(t *testing.T) {
	src := newFakeSource()
	src.exports[ocsf.V1_1_0] = testschema.ExportJSON

	_, err := New(src, quiet(), WithStrict(true)).Get(context.Background(), ocsf.V1_1_0)
	assert.ErrorIs(t, err, ocsf.ErrUnresolvedObjectType)

	g, err := New(src, quiet()).Get(context.Background(), ocsf.V1_1_0)
	require.NoError(t, err)
	_, err = g.Class(testschema.ProcessActivity)
	assert.NoError(t, err)
}

func TestRegistry_StoreTier(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	store := NewRedisStore(client, time.Hour)
	ctx := context.Background()

	src := newFakeSource(ocsf.V1_1_0)
	_, err := New(src, quiet(), WithStore(store)).Get(ctx, ocsf.V1_1_0)
	require.NoError(t, err)

	assert.True(t, mr.Exists("ocsf:schema:1.1.0"))
	assert.Equal(t, time.Hour, mr.TTL("ocsf:schema:1.1.0"))

	// A second instance with an empty source is served from the store.
	other := newFakeSource()
	g, err := New(other, quiet(), WithStore(store)).Get(ctx, ocsf.V1_1_0)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", g.Version())
	assert.Equal(t, 0, other.count(ocsf.V1_1_0))

	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists("ocsf:schema:1.1.0"))
}

func TestRegistry_CorruptStoreFallsBackToSource(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	require.NoError(t, mr.Set("ocsf:schema:1.1.0", "not json"))

	src := newFakeSource(ocsf.V1_1_0)
	g, err := New(src, quiet(), WithStore(NewRedisStore(client, 0))).Get(context.Background(), ocsf.V1_1_0)
	require.NoError(t, err)
	assert.Equal(t, "1.1.0", g.Version())
	assert.Equal(t, 1, src.count(ocsf.V1_1_0))

	stored, err := mr.Get("ocsf:schema:1.1.0")
	require.NoError(t, err)
	assert.Contains(t, stored, `"version"`)
}

func TestRegistry_StoreDownFallsBackToSource(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer client.Close()
	mr.Close()

	src := newFakeSource(ocsf.V1_1_0)
	_, err := New(src, quiet(), WithStore(NewRedisStore(client, 0))).Get(context.Background(), ocsf.V1_1_0)
	require.NoError(t, err)
	assert.Equal(t, 1, src.count(ocsf.V1_1_0))
}

func TestRegistry_Clear(t *testing.T) {
	mr, client := setupTestRedis(t)
	defer mr.Close()
	defer client.Close()

	src := newFakeSource(ocsf.V1_1_0, ocsf.V1_2_0)
	r := New(src, quiet(), WithStore(NewRedisStore(client, 0)))
	ctx := context.Background()

	require.NoError(t, r.Preload(ctx, []ocsf.Version{ocsf.V1_1_0, ocsf.V1_2_0}))
	assert.Equal(t, []ocsf.Version{ocsf.V1_1_0, ocsf.V1_2_0}, r.Versions())

	require.NoError(t, r.Clear(ctx, ocsf.V1_1_0))
	assert.Equal(t, []ocsf.Version{ocsf.V1_2_0}, r.Versions())
	assert.False(t, mr.Exists("ocsf:schema:1.1.0"))
	assert.True(t, mr.Exists("ocsf:schema:1.2.0"))

	_, err := r.Get(ctx, ocsf.V1_1_0)
	require.NoError(t, err)
	assert.Equal(t, 2, src.count(ocsf.V1_1_0))

	require.NoError(t, r.ClearAll(ctx))
	assert.Empty(t, r.Versions())
	assert.Empty(t, mr.Keys())
}

func TestRegistry_PreloadToleratesFailures(t *testing.T) {
	src := newFakeSource(ocsf.V1_0_0, ocsf.V1_1_0)
	r := New(src, quiet())

	err := r.Preload(context.Background(), []ocsf.Version{ocsf.V1_0_0, ocsf.V1_1_0, ocsf.V1_7_0})
	require.Error(t, err)
	assert.ErrorIs(t, err, loader.ErrUnknownVersion)
	assert.Contains(t, err.Error(), "preload 1.7.0")

	assert.Equal(t, []ocsf.Version{ocsf.V1_0_0, ocsf.V1_1_0}, r.Versions())
}

func TestRegistry_ConcurrentGet(t *testing.T) {
	src := newFakeSource(ocsf.V1_1_0)
	r := New(src, quiet())

	var wg sync.WaitGroup
	graphs := make([]*ocsf.Graph, 32)
	for i := range graphs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := r.Get(context.Background(), ocsf.V1_1_0)
			if err == nil {
				graphs[i] = g
			}
		}(i)
	}
	wg.Wait()

	for _, g := range graphs {
		require.NotNil(t, g)
		assert.Equal(t, "1.1.0", g.Version())
	}
	assert.GreaterOrEqual(t, src.count(ocsf.V1_1_0), 1)
}

// barrierSource holds every Fetch until n callers have arrived, forcing
// concurrent misses for the same version.
type barrierSource struct {
	*fakeSource
	arrived sync.WaitGroup
}

func (s *barrierSource) Fetch(ctx context.Context, version ocsf.Version) ([]byte, error) {
	s.arrived.Done()
	s.arrived.Wait()
	return s.fakeSource.Fetch(ctx, version)
}

func TestRegistry_ConcurrentMissAnnouncesOnce(t *testing.T) {
	const callers = 2
	src := &barrierSource{fakeSource: newFakeSource(ocsf.V1_1_0)}
	src.arrived.Add(callers)

	var mu sync.Mutex
	hooks := 0
	r := New(src, quiet(), WithLoadHook(func(ocsf.Version, *ocsf.Graph) {
		mu.Lock()
		hooks++
		mu.Unlock()
	}))

	var wg sync.WaitGroup
	graphs := make([]*ocsf.Graph, callers)
	for i := range graphs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			g, err := r.Get(context.Background(), ocsf.V1_1_0)
			if err == nil {
				graphs[i] = g
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, callers, src.count(ocsf.V1_1_0))
	assert.Equal(t, 1, hooks)
	require.NotNil(t, graphs[0])
	assert.Same(t, graphs[0], graphs[1])
}
