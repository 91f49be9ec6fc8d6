package pipeline_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opmodel/tscompiler/internal/discovery"
	"github.com/opmodel/tscompiler/internal/overlay"
	"github.com/opmodel/tscompiler/internal/pipeline"
	"github.com/opmodel/tscompiler/internal/scope"
	"github.com/opmodel/tscompiler/internal/span"
)

func newOpts(html string, cache pipeline.PersistentCache) pipeline.PipelineOptions {
	return pipeline.PipelineOptions{
		HTML:       html,
		File:       span.NewSourceFileId("app.html"),
		Graph:      discovery.Discover(nil).Graph,
		RootVMType: scope.TypeRef{Name: "AppViewModel"},
		Cache:      cache,
	}
}

func TestRunProducesEveryStageInDependencyOrder(t *testing.T) {
	registry, err := pipeline.BuildDefaultRegistry()
	require.NoError(t, err)
	session := pipeline.NewSession(registry, newOpts(`<div class.bind="name"></div>`, nil))

	result, err := session.Run(context.Background(), pipeline.StageOverlayEmit)
	require.NoError(t, err)
	assert.Equal(t, pipeline.StageOverlayEmit, result.Meta.Key)
	assert.Equal(t, pipeline.SourceRun, result.Meta.Source)
	assert.False(t, result.Meta.FromCache)

	emission, ok := result.Output.(*overlay.Emission)
	require.True(t, ok)
	assert.Contains(t, emission.Source, "__au$access")
}

func TestRunMemoizesWithinASession(t *testing.T) {
	registry, err := pipeline.BuildDefaultRegistry()
	require.NoError(t, err)
	session := pipeline.NewSession(registry, newOpts(`<div class.bind="name"></div>`, nil))
	ctx := context.Background()

	first, err := session.Run(ctx, pipeline.StageResolve)
	require.NoError(t, err)
	second, err := session.Run(ctx, pipeline.StageResolve)
	require.NoError(t, err)
	assert.Same(t, first, second, "a second Run within one session must return the memoized result")
}

func TestRunReusesPersistentCacheAcrossSessions(t *testing.T) {
	registry, err := pipeline.BuildDefaultRegistry()
	require.NoError(t, err)
	cache, err := pipeline.NewMemCache(64)
	require.NoError(t, err)

	opts := newOpts(`<div class.bind="name"></div>`, cache)
	ctx := context.Background()

	first, err := pipeline.NewSession(registry, opts).Run(ctx, pipeline.StageBind)
	require.NoError(t, err)
	assert.Equal(t, pipeline.SourceRun, first.Meta.Source)

	second, err := pipeline.NewSession(registry, opts).Run(ctx, pipeline.StageBind)
	require.NoError(t, err)
	assert.Equal(t, pipeline.SourceCache, second.Meta.Source)
	assert.True(t, second.Meta.FromCache)
	assert.Equal(t, first.Meta.ArtifactHash, second.Meta.ArtifactHash)
	assert.Equal(t, first.Meta.CacheKey, second.Meta.CacheKey)
}

func TestOptionsFingerprintChangeInvalidatesCache(t *testing.T) {
	registry, err := pipeline.BuildDefaultRegistry()
	require.NoError(t, err)
	cache, err := pipeline.NewMemCache(64)
	require.NoError(t, err)
	ctx := context.Background()

	a := newOpts(`<div class.bind="name"></div>`, cache)
	ra, err := pipeline.NewSession(registry, a).Run(ctx, pipeline.StageBind)
	require.NoError(t, err)

	b := a
	b.RootVMType = scope.TypeRef{Name: "OtherViewModel"}
	rb, err := pipeline.NewSession(registry, b).Run(ctx, pipeline.StageBind)
	require.NoError(t, err)

	assert.NotEqual(t, ra.Meta.CacheKey, rb.Meta.CacheKey)
	assert.Equal(t, pipeline.SourceRun, rb.Meta.Source)
}

func TestSeedBypassesRunAndRecordsSeedSource(t *testing.T) {
	registry, err := pipeline.BuildDefaultRegistry()
	require.NoError(t, err)
	session := pipeline.NewSession(registry, newOpts(`<div></div>`, nil))

	session.Seed(pipeline.StageLower, "prebuilt-artifact", "1")
	result, err := session.Run(context.Background(), pipeline.StageLower)
	require.NoError(t, err)
	assert.Equal(t, pipeline.SourceSeed, result.Meta.Source)
	assert.Equal(t, "prebuilt-artifact", result.Output)
}

func TestCancellationStopsBeforeDependentStageRuns(t *testing.T) {
	registry, err := pipeline.BuildDefaultRegistry()
	require.NoError(t, err)
	session := pipeline.NewSession(registry, newOpts(`<div class.bind="name"></div>`, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = session.Run(ctx, pipeline.StageOverlayEmit)
	require.Error(t, err)
	var cancelled *pipeline.CancelledError
	assert.ErrorAs(t, err, &cancelled)
}

func TestUnknownStageIsRejected(t *testing.T) {
	r := pipeline.NewRegistry()
	err := r.Register(pipeline.Stage{
		Key:         "not-a-real-stage",
		Fingerprint: func(*pipeline.RunContext) string { return "" },
		Run:         func(*pipeline.RunContext) (any, error) { return nil, nil },
	})
	var unknown *pipeline.UnknownStageError
	assert.ErrorAs(t, err, &unknown)
}

func TestRegistryValidateRejectsCycles(t *testing.T) {
	r := pipeline.NewRegistry()
	require.NoError(t, r.Register(pipeline.Stage{
		Key: pipeline.StageLower, Deps: []pipeline.StageKey{pipeline.StageResolve},
		Fingerprint: func(*pipeline.RunContext) string { return "" },
		Run:         func(*pipeline.RunContext) (any, error) { return nil, nil },
	}))
	require.NoError(t, r.Register(pipeline.Stage{
		Key: pipeline.StageResolve, Deps: []pipeline.StageKey{pipeline.StageLower},
		Fingerprint: func(*pipeline.RunContext) string { return "" },
		Run:         func(*pipeline.RunContext) (any, error) { return nil, nil },
	}))
	err := r.Validate()
	var cyc *pipeline.StageCycleError
	assert.ErrorAs(t, err, &cyc)
}

func TestUsageStageCountsBindableReferences(t *testing.T) {
	registry, err := pipeline.BuildDefaultRegistry()
	require.NoError(t, err)
	session := pipeline.NewSession(registry, newOpts(`<div class.bind="name"></div>`, nil))

	result, err := session.Run(context.Background(), pipeline.StageUsage)
	require.NoError(t, err)
	usage, ok := result.Output.(*pipeline.UsageTable)
	require.True(t, ok)
	assert.NotNil(t, usage.Counts)
}

func TestInvalidateDropsChangedStageAndItsDependents(t *testing.T) {
	registry, err := pipeline.BuildDefaultRegistry()
	require.NoError(t, err)
	session := pipeline.NewSession(registry, newOpts(`<div class.bind="name"></div>`, nil))
	ctx := context.Background()

	_, err = session.Run(ctx, pipeline.StageOverlayEmit)
	require.NoError(t, err)

	invalidated := session.Invalidate([]pipeline.StageKey{pipeline.StageResolve})
	assert.Contains(t, invalidated, pipeline.StageResolve)
	assert.Contains(t, invalidated, pipeline.StageOverlayEmit)

	rerun, err := session.Run(ctx, pipeline.StageOverlayEmit)
	require.NoError(t, err)
	assert.Equal(t, pipeline.SourceRun, rerun.Meta.Source)
}

func TestFileCacheRoundTripsThroughDisk(t *testing.T) {
	dir := t.TempDir()
	cache, err := pipeline.NewFileCache(dir)
	require.NoError(t, err)

	entry := pipeline.Entry{Version: "1", ArtifactHash: "abc"}
	require.NoError(t, cache.Put("key1", entry))

	got, ok, err := cache.Get("key1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, entry.Version, got.Version)
	assert.Equal(t, entry.ArtifactHash, got.ArtifactHash)

	_, ok, err = cache.Get("missing-key")
	require.NoError(t, err)
	assert.False(t, ok)
}
