package pipeline

import (
	"context"
	"sort"

	"github.com/opmodel/tscompiler/internal/discovery"
	"github.com/opmodel/tscompiler/internal/output"
	"github.com/opmodel/tscompiler/internal/scope"
	"github.com/opmodel/tscompiler/internal/span"
)

// Source is the authoritative "source="" value spec.md §4.1 names on
// StageMeta.
type Source string

const (
	SourceRun   Source = "run"
	SourceCache Source = "cache"
	SourceSeed  Source = "seed"
)

// PipelineOptions binds everything one compilation request needs: the
// authored HTML, its file identity, the reusable project-semantics
// catalog, the root view-model type the scope binder seeds the root
// frame with, and the cache/trace knobs spec.md §4.1 names.
type PipelineOptions struct {
	HTML       string
	File       span.SourceFileId
	Graph      *discovery.ResourceGraph
	RootVMType scope.TypeRef

	// ParserHint and VMTokenHint are opaque-input hints (spec.md §4.1's
	// Fingerprinting rules): a caller-supplied parser or VM reflection
	// token is represented only by a hint string, never its own
	// internals. ParserHint is folded into the lower stage's fingerprint;
	// VMTokenHint is carried but folded into no stage fingerprint.
	ParserHint string
	VMTokenHint string

	Cache PersistentCache
	Trace bool
}

// StageMeta is the bookkeeping record spec.md §4.1 requires per stage.
type StageMeta struct {
	Key          StageKey
	Version      string
	CacheKey     string
	ArtifactHash string
	FromCache    bool
	Source       Source
}

// StageResult is one stage's frozen output plus its metadata. Within a
// Session, a StageResult observed by a dependent is never mutated
// (spec.md §4.1's Ordering guarantee).
type StageResult struct {
	Meta   StageMeta
	Output any
}

// RunContext is what a Stage's Fingerprint/Run functions receive: the
// session's options and read-only access to already-computed
// dependency outputs.
type RunContext struct {
	Opts PipelineOptions
	deps map[StageKey]*StageResult
}

// Dep returns the output of one of this stage's declared dependencies,
// already run and frozen.
func (rc *RunContext) Dep(k StageKey) any {
	if r, ok := rc.deps[k]; ok {
		return r.Output
	}
	return nil
}

// Session is one compilation request: a bound PipelineOptions plus the
// memoized results of every stage run against it so far.
type Session struct {
	registry *Registry
	opts     PipelineOptions
	results  map[StageKey]*StageResult
	trace    []string
}

// NewSession binds registry and opts into a fresh Session with no
// memoized results.
func NewSession(registry *Registry, opts PipelineOptions) *Session {
	return &Session{registry: registry, opts: opts, results: map[StageKey]*StageResult{}}
}

// Seed pre-populates k's result without running its Stage, for a
// caller-supplied prebuilt artifact (spec.md §4.1: "Seeded inputs...get
// source=\"seed\" with version matching the stage").
func (s *Session) Seed(k StageKey, output any, version string) {
	s.results[k] = &StageResult{
		Meta:         StageMeta{Key: k, Version: version, ArtifactHash: span.StableHash(output), FromCache: false, Source: SourceSeed},
		Output:       output,
	}
}

// Trace returns the ordered log of stage evaluations, populated only
// when PipelineOptions.Trace is set.
func (s *Session) Trace() []string { return s.trace }

// Run dispatches stage k: returns the memoized result if present,
// otherwise recursively runs k's deps (left to right, depth-first, per
// spec.md §4.1's Ordering guarantee), computes the cache key, consults
// the persistent cache, and on a miss invokes the stage's Run.
func (s *Session) Run(ctx context.Context, k StageKey) (*StageResult, error) {
	if r, ok := s.results[k]; ok {
		return r, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, &CancelledError{Stage: k}
	}

	stage, ok := s.registry.lookup(k)
	if !ok {
		return nil, &UnknownStageError{Key: k}
	}

	stageLog := output.StageLogger(string(k))
	stageLog.Debug("run start")

	depResults := map[StageKey]*StageResult{}
	var depSummaries []depSummary
	for _, d := range stage.Deps {
		if err := ctx.Err(); err != nil {
			return nil, &CancelledError{Stage: k}
		}
		r, err := s.Run(ctx, d)
		if err != nil {
			return nil, err
		}
		depResults[d] = r
		depSummaries = append(depSummaries, depSummary{Key: d, Version: r.Meta.Version, ArtifactHash: r.Meta.ArtifactHash})
	}
	sort.Slice(depSummaries, func(i, j int) bool { return depSummaries[i].Key < depSummaries[j].Key })

	rc := &RunContext{Opts: s.opts, deps: depResults}
	fp := stage.Fingerprint(rc)
	cacheKey := span.StableHash(cacheKeyPayload{Key: string(k), Version: stage.Version, Deps: depSummaries, Fingerprint: fp})

	if s.opts.Cache != nil {
		if entry, found, err := s.opts.Cache.Get(cacheKey); err == nil && found && entry.Version == stage.Version {
			stageLog.Debug("cache hit", "key", cacheKey)
			result := &StageResult{
				Meta: StageMeta{Key: k, Version: stage.Version, CacheKey: cacheKey, ArtifactHash: entry.ArtifactHash, FromCache: true, Source: SourceCache},
				Output: entry.Output,
			}
			s.results[k] = result
			s.record(k, SourceCache)
			return result, nil
		}
		stageLog.Debug("cache miss", "key", cacheKey)
	}

	if err := ctx.Err(); err != nil {
		return nil, &CancelledError{Stage: k}
	}
	output, err := stage.Run(rc)
	if err != nil {
		return nil, err
	}
	artifactHash := span.StableHash(output)

	if s.opts.Cache != nil {
		_ = s.opts.Cache.Put(cacheKey, Entry{Version: stage.Version, ArtifactHash: artifactHash, Output: output})
	}

	result := &StageResult{
		Meta:   StageMeta{Key: k, Version: stage.Version, CacheKey: cacheKey, ArtifactHash: artifactHash, FromCache: false, Source: SourceRun},
		Output: output,
	}
	s.results[k] = result
	s.record(k, SourceRun)
	return result, nil
}

func (s *Session) record(k StageKey, src Source) {
	if s.opts.Trace {
		s.trace = append(s.trace, string(k)+":"+string(src))
	}
}

type depSummary struct {
	Key          StageKey
	Version      string
	ArtifactHash string
}

type cacheKeyPayload struct {
	Key         string
	Version     string
	Deps        []depSummary
	Fingerprint string
}
