package pipeline

import "sort"

// RunFunc is a stage's actual work. It receives the dependency outputs
// already computed this session and returns the stage's artifact.
type RunFunc func(rc *RunContext) (any, error)

// FingerprintFunc computes a pure digest of a stage's authored inputs —
// never its dependencies' outputs, those are folded in separately via
// each dependency's own artifactHash (spec.md §4.1 step 3).
type FingerprintFunc func(rc *RunContext) string

// Stage is one DAG node: its declared dependencies, a version string
// that invalidates every cache entry when bumped, and the pure
// fingerprint/run pair spec.md §4.1's Contract names.
type Stage struct {
	Key         StageKey
	Deps        []StageKey
	Version     string
	Fingerprint FingerprintFunc
	Run         RunFunc
}

// Registry is the set of stages a Session dispatches against.
type Registry struct {
	stages map[StageKey]Stage
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry { return &Registry{stages: map[StageKey]Stage{}} }

// Register adds stage, rejecting an unknown key, a duplicate
// registration, or a stage whose Fingerprint/Run is nil.
func (r *Registry) Register(stage Stage) error {
	if !validStageKey(stage.Key) {
		return &UnknownStageError{Key: stage.Key}
	}
	if _, exists := r.stages[stage.Key]; exists {
		return &DuplicateStageError{Key: stage.Key}
	}
	if stage.Fingerprint == nil || stage.Run == nil {
		return &IncompleteStageError{Key: stage.Key}
	}
	for _, d := range stage.Deps {
		if !validStageKey(d) {
			return &UnknownStageError{Key: d}
		}
	}
	r.stages[stage.Key] = stage
	return nil
}

// Validate topologically sorts the registered stages, rejecting any
// cycle among their declared deps (spec.md §4.1's "cycles are rejected
// at registration by topo check" — applied here once all stages the
// caller intends to register are in, since a dep may legitimately be
// registered after the stage that names it).
func (r *Registry) Validate() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := map[StageKey]int{}
	var path []StageKey

	var visit func(k StageKey) error
	visit = func(k StageKey) error {
		switch color[k] {
		case black:
			return nil
		case gray:
			return &StageCycleError{Cycle: append(append([]StageKey{}, path...), k)}
		}
		color[k] = gray
		path = append(path, k)
		stage, ok := r.stages[k]
		if ok {
			for _, d := range stage.Deps {
				if err := visit(d); err != nil {
					return err
				}
			}
		}
		path = path[:len(path)-1]
		color[k] = black
		return nil
	}

	keys := make([]StageKey, 0, len(r.stages))
	for k := range r.stages {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	for _, k := range keys {
		if err := visit(k); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) lookup(k StageKey) (Stage, bool) {
	s, ok := r.stages[k]
	return s, ok
}
