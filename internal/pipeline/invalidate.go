package pipeline

import (
	"github.com/opmodel/tscompiler/internal/depgraph"
)

// DependencyNode maps a StageKey onto the Dependency Graph's node identity
// used for invalidation. Every stage is tracked as a template-compilation
// node: stage-level granularity is the natural unit the Pipeline Engine
// already runs at, finer-grained file/scope/vocabulary nodes are left to a
// caller that wants to feed changed SourceFileIds through its own
// depgraph.Node before calling Invalidate.
func DependencyNode(k StageKey) depgraph.Node {
	n, _ := depgraph.NewNode(depgraph.KindTemplateCompilation, string(k))
	return n
}

// dependencyGraph rebuilds a depgraph.Graph from the registry's declared
// stage deps: an edge from each stage to every dep it reads from, exactly
// the "output→input" direction spec.md §3 describes.
func (r *Registry) dependencyGraph() *depgraph.Graph {
	g := depgraph.New()
	for k, stage := range r.stages {
		g.AddNode(DependencyNode(k))
		for _, d := range stage.Deps {
			g.AddDependency(DependencyNode(k), DependencyNode(d))
		}
	}
	return g
}

// Invalidate drops the memoized results for changed and every stage
// transitively derived from it, so a subsequent Run recomputes them. It
// returns the invalidated keys in the Dependency Graph's BFS order — the
// entry point a caller that tracks which stages' inputs changed drives
// after an edit, per spec.md §9's affected-set invalidation property. The
// CLI has no watch mode and does not call it.
func (s *Session) Invalidate(changed []StageKey) []StageKey {
	g := s.registry.dependencyGraph()

	changedNodes := make([]depgraph.Node, len(changed))
	for i, k := range changed {
		changedNodes[i] = DependencyNode(k)
	}

	affected := g.GetAffected(changedNodes)
	keys := make([]StageKey, 0, len(affected))
	for _, n := range affected {
		k := StageKey(n.Key)
		if _, ok := s.results[k]; ok {
			delete(s.results, k)
		}
		keys = append(keys, k)
	}
	return keys
}
