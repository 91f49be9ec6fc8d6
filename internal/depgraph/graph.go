package depgraph

import (
	"sort"
	"sync"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Graph is the dependency graph spec.md §3 describes: nodes of the closed
// Kind set, edges directed output→input (an output node points at every
// input it was derived from), plus the reverse index invalidation actually
// walks. spec.md §3's resource-policy note calls this "the only long-lived
// mutable structure" in the system and requires exclusive access during
// reads whenever concurrent writers are possible — so, unlike most of this
// repo's read-mostly types, Graph takes a plain Mutex rather than an
// RWMutex and holds it across getAffected's traversal too.
type Graph struct {
	mu sync.Mutex

	// nodes holds every node registered, including ones with no edges yet
	// (a freshly-read file with no dependents, for instance).
	nodes sets.Set[Node]

	// deps maps an output node to the inputs it was derived from.
	deps map[Node]sets.Set[Node]

	// dependents is the reverse index: deps[input] ∋ output  ⇔
	// dependents[input] ∋ output. getAffected walks this index.
	dependents map[Node]sets.Set[Node]
}

// New returns an empty Graph.
func New() *Graph {
	return &Graph{
		nodes:      sets.New[Node](),
		deps:       map[Node]sets.Set[Node]{},
		dependents: map[Node]sets.Set[Node]{},
	}
}

// AddNode registers n with no edges, a no-op if n is already present or
// already has edges.
func (g *Graph) AddNode(n Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes.Insert(n)
}

// AddDependency records that output was derived from input: an edge
// output→input. Both ends are implicitly registered as nodes.
func (g *Graph) AddDependency(output, input Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes.Insert(output, input)

	if g.deps[output] == nil {
		g.deps[output] = sets.New[Node]()
	}
	g.deps[output].Insert(input)

	if g.dependents[input] == nil {
		g.dependents[input] = sets.New[Node]()
	}
	g.dependents[input].Insert(output)
}

// RemoveNode deletes n and every edge touching it, on either side.
func (g *Graph) RemoveNode(n Node) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.nodes.Delete(n)

	for _, input := range g.deps[n].UnsortedList() {
		if dependents := g.dependents[input]; dependents != nil {
			dependents.Delete(n)
			if dependents.Len() == 0 {
				delete(g.dependents, input)
			}
		}
	}
	delete(g.deps, n)

	for _, output := range g.dependents[n].UnsortedList() {
		if deps := g.deps[output]; deps != nil {
			deps.Delete(n)
			if deps.Len() == 0 {
				delete(g.deps, output)
			}
		}
	}
	delete(g.dependents, n)
}

// Dependencies returns the inputs output was last recorded as derived
// from, sorted by Node string for deterministic callers.
func (g *Graph) Dependencies(output Node) []Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return sortedNodes(g.deps[output])
}

// Dependents returns the outputs directly derived from input, sorted by
// Node string for deterministic callers.
func (g *Graph) Dependents(input Node) []Node {
	g.mu.Lock()
	defer g.mu.Unlock()
	return sortedNodes(g.dependents[input])
}

func sortedNodes(s sets.Set[Node]) []Node {
	out := s.UnsortedList()
	sort.Slice(out, func(i, j int) bool { return out[i].String() < out[j].String() })
	return out
}

// Has reports whether n is a registered node.
func (g *Graph) Has(n Node) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.nodes.Has(n)
}

// GetAffected returns the transitive reverse-closure of changed under
// "dependedOnBy" — every node reachable by following dependents edges from
// any changed node — in BFS order, changed nodes included first (spec.md
// §9's correctness property: "no false positives, no omissions").
func (g *Graph) GetAffected(changed []Node) []Node {
	g.mu.Lock()
	defer g.mu.Unlock()

	seen := sets.New[Node]()
	var order []Node
	queue := append([]Node{}, changed...)

	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if seen.Has(n) {
			continue
		}
		seen.Insert(n)
		order = append(order, n)

		for _, dependent := range sortedNodes(g.dependents[n]) {
			if !seen.Has(dependent) {
				queue = append(queue, dependent)
			}
		}
	}
	return order
}
