// Package depgraph tracks which compiled artifacts were derived from which
// inputs, so that a set of changed inputs can be turned into the exact set
// of stale outputs without recompiling everything. Node kinds mirror the
// layers a compilation request passes through: raw files and project
// config at the leaves, project-semantics state in the middle, and the
// per-template compilation outputs and SSR/manifest artifacts at the top.
package depgraph

import "fmt"

// Kind is the closed set of node kinds spec.md §3's Dependency Graph names.
type Kind string

const (
	KindFile                 Kind = "file"
	KindConfig               Kind = "config"
	KindConvergenceEntry     Kind = "convergence-entry"
	KindScope                Kind = "scope"
	KindVocabulary           Kind = "vocabulary"
	KindTemplateCompilation  Kind = "template-compilation"
	KindTypeState            Kind = "type-state"
	KindObservation          Kind = "observation"
	KindManifest             Kind = "manifest"
	KindInfrastructure       Kind = "infrastructure"
)

// validKinds is used to reject a Kind outside the closed set at Node
// construction, the same defensive posture Registry.Register takes for an
// unknown pipeline StageKey.
var validKinds = map[Kind]bool{
	KindFile:                true,
	KindConfig:               true,
	KindConvergenceEntry:     true,
	KindScope:                true,
	KindVocabulary:           true,
	KindTemplateCompilation:  true,
	KindTypeState:            true,
	KindObservation:          true,
	KindManifest:             true,
	KindInfrastructure:       true,
}

// Node identifies one artifact or input in the graph: its kind plus a
// caller-chosen key unique within that kind (a file path, a template id, a
// resource scope id, ...). Node is comparable so it can key a map directly.
type Node struct {
	Kind Kind
	Key  string
}

func (n Node) String() string {
	return fmt.Sprintf("%s:%s", n.Kind, n.Key)
}

// NewNode validates kind against the closed set before constructing a Node.
func NewNode(kind Kind, key string) (Node, error) {
	if !validKinds[kind] {
		return Node{}, &UnknownKindError{Kind: kind}
	}
	return Node{Kind: kind, Key: key}, nil
}
