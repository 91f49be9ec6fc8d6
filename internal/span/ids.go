package span

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// SourceFileId is a normalized, content-addressable-free path identifying a
// source document. Normalization is slash-separated and case-preserved;
// callers on case-insensitive filesystems are responsible for folding case
// before constructing one (mirrors the FilesystemContext.caseSensitive flag
// in spec.md §6).
type SourceFileId string

// NewSourceFileId normalizes path into a SourceFileId: backslashes become
// forward slashes and the result is cleaned, but case is never folded here.
func NewSourceFileId(path string) SourceFileId {
	p := filepath.ToSlash(filepath.Clean(strings.ReplaceAll(path, "\\", "/")))
	return SourceFileId(p)
}

func (id SourceFileId) String() string { return string(id) }

// NodeId encodes a DOM node's depth-first index path plus its kind, e.g.
// "root/2/1#text@0". Two nodes at the same structural position with the
// same kind always produce equal ids across runs and across unrelated
// sibling edits elsewhere in the tree (spec.md §8 invariant 2).
type NodeId string

// NodeIdBuilder assigns NodeIds by walking a DOM tree depth-first,
// maintaining the index path of the current node.
type NodeIdBuilder struct {
	path []int
}

// NewNodeIdBuilder returns a builder positioned at the tree root.
func NewNodeIdBuilder() *NodeIdBuilder {
	return &NodeIdBuilder{path: nil}
}

// Root returns the id for the template root itself.
func (b *NodeIdBuilder) Root() NodeId {
	return NodeId("root")
}

// Push descends into the childIndex-th child of the current node, returning
// an id for it tagged with kind (e.g. "element", "text", "comment") and a
// sibling-local counter disambiguating same-kind siblings (spec.md's
// "@idx" suffix). Pop must be called once traversal of that child's
// subtree completes.
func (b *NodeIdBuilder) Push(childIndex int, kind string, sameKindIndex int) NodeId {
	b.path = append(b.path, childIndex)
	id := b.Current(kind, sameKindIndex)
	return id
}

// Current formats the id for the node at the builder's present path without
// mutating it — used both by Push and by callers that need the id of a node
// that isn't pushed onto the stack (e.g. a synthetic nested-template root).
func (b *NodeIdBuilder) Current(kind string, sameKindIndex int) NodeId {
	segs := make([]string, len(b.path))
	for i, p := range b.path {
		segs[i] = fmt.Sprintf("%d", p)
	}
	prefix := "root"
	if len(segs) > 0 {
		prefix = "root/" + strings.Join(segs, "/")
	}
	return NodeId(fmt.Sprintf("%s#%s@%d", prefix, kind, sameKindIndex))
}

// Pop ascends back to the parent after a child's subtree has been fully
// traversed.
func (b *NodeIdBuilder) Pop() {
	if len(b.path) > 0 {
		b.path = b.path[:len(b.path)-1]
	}
}

// TemplateId identifies one TemplateIR within a module: the root template or
// a nested one synthesized for a controller/projection/branch.
type TemplateId string

// NewRootTemplateId derives the id of a file's root template.
func NewRootTemplateId(file SourceFileId) TemplateId {
	return TemplateId("tpl:" + string(file))
}

// NewNestedTemplateId derives a nested template's id from its host node and
// a discriminator (controller name, branch kind, or slot name), so that two
// controllers on sibling elements never collide.
func NewNestedTemplateId(host NodeId, discriminator string) TemplateId {
	return TemplateId(fmt.Sprintf("tpl:%s>%s", host, discriminator))
}

func (id TemplateId) String() string { return string(id) }

// ExprId is derived from a stable hash of the expression's canonical
// payload (file, span, expression type, normalized source text), so
// identical expressions occurring identically across recompiles always
// receive the same id (spec.md §8 invariant 1).
type ExprId string

// ExprIdPayload is the canonical input hashed to build an ExprId.
type ExprIdPayload struct {
	File             SourceFileId
	Span             TextSpan
	ExpressionType   string
	NormalizedSource string
}

// NewExprId derives an ExprId from its payload.
func NewExprId(p ExprIdPayload) ExprId {
	h := StableHash(p)
	return ExprId("expr:" + h[:16])
}

func (id ExprId) String() string { return string(id) }

// FrameId identifies a lexical Frame within a ScopeTemplate. Frames are
// numbered in creation order starting at 0 (the root frame); numbering is
// deterministic because frame creation follows the deterministic traversal
// order of template lowering.
type FrameId int

// RootFrameId is the id of every template's outermost frame.
const RootFrameId FrameId = 0

// HydrationId correlates a DOM node in the SSR skeleton with its entry in
// the companion JSON manifest (the "data-au-hid" marker in spec.md §6). It
// is generated fresh per SSR emission via a UUID rather than derived from
// content, because hydration ids are scoped to one render pass, not to the
// template's stable identity.
type HydrationId string

// NewHydrationId allocates a fresh HydrationId.
func NewHydrationId() HydrationId {
	return HydrationId(uuid.NewString())
}

func (id HydrationId) String() string { return string(id) }
