// Package provenance implements the Provenance Index (C9): a bidirectional
// edge store mapping generated-artifact offsets (overlay source, SSR
// skeleton) back to authored-template offsets, and the reverse, so editor
// tooling (hover, definition, references) can cross from one to the other
// without re-running Overlay Synthesis (spec.md §4.8).
package provenance

import "github.com/opmodel/tscompiler/internal/span"

// EdgeKind is the closed sum of provenance edge shapes spec.md §2 names.
type EdgeKind int

const (
	// EdgeOverlayExpr links one expression's full call-probe span in an
	// overlay source file back to its authored span in the template.
	EdgeOverlayExpr EdgeKind = iota
	// EdgeOverlayMember links one member-path segment within an
	// expression's overlay slice back to its authored member span.
	EdgeOverlayMember
	// EdgeSSRNode links a hydration id stamped onto an SSR skeleton node
	// back to the template node that produced it.
	EdgeSSRNode
)

// Endpoint is one side of an edge: a generated or source document uri plus
// the span within it.
type Endpoint struct {
	URI  string
	Span span.TextSpan
}

// Edge is one provenance record. Exactly the fields relevant to Kind are
// populated, matching this repo's closed-sum convention.
type Edge struct {
	Kind EdgeKind
	From Endpoint // generated side (overlay or SSR output)
	To   Endpoint // authored side (template)

	// overlayExpr / overlayMember
	ExprId span.ExprId

	// overlayMember
	MemberPath string

	// ssrNode
	NodeId span.NodeId
	Hid    string

	// Degraded marks an edge derived by proportional projection rather
	// than an exact AST-derived span (only meaningful for overlayMember
	// edges; see internal/overlay's projectToOverlay).
	Degraded bool
}
