package provenance

import (
	"github.com/opmodel/tscompiler/internal/overlay"
)

// FromOverlay converts one Overlay Synthesis emission into the edges it
// contributes to an Index: one EdgeOverlayExpr per probed expression and
// one EdgeOverlayMember per finer member segment recorded on it.
func FromOverlay(templateURI, overlayURI string, emission *overlay.Emission) []Edge {
	var out []Edge
	for _, m := range emission.Mappings {
		out = append(out, Edge{
			Kind:   EdgeOverlayExpr,
			From:   Endpoint{URI: overlayURI, Span: m.CallSpan},
			To:     Endpoint{URI: templateURI, Span: m.HTMLSpan},
			ExprId: m.ExprId,
		})
		for _, seg := range m.Segments {
			out = append(out, Edge{
				Kind:     EdgeOverlayMember,
				From:     Endpoint{URI: overlayURI, Span: seg.OverlaySpan},
				To:       Endpoint{URI: templateURI, Span: seg.HTMLSpan},
				ExprId:   m.ExprId,
				Degraded: seg.Degraded,
			})
		}
	}
	return out
}
