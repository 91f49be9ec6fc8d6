// Package span provides text spans and branded identity types shared across
// every compiler stage: node/expression/template/frame ids, source spans, and
// the deterministic hashing they are built from.
package span

import "fmt"

// TextSpan is a half-open byte-offset range [Start, End) within a single
// document. Offsets are UTF-8 byte offsets; callers that hand in UTF-16
// code-unit offsets (e.g. an LSP client) must reconcile before constructing
// a TextSpan — this package never guesses an encoding.
type TextSpan struct {
	Start int
	End   int
}

// NewTextSpan builds a TextSpan, panicking if start > end — constructing an
// inverted span is always a caller bug, never a recoverable input error.
func NewTextSpan(start, end int) TextSpan {
	if start > end {
		panic(fmt.Sprintf("span: inverted span [%d, %d)", start, end))
	}
	return TextSpan{Start: start, End: end}
}

// Len returns the span's length in bytes.
func (s TextSpan) Len() int { return s.End - s.Start }

// Offset shifts both endpoints by delta. Used when overlay banners or
// line-ending normalization insert or remove bytes before a span.
func (s TextSpan) Offset(delta int) TextSpan {
	return TextSpan{Start: s.Start + delta, End: s.End + delta}
}

// Contains reports whether pos falls within the half-open span.
func (s TextSpan) Contains(pos int) bool {
	return pos >= s.Start && pos < s.End
}

// ContainsSpan reports whether s fully contains other.
func (s TextSpan) ContainsSpan(other TextSpan) bool {
	return other.Start >= s.Start && other.End <= s.End
}

// Intersects reports whether two spans share at least one byte.
func (s TextSpan) Intersects(other TextSpan) bool {
	return s.Start < other.End && other.Start < s.End
}

// Intersect returns the overlapping range of two spans and whether one
// exists. The empty TextSpan{} is returned when they do not intersect.
func (s TextSpan) Intersect(other TextSpan) (TextSpan, bool) {
	start := max(s.Start, other.Start)
	end := min(s.End, other.End)
	if start >= end {
		return TextSpan{}, false
	}
	return TextSpan{Start: start, End: end}, true
}

// NarrowestContaining returns the narrowest of the given spans that contains
// pos, or false if none do. Used by provenance lookups to prefer a
// member-level hit over an expression-level one.
func NarrowestContaining(spans []TextSpan, pos int) (TextSpan, bool) {
	best, found := TextSpan{}, false
	for _, s := range spans {
		if !s.Contains(pos) {
			continue
		}
		if !found || s.Len() < best.Len() {
			best, found = s, true
		}
	}
	return best, found
}

// SourceSpan extends TextSpan with an optional file tag, letting diagnostics
// and provenance edges refer unambiguously to a location in a specific
// document even when several documents are in play (host template + nested
// controller templates + overlay file).
type SourceSpan struct {
	TextSpan
	File SourceFileId
}

// NewSourceSpan builds a SourceSpan over the given file.
func NewSourceSpan(file SourceFileId, start, end int) SourceSpan {
	return SourceSpan{TextSpan: NewTextSpan(start, end), File: file}
}
