package lower

import "strings"

// interpPiece is one `${expr}` occurrence found inside a text or attribute
// value, with its expression source text and offset relative to the whole
// document (not the containing value), so ExprId hashing and diagnostics
// carry authored spans even though we scanned a substring.
type interpPiece struct {
	Src   string
	Start int // document offset of the first char after "${"
	End   int // document offset of the matching "}"
}

// scanInterpolation finds every `${...}` run in value (whose first byte is
// at docOffset in the document) and returns the literal text chunks between
// them plus the raw expression pieces. len(parts) == len(pieces)+1. Brace
// depth and quote state are tracked so an expression containing an object
// literal or a string with a `}` doesn't terminate the scan early.
func scanInterpolation(value string, docOffset int) (parts []string, pieces []interpPiece, ok bool) {
	var lastChunkStart int
	i := 0
	for i < len(value) {
		if value[i] == '$' && i+1 < len(value) && value[i+1] == '{' {
			parts = append(parts, value[lastChunkStart:i])
			start := i + 2
			j := start
			depth := 1
			var quote byte
			for j < len(value) && depth > 0 {
				c := value[j]
				switch {
				case quote != 0:
					if c == '\\' {
						j++
					} else if c == quote {
						quote = 0
					}
				case c == '\'' || c == '"':
					quote = c
				case c == '{':
					depth++
				case c == '}':
					depth--
					if depth == 0 {
						continue // don't consume past the matching brace yet
					}
				}
				j++
			}
			pieces = append(pieces, interpPiece{
				Src:   value[start:j],
				Start: docOffset + start,
				End:   docOffset + j,
			})
			i = j + 1
			lastChunkStart = i
			continue
		}
		i++
	}
	if len(pieces) == 0 {
		return nil, nil, false
	}
	parts = append(parts, value[lastChunkStart:])
	return parts, pieces, true
}

// normalizeCRLF normalizes line endings in literal interpolation text chunks
// to LF (spec.md §4.2); expression source offsets are untouched since they
// index into the original, un-normalized document.
func normalizeCRLF(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
