package discovery

import (
	"fmt"
	"sort"

	"github.com/opmodel/tscompiler/internal/diag"
)

// FieldOp is the rulebook operator applied to one converged field.
type FieldOp int

const (
	OpLockedIdentity FieldOp = iota
	OpKnownOverUnknown
	OpHighestRank
)

// Atom is one evidence contribution toward a converged field (spec.md
// §4.3: "a resource may be produced by multiple evidence atoms").
type Atom struct {
	AtomId       string
	Field        string
	Value        any
	SourceKind   EvidenceSourceKind
	EvidenceRank int // lower = stronger
	Location     *SourceLoc
}

// Rulebook maps a field key (e.g. "resource.className", "bindables.*.type")
// to the operator used to reduce its atoms.
type Rulebook map[string]FieldOp

// DefaultRulebook is the convergence policy used across all resource kinds:
// identity-defining fields must agree exactly, bindable metadata backfills
// from whichever source knows it, and anything with genuine source-kind
// priority (decorator beats convention) picks the highest rank.
var DefaultRulebook = Rulebook{
	"resource.className": OpLockedIdentity,
	"resource.name":       OpHighestRank,
	"bindables.*.type":    OpKnownOverUnknown,
	"bindables.*.mode":    OpKnownOverUnknown,
}

func (r Rulebook) opFor(field string) FieldOp {
	if op, ok := r[field]; ok {
		return op
	}
	if op, ok := r[wildcardField(field)]; ok {
		return op
	}
	return OpKnownOverUnknown
}

func wildcardField(field string) string {
	// "bindables.name.type" -> "bindables.*.type"
	parts := splitField(field)
	if len(parts) == 3 && parts[0] == "bindables" {
		return "bindables.*." + parts[2]
	}
	return field
}

func splitField(field string) []string {
	var out []string
	cur := ""
	for _, c := range field {
		if c == '.' {
			out = append(out, cur)
			cur = ""
			continue
		}
		cur += string(c)
	}
	out = append(out, cur)
	return out
}

// Converge reduces atoms field-by-field per rulebook, returning the merged
// value for each field plus any field-conflict diagnostics. Atoms are
// sorted by (sourceKind, evidenceRank, atomId) first so ties resolve
// deterministically regardless of extraction order.
func Converge(atoms []Atom, rulebook Rulebook) (map[string]any, []diag.RawDiagnostic) {
	sorted := append([]Atom(nil), atoms...)
	sort.Slice(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.SourceKind != b.SourceKind {
			return a.SourceKind < b.SourceKind
		}
		if a.EvidenceRank != b.EvidenceRank {
			return a.EvidenceRank < b.EvidenceRank
		}
		return a.AtomId < b.AtomId
	})

	byField := map[string][]Atom{}
	var order []string
	for _, a := range sorted {
		if _, seen := byField[a.Field]; !seen {
			order = append(order, a.Field)
		}
		byField[a.Field] = append(byField[a.Field], a)
	}

	result := map[string]any{}
	var diags []diag.RawDiagnostic
	for _, field := range order {
		fieldAtoms := byField[field]
		op := rulebook.opFor(field)
		switch op {
		case OpLockedIdentity:
			v := fieldAtoms[0].Value
			for _, a := range fieldAtoms[1:] {
				if a.Value != v {
					diags = append(diags, diag.RawDiagnostic{
						Code:    "field-conflict",
						Message: fmt.Sprintf("conflicting values for %s: %v vs %v", field, v, a.Value),
					})
				}
			}
			result[field] = v
		case OpKnownOverUnknown:
			for _, a := range fieldAtoms {
				if a.Value != nil && a.Value != "" {
					result[field] = a.Value
					break
				}
			}
		case OpHighestRank:
			result[field] = fieldAtoms[0].Value
		}
	}
	return result, diags
}
