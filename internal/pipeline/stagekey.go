// Package pipeline implements the Pipeline Engine (C11): the stage DAG
// that lowers a template through every later compiler stage, memoizing
// each stage's output per Session under a content+options fingerprint,
// with an optional persistent cache and cooperative cancellation
// (spec.md §4.1).
package pipeline

// StageKey identifies one compilation stage. This is the closed set
// spec.md §4.1 names; no stage outside it may be registered.
type StageKey string

const (
	StageLower       StageKey = "lower"
	StageResolve     StageKey = "resolve"
	StageBind        StageKey = "bind"
	StageTypecheck   StageKey = "typecheck"
	StageUsage       StageKey = "usage"
	StageOverlayPlan StageKey = "overlay:plan"
	StageOverlayEmit StageKey = "overlay:emit"
	StageAOTPlan     StageKey = "aot:plan"
)

// AllStageKeys lists the closed set in a fixed, documented order —
// roughly dependency order, though Registry.Validate is the actual
// source of truth for legal ordering.
var AllStageKeys = []StageKey{
	StageLower, StageResolve, StageBind, StageTypecheck,
	StageUsage, StageOverlayPlan, StageOverlayEmit, StageAOTPlan,
}

func validStageKey(k StageKey) bool {
	for _, v := range AllStageKeys {
		if v == k {
			return true
		}
	}
	return false
}
