package pipeline

import (
	"fmt"
	"strings"
)

// UnknownStageError is returned when a StageKey outside the closed set
// AllStageKeys names is registered or requested.
type UnknownStageError struct {
	Key StageKey
}

func (e *UnknownStageError) Error() string {
	return fmt.Sprintf("pipeline: unknown stage %q", e.Key)
}

// DuplicateStageError is returned when a StageKey is registered twice.
type DuplicateStageError struct {
	Key StageKey
}

func (e *DuplicateStageError) Error() string {
	return fmt.Sprintf("pipeline: stage %q already registered", e.Key)
}

// IncompleteStageError is returned when a registered Stage is missing
// its Fingerprint or Run function.
type IncompleteStageError struct {
	Key StageKey
}

func (e *IncompleteStageError) Error() string {
	return fmt.Sprintf("pipeline: stage %q missing fingerprint or run", e.Key)
}

// StageCycleError is returned by Registry.Validate when a stage's deps
// form a cycle.
type StageCycleError struct {
	Cycle []StageKey
}

func (e *StageCycleError) Error() string {
	names := make([]string, len(e.Cycle))
	for i, k := range e.Cycle {
		names[i] = string(k)
	}
	return fmt.Sprintf("pipeline: stage dependency cycle: %s", strings.Join(names, " -> "))
}

// CancelledError is returned when a Session's context is done before or
// during a stage's evaluation. spec.md §4.1's Cancellation note: a
// cancelled stage throws and no artifact is cached.
type CancelledError struct {
	Stage StageKey
}

func (e *CancelledError) Error() string {
	return fmt.Sprintf("pipeline: stage %q cancelled", e.Stage)
}
