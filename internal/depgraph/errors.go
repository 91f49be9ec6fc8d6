package depgraph

import "fmt"

// UnknownKindError is returned when a Node is constructed with a Kind
// outside the closed set.
type UnknownKindError struct {
	Kind Kind
}

func (e *UnknownKindError) Error() string {
	return fmt.Sprintf("depgraph: unknown node kind %q", e.Kind)
}
