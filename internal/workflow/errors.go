package workflow

import "fmt"

// ConfigError indicates a malformed graph definition: duplicate node names,
// edges to unknown nodes, or a predicate returning an unknown branch label.
// Configuration errors are fatal and never retried.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "workflow config: " + e.Reason
}

// RunawayError indicates a run exceeded its step budget. Cyclic graphs are
// legal, but a cycle whose nodes never route to End would otherwise loop
// forever; the pipeline fails closed instead.
type RunawayError struct {
	Node  string
	Steps int
}

func (e *RunawayError) Error() string {
	return fmt.Sprintf("workflow runaway: %d steps executed without reaching end (at node %q)", e.Steps, e.Node)
}
