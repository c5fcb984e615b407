package tasks

import "fmt"

// ConfigError signals an unusable configuration value, such as an unknown task
// name or a split a task does not provide.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return e.Reason
}

// LabelError signals a raw label value outside a task's known vocabulary.
// Feature construction fails on the first offending row, no partial dataset
// is returned.
type LabelError struct {
	Task  string
	Label string
}

func (e *LabelError) Error() string {
	return fmt.Sprintf("label %q not recognized for task %q", e.Label, e.Task)
}
