package tasks

import (
	"fmt"
	"sort"
)

// Example is one raw labeled text (pair) instance before tokenization. TextB is
// empty for single-sentence tasks and Label is empty for unlabeled test rows.
type Example struct {
	GUID  string
	TextA string
	TextB string
	Label string
}

// Split selects one of the train/dev/test partitions of a task's data.
type Split string

const (
	Train Split = "train"
	Dev   Split = "dev"
	Test  Split = "test"
)

// ParseSplit converts a split name into a Split.
func ParseSplit(name string) (Split, error) {
	switch Split(name) {
	case Train, Dev, Test:
		return Split(name), nil
	default:
		return "", &ConfigError{Reason: fmt.Sprintf("%q is not a valid split name", name)}
	}
}

// Processor reads a task's raw files for a split and exposes the task's
// label vocabulary. Label order is significant: label indices are derived
// from position in the returned slice.
type Processor interface {
	Examples(dataDir string, split Split) ([]Example, error)
	Labels() []string
}

var processors = map[string]func() Processor{
	"mnli":      func() Processor { return mnliProcessor{devFile: "dev_matched.tsv", testFile: "test_matched.tsv"} },
	"mnli-mm":   func() Processor { return mnliProcessor{devFile: "dev_mismatched.tsv", testFile: "test_mismatched.tsv"} },
	"mnli-2":    func() Processor { return mnliProcessor{devFile: "dev_matched.tsv", testFile: "test_matched.tsv", twoLabel: true} },
	"mnli-2-mm": func() Processor { return mnliProcessor{devFile: "dev_mismatched.tsv", testFile: "test_mismatched.tsv", twoLabel: true} },
	"hans":      func() Processor { return hansProcessor{} },
	"amazon":    func() Processor { return amazonProcessor{} },
	"anli":      func() Processor { return anliProcessor{} },
}

// NumLabels declares the label count of every registered task.
var NumLabels = map[string]int{
	"mnli":      3,
	"mnli-mm":   3,
	"mnli-2":    2,
	"mnli-2-mm": 2,
	"hans":      2,
	"amazon":    5,
	"anli":      3,
}

// Get resolves a task name to a freshly created processor. Processors are
// stateless, so a new instance per call is safe.
func Get(taskName string) (Processor, error) {
	newProcessor, ok := processors[taskName]
	if !ok {
		return nil, &ConfigError{Reason: fmt.Sprintf("unrecognized task %q", taskName)}
	}
	return newProcessor(), nil
}

// Names returns the registered task names in sorted order.
func Names() []string {
	names := make([]string, 0, len(processors))
	for name := range processors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
