package tasks

import (
	"fmt"

	"github.com/knights-analytics/gluedata/util/fileutil"
)

// hansProcessor reads the HANS heuristic evaluation file layout. HANS ships
// no test split. The raw files spell the negative label with a hyphen
// (non-entailment), which is normalized to the internal underscore form.
type hansProcessor struct{}

func (hansProcessor) Labels() []string {
	return []string{"non_entailment", "entailment"}
}

func (p hansProcessor) Examples(dataDir string, split Split) ([]Example, error) {
	var fileName, setType string
	switch split {
	case Train:
		fileName, setType = "heuristics_train_set.txt", "train"
	case Dev:
		fileName, setType = "heuristics_evaluation_set.txt", "dev"
	case Test:
		return nil, &ConfigError{Reason: "task hans has no test split"}
	}

	rows, err := readTSV(fileutil.PathJoinSafe(dataDir, fileName))
	if err != nil {
		return nil, err
	}

	var examples []Example
	for i, row := range rows {
		if i == 0 {
			continue
		}
		label, labelErr := p.normalizeLabel(row[0])
		if labelErr != nil {
			return nil, labelErr
		}
		examples = append(examples, Example{
			GUID:  fmt.Sprintf("%s-%d", setType, i),
			TextA: row[5],
			TextB: row[6],
			Label: label,
		})
	}
	return examples, nil
}

func (hansProcessor) normalizeLabel(label string) (string, error) {
	switch label {
	case "non-entailment":
		return "non_entailment", nil
	case "entailment":
		return "entailment", nil
	default:
		return "", &LabelError{Task: "hans", Label: label}
	}
}
