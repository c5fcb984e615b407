package tasks

import (
	"fmt"

	"github.com/knights-analytics/gluedata/util/fileutil"
)

// anliProcessor reads the adversarial NLI export. Files are quoted TSVs and
// labels are single-letter codes that expand to the full label names.
type anliProcessor struct{}

func (anliProcessor) Labels() []string {
	return []string{"contradiction", "entailment", "neutral"}
}

func (p anliProcessor) Examples(dataDir string, split Split) ([]Example, error) {
	var fileName, setType string
	switch split {
	case Train:
		fileName, setType = "train.tsv", "train"
	case Dev:
		fileName, setType = "valid.tsv", "dev"
	case Test:
		fileName, setType = "test.tsv", "test"
	}

	rows, err := readQuotedTSV(fileutil.PathJoinSafe(dataDir, fileName))
	if err != nil {
		return nil, err
	}

	var examples []Example
	for i, row := range rows {
		if i == 0 {
			continue
		}
		label, labelErr := expandANLILabel(row[3])
		if labelErr != nil {
			return nil, labelErr
		}
		examples = append(examples, Example{
			GUID:  fmt.Sprintf("%s-%d", setType, i),
			TextA: row[1],
			TextB: row[2],
			Label: label,
		})
	}
	return examples, nil
}

func expandANLILabel(code string) (string, error) {
	switch code {
	case "e":
		return "entailment", nil
	case "n":
		return "neutral", nil
	case "c":
		return "contradiction", nil
	default:
		return "", &LabelError{Task: "anli", Label: code}
	}
}
