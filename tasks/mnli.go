package tasks

import (
	"fmt"
	"strings"

	"github.com/knights-analytics/gluedata/util/fileutil"
)

// mnliProcessor reads the MultiNLI GLUE file layout. The matched and
// mismatched variants share the layout and differ only in the dev and test
// file names. With twoLabel set, the three-way labels are collapsed to
// entailment vs non_entailment.
type mnliProcessor struct {
	devFile  string
	testFile string
	twoLabel bool
}

func (p mnliProcessor) Labels() []string {
	if p.twoLabel {
		return []string{"non_entailment", "entailment"}
	}
	return []string{"contradiction", "entailment", "neutral"}
}

func (p mnliProcessor) Examples(dataDir string, split Split) ([]Example, error) {
	var fileName string
	switch split {
	case Train:
		fileName = "train.tsv"
	case Dev:
		fileName = p.devFile
	case Test:
		fileName = p.testFile
	}
	setType := strings.TrimSuffix(fileName, ".tsv")

	rows, err := readTSV(fileutil.PathJoinSafe(dataDir, fileName))
	if err != nil {
		return nil, err
	}

	var examples []Example
	for i, row := range rows {
		if i == 0 {
			continue
		}
		example := Example{
			GUID:  fmt.Sprintf("%s-%s", setType, row[0]),
			TextA: row[8],
			TextB: row[9],
		}
		if split != Test {
			label, labelErr := p.normalizeLabel(row[len(row)-1])
			if labelErr != nil {
				return nil, labelErr
			}
			example.Label = label
		}
		examples = append(examples, example)
	}
	return examples, nil
}

func (p mnliProcessor) normalizeLabel(label string) (string, error) {
	switch label {
	case "contradiction", "neutral":
		if p.twoLabel {
			return "non_entailment", nil
		}
		return label, nil
	case "entailment":
		return label, nil
	default:
		task := "mnli"
		if p.twoLabel {
			task = "mnli-2"
		}
		return "", &LabelError{Task: task, Label: label}
	}
}
