package tasks

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	jsoniter "github.com/json-iterator/go"

	"github.com/knights-analytics/gluedata/util/fileutil"
)

// amazonProcessor reads review-sentiment splits that ExportReviews (or the
// original offline export) materialized as quoted TSVs. Review text can span
// multiple lines inside a quoted field. All splits carry labels.
type amazonProcessor struct{}

func (amazonProcessor) Labels() []string {
	return []string{"0", "1", "2", "3", "4"}
}

func (p amazonProcessor) Examples(dataDir string, split Split) ([]Example, error) {
	var fileName, setType string
	switch split {
	case Train:
		fileName, setType = "amazon.train.tsv", "train"
	case Dev:
		fileName, setType = "amazon.val.tsv", "dev"
	case Test:
		fileName, setType = "amazon.test.tsv", "test"
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
		label := row[1]
		if !knownReviewLabel(label) {
			return nil, &LabelError{Task: "amazon", Label: label}
		}
		examples = append(examples, Example{
			GUID:  fmt.Sprintf("%s-%d", setType, i),
			TextA: row[0],
			Label: label,
		})
	}
	return examples, nil
}

func knownReviewLabel(label string) bool {
	switch label {
	case "0", "1", "2", "3", "4":
		return true
	}
	return false
}

// Review is one raw review-sentiment instance from an external source.
type Review struct {
	Sentence string `json:"sentence"`
	Label    int    `json:"label"`
}

// ReviewSource is an external review-sentiment dataset that can enumerate its
// splits and stream each split's reviews. It is consumed only by the offline
// export, never at feature-construction time.
type ReviewSource interface {
	Splits() []string
	Reviews(split string) ([]Review, error)
}

// ExportReviews materializes every split of the source into baseDir as
// amazon.{split}.tsv in the quoted TSV format the amazon processor reads.
func ExportReviews(source ReviewSource, baseDir string) error {
	for _, split := range source.Splits() {
		reviews, err := source.Reviews(split)
		if err != nil {
			return err
		}
		fileName := fileutil.PathJoinSafe(baseDir, fmt.Sprintf("amazon.%s.tsv", split))
		if err := writeReviewTSV(fileName, reviews); err != nil {
			return err
		}
		fmt.Printf("Wrote %s to disk\n", fileName)
	}
	return nil
}

func writeReviewTSV(fileName string, reviews []Review) (err error) {
	file, err := fileutil.NewFileWriter(fileName)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	writer := csv.NewWriter(file)
	writer.Comma = '\t'
	if err := writer.Write([]string{"sentence", "label"}); err != nil {
		return err
	}
	for _, review := range reviews {
		if err := writer.Write([]string{review.Sentence, strconv.Itoa(review.Label)}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// JSONLReviewSource reads review splits from {split}.jsonl files, one JSON
// object per line with "sentence" and "label" fields.
type JSONLReviewSource struct {
	dir    string
	splits []string
}

func NewJSONLReviewSource(dir string, splits []string) *JSONLReviewSource {
	return &JSONLReviewSource{dir: dir, splits: splits}
}

func (s *JSONLReviewSource) Splits() []string {
	return s.splits
}

func (s *JSONLReviewSource) Reviews(split string) (reviews []Review, err error) {
	file, err := fileutil.OpenFile(fileutil.PathJoinSafe(s.dir, split+".jsonl"))
	if err != nil {
		return nil, err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	reader := bufio.NewReader(file)
	for {
		lineBytes, readErr := fileutil.ReadLine(reader)
		if len(lineBytes) > 0 {
			var review Review
			if unmarshalErr := jsoniter.Unmarshal(lineBytes, &review); unmarshalErr != nil {
				return nil, fmt.Errorf("failed to parse JSON line: %w", unmarshalErr)
			}
			reviews = append(reviews, review)
		}
		if readErr == io.EOF {
			return reviews, nil
		}
		if readErr != nil {
			return nil, readErr
		}
	}
}
