package inference

import (
	"fmt"
	"io"
	"math"

	"github.com/knights-analytics/gluedata/datasets"
	"github.com/knights-analytics/gluedata/tasks"
	"github.com/knights-analytics/gluedata/util/vectorutil"
)

// Classifier is the pretrained model capability the helper consumes: per-class
// scores for a batch of fixed-length encoded sequences, plus the two trainer
// settings the helper must refuse.
type Classifier interface {
	Forward(inputIDs, attentionMask, typeIDs [][]int64) ([][]float32, error)
	TrainingMode() bool
	PastStateIndex() int
}

// ShapeError signals violated batch shape assumptions, such as calling the
// single-instance helper on a multi-instance batch.
type ShapeError struct {
	Reason string
}

func (e *ShapeError) Error() string {
	return e.Reason
}

// Prediction holds the raw per-class scores for a batch, the (shifted) gold
// label indices when the batch is labeled, and the mean loss when it could be
// computed.
type Prediction struct {
	Scores   [][]float32
	LabelIDs []int64
	Loss     *float32
}

// Predict runs the classifier on a feature batch without tracking gradients.
// Gold label indices are shifted down by one before use; this reproduces the
// exporting experiment's label convention and is applied unconditionally.
func Predict(model Classifier, batch []datasets.Feature) (*Prediction, error) {
	if model.TrainingMode() {
		return nil, &tasks.ConfigError{Reason: "model must not be in training mode"}
	}
	if model.PastStateIndex() >= 0 {
		return nil, &tasks.ConfigError{Reason: "models with a past state index are not supported"}
	}
	if len(batch) == 0 {
		return nil, &ShapeError{Reason: "empty batch"}
	}

	inputIDs := make([][]int64, len(batch))
	attentionMask := make([][]int64, len(batch))
	typeIDs := make([][]int64, len(batch))
	labeled := 0
	for i, feature := range batch {
		inputIDs[i] = feature.InputIDs
		attentionMask[i] = feature.AttentionMask
		typeIDs[i] = feature.TypeIDs
		if feature.Label != nil {
			labeled++
		}
	}
	if labeled > 0 && labeled < len(batch) {
		return nil, &ShapeError{Reason: "batch mixes labeled and unlabeled features"}
	}

	scores, err := model.Forward(inputIDs, attentionMask, typeIDs)
	if err != nil {
		return nil, err
	}
	if len(scores) != len(batch) {
		return nil, &ShapeError{Reason: fmt.Sprintf("model returned %d rows for a batch of %d", len(scores), len(batch))}
	}

	prediction := &Prediction{Scores: scores}
	if labeled == len(batch) {
		prediction.LabelIDs = make([]int64, len(batch))
		for i, feature := range batch {
			prediction.LabelIDs[i] = *feature.Label - 1
		}
		loss, lossErr := meanCrossEntropy(scores, prediction.LabelIDs)
		if lossErr != nil {
			return nil, lossErr
		}
		prediction.Loss = &loss
	}
	return prediction, nil
}

func meanCrossEntropy(scores [][]float32, labelIDs []int64) (float32, error) {
	losses := make([]float32, len(scores))
	for i, logits := range scores {
		label := labelIDs[i]
		if label < 0 || label >= int64(len(logits)) {
			return 0, &ShapeError{Reason: fmt.Sprintf("label index %d out of range for %d classes", label, len(logits))}
		}
		probabilities := vectorutil.SoftMax(logits)
		losses[i] = float32(-math.Log(float64(probabilities[label])))
	}
	return vectorutil.Mean(losses), nil
}

// IsPredictionCorrect reports whether the classifier predicts the gold label
// of a single labeled instance.
func IsPredictionCorrect(model Classifier, instance []datasets.Feature) (bool, error) {
	prediction, err := Predict(model, instance)
	if err != nil {
		return false, err
	}
	if len(prediction.Scores) != 1 {
		return false, &ShapeError{Reason: "this function only works on single instances"}
	}
	if prediction.LabelIDs == nil {
		return false, &ShapeError{Reason: "instance has no label"}
	}
	predicted, _, err := vectorutil.ArgMax(prediction.Scores[0])
	if err != nil {
		return false, err
	}
	return int64(predicted) == prediction.LabelIDs[0], nil
}

// Evaluate runs the classifier over every batch of the loader and computes
// the task metrics over the whole split.
func Evaluate(taskName string, model Classifier, loader *datasets.Loader) (map[string]float64, error) {
	var predictions, labels []int64
	for {
		batch, err := loader.Yield()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		prediction, err := Predict(model, batch)
		if err != nil {
			return nil, err
		}
		if prediction.LabelIDs == nil {
			return nil, &ShapeError{Reason: "evaluation requires a labeled split"}
		}
		for i, logits := range prediction.Scores {
			predicted, _, argErr := vectorutil.ArgMax(logits)
			if argErr != nil {
				return nil, argErr
			}
			predictions = append(predictions, int64(predicted))
			labels = append(labels, prediction.LabelIDs[i])
		}
	}
	return ComputeMetrics(taskName, predictions, labels)
}
