package inference

import (
	"fmt"

	"github.com/knights-analytics/gluedata/tasks"
)

// Accuracy is the fraction of predictions matching their labels.
func Accuracy(predictions, labels []int64) float64 {
	if len(predictions) == 0 {
		return 0
	}
	correct := 0
	for i, prediction := range predictions {
		if prediction == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(predictions))
}

// ComputeMetrics computes the evaluation metrics for a task. Every registered
// task is scored with simple accuracy.
func ComputeMetrics(taskName string, predictions, labels []int64) (map[string]float64, error) {
	if len(predictions) != len(labels) {
		return nil, &ShapeError{Reason: fmt.Sprintf("%d predictions for %d labels", len(predictions), len(labels))}
	}
	if _, err := tasks.Get(taskName); err != nil {
		return nil, err
	}
	return map[string]float64{"acc": Accuracy(predictions, labels)}, nil
}
