package inference

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/knights-analytics/gluedata/datasets"
	"github.com/knights-analytics/gluedata/tasks"
)

// stubClassifier scores each row by its first input id: the row's score
// vector is a one-hot of inputIDs[0] over three classes.
type stubClassifier struct {
	training  bool
	pastIndex int
	logits    [][]float32
}

func newStubClassifier() *stubClassifier {
	return &stubClassifier{pastIndex: -1}
}

func (m *stubClassifier) Forward(inputIDs, attentionMask, typeIDs [][]int64) ([][]float32, error) {
	if m.logits != nil {
		return m.logits, nil
	}
	scores := make([][]float32, len(inputIDs))
	for i, row := range inputIDs {
		scores[i] = make([]float32, 3)
		scores[i][row[0]] = 10
	}
	return scores, nil
}

func (m *stubClassifier) TrainingMode() bool {
	return m.training
}

func (m *stubClassifier) PastStateIndex() int {
	return m.pastIndex
}

func labeledFeature(inputID, label int64) datasets.Feature {
	return datasets.Feature{
		InputIDs:      []int64{inputID},
		AttentionMask: []int64{1},
		TypeIDs:       []int64{0},
		Label:         &label,
	}
}

func TestPredictShiftsLabels(t *testing.T) {
	model := newStubClassifier()
	prediction, err := Predict(model, []datasets.Feature{
		labeledFeature(0, 1),
		labeledFeature(2, 3),
	})
	require.NoError(t, err)

	assert.Equal(t, []int64{0, 2}, prediction.LabelIDs)
	require.Len(t, prediction.Scores, 2)
	assert.Equal(t, float32(10), prediction.Scores[0][0])
	assert.Equal(t, float32(10), prediction.Scores[1][2])
	require.NotNil(t, prediction.Loss)
}

func TestPredictLossValue(t *testing.T) {
	model := newStubClassifier()
	model.logits = [][]float32{{0, 0}}
	prediction, err := Predict(model, []datasets.Feature{labeledFeature(0, 1)})
	require.NoError(t, err)
	require.NotNil(t, prediction.Loss)
	assert.InDelta(t, math.Log(2), float64(*prediction.Loss), 1e-6)
}

func TestPredictUnlabeledBatch(t *testing.T) {
	model := newStubClassifier()
	prediction, err := Predict(model, []datasets.Feature{
		{InputIDs: []int64{1}, AttentionMask: []int64{1}, TypeIDs: []int64{0}},
	})
	require.NoError(t, err)
	assert.Nil(t, prediction.LabelIDs)
	assert.Nil(t, prediction.Loss)
	require.Len(t, prediction.Scores, 1)
}

func TestPredictRejectsTrainingMode(t *testing.T) {
	model := newStubClassifier()
	model.training = true
	_, err := Predict(model, []datasets.Feature{labeledFeature(0, 1)})
	require.Error(t, err)
	var configErr *tasks.ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestPredictRejectsPastState(t *testing.T) {
	model := newStubClassifier()
	model.pastIndex = 1
	_, err := Predict(model, []datasets.Feature{labeledFeature(0, 1)})
	require.Error(t, err)
	var configErr *tasks.ConfigError
	assert.True(t, errors.As(err, &configErr))
}

func TestPredictRejectsEmptyBatch(t *testing.T) {
	_, err := Predict(newStubClassifier(), nil)
	require.Error(t, err)
	var shapeErr *ShapeError
	assert.True(t, errors.As(err, &shapeErr))
}

func TestPredictRejectsMixedBatch(t *testing.T) {
	_, err := Predict(newStubClassifier(), []datasets.Feature{
		labeledFeature(0, 1),
		{InputIDs: []int64{1}, AttentionMask: []int64{1}, TypeIDs: []int64{0}},
	})
	require.Error(t, err)
	var shapeErr *ShapeError
	assert.True(t, errors.As(err, &shapeErr))
}

func TestPredictRejectsOutOfRangeLabel(t *testing.T) {
	// label 0 shifts to -1, outside any score row
	_, err := Predict(newStubClassifier(), []datasets.Feature{labeledFeature(0, 0)})
	require.Error(t, err)
	var shapeErr *ShapeError
	assert.True(t, errors.As(err, &shapeErr))
}

func TestIsPredictionCorrect(t *testing.T) {
	model := newStubClassifier()

	correct, err := IsPredictionCorrect(model, []datasets.Feature{labeledFeature(1, 2)})
	require.NoError(t, err)
	assert.True(t, correct)

	correct, err = IsPredictionCorrect(model, []datasets.Feature{labeledFeature(1, 3)})
	require.NoError(t, err)
	assert.False(t, correct)
}

func TestIsPredictionCorrectSingleInstanceOnly(t *testing.T) {
	_, err := IsPredictionCorrect(newStubClassifier(), []datasets.Feature{
		labeledFeature(0, 1),
		labeledFeature(1, 2),
	})
	require.Error(t, err)
	var shapeErr *ShapeError
	assert.True(t, errors.As(err, &shapeErr))
}

func TestEvaluate(t *testing.T) {
	dataset := &datasets.FeatureDataset{Features: []datasets.Feature{
		labeledFeature(0, 1),
		labeledFeature(1, 2),
		labeledFeature(2, 3),
		labeledFeature(0, 3),
	}}
	loader, err := datasets.NewLoader(dataset, 2)
	require.NoError(t, err)

	metrics, err := Evaluate("mnli", newStubClassifier(), loader)
	require.NoError(t, err)
	assert.InDelta(t, 0.75, metrics["acc"], 1e-9)
}

func TestEvaluateRequiresLabels(t *testing.T) {
	dataset := &datasets.FeatureDataset{Features: []datasets.Feature{
		{InputIDs: []int64{1}, AttentionMask: []int64{1}, TypeIDs: []int64{0}},
	}}
	loader, err := datasets.NewLoader(dataset, 1)
	require.NoError(t, err)

	_, err = Evaluate("mnli", newStubClassifier(), loader)
	require.Error(t, err)
	var shapeErr *ShapeError
	assert.True(t, errors.As(err, &shapeErr))
}
