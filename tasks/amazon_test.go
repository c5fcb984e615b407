package tasks

import (
	"errors"
	"os"
	"path"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAmazonExamples(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "amazon.val.tsv", "sentence\tlabel\n"+
		"Great blender, use it daily.\t4\n"+
		"\"Broke after a week.\nWould not buy again.\"\t0\n")

	processor, err := Get("amazon")
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2", "3", "4"}, processor.Labels())

	examples, err := processor.Examples(dir, Dev)
	require.NoError(t, err)
	require.Len(t, examples, 2)
	assert.Equal(t, "dev-1", examples[0].GUID)
	assert.Equal(t, "Great blender, use it daily.", examples[0].TextA)
	assert.Equal(t, "", examples[0].TextB)
	assert.Equal(t, "4", examples[0].Label)
	assert.Equal(t, "Broke after a week.\nWould not buy again.", examples[1].TextA)
	assert.Equal(t, "0", examples[1].Label)
}

func TestAmazonBadLabel(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "amazon.test.tsv", "sentence\tlabel\n"+
		"Average product.\t5\n")

	processor, err := Get("amazon")
	require.NoError(t, err)
	_, err = processor.Examples(dir, Test)
	require.Error(t, err)
	var labelErr *LabelError
	require.True(t, errors.As(err, &labelErr))
	assert.Equal(t, "amazon", labelErr.Task)
	assert.Equal(t, "5", labelErr.Label)
}

type sliceReviewSource struct {
	reviews map[string][]Review
}

func (s sliceReviewSource) Splits() []string {
	return []string{"train", "val", "test"}
}

func (s sliceReviewSource) Reviews(split string) ([]Review, error) {
	return s.reviews[split], nil
}

func TestExportReviewsRoundTrip(t *testing.T) {
	dir := t.TempDir()
	source := sliceReviewSource{reviews: map[string][]Review{
		"train": {
			{Sentence: "Great blender, use it daily.", Label: 4},
			{Sentence: "Broke after a week.\nWould not buy again.", Label: 0},
		},
		"val":  {{Sentence: "Average product.", Label: 2}},
		"test": {{Sentence: "Solid value.", Label: 3}},
	}}
	require.NoError(t, ExportReviews(source, dir))

	for _, split := range source.Splits() {
		_, err := os.Stat(path.Join(dir, "amazon."+split+".tsv"))
		assert.NoError(t, err, split)
	}

	processor, err := Get("amazon")
	require.NoError(t, err)
	examples, err := processor.Examples(dir, Train)
	require.NoError(t, err)
	require.Len(t, examples, 2)
	assert.Equal(t, "Great blender, use it daily.", examples[0].TextA)
	assert.Equal(t, "4", examples[0].Label)
	assert.Equal(t, "Broke after a week.\nWould not buy again.", examples[1].TextA)
	assert.Equal(t, "0", examples[1].Label)
}

func TestJSONLReviewSource(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "train.jsonl", `{"sentence": "Great blender.", "label": 4}`+"\n"+
		`{"sentence": "Broke after a week.", "label": 0}`+"\n")

	source := NewJSONLReviewSource(dir, []string{"train"})
	assert.Equal(t, []string{"train"}, source.Splits())

	reviews, err := source.Reviews("train")
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, Review{Sentence: "Great blender.", Label: 4}, reviews[0])
	assert.Equal(t, Review{Sentence: "Broke after a week.", Label: 0}, reviews[1])

	_, err = source.Reviews("val")
	assert.Error(t, err)
}
