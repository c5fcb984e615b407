package gluedata

import (
	"os"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEncoder struct{}

func (fakeEncoder) Class() string {
	return "BertTokenizer"
}

func (fakeEncoder) Encode(textA, textB string, maxLength int) ([]int64, []int64, []int64, error) {
	inputIDs := make([]int64, maxLength)
	attentionMask := make([]int64, maxLength)
	typeIDs := make([]int64, maxLength)
	inputIDs[0] = int64(len(textA) + len(textB))
	attentionMask[0] = 1
	return inputIDs, attentionMask, typeIDs, nil
}

func mnliRow(id, textA, textB, label string) string {
	fields := make([]string, 12)
	fields[0] = id
	fields[8] = textA
	fields[9] = textB
	fields[11] = label
	return strings.Join(fields, "\t")
}

func writeSplit(t *testing.T, dir, fileName string, rows ...string) {
	t.Helper()
	content := strings.Join(make([]string, 12), "\t") + "\n" + strings.Join(rows, "\n") + "\n"
	require.NoError(t, os.WriteFile(path.Join(dir, fileName), []byte(content), os.ModePerm))
}

func TestCreateDatasets(t *testing.T) {
	dir := t.TempDir()
	writeSplit(t, dir, "train.tsv",
		mnliRow("1", "The dog barked.", "An animal made noise.", "entailment"),
		mnliRow("2", "The dog barked.", "The street was empty.", "neutral"))
	writeSplit(t, dir, "dev_matched.tsv",
		mnliRow("3", "It rained.", "The ground is wet.", "entailment"))
	writeSplit(t, dir, "test_matched.tsv",
		mnliRow("4", "a", "b", "hidden"))

	train, dev, test, err := CreateDatasets("mnli-2", dir, fakeEncoder{}, false)
	require.NoError(t, err)
	assert.Equal(t, 2, train.Len())
	assert.Equal(t, 1, dev.Len())
	assert.Nil(t, test)
	assert.Len(t, train.Features[0].InputIDs, DefaultMaxSeqLength)
	assert.Equal(t, path.Join(dir, "cached_train_BertTokenizer_128_mnli-2"), train.CachePath)

	train, dev, test, err = CreateDatasets("mnli-2", dir, fakeEncoder{}, true,
		WithMaxSeqLength(16))
	require.NoError(t, err)
	assert.Equal(t, 2, train.Len())
	assert.Equal(t, 1, dev.Len())
	require.NotNil(t, test)
	assert.Equal(t, 1, test.Len())
	assert.Nil(t, test.Features[0].Label)
	assert.Len(t, train.Features[0].InputIDs, 16)
}

func TestCreateDatasetsCacheDir(t *testing.T) {
	dataDir := t.TempDir()
	cacheDir := t.TempDir()
	writeSplit(t, dataDir, "train.tsv", mnliRow("1", "a", "b", "entailment"))
	writeSplit(t, dataDir, "dev_matched.tsv", mnliRow("2", "c", "d", "neutral"))

	train, _, _, err := CreateDatasets("mnli", dataDir, fakeEncoder{}, false,
		WithCacheDir(cacheDir), WithMaxSeqLength(8))
	require.NoError(t, err)
	assert.Equal(t, path.Join(cacheDir, "cached_train_BertTokenizer_8_mnli"), train.CachePath)
	_, err = os.Stat(train.CachePath)
	assert.NoError(t, err)
}

func TestCreateDatasetsUnknownTask(t *testing.T) {
	_, _, _, err := CreateDatasets("cola", t.TempDir(), fakeEncoder{}, false)
	assert.Error(t, err)
}
