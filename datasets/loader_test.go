package datasets

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loaderDataset(n int) *FeatureDataset {
	features := make([]Feature, n)
	for i := range features {
		features[i] = Feature{InputIDs: []int64{int64(i)}}
	}
	return &FeatureDataset{Features: features}
}

func drain(t *testing.T, loader *Loader) [][]Feature {
	t.Helper()
	var batches [][]Feature
	for {
		batch, err := loader.Yield()
		if err == io.EOF {
			return batches
		}
		require.NoError(t, err)
		batches = append(batches, batch)
	}
}

func TestLoaderBatches(t *testing.T) {
	loader, err := NewLoader(loaderDataset(5), 2)
	require.NoError(t, err)

	batches := drain(t, loader)
	require.Len(t, batches, 3)
	assert.Len(t, batches[0], 2)
	assert.Len(t, batches[1], 2)
	assert.Len(t, batches[2], 1)
	assert.Equal(t, int64(0), batches[0][0].InputIDs[0])
	assert.Equal(t, int64(4), batches[2][0].InputIDs[0])

	// exhausted until Reset
	_, err = loader.Yield()
	assert.Equal(t, io.EOF, err)

	loader.Reset()
	batch, err := loader.Yield()
	require.NoError(t, err)
	assert.Equal(t, int64(0), batch[0].InputIDs[0])
}

func TestLoaderEmptyDataset(t *testing.T) {
	loader, err := NewLoader(loaderDataset(0), 4)
	require.NoError(t, err)
	_, err = loader.Yield()
	assert.Equal(t, io.EOF, err)
}

func TestLoaderRejectsBatchSize(t *testing.T) {
	_, err := NewLoader(loaderDataset(3), 0)
	assert.Error(t, err)
	_, err = NewLoader(loaderDataset(3), -1)
	assert.Error(t, err)
}

func TestLoaderShuffle(t *testing.T) {
	seen := func(loader *Loader) []int64 {
		var ids []int64
		for _, batch := range drain(t, loader) {
			for _, feature := range batch {
				ids = append(ids, feature.InputIDs[0])
			}
		}
		return ids
	}

	dataset := loaderDataset(64)
	first, err := NewLoader(dataset, 8, WithShuffle(), WithSeed(42))
	require.NoError(t, err)
	second, err := NewLoader(dataset, 8, WithShuffle(), WithSeed(42))
	require.NoError(t, err)
	sequential, err := NewLoader(dataset, 8)
	require.NoError(t, err)

	firstIDs := seen(first)
	sequentialIDs := seen(sequential)
	assert.Equal(t, firstIDs, seen(second))
	assert.NotEqual(t, sequentialIDs, firstIDs)
	assert.ElementsMatch(t, sequentialIDs, firstIDs)
}

func TestLoaderReshufflesOnReset(t *testing.T) {
	loader, err := NewLoader(loaderDataset(64), 64, WithShuffle(), WithSeed(7))
	require.NoError(t, err)

	firstEpoch, err := loader.Yield()
	require.NoError(t, err)
	loader.Reset()
	secondEpoch, err := loader.Yield()
	require.NoError(t, err)
	assert.NotEqual(t, firstEpoch, secondEpoch)
}
