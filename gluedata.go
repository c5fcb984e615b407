// Package gluedata prepares NLI and review-sentiment datasets for influence
// experiments: task processors for the raw file formats, cached fixed-length
// feature construction, and inference helpers over exported onnx classifiers.
package gluedata

import (
	"github.com/knights-analytics/gluedata/datasets"
	"github.com/knights-analytics/gluedata/tasks"
)

// DefaultMaxSeqLength is the sequence length the experiment drivers use.
const DefaultMaxSeqLength = 128

type DatasetOption func(config *datasets.Config)

// WithMaxSeqLength overrides the default sequence length.
func WithMaxSeqLength(maxSeqLength int) DatasetOption {
	return func(config *datasets.Config) {
		config.MaxSeqLength = maxSeqLength
	}
}

// WithCacheDir stores feature caches somewhere other than the data dir.
func WithCacheDir(cacheDir string) DatasetOption {
	return func(config *datasets.Config) {
		config.CacheDir = cacheDir
	}
}

// WithOverwriteCache regenerates feature caches even when present.
func WithOverwriteCache() DatasetOption {
	return func(config *datasets.Config) {
		config.OverwriteCache = true
	}
}

// WithVerbose prints cache and conversion progress.
func WithVerbose() DatasetOption {
	return func(config *datasets.Config) {
		config.Verbose = true
	}
}

// CreateDatasets builds the train and dev feature datasets for a task, plus
// the test dataset when withTest is set. Feature caches land next to the raw
// data unless WithCacheDir redirects them.
func CreateDatasets(taskName string, dataDir string, encoder datasets.Encoder, withTest bool, opts ...DatasetOption) (train, dev, test *datasets.FeatureDataset, err error) {
	config := datasets.Config{
		TaskName:     taskName,
		DataDir:      dataDir,
		MaxSeqLength: DefaultMaxSeqLength,
	}
	for _, opt := range opts {
		opt(&config)
	}

	train, err = datasets.New(config, encoder, 0, tasks.Train)
	if err != nil {
		return nil, nil, nil, err
	}
	dev, err = datasets.New(config, encoder, 0, tasks.Dev)
	if err != nil {
		return nil, nil, nil, err
	}
	if !withTest {
		return train, dev, nil, nil
	}
	test, err = datasets.New(config, encoder, 0, tasks.Test)
	if err != nil {
		return nil, nil, nil, err
	}
	return train, dev, test, nil
}
