package datasets

import (
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/knights-analytics/gluedata/tasks"
	"github.com/knights-analytics/gluedata/util/fileutil"
)

// Feature is the fixed-length encoding of one example: token ids, attention
// mask and segment ids, each exactly MaxSeqLength long, plus the label index.
// Label is nil for unlabeled test rows.
type Feature struct {
	InputIDs      []int64 `json:"input_ids"`
	AttentionMask []int64 `json:"attention_mask"`
	TypeIDs       []int64 `json:"token_type_ids"`
	Label         *int64  `json:"label,omitempty"`
}

// Encoder is the tokenizer capability the dataset consumes. Class identifies
// the tokenizer implementation; it is part of the cache key and of the
// label-order override table.
type Encoder interface {
	Class() string
	Encode(textA, textB string, maxLength int) (inputIDs, attentionMask, typeIDs []int64, err error)
}

// Config carries the per-task dataset settings.
type Config struct {
	TaskName       string
	DataDir        string
	MaxSeqLength   int
	OverwriteCache bool
	// CacheDir defaults to DataDir.
	CacheDir string
	Verbose  bool
}

// FeatureDataset is a ready-to-batch sequence of Features for one (task,
// split) pair. Conversion from raw files happens once per cache key; the
// persisted cache file is loaded verbatim afterwards. The cache content is
// not validated against the raw data: delete the file or set OverwriteCache
// to invalidate.
type FeatureDataset struct {
	Config    Config
	Split     tasks.Split
	Labels    []string
	Features  []Feature
	CachePath string
}

// New builds the feature dataset for config and split, converting at most
// limit examples when limit is positive. Racing processes may both convert
// and one cache write wins; callers running several processes must serialize
// first access to a cache key themselves.
func New(config Config, encoder Encoder, limit int, split tasks.Split) (*FeatureDataset, error) {
	processor, err := tasks.Get(config.TaskName)
	if err != nil {
		return nil, err
	}
	if config.MaxSeqLength <= 0 {
		return nil, fmt.Errorf("max sequence length must be positive, got %d", config.MaxSeqLength)
	}

	labels := processor.Labels()
	if len(labels) > 2 && SwapLabelOrder(config.TaskName, encoder.Class()) {
		labels = append([]string(nil), labels...)
		labels[1], labels[2] = labels[2], labels[1]
	}

	cacheDir := config.CacheDir
	if cacheDir == "" {
		cacheDir = config.DataDir
	}
	dataset := &FeatureDataset{
		Config: config,
		Split:  split,
		Labels: labels,
		CachePath: fileutil.PathJoinSafe(cacheDir, fmt.Sprintf(
			"cached_%s_%s_%d_%s", split, encoder.Class(), config.MaxSeqLength, config.TaskName)),
	}

	exists, err := fileutil.FileExists(dataset.CachePath)
	if err != nil {
		return nil, err
	}
	if exists && !config.OverwriteCache {
		start := time.Now()
		if err := dataset.loadCache(); err != nil {
			return nil, err
		}
		if config.Verbose {
			fmt.Printf("loaded features from cached file %s [took %.3f s]\n", dataset.CachePath, time.Since(start).Seconds())
		}
		return dataset, nil
	}

	if config.Verbose {
		fmt.Printf("creating features from dataset files at %s\n", config.DataDir)
	}
	examples, err := processor.Examples(config.DataDir, split)
	if err != nil {
		return nil, err
	}
	if limit > 0 && limit < len(examples) {
		examples = examples[:limit]
	}
	if err := dataset.convert(examples, encoder); err != nil {
		return nil, err
	}
	if err := dataset.saveCache(); err != nil {
		return nil, err
	}
	return dataset, nil
}

func (d *FeatureDataset) convert(examples []tasks.Example, encoder Encoder) error {
	labelMap := make(map[string]int64, len(d.Labels))
	for i, label := range d.Labels {
		labelMap[label] = int64(i)
	}

	d.Features = make([]Feature, 0, len(examples))
	for _, example := range examples {
		inputIDs, attentionMask, typeIDs, err := encoder.Encode(example.TextA, example.TextB, d.Config.MaxSeqLength)
		if err != nil {
			return fmt.Errorf("encoding example %s: %w", example.GUID, err)
		}
		feature := Feature{
			InputIDs:      inputIDs,
			AttentionMask: attentionMask,
			TypeIDs:       typeIDs,
		}
		if example.Label != "" {
			index, ok := labelMap[example.Label]
			if !ok {
				return &tasks.LabelError{Task: d.Config.TaskName, Label: example.Label}
			}
			feature.Label = &index
		}
		d.Features = append(d.Features, feature)
	}
	return nil
}

func (d *FeatureDataset) loadCache() error {
	cacheBytes, err := fileutil.ReadFileBytes(d.CachePath)
	if err != nil {
		return err
	}
	return jsoniter.Unmarshal(cacheBytes, &d.Features)
}

func (d *FeatureDataset) saveCache() (err error) {
	featureBytes, err := jsoniter.Marshal(d.Features)
	if err != nil {
		return err
	}
	writer, err := fileutil.NewFileWriter(d.CachePath)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, writer.Close())
	}()
	_, err = writer.Write(featureBytes)
	return err
}

// Len returns the number of features in the dataset.
func (d *FeatureDataset) Len() int {
	return len(d.Features)
}
