package datasets

import (
	"fmt"
	"io"
	"math/rand"
)

// Loader batches the features of a dataset, sequentially or in shuffled
// order. After the last batch it returns io.EOF; Reset starts a new epoch
// (and reshuffles when shuffling).
type Loader struct {
	features  []Feature
	batchSize int
	shuffle   bool
	order     []int
	batchN    int
	rng       *rand.Rand
}

type LoaderOption func(l *Loader)

// WithShuffle returns batches in random order instead of file order.
func WithShuffle() LoaderOption {
	return func(l *Loader) {
		l.shuffle = true
	}
}

// WithSeed fixes the shuffling seed.
func WithSeed(seed int64) LoaderOption {
	return func(l *Loader) {
		l.rng = rand.New(rand.NewSource(seed))
	}
}

func NewLoader(dataset *FeatureDataset, batchSize int, opts ...LoaderOption) (*Loader, error) {
	if batchSize <= 0 {
		return nil, fmt.Errorf("batch size must be positive, got %d", batchSize)
	}
	loader := &Loader{
		features:  dataset.Features,
		batchSize: batchSize,
	}
	for _, opt := range opts {
		opt(loader)
	}
	loader.Reset()
	return loader, nil
}

// Yield returns the next batch of features. The final batch may be short;
// io.EOF signals the end of the epoch.
func (l *Loader) Yield() ([]Feature, error) {
	start := l.batchN * l.batchSize
	if start >= len(l.order) {
		return nil, io.EOF
	}
	end := start + l.batchSize
	if end > len(l.order) {
		end = len(l.order)
	}
	batch := make([]Feature, 0, end-start)
	for _, index := range l.order[start:end] {
		batch = append(batch, l.features[index])
	}
	l.batchN++
	return batch, nil
}

// Reset rewinds the loader to the start of the dataset.
func (l *Loader) Reset() {
	l.batchN = 0
	l.order = make([]int, len(l.features))
	for i := range l.order {
		l.order[i] = i
	}
	if l.shuffle {
		if l.rng == nil {
			l.rng = rand.New(rand.NewSource(rand.Int63()))
		}
		l.rng.Shuffle(len(l.order), func(i, j int) {
			l.order[i], l.order[j] = l.order[j], l.order[i]
		})
	}
}
