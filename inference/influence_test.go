package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSortIndicesByScore(t *testing.T) {
	scores := map[int]float64{0: 2.5, 1: -3.0, 2: 0.0, 3: -0.5}
	assert.Equal(t, []int{1, 3, 2, 0}, SortIndicesByScore(scores))
}

func TestSortIndicesByScoreTies(t *testing.T) {
	scores := map[int]float64{4: 1.0, 2: 1.0, 7: 1.0, 1: -1.0}
	assert.Equal(t, []int{1, 2, 4, 7}, SortIndicesByScore(scores))
}

func TestHelpfulHarmfulIndices(t *testing.T) {
	scores := map[int]float64{0: -3.0, 1: -1.0, 2: 2.0, 3: 5.0, 4: 0.0}

	helpful, harmful, err := HelpfulHarmfulIndices(scores, 0)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, helpful)
	assert.Equal(t, []int{3, 2}, harmful)

	helpful, harmful, err = HelpfulHarmfulIndices(scores, 1)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, helpful)
	assert.Equal(t, []int{3}, harmful)
}

func TestHelpfulHarmfulIndicesTooFew(t *testing.T) {
	scores := map[int]float64{0: -3.0, 1: 2.0, 2: 5.0}

	_, _, err := HelpfulHarmfulIndices(scores, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "helpful indices have only 1 elements")

	_, _, err = HelpfulHarmfulIndices(map[int]float64{0: -3.0, 1: -1.0, 2: 5.0}, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "harmful indices have only 1 elements")
}
