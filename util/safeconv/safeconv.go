package safeconv

import (
	"math"
)

// IntSliceToInt64Slice converts a slice of int to int64. Token ids coming out of
// the go tokenizer are ints; model inputs are int64.
func IntSliceToInt64Slice(input []int) []int64 {
	out := make([]int64, len(input))
	for i, v := range input {
		out[i] = int64(v)
	}
	return out
}

// Uint32SliceToInt64Slice converts a slice of uint32 to int64.
func Uint32SliceToInt64Slice(input []uint32) []int64 {
	out := make([]int64, len(input))
	for i, v := range input {
		out[i] = int64(v)
	}
	return out
}

// Int64SliceToUint32Slice converts a slice of int64 to uint32 with clamping to avoid
// overflow/underflow.
func Int64SliceToUint32Slice(input []int64) []uint32 {
	out := make([]uint32, len(input))
	for i, v := range input {
		out[i] = Int64ToUint32(v)
	}
	return out
}

// Int64ToUint32 converts int64 to uint32 with clamping into [0, MaxUint32].
func Int64ToUint32(v int64) uint32 {
	if v < 0 {
		return 0
	}
	if v > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(v)
}
