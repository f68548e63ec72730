package face

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVector(dim int, seed float32) Vector {
	v := make(Vector, dim)
	for i := range v {
		v[i] = seed + float32(i%7) - 3
	}
	return v
}

func TestScore_SelfSimilarity(t *testing.T) {
	for _, dim := range []int{3, 64, 128, 512} {
		v := testVector(dim, 0.5)
		score, err := Score(v, v)
		require.NoError(t, err)
		assert.InDelta(t, 1.0, score, 1e-6, "dim %d", dim)
	}
}

func TestScore_Orthogonal(t *testing.T) {
	score, err := Score(Vector{1, 0}, Vector{0, 1})
	require.NoError(t, err)
	assert.InDelta(t, 0.0, score, 1e-9)
}

func TestScore_Opposite(t *testing.T) {
	score, err := Score(Vector{1, 2, 3}, Vector{-1, -2, -3})
	require.NoError(t, err)
	assert.InDelta(t, -1.0, score, 1e-6)
}

func TestScore_ScaleInvariant(t *testing.T) {
	a := Vector{0.2, 0.4, 0.1}
	b := Vector{2, 4, 1}
	score, err := Score(a, b)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-6)
}

func TestScore_ZeroNorm(t *testing.T) {
	score, err := Score(Vector{0, 0, 0}, Vector{1, 2, 3})
	require.NoError(t, err)
	assert.Equal(t, 0.0, score)
}

func TestScore_DimensionMismatch(t *testing.T) {
	_, err := Score(testVector(64, 1), testVector(128, 1))
	assert.ErrorIs(t, err, ErrDimensionMismatch)
}

func TestIsMatch_MonotonicInThreshold(t *testing.T) {
	scores := []float64{-1, -0.3, 0, 0.42, 0.6, 0.61, 0.99, 1}
	thresholds := []float64{-1, -0.5, 0, 0.3, 0.6, 0.8, 1}

	for _, s := range scores {
		for i := 1; i < len(thresholds); i++ {
			lower, higher := thresholds[i-1], thresholds[i]
			if IsMatch(s, higher) {
				assert.True(t, IsMatch(s, lower), "score %v matched %v but not %v", s, higher, lower)
			}
		}
	}
}

func TestIsMatch_Boundary(t *testing.T) {
	assert.True(t, IsMatch(0.6, 0.6))
	assert.False(t, IsMatch(0.5999, 0.6))
}
