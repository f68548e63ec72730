package face

import (
	"fmt"
	"math"
)

// Vector is a face embedding. A nil Vector means no face was found.
type Vector []float32

// Score returns the cosine similarity of query and candidate in [-1, 1].
// Vectors of different lengths are never compared; a zero-norm vector scores 0.
func Score(query, candidate Vector) (float64, error) {
	if len(query) != len(candidate) {
		return 0, fmt.Errorf("%w: query has %d values, candidate has %d", ErrDimensionMismatch, len(query), len(candidate))
	}

	var dot, queryNorm, candidateNorm float64
	for i := range query {
		q := float64(query[i])
		c := float64(candidate[i])
		dot += q * c
		queryNorm += q * q
		candidateNorm += c * c
	}

	if queryNorm == 0 || candidateNorm == 0 {
		return 0, nil
	}

	score := dot / (math.Sqrt(queryNorm) * math.Sqrt(candidateNorm))
	// Rounding can push parallel vectors slightly past 1
	return math.Max(-1, math.Min(1, score)), nil
}

// IsMatch reports whether score clears threshold
func IsMatch(score, threshold float64) bool {
	return score >= threshold
}
