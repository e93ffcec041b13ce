package vector

import (
	"math"

	"github.com/ternarybob/doceo/internal/models"
)

// dot32 returns the dot product of two vectors, accumulated in float64 so
// long vectors don't lose precision.
func dot32(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	sum := 0.0
	for i := 0; i < n; i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// norm32 returns the Euclidean norm of a vector.
func norm32(v []float32) float64 {
	sum := 0.0
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

// recordNorms precomputes the norm of every record's embedding so searches
// only pay for one norm per query.
func recordNorms(records []*models.ChunkRecord) []float64 {
	norms := make([]float64, len(records))
	for i, record := range records {
		norms[i] = norm32(record.Embedding)
	}
	return norms
}
