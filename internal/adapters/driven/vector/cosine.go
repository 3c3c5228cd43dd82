// Package vector holds helpers shared by the vector index adapters.
package vector

import (
	"math"
	"sort"

	"github.com/custodia-labs/rfpvault/internal/core/ports/driven"
)

// CosineDistance returns 1 - cosine similarity of a and b.
// Vectors of different length or zero norm are maximally distant.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 2
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

// TopK sorts hits by ascending distance and keeps at most k of them.
// Ties are broken by ID so results are stable.
func TopK(hits []driven.VectorHit, k int) []driven.VectorHit {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Distance == hits[j].Distance {
			return hits[i].ID < hits[j].ID
		}
		return hits[i].Distance < hits[j].Distance
	})
	if k > 0 && len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
