// Package transition ranks corpus vectors by their directional alignment with the
// move from one emotional state to another in embedding space.
package transition

import (
	"math"
	"slices"

	"github.com/4RCAN3/EmoFlix/internal/domain"
	"github.com/4RCAN3/EmoFlix/internal/domain/embstore"
)

// Candidate is a ranked corpus item.
type Candidate struct {
	id    int
	score float64
}

// NewCandidate creates a candidate.
func NewCandidate(id int, score float64) Candidate {
	return Candidate{id: id, score: score}
}

// ID returns the corpus item ID.
func (c Candidate) ID() int { return c.id }

// Score returns the cosine similarity in [-1, 1].
func (c Candidate) Score() float64 { return c.score }

// Vector returns desired - current, element-wise.
func Vector(current, desired []float32) ([]float32, error) {
	if len(current) != len(desired) {
		return nil, domain.NewMismatch("emotion dimension", len(current), len(desired))
	}
	out := make([]float32, len(desired))
	for i := range desired {
		out[i] = desired[i] - current[i]
	}
	return out, nil
}

// Cosine returns the cosine similarity of a and b, or 0 when either has zero norm.
// a and b must have equal length.
func Cosine(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// Rank scores every stored vector against the transition vector and returns all
// candidates ordered by descending score. Equal scores keep corpus order.
func Rank(transition []float32, store *embstore.Store) ([]Candidate, error) {
	if store.Len() > 0 && len(transition) != store.Dim() {
		return nil, domain.NewMismatch("transition dimension", store.Dim(), len(transition))
	}

	candidates := make([]Candidate, store.Len())
	for i := range candidates {
		candidates[i] = Candidate{id: i, score: Cosine(transition, store.Vector(i))}
	}

	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return 0
		}
	})
	return candidates, nil
}
