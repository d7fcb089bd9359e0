// Package embstore holds the precomputed, index-aligned plot embeddings of the corpus.
package embstore

import (
	"fmt"

	"github.com/4RCAN3/EmoFlix/internal/domain"
)

// Store is an immutable ordered collection of fixed-dimension vectors.
// Vector i belongs to corpus item i.
type Store struct {
	vectors [][]float32
	dim     int
}

// New validates that all vectors share one dimension and takes ownership of the slice.
// Callers must not modify vectors afterwards.
func New(vectors [][]float32) (*Store, error) {
	if len(vectors) == 0 {
		return &Store{}, nil
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("vector 0 is empty: %w", domain.ErrCorpusMismatch)
	}
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("vector %d: %w", i, domain.NewMismatch("dimension", dim, len(v)))
		}
	}
	return &Store{vectors: vectors, dim: dim}, nil
}

// Len returns the number of stored vectors.
func (s *Store) Len() int { return len(s.vectors) }

// Dim returns the shared vector dimension (0 for an empty store).
func (s *Store) Dim() int { return s.dim }

// Vector returns the vector at index i. The returned slice must not be modified.
func (s *Store) Vector(i int) []float32 { return s.vectors[i] }

// CheckAligned verifies the store has exactly one vector per corpus item.
func (s *Store) CheckAligned(corpusLen int) error {
	if len(s.vectors) != corpusLen {
		return domain.NewMismatch("length", corpusLen, len(s.vectors))
	}
	return nil
}
