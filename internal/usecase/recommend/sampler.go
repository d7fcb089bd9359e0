package recommend

import (
	"context"
	"math/rand/v2"

	"github.com/4RCAN3/EmoFlix/internal/domain/movie"
	"github.com/4RCAN3/EmoFlix/internal/domain/transition"
	"github.com/4RCAN3/EmoFlix/internal/usecase/catalog"
)

// Sampler picks random corpus items for the homepage.
type Sampler struct {
	enricher *Enricher
	intN     func(n int) int
}

// NewSampler creates a sampler. intN returns a uniform int in [0, n);
// nil uses the goroutine-safe top-level rand.IntN.
func NewSampler(enricher *Enricher, intN func(n int) int) *Sampler {
	if intN == nil {
		intN = rand.IntN
	}
	return &Sampler{enricher: enricher, intN: intN}
}

// Sample returns up to n enriched items drawn without replacement. The
// permutation is materialized one chunk at a time (partial Fisher-Yates), so
// the walk stops early once n items resolve and always ends after every item
// has been tried once. Scores are 0.
func (s *Sampler) Sample(ctx context.Context, cat *catalog.Catalog, n int) ([]movie.Recommendation, error) {
	total := cat.Len()
	ids := make([]int, total)
	for i := range ids {
		ids[i] = i
	}

	results := make([]movie.Recommendation, 0, min(n, total))
	for next := 0; next < total && len(results) < n; {
		need := n - len(results)
		end := min(next+max(need, s.enricher.concurrency), total)

		chunk := make([]transition.Candidate, 0, end-next)
		for i := next; i < end; i++ {
			j := i + s.intN(total-i)
			ids[i], ids[j] = ids[j], ids[i]
			chunk = append(chunk, transition.NewCandidate(ids[i], 0))
		}
		next = end

		recs, err := s.enricher.Enrich(ctx, cat, chunk, need)
		if err != nil {
			return nil, err
		}
		results = append(results, recs...)
	}
	return results, nil
}
