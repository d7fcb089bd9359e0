package recommend

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/4RCAN3/EmoFlix/internal/domain/movie"
	"github.com/4RCAN3/EmoFlix/internal/domain/transition"
	"github.com/4RCAN3/EmoFlix/internal/usecase/catalog"
)

// DefaultConcurrency is the number of parallel lookups per wave.
const DefaultConcurrency = 4

// Enricher attaches metadata to ranked candidates, skipping the ones that
// cannot be resolved.
type Enricher struct {
	resolver     *Resolver
	concurrency  int
	imageBaseURL string
}

// NewEnricher creates an enricher. concurrency <= 0 uses DefaultConcurrency;
// 1 resolves candidates strictly one at a time.
func NewEnricher(resolver *Resolver, concurrency int, imageBaseURL string) *Enricher {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Enricher{resolver: resolver, concurrency: concurrency, imageBaseURL: imageBaseURL}
}

// Enrich walks candidates in order and returns at most topN recommendations,
// in candidate order. Each wave holds at most as many lookups as results still
// missing, capped by the configured concurrency; the walk stops as soon as topN
// results are collected or the candidates run out.
// Only cancellation of ctx is reported as an error.
func (e *Enricher) Enrich(
	ctx context.Context, cat *catalog.Catalog, candidates []transition.Candidate, topN int,
) ([]movie.Recommendation, error) {
	results := make([]movie.Recommendation, 0, min(topN, len(candidates)))

	for offset := 0; offset < len(candidates) && len(results) < topN; {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("enrich: %w", err)
		}

		size := min(e.concurrency, topN-len(results), len(candidates)-offset)
		wave := candidates[offset : offset+size]
		offset += size

		slots := e.resolveWave(ctx, cat, wave)
		// Lookups cut short by ctx come back as unresolved slots.
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("enrich: %w", err)
		}
		for _, rec := range slots {
			if rec == nil {
				continue
			}
			results = append(results, *rec)
			if len(results) == topN {
				break
			}
		}
	}
	return results, nil
}

// resolveWave resolves a wave in parallel. Slot i holds the result for
// wave[i], or nil when it could not be resolved.
func (e *Enricher) resolveWave(
	ctx context.Context, cat *catalog.Catalog, wave []transition.Candidate,
) []*movie.Recommendation {
	slots := make([]*movie.Recommendation, len(wave))

	g, gctx := errgroup.WithContext(ctx)
	for i, c := range wave {
		g.Go(func() error {
			item, ok := cat.Corpus().Item(c.ID())
			if !ok {
				return nil
			}
			md, err := e.resolver.Resolve(gctx, item.Title())
			if err != nil {
				return nil
			}
			rec := movie.NewRecommendation(item.ID(), item.Plot(), c.Score(), md, e.imageBaseURL)
			slots[i] = &rec
			return nil
		})
	}
	_ = g.Wait()

	return slots
}
