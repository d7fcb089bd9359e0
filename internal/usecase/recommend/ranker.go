package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/4RCAN3/EmoFlix/internal/domain"
	"github.com/4RCAN3/EmoFlix/internal/domain/transition"
	"github.com/4RCAN3/EmoFlix/internal/metrics"
	"github.com/4RCAN3/EmoFlix/internal/usecase/catalog"
)

// Ranker turns an emotion transition into a full ranking of the corpus.
type Ranker struct {
	embedder Embedder
}

// NewRanker creates a ranker.
func NewRanker(embedder Embedder) *Ranker {
	return &Ranker{embedder: embedder}
}

// Rank encodes both emotions, forms the transition vector desired-current and
// scores every catalog item against it. The result holds one candidate per
// item, highest score first, ties in corpus order.
func (r *Ranker) Rank(
	ctx context.Context, cat *catalog.Catalog, current, desired string,
) ([]transition.Candidate, error) {
	cur, err := r.encode(ctx, "current emotion", current)
	if err != nil {
		return nil, err
	}
	des, err := r.encode(ctx, "desired emotion", desired)
	if err != nil {
		return nil, err
	}

	vec, err := transition.Vector(cur, des)
	if err != nil {
		return nil, fmt.Errorf("transition vector: %w", err)
	}

	start := time.Now()
	candidates, err := transition.Rank(vec, cat.Store())
	metrics.RankDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("rank: %w", err)
	}
	return candidates, nil
}

func (r *Ranker) encode(ctx context.Context, what, text string) ([]float32, error) {
	res, err := r.embedder.Embed(ctx, text)
	if err != nil {
		if errors.Is(err, domain.ErrEncodingFailure) {
			return nil, fmt.Errorf("encode %s: %w", what, err)
		}
		return nil, fmt.Errorf("encode %s: %w: %w", what, err, domain.ErrEncodingFailure)
	}
	return res.Embedding, nil
}
