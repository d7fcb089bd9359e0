package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/4RCAN3/EmoFlix/internal/domain"
	"github.com/4RCAN3/EmoFlix/internal/domain/corpus"
	"github.com/4RCAN3/EmoFlix/internal/domain/embstore"
)

// DefaultBatchSize is the number of plots encoded per provider call during a build.
const DefaultBatchSize = 64

// Build encodes texts in batches of batchSize and returns an index-aligned store.
// The store is only returned once every text has a vector.
func Build(
	ctx context.Context, emb domain.Embedder, texts []string, batchSize int, logger *zap.Logger,
) (*embstore.Store, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	start := time.Now()
	vectors := make([][]float32, 0, len(texts))
	dim := 0

	for offset := 0; offset < len(texts); offset += batchSize {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("build aborted at %d/%d: %w", offset, len(texts), err)
		}

		end := min(offset+batchSize, len(texts))
		res, err := domain.BatchEmbed(ctx, emb, texts[offset:end])
		if err != nil {
			return nil, fmt.Errorf("encode batch at %d: %w", offset, err)
		}
		if len(res.Embeddings) != end-offset {
			return nil, fmt.Errorf("batch at %d: %w", offset,
				domain.NewMismatch("batch size", end-offset, len(res.Embeddings)))
		}
		for i, v := range res.Embeddings {
			if dim == 0 {
				dim = len(v)
			}
			if len(v) != dim || dim == 0 {
				return nil, fmt.Errorf("vector %d: %w", offset+i, domain.NewMismatch("dimension", dim, len(v)))
			}
		}
		vectors = append(vectors, res.Embeddings...)

		logger.Info("Encoded corpus batch",
			zap.Int("done", end),
			zap.Int("total", len(texts)),
			zap.Duration("elapsed", time.Since(start)),
		)
	}

	s, err := embstore.New(vectors)
	if err != nil {
		return nil, fmt.Errorf("build store: %w", err)
	}
	return s, nil
}

// Loader produces catalogs from a corpus source and an artifact store.
type Loader struct {
	source    CorpusSource
	artifacts ArtifactStore
	embedder  domain.Embedder
	batchSize int
	logger    *zap.Logger
}

// NewLoader creates a catalog loader.
func NewLoader(
	source CorpusSource, artifacts ArtifactStore, embedder domain.Embedder,
	batchSize int, logger *zap.Logger,
) *Loader {
	return &Loader{
		source:    source,
		artifacts: artifacts,
		embedder:  embedder,
		batchSize: batchSize,
		logger:    logger,
	}
}

// LoadOrBuild loads the persisted embeddings, building and persisting them
// first when no artifact exists. A store that does not align with the corpus
// fails with domain.ErrCorpusMismatch and requires a forced rebuild.
func (l *Loader) LoadOrBuild(ctx context.Context) (*Catalog, error) {
	c, err := l.source.Load()
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	s, err := l.artifacts.Load()
	switch {
	case errors.Is(err, domain.ErrArtifactNotFound):
		l.logger.Info("Embedding artifact not found, building", zap.Int("items", c.Len()))
		return l.build(ctx, c)
	case err != nil:
		return nil, fmt.Errorf("load embeddings: %w", err)
	}

	cat, err := New(c, s)
	if err != nil {
		return nil, err
	}
	l.logger.Info("Catalog loaded", zap.Int("items", cat.Len()), zap.Int("dim", s.Dim()))
	return cat, nil
}

// Rebuild re-encodes the whole corpus and overwrites the artifact.
func (l *Loader) Rebuild(ctx context.Context) (*Catalog, error) {
	c, err := l.source.Load()
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	return l.build(ctx, c)
}

func (l *Loader) build(ctx context.Context, c *corpus.Corpus) (*Catalog, error) {
	s, err := Build(ctx, l.embedder, c.Plots(), l.batchSize, l.logger)
	if err != nil {
		return nil, fmt.Errorf("build embeddings: %w", err)
	}
	cat, err := New(c, s)
	if err != nil {
		return nil, err
	}
	if err := l.artifacts.Persist(s); err != nil {
		return nil, fmt.Errorf("persist embeddings: %w", err)
	}
	l.logger.Info("Embedding artifact built", zap.Int("items", cat.Len()), zap.Int("dim", s.Dim()))
	return cat, nil
}
