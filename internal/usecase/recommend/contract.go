package recommend

import (
	"context"

	"github.com/4RCAN3/EmoFlix/internal/domain"
	"github.com/4RCAN3/EmoFlix/internal/domain/movie"
	"github.com/4RCAN3/EmoFlix/internal/usecase/catalog"
)

// Embedder encodes a single emotion description.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// MetadataService resolves corpus titles to external movie metadata.
// SearchByTitle reports ok=false when nothing matched.
type MetadataService interface {
	SearchByTitle(ctx context.Context, title string) (hit movie.SearchHit, ok bool, err error)
	GetDetails(ctx context.Context, id int64) (movie.Details, error)
}

// CatalogSource returns the active catalog snapshot.
type CatalogSource interface {
	Current() (*catalog.Catalog, error)
}
