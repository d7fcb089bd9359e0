package health

import (
	"context"

	"github.com/4RCAN3/EmoFlix/internal/usecase/catalog"
)

// Pinger checks cache or metadata service availability.
type Pinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// CatalogSource reports whether a catalog is installed.
type CatalogSource interface {
	Current() (*catalog.Catalog, error)
}
