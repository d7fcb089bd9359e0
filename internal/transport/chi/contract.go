package chi

import (
	"context"

	"github.com/4RCAN3/EmoFlix/internal/domain/movie"
	healthuc "github.com/4RCAN3/EmoFlix/internal/usecase/health"
	recommenduc "github.com/4RCAN3/EmoFlix/internal/usecase/recommend"
)

// Recommender serves transition queries and the homepage sample.
type Recommender interface {
	Recommend(ctx context.Context, req recommenduc.Request) ([]movie.Recommendation, error)
	Homepage(ctx context.Context) ([]movie.Recommendation, error)
}

// HealthChecker aggregates component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}
