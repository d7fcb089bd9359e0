package recommend

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/4RCAN3/EmoFlix/internal/domain"
	"github.com/4RCAN3/EmoFlix/internal/domain/movie"
	"github.com/4RCAN3/EmoFlix/internal/logger"
	"github.com/4RCAN3/EmoFlix/internal/metrics"
)

// Resolver looks up one title: search, then details for the first hit.
type Resolver struct {
	meta    MetadataService
	timeout time.Duration
}

// NewResolver creates a resolver. A positive timeout bounds each lookup
// (search and details together).
func NewResolver(meta MetadataService, timeout time.Duration) *Resolver {
	return &Resolver{meta: meta, timeout: timeout}
}

// Resolve returns the metadata for title. Every failure, including an empty
// search result and a timeout, wraps domain.ErrMetadataResolution.
func (r *Resolver) Resolve(ctx context.Context, title string) (movie.Metadata, error) {
	start := time.Now()
	md, outcome, err := r.resolve(ctx, title)
	metrics.MetadataLookupDuration.Observe(time.Since(start).Seconds())
	metrics.MetadataLookupsTotal.WithLabelValues(outcome).Inc()

	if err != nil {
		logger.FromContext(ctx).Debug("Skipping unresolvable title",
			zap.String("title", title),
			zap.String("outcome", outcome),
			zap.Error(err),
		)
		return movie.Metadata{}, err
	}
	return md, nil
}

func (r *Resolver) resolve(ctx context.Context, title string) (movie.Metadata, string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	hit, ok, err := r.meta.SearchByTitle(ctx, title)
	if err != nil {
		return movie.Metadata{}, failureOutcome(ctx), resolutionError("search", err)
	}
	if !ok {
		return movie.Metadata{}, "not_found", fmt.Errorf("no match for %q: %w", title, domain.ErrMetadataResolution)
	}

	details, err := r.meta.GetDetails(ctx, hit.ID)
	if err != nil {
		return movie.Metadata{}, failureOutcome(ctx), resolutionError("details", err)
	}

	return movie.Metadata{SearchHit: hit, Details: details}, "resolved", nil
}

func failureOutcome(ctx context.Context) string {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return "timeout"
	}
	return "error"
}

func resolutionError(op string, err error) error {
	if errors.Is(err, domain.ErrMetadataResolution) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, err, domain.ErrMetadataResolution)
}
