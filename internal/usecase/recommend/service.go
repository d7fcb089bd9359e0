// Package recommend ranks the corpus against an emotion transition and
// enriches the best matches with external metadata.
package recommend

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/4RCAN3/EmoFlix/internal/domain"
	"github.com/4RCAN3/EmoFlix/internal/domain/movie"
	"github.com/4RCAN3/EmoFlix/internal/logger"
	"github.com/4RCAN3/EmoFlix/internal/metrics"
)

// Defaults for Config zero values.
const (
	DefaultTopK             = 5
	DefaultMaxTopK          = 50
	DefaultOverselectFactor = 2
	DefaultHomepageCount    = 12
)

// Config tunes result sizes.
type Config struct {
	DefaultTopK      int
	MaxTopK          int
	OverselectFactor int
	HomepageCount    int
}

func (c *Config) applyDefaults() {
	if c.DefaultTopK <= 0 {
		c.DefaultTopK = DefaultTopK
	}
	if c.MaxTopK <= 0 {
		c.MaxTopK = DefaultMaxTopK
	}
	if c.OverselectFactor <= 0 {
		c.OverselectFactor = DefaultOverselectFactor
	}
	if c.HomepageCount <= 0 {
		c.HomepageCount = DefaultHomepageCount
	}
}

// Request is a transition query. TopK 0 means the configured default.
type Request struct {
	CurrentEmotion string
	DesiredEmotion string
	TopK           int
}

// Service orchestrates ranking, enrichment and homepage sampling.
type Service struct {
	catalogs CatalogSource
	ranker   *Ranker
	enricher *Enricher
	sampler  *Sampler
	cfg      Config
}

// New creates a recommendation service.
func New(catalogs CatalogSource, ranker *Ranker, enricher *Enricher, sampler *Sampler, cfg Config) *Service {
	cfg.applyDefaults()
	return &Service{
		catalogs: catalogs,
		ranker:   ranker,
		enricher: enricher,
		sampler:  sampler,
		cfg:      cfg,
	}
}

// Recommend returns up to TopK movies whose plots best follow the move from
// the current to the desired emotion, best first. Fewer results are returned
// when not enough of the top TopK*overselect candidates can be resolved.
func (s *Service) Recommend(ctx context.Context, req Request) ([]movie.Recommendation, error) {
	req, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	cat, err := s.catalogs.Current()
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	candidates, err := s.ranker.Rank(ctx, cat, req.CurrentEmotion, req.DesiredEmotion)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	window := candidates[:min(len(candidates), req.TopK*s.cfg.OverselectFactor)]
	recs, err := s.enricher.Enrich(ctx, cat, window, req.TopK)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}

	if len(recs) < req.TopK {
		metrics.ShortResultsTotal.WithLabelValues("recommend").Inc()
		logger.FromContext(ctx).Info("Returning fewer recommendations than requested",
			zap.Int("requested", req.TopK),
			zap.Int("returned", len(recs)),
			zap.Int("window", len(window)),
		)
	}
	return recs, nil
}

// Homepage returns a random sample of resolvable movies.
func (s *Service) Homepage(ctx context.Context) ([]movie.Recommendation, error) {
	cat, err := s.catalogs.Current()
	if err != nil {
		return nil, fmt.Errorf("homepage: %w", err)
	}

	recs, err := s.sampler.Sample(ctx, cat, s.cfg.HomepageCount)
	if err != nil {
		return nil, fmt.Errorf("homepage: %w", err)
	}
	if len(recs) < s.cfg.HomepageCount {
		metrics.ShortResultsTotal.WithLabelValues("homepage").Inc()
	}
	return recs, nil
}

func (s *Service) validate(req Request) (Request, error) {
	req.CurrentEmotion = strings.TrimSpace(req.CurrentEmotion)
	req.DesiredEmotion = strings.TrimSpace(req.DesiredEmotion)

	switch {
	case req.CurrentEmotion == "":
		return req, domain.NewValidation("current_emotion", "is required")
	case req.DesiredEmotion == "":
		return req, domain.NewValidation("desired_emotion", "is required")
	case req.TopK < 0:
		return req, domain.NewValidation("top_k", "must be positive")
	case req.TopK > s.cfg.MaxTopK:
		return req, domain.NewValidation("top_k", fmt.Sprintf("must be at most %d", s.cfg.MaxTopK))
	}
	if req.TopK == 0 {
		req.TopK = s.cfg.DefaultTopK
	}
	return req, nil
}
