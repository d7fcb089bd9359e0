// Package metacache caches metadata service responses in a key-value store.
package metacache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/4RCAN3/EmoFlix/internal/db"
	"github.com/4RCAN3/EmoFlix/internal/domain/movie"
	"github.com/4RCAN3/EmoFlix/internal/metrics"
)

// MetadataService is the wrapped lookup backend.
type MetadataService interface {
	SearchByTitle(ctx context.Context, title string) (movie.SearchHit, bool, error)
	GetDetails(ctx context.Context, id int64) (movie.Details, error)
}

type store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// searchEntry is the cached form of a search. Found=false records a miss so
// unknown titles are not searched again until the entry expires.
type searchEntry struct {
	Found bool            `json:"found"`
	Hit   movie.SearchHit `json:"hit"`
}

// Service is a read-through cache in front of a MetadataService.
// Lookup errors are never cached.
type Service struct {
	inner  MetadataService
	store  store
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// New wraps inner with a cache under prefix, for example "emoflix:meta:".
func New(inner MetadataService, s store, prefix string, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{inner: inner, store: s, prefix: prefix, ttl: ttl, logger: logger}
}

// SearchByTitle implements MetadataService.
func (s *Service) SearchByTitle(ctx context.Context, title string) (movie.SearchHit, bool, error) {
	key := s.searchKey(title)

	var entry searchEntry
	if s.load(ctx, key, &entry) {
		return entry.Hit, entry.Found, nil
	}

	hit, found, err := s.inner.SearchByTitle(ctx, title)
	if err != nil {
		return movie.SearchHit{}, false, fmt.Errorf("search: %w", err)
	}
	s.save(ctx, key, searchEntry{Found: found, Hit: hit})
	return hit, found, nil
}

// GetDetails implements MetadataService.
func (s *Service) GetDetails(ctx context.Context, id int64) (movie.Details, error) {
	key := s.prefix + "details:" + strconv.FormatInt(id, 10)

	var d movie.Details
	if s.load(ctx, key, &d) {
		return d, nil
	}

	d, err := s.inner.GetDetails(ctx, id)
	if err != nil {
		return movie.Details{}, fmt.Errorf("details: %w", err)
	}
	s.save(ctx, key, d)
	return d, nil
}

func (s *Service) searchKey(title string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(title))))
	return s.prefix + "search:" + hex.EncodeToString(h[:])
}

func (s *Service) load(ctx context.Context, key string, out any) bool {
	data, err := s.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, db.ErrKeyNotFound) {
			s.logger.Warn("Failed to read metadata cache", zap.String("key", key), zap.Error(err))
		}
		metrics.MetadataCacheTotal.WithLabelValues("miss").Inc()
		return false
	}
	if err := json.Unmarshal(data, out); err != nil {
		s.logger.Warn("Failed to parse cached metadata", zap.String("key", key), zap.Error(err))
		metrics.MetadataCacheTotal.WithLabelValues("miss").Inc()
		return false
	}
	metrics.MetadataCacheTotal.WithLabelValues("hit").Inc()
	return true
}

func (s *Service) save(ctx context.Context, key string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Warn("Failed to encode metadata", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.store.SetWithTTL(ctx, key, data, s.ttl); err != nil {
		s.logger.Warn("Failed to cache metadata", zap.String("key", key), zap.Error(err))
	}
}
