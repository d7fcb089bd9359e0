package recommend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/4RCAN3/EmoFlix/internal/domain"
	"github.com/4RCAN3/EmoFlix/internal/domain/corpus"
	"github.com/4RCAN3/EmoFlix/internal/domain/embstore"
	"github.com/4RCAN3/EmoFlix/internal/domain/movie"
	"github.com/4RCAN3/EmoFlix/internal/metrics"
	"github.com/4RCAN3/EmoFlix/internal/usecase/catalog"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

// --- Mocks ---

type mockEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls = append(m.calls, text)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	v, ok := m.vectors[text]
	if !ok {
		return domain.EmbeddingResult{}, fmt.Errorf("unknown text %q", text)
	}
	return domain.EmbeddingResult{Embedding: v}, nil
}

// mockMetadata resolves "Movie N" titles. Titles in missing return no match,
// titles in failing return an error, titles in slow block until ctx is done.
type mockMetadata struct {
	mu      sync.Mutex
	missing map[string]bool
	failing map[string]bool
	slow    map[string]bool
	delay   func(title string) time.Duration
	ids     map[int64]string
	next    int64
	lookups []string
	active  int
	peak    int
}

func newMockMetadata() *mockMetadata {
	return &mockMetadata{
		missing: map[string]bool{},
		failing: map[string]bool{},
		slow:    map[string]bool{},
		ids:     map[int64]string{},
	}
}

func (m *mockMetadata) SearchByTitle(ctx context.Context, title string) (movie.SearchHit, bool, error) {
	m.mu.Lock()
	m.lookups = append(m.lookups, title)
	m.active++
	m.peak = max(m.peak, m.active)
	m.next++
	id := m.next
	m.ids[id] = title
	m.mu.Unlock()
	defer func() {
		m.mu.Lock()
		m.active--
		m.mu.Unlock()
	}()

	if m.delay != nil {
		select {
		case <-time.After(m.delay(title)):
		case <-ctx.Done():
			return movie.SearchHit{}, false, ctx.Err()
		}
	}

	switch {
	case m.slow[title]:
		<-ctx.Done()
		return movie.SearchHit{}, false, ctx.Err()
	case m.failing[title]:
		return movie.SearchHit{}, false, errors.New("tmdb unavailable")
	case m.missing[title]:
		return movie.SearchHit{}, false, nil
	}
	return movie.SearchHit{ID: id, Title: title, PosterPath: "/poster.jpg"}, true, nil
}

func (m *mockMetadata) GetDetails(_ context.Context, id int64) (movie.Details, error) {
	m.mu.Lock()
	title := m.ids[id]
	m.mu.Unlock()
	return movie.Details{Genres: []string{"Drama"}, Runtime: 100, Director: "Director of " + title}, nil
}

func (m *mockMetadata) lookupCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.lookups)
}

type staticCatalogs struct {
	cat *catalog.Catalog
}

func (s staticCatalogs) Current() (*catalog.Catalog, error) {
	if s.cat == nil {
		return nil, domain.ErrCatalogNotLoaded
	}
	return s.cat, nil
}

// --- Fixtures ---

func title(i int) string { return fmt.Sprintf("Movie %d", i) }

func makeCatalog(t *testing.T, vectors ...[]float32) *catalog.Catalog {
	t.Helper()
	rows := make([]corpus.Fields, len(vectors))
	for i := range vectors {
		rows[i] = corpus.Fields{Title: title(i), Plot: fmt.Sprintf("plot %d", i)}
	}
	c, err := corpus.New(rows)
	if err != nil {
		t.Fatalf("corpus.New: %v", err)
	}
	s, err := embstore.New(vectors)
	if err != nil {
		t.Fatalf("embstore.New: %v", err)
	}
	cat, err := catalog.New(c, s)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return cat
}

// toyCatalog embeds three plots to [1,0], [-1,0], [0,1].
func toyCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	return makeCatalog(t, []float32{1, 0}, []float32{-1, 0}, []float32{0, 1})
}

func toyEmbedder() *mockEmbedder {
	return &mockEmbedder{vectors: map[string][]float32{
		"neutral": {0, 0},
		"joyful":  {1, 0},
		"calm":    {0.5, 0.5},
	}}
}

// lineCatalog has n items scored strictly descending against the [1,0] transition.
func lineCatalog(t *testing.T, n int) *catalog.Catalog {
	t.Helper()
	vectors := make([][]float32, n)
	for i := range vectors {
		vectors[i] = []float32{1, float32(i)}
	}
	return makeCatalog(t, vectors...)
}

func newTestService(cat *catalog.Catalog, emb Embedder, meta MetadataService, concurrency int) *Service {
	enricher := NewEnricher(NewResolver(meta, time.Second), concurrency, "https://img/")
	return New(
		staticCatalogs{cat: cat},
		NewRanker(emb),
		enricher,
		NewSampler(enricher, nil),
		Config{},
	)
}
