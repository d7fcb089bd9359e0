// Package catalog assembles the corpus and its embedding store into an
// immutable Catalog, building the embeddings when no artifact exists.
package catalog

import (
	"fmt"
	"sync/atomic"

	"github.com/4RCAN3/EmoFlix/internal/domain"
	"github.com/4RCAN3/EmoFlix/internal/domain/corpus"
	"github.com/4RCAN3/EmoFlix/internal/domain/embstore"
	"github.com/4RCAN3/EmoFlix/internal/metrics"
)

// Catalog pairs a corpus with its index-aligned embedding store.
type Catalog struct {
	corpus *corpus.Corpus
	store  *embstore.Store
}

// New validates alignment and returns a read-only catalog.
func New(c *corpus.Corpus, s *embstore.Store) (*Catalog, error) {
	if err := s.CheckAligned(c.Len()); err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	return &Catalog{corpus: c, store: s}, nil
}

// Corpus returns the movie corpus.
func (c *Catalog) Corpus() *corpus.Corpus { return c.corpus }

// Store returns the plot embeddings.
func (c *Catalog) Store() *embstore.Store { return c.store }

// Len returns the number of items.
func (c *Catalog) Len() int { return c.corpus.Len() }

// Holder publishes the active catalog to concurrent readers.
// Readers take one snapshot per request; Swap replaces it atomically.
type Holder struct {
	current atomic.Pointer[Catalog]
}

// NewHolder returns a holder, optionally preloaded with c.
func NewHolder(c *Catalog) *Holder {
	h := &Holder{}
	if c != nil {
		h.Swap(c)
	}
	return h
}

// Current returns the active catalog or domain.ErrCatalogNotLoaded.
func (h *Holder) Current() (*Catalog, error) {
	c := h.current.Load()
	if c == nil {
		return nil, domain.ErrCatalogNotLoaded
	}
	return c, nil
}

// Swap installs c and returns the previous catalog (nil on first install).
func (h *Holder) Swap(c *Catalog) *Catalog {
	metrics.CatalogItems.Set(float64(c.Len()))
	return h.current.Swap(c)
}
