package catalog

import (
	"github.com/4RCAN3/EmoFlix/internal/domain/corpus"
	"github.com/4RCAN3/EmoFlix/internal/domain/embstore"
)

// CorpusSource yields the movie corpus.
type CorpusSource interface {
	Load() (*corpus.Corpus, error)
}

// ArtifactStore persists the embedding store between runs.
// Load must return domain.ErrArtifactNotFound when nothing was persisted yet.
type ArtifactStore interface {
	Load() (*embstore.Store, error)
	Persist(s *embstore.Store) error
}
