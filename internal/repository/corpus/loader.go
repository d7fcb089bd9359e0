// Package corpus loads the movie plot corpus from its CSV export.
package corpus

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/4RCAN3/EmoFlix/internal/domain/corpus"
)

// Column names after header normalization.
const (
	colTitle       = "title"
	colPlot        = "plot"
	colReleaseYear = "release_year"
	colOrigin      = "origin/ethnicity"
	colDirector    = "director"
	colCast        = "cast"
	colGenre       = "genre"
	colWikiPage    = "wiki_page"
)

// LoadFile reads a corpus CSV from path.
func LoadFile(path string, logger *zap.Logger) (*corpus.Corpus, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer func() { _ = f.Close() }()

	c, err := Load(f, logger)
	if err != nil {
		return nil, fmt.Errorf("load corpus %s: %w", path, err)
	}
	return c, nil
}

// Load parses a corpus CSV. Headers are normalized (trimmed, lower-cased,
// spaces to underscores); "title" and "plot" are required, the other known
// columns are optional. Rows with a blank title or plot are skipped with a
// warning; the order of the remaining rows defines item IDs.
func Load(r io.Reader, logger *zap.Logger) (*corpus.Corpus, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty corpus file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[NormalizeHeader(h)] = i
	}
	for _, required := range []string{colTitle, colPlot} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	field := func(rec []string, name string) string {
		i, ok := cols[name]
		if !ok || i >= len(rec) {
			return ""
		}
		return strings.TrimSpace(rec[i])
	}

	var rows []corpus.Fields
	skipped := 0
	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line, err)
		}

		if field(rec, colTitle) == "" || field(rec, colPlot) == "" {
			skipped++
			logger.Warn("Skipping corpus row without title or plot",
				zap.Int("row", line),
				zap.String("title", field(rec, colTitle)),
			)
			continue
		}

		year, _ := strconv.Atoi(field(rec, colReleaseYear))
		rows = append(rows, corpus.Fields{
			Title:       field(rec, colTitle),
			Plot:        field(rec, colPlot),
			ReleaseYear: year,
			Origin:      field(rec, colOrigin),
			Director:    field(rec, colDirector),
			Cast:        field(rec, colCast),
			Genre:       field(rec, colGenre),
			WikiPage:    field(rec, colWikiPage),
		})
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no usable rows (%d skipped)", skipped)
	}

	c, err := corpus.New(rows)
	if err != nil {
		return nil, fmt.Errorf("build corpus: %w", err)
	}
	if skipped > 0 {
		logger.Warn("Corpus rows skipped", zap.Int("skipped", skipped), zap.Int("loaded", c.Len()))
	}
	return c, nil
}

// NormalizeHeader trims, lower-cases and replaces spaces with underscores.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(h)), " ", "_")
}

// File loads the corpus CSV at a fixed path.
type File struct {
	Path   string
	Logger *zap.Logger
}

// Load reads and parses f.Path.
func (f File) Load() (*corpus.Corpus, error) { return LoadFile(f.Path, f.Logger) }
