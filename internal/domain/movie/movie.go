// Package movie defines external metadata and the enriched recommendation returned to clients.
package movie

// SearchHit is the best title match from the metadata service.
type SearchHit struct {
	ID           int64   `json:"id"`
	Title        string  `json:"title"`
	PosterPath   string  `json:"poster_path"`
	BackdropPath string  `json:"backdrop_path"`
	ReleaseDate  string  `json:"release_date"`
	Overview     string  `json:"overview"`
	VoteAverage  float64 `json:"vote_average"`
}

// Details holds the per-movie detail lookup.
type Details struct {
	Genres   []string `json:"genres"`
	Runtime  int      `json:"runtime"`
	Director string   `json:"director"`
	Cast     []string `json:"cast"`
}

// Metadata is a fully resolved title: search hit merged with details.
type Metadata struct {
	SearchHit
	Details
}

// Recommendation is a corpus item enriched with external metadata.
type Recommendation struct {
	TMDBID       int64    `json:"tmdb_id"`
	Title        string   `json:"title"`
	PosterPath   string   `json:"poster_path,omitempty"`
	BackdropPath string   `json:"backdrop_path,omitempty"`
	ReleaseDate  string   `json:"release_date"`
	Overview     string   `json:"overview"`
	VoteAverage  float64  `json:"vote_average"`
	Genres       []string `json:"genres"`
	Runtime      int      `json:"runtime"`
	Director     string   `json:"director,omitempty"`
	Cast         []string `json:"cast"`
	Plot         string   `json:"plot"`
	Score        float64  `json:"score"`
	CorpusID     int      `json:"corpus_id"`
}

// NewRecommendation merges metadata with the originating corpus plot and score.
// imageBaseURL is prepended to non-empty poster and backdrop paths.
func NewRecommendation(corpusID int, plot string, score float64, md Metadata, imageBaseURL string) Recommendation {
	return Recommendation{
		TMDBID:       md.ID,
		Title:        md.Title,
		PosterPath:   imageURL(imageBaseURL, md.PosterPath),
		BackdropPath: imageURL(imageBaseURL, md.BackdropPath),
		ReleaseDate:  md.ReleaseDate,
		Overview:     md.Overview,
		VoteAverage:  md.VoteAverage,
		Genres:       nonNil(md.Genres),
		Runtime:      md.Runtime,
		Director:     md.Director,
		Cast:         nonNil(md.Cast),
		Plot:         plot,
		Score:        score,
		CorpusID:     corpusID,
	}
}

func imageURL(base, path string) string {
	if path == "" {
		return ""
	}
	return base + path
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
