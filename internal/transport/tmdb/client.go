// Package tmdb resolves movie titles against The Movie Database v3 API.
package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/4RCAN3/EmoFlix/internal/domain"
	"github.com/4RCAN3/EmoFlix/internal/domain/movie"
)

// DefaultBaseURL is the public TMDB v3 endpoint.
const DefaultBaseURL = "https://api.themoviedb.org/3"

// DefaultCastLimit is the number of billed cast members kept from credits.
const DefaultCastLimit = 5

const maxErrorBody = 4 << 10

// Config holds the TMDB client settings.
type Config struct {
	APIKey    string
	BaseURL   string
	Language  string
	CastLimit int
	Timeout   time.Duration
	Logger    *zap.Logger
}

// Client is a minimal TMDB v3 client covering title search and movie details.
// Safe for concurrent use.
type Client struct {
	apiKey     string
	baseURL    string
	language   string
	castLimit  int
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a TMDB client.
func New(cfg *Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	castLimit := cfg.CastLimit
	if castLimit <= 0 {
		castLimit = DefaultCastLimit
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		language:   cfg.Language,
		castLimit:  castLimit,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type searchResponse struct {
	Results []movie.SearchHit `json:"results"`
}

type detailsResponse struct {
	Runtime int `json:"runtime"`
	Genres  []struct {
		Name string `json:"name"`
	} `json:"genres"`
	Credits struct {
		Cast []struct {
			Name  string `json:"name"`
			Order int    `json:"order"`
		} `json:"cast"`
		Crew []struct {
			Name string `json:"name"`
			Job  string `json:"job"`
		} `json:"crew"`
	} `json:"credits"`
}

// SearchByTitle returns the first search result for title.
// ok is false when the search matched nothing.
func (c *Client) SearchByTitle(ctx context.Context, title string) (movie.SearchHit, bool, error) {
	q := url.Values{}
	q.Set("query", title)

	var resp searchResponse
	if err := c.get(ctx, "/search/movie", q, &resp); err != nil {
		return movie.SearchHit{}, false, fmt.Errorf("search %q: %w", title, err)
	}
	if len(resp.Results) == 0 {
		return movie.SearchHit{}, false, nil
	}
	return resp.Results[0], true, nil
}

// GetDetails fetches genres, runtime and credits for a TMDB movie id.
func (c *Client) GetDetails(ctx context.Context, id int64) (movie.Details, error) {
	q := url.Values{}
	q.Set("append_to_response", "credits")

	var resp detailsResponse
	if err := c.get(ctx, "/movie/"+strconv.FormatInt(id, 10), q, &resp); err != nil {
		return movie.Details{}, fmt.Errorf("details %d: %w", id, err)
	}

	d := movie.Details{
		Runtime: resp.Runtime,
		Genres:  make([]string, 0, len(resp.Genres)),
		Cast:    make([]string, 0, c.castLimit),
	}
	for _, g := range resp.Genres {
		d.Genres = append(d.Genres, g.Name)
	}
	for _, member := range resp.Credits.Crew {
		if member.Job == "Director" {
			d.Director = member.Name
			break
		}
	}
	for _, member := range resp.Credits.Cast {
		if len(d.Cast) == c.castLimit {
			break
		}
		d.Cast = append(d.Cast, member.Name)
	}
	return d, nil
}

// Ping issues a cheap authenticated request to verify reachability and the API key.
func (c *Client) Ping(ctx context.Context) error {
	var resp struct {
		Images struct {
			SecureBaseURL string `json:"secure_base_url"`
		} `json:"images"`
	}
	if err := c.get(ctx, "/configuration", url.Values{}, &resp); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	q.Set("api_key", c.apiKey)
	if c.language != "" {
		q.Set("language", c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w: %w", err, domain.ErrMetadataResolution)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http: %w: %w", err, domain.ErrMetadataResolution)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Debug("TMDB request failed",
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.String("body", string(body)),
		)
		return fmt.Errorf("status %d: %w", resp.StatusCode, domain.ErrMetadataResolution)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w: %w", err, domain.ErrMetadataResolution)
	}
	return nil
}
