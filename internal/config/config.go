// Package config loads the per-environment YAML configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the EmoFlix configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Logging   LoggingConfig   `yaml:"logging"`
	Auth      AuthConfig      `yaml:"auth"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Corpus    CorpusConfig    `yaml:"corpus"`
	Store     StoreConfig     `yaml:"store"`
	Metadata  MetadataConfig  `yaml:"metadata"`
	Recommend RecommendConfig `yaml:"recommend"`
	Cache     CacheConfig     `yaml:"cache"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
type AuthConfig struct {
	APIKeys []string `yaml:"api_keys"`
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// EmbeddingConfig holds the sentence-embedding provider settings.
type EmbeddingConfig struct {
	Provider     string `yaml:"provider"` // label for metrics and logs
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	Model        string `yaml:"model"`
	Dimensions   int    `yaml:"dimensions"` // 0 = model default
	TimeoutSec   int    `yaml:"timeout_sec"`
	MaxBatchSize int    `yaml:"max_batch_size"` // texts per provider call
}

// CorpusConfig points at the movie plot CSV.
type CorpusConfig struct {
	Path string `yaml:"path"`
}

// StoreConfig holds embedding artifact settings.
type StoreConfig struct {
	Path           string `yaml:"path"`
	BuildBatchSize int    `yaml:"build_batch_size"`
}

// MetadataConfig holds TMDB settings.
type MetadataConfig struct {
	APIKey       string `yaml:"api_key"`
	BaseURL      string `yaml:"base_url"`
	ImageBaseURL string `yaml:"image_base_url"`
	Language     string `yaml:"language"`
	TimeoutMs    int    `yaml:"timeout_ms"` // per title lookup
	Concurrency  int    `yaml:"concurrency"`
	CastLimit    int    `yaml:"cast_limit"`
}

// RecommendConfig holds result sizing.
type RecommendConfig struct {
	DefaultTopK      int `yaml:"default_top_k"`
	MaxTopK          int `yaml:"max_top_k"`
	OverselectFactor int `yaml:"overselect_factor"`
	HomepageCount    int `yaml:"homepage_count"`
}

// CacheConfig holds the optional Valkey/Redis cache settings.
type CacheConfig struct {
	Enabled          bool     `yaml:"enabled"`
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
	EmbeddingTTLSec  int      `yaml:"embedding_ttl_sec"` // 0 = no expiry
	MetadataTTLSec   int      `yaml:"metadata_ttl_sec"`
}

// EmbeddingTimeout returns the provider timeout.
func (c EmbeddingConfig) EmbeddingTimeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// LookupTimeout returns the per-title metadata timeout.
func (c MetadataConfig) LookupTimeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 5000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}

	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "openai"
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Embedding.MaxBatchSize <= 0 {
		c.Embedding.MaxBatchSize = 256
	}

	if c.Corpus.Path == "" {
		c.Corpus.Path = "data/wiki_movie_plots_deduped.csv"
	}
	if c.Store.Path == "" {
		c.Store.Path = "data/plot_embeddings.bin"
	}
	if c.Store.BuildBatchSize <= 0 {
		c.Store.BuildBatchSize = 64
	}

	if c.Metadata.BaseURL == "" {
		c.Metadata.BaseURL = "https://api.themoviedb.org/3"
	}
	if c.Metadata.ImageBaseURL == "" {
		c.Metadata.ImageBaseURL = "https://image.tmdb.org/t/p/w500"
	}
	if c.Metadata.TimeoutMs <= 0 {
		c.Metadata.TimeoutMs = 3000
	}
	if c.Metadata.Concurrency <= 0 {
		c.Metadata.Concurrency = 4
	}
	if c.Metadata.CastLimit <= 0 {
		c.Metadata.CastLimit = 5
	}

	if c.Recommend.DefaultTopK <= 0 {
		c.Recommend.DefaultTopK = 5
	}
	if c.Recommend.MaxTopK <= 0 {
		c.Recommend.MaxTopK = 50
	}
	if c.Recommend.OverselectFactor <= 0 {
		c.Recommend.OverselectFactor = 2
	}
	if c.Recommend.HomepageCount <= 0 {
		c.Recommend.HomepageCount = 12
	}

	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Cache.KeyPrefix == "" {
		c.Cache.KeyPrefix = "emoflix:"
	}
	if c.Cache.MetadataTTLSec <= 0 {
		c.Cache.MetadataTTLSec = 7 * 24 * 3600
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}
	if c.Embedding.Model == "" {
		errs = append(errs, errors.New("embedding.model is required"))
	}
	if c.Embedding.BaseURL == "" {
		errs = append(errs, errors.New("embedding.base_url is required"))
	}
	if c.Metadata.APIKey == "" {
		errs = append(errs, errors.New("metadata.api_key is required"))
	}
	if c.Recommend.DefaultTopK > c.Recommend.MaxTopK {
		errs = append(errs, fmt.Errorf("recommend.default_top_k (%d) exceeds recommend.max_top_k (%d)",
			c.Recommend.DefaultTopK, c.Recommend.MaxTopK))
	}
	if c.Cache.Enabled && len(c.Cache.Addrs) == 0 {
		errs = append(errs, errors.New("cache.addrs is required when cache.enabled is true"))
	}
	if c.Cache.EmbeddingTTLSec < 0 {
		errs = append(errs, errors.New("cache.embedding_ttl_sec must not be negative"))
	}
	return errors.Join(errs...)
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
