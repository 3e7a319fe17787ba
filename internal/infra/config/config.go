package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Driver names accepted by the storage, vector, cache and seed sections.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverPGVector = "pgvector"
	DriverQdrant   = "qdrant"
	DriverValkey   = "valkey"

	SeedSourceDemo        = "demo"
	SeedSourceObjectStore = "objectstore"

	QueueImmediate = "immediate"
	QueueValkey    = "valkey"
	QueueInline    = "inline"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	LLM       LLMConfig       `yaml:"llm"`
	FAQ       FAQConfig       `yaml:"faq"`
	Analytics AnalyticsConfig `yaml:"analytics"`
	Storage   StorageConfig   `yaml:"storage"`
	Vector    VectorConfig    `yaml:"vector"`
	Cache     CacheConfig     `yaml:"cache"`
	Seed      SeedConfig      `yaml:"seed"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address      string          `yaml:"address"`
	ReadTimeout  time.Duration   `yaml:"readTimeout"`
	WriteTimeout time.Duration   `yaml:"writeTimeout"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	CORS         CORSConfig      `yaml:"cors"`
}

// RateLimitConfig drives the request limiting middleware.
type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requestsPerMinute"`
	Burst             int  `yaml:"burst"`
}

// CORSConfig lists origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// LLMConfig contains ChatGPT/OpenAI settings. An empty APIKey selects the offline embedder and generator.
type LLMConfig struct {
	APIKey          string  `yaml:"apiKey"`
	BaseURL         string  `yaml:"baseUrl"`
	Model           string  `yaml:"model"`
	EmbeddingModel  string  `yaml:"embeddingModel"`
	Temperature     float32 `yaml:"temperature"`
	TokenEncoding   string  `yaml:"tokenEncoding"`
	OfflineEmbedDim int     `yaml:"offlineEmbedDim"`
}

// FAQConfig controls retrieval and answer synthesis.
type FAQConfig struct {
	Prompt              string        `yaml:"prompt"`
	SearchTopK          int           `yaml:"searchTopK"`
	SimilarityThreshold float64       `yaml:"similarityThreshold"`
	ContextSize         int           `yaml:"contextSize"`
	SearchCacheTTL      time.Duration `yaml:"searchCacheTtl"`
	AnswerCacheTTL      time.Duration `yaml:"answerCacheTtl"`
	FallbackAnswer      string        `yaml:"fallbackAnswer"`
}

// AnalyticsConfig controls query logging and reporting.
type AnalyticsConfig struct {
	PopularWindow time.Duration `yaml:"popularWindow"`
	PopularLimit  int           `yaml:"popularLimit"`
	Queue         string        `yaml:"queue"`
	QueueKey      string        `yaml:"queueKey"`
}

// StorageConfig selects the FAQ record store and analytics persistence.
type StorageConfig struct {
	Driver   string         `yaml:"driver"`
	Postgres PostgresConfig `yaml:"postgres"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
}

// PostgresConfig contains DSN and pooling settings.
type PostgresConfig struct {
	DSN      string `yaml:"dsn"`
	MaxConns int32  `yaml:"maxConns"`
	MinConns int32  `yaml:"minConns"`
}

// SQLiteConfig points at the database file.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// VectorConfig selects the vector index.
type VectorConfig struct {
	Driver     string       `yaml:"driver"`
	Dimensions int          `yaml:"dimensions"`
	Qdrant     QdrantConfig `yaml:"qdrant"`
}

// QdrantConfig contains gRPC connection settings.
type QdrantConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	APIKey     string `yaml:"apiKey"`
	Collection string `yaml:"collection"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Driver string `yaml:"driver"`
	Addr   string `yaml:"addr"`
	Prefix string `yaml:"prefix"`
}

// SeedConfig selects where Seed loads its corpus from.
type SeedConfig struct {
	Source    string `yaml:"source"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"accessKey"`
	SecretKey string `yaml:"secretKey"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	ObjectKey string `yaml:"objectKey"`
}

// Load reads configuration from a YAML file and environment variables.
func Load() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_ENABLED"); v != "" {
		cfg.HTTP.RateLimit.Enabled = parseBool(v)
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_RPM"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.RequestsPerMinute = parsed
		}
	}
	if v := os.Getenv("HTTP_RATE_LIMIT_BURST"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.RateLimit.Burst = parsed
		}
	}
	if v := os.Getenv("HTTP_CORS_ORIGINS"); v != "" {
		cfg.HTTP.CORS.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_EMBEDDING_MODEL"); v != "" {
		cfg.LLM.EmbeddingModel = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("FAQ_PROMPT"); v != "" {
		cfg.FAQ.Prompt = v
	}
	if v := os.Getenv("FAQ_SEARCH_TOP_K"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.FAQ.SearchTopK = parsed
		}
	}
	if v := os.Getenv("FAQ_SIMILARITY_THRESHOLD"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.FAQ.SimilarityThreshold = parsed
		}
	}
	if v := os.Getenv("FAQ_SEARCH_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.FAQ.SearchCacheTTL = parsed
		}
	}
	if v := os.Getenv("FAQ_ANSWER_CACHE_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.FAQ.AnswerCacheTTL = parsed
		}
	}
	if v := os.Getenv("ANALYTICS_QUEUE"); v != "" {
		cfg.Analytics.Queue = strings.ToLower(v)
	}
	if v := os.Getenv("STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("POSTGRES_MAX_CONNS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Storage.Postgres.MaxConns = int32(parsed)
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Storage.SQLite.Path = v
	}
	if v := os.Getenv("VECTOR_DRIVER"); v != "" {
		cfg.Vector.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("VECTOR_DIMENSIONS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Vector.Dimensions = parsed
		}
	}
	if v := os.Getenv("QDRANT_HOST"); v != "" {
		cfg.Vector.Qdrant.Host = v
	}
	if v := os.Getenv("QDRANT_PORT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Vector.Qdrant.Port = parsed
		}
	}
	if v := os.Getenv("QDRANT_API_KEY"); v != "" {
		cfg.Vector.Qdrant.APIKey = v
	}
	if v := os.Getenv("CACHE_DRIVER"); v != "" {
		cfg.Cache.Driver = strings.ToLower(v)
	}
	if v := os.Getenv("VALKEY_ADDR"); v != "" {
		cfg.Cache.Addr = v
	}
	if v := os.Getenv("SEED_SOURCE"); v != "" {
		cfg.Seed.Source = strings.ToLower(v)
	}
	if v := os.Getenv("SEED_ENDPOINT"); v != "" {
		cfg.Seed.Endpoint = v
	}
	if v := os.Getenv("SEED_ACCESS_KEY"); v != "" {
		cfg.Seed.AccessKey = v
	}
	if v := os.Getenv("SEED_SECRET_KEY"); v != "" {
		cfg.Seed.SecretKey = v
	}
	if v := os.Getenv("SEED_BUCKET"); v != "" {
		cfg.Seed.Bucket = v
	}
	if v := os.Getenv("SEED_OBJECT_KEY"); v != "" {
		cfg.Seed.ObjectKey = v
	}
}

func parseBool(v string) bool {
	return v == "1" || strings.EqualFold(v, "true")
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:      ":8080",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 60,
				Burst:             20,
			},
			CORS: CORSConfig{
				AllowedOrigins: []string{"*"},
			},
		},
		LLM: LLMConfig{
			Model:           "gpt-4o-mini",
			EmbeddingModel:  "text-embedding-3-small",
			Temperature:     0.2,
			TokenEncoding:   "cl100k_base",
			OfflineEmbedDim: 256,
		},
		FAQ: FAQConfig{
			Prompt:              "You are a helpful FAQ assistant. Answer the user's question using ONLY the provided FAQ entries. Be concise and friendly. If the FAQs don't contain the answer, say so politely.",
			SearchTopK:          5,
			SimilarityThreshold: 0.7,
			ContextSize:         3,
			SearchCacheTTL:      time.Hour,
			AnswerCacheTTL:      24 * time.Hour,
			FallbackAnswer:      "I couldn't find any relevant information in our FAQ. Please contact support for assistance.",
		},
		Analytics: AnalyticsConfig{
			PopularWindow: 7 * 24 * time.Hour,
			PopularLimit:  10,
			Queue:         QueueImmediate,
			QueueKey:      "faq:jobs",
		},
		Storage: StorageConfig{
			Driver: DriverMemory,
			Postgres: PostgresConfig{
				MaxConns: 4,
			},
			SQLite: SQLiteConfig{
				Path: "data/faq.db",
			},
		},
		Vector: VectorConfig{
			Driver:     DriverMemory,
			Dimensions: 1536,
			Qdrant: QdrantConfig{
				Host:       "localhost",
				Port:       6334,
				Collection: "faqs",
			},
		},
		Cache: CacheConfig{
			Driver: DriverMemory,
			Prefix: "faq",
		},
		Seed: SeedConfig{
			Source:    SeedSourceDemo,
			ObjectKey: "seed/faqs.yaml",
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.HTTP.RateLimit.Enabled {
		if c.HTTP.RateLimit.RequestsPerMinute <= 0 {
			return errors.New("http.rateLimit.requestsPerMinute must be positive")
		}
		if c.HTTP.RateLimit.Burst <= 0 {
			return errors.New("http.rateLimit.burst must be positive")
		}
	}
	if strings.TrimSpace(c.LLM.EmbeddingModel) == "" {
		return errors.New("llm.embeddingModel cannot be empty")
	}
	if c.FAQ.Prompt == "" {
		return errors.New("faq.prompt cannot be empty")
	}
	if c.FAQ.SearchTopK <= 0 {
		return errors.New("faq.searchTopK must be positive")
	}
	if c.FAQ.ContextSize <= 0 {
		return errors.New("faq.contextSize must be positive")
	}
	if c.FAQ.SimilarityThreshold < 0 || c.FAQ.SimilarityThreshold > 1 {
		return errors.New("faq.similarityThreshold must be within [0, 1]")
	}
	if c.FAQ.SearchCacheTTL < 0 || c.FAQ.AnswerCacheTTL < 0 {
		return errors.New("faq cache ttls cannot be negative")
	}
	if c.Analytics.PopularWindow <= 0 {
		return errors.New("analytics.popularWindow must be positive")
	}
	if c.Analytics.PopularLimit <= 0 {
		return errors.New("analytics.popularLimit must be positive")
	}
	if err := oneOf("analytics.queue", c.Analytics.Queue, QueueImmediate, QueueValkey, QueueInline); err != nil {
		return err
	}
	if err := oneOf("storage.driver", c.Storage.Driver, DriverMemory, DriverPostgres, DriverSQLite); err != nil {
		return err
	}
	if c.Storage.Driver == DriverPostgres && strings.TrimSpace(c.Storage.Postgres.DSN) == "" {
		return errors.New("storage.postgres.dsn cannot be empty when storage.driver is postgres")
	}
	if c.Storage.Driver == DriverSQLite && strings.TrimSpace(c.Storage.SQLite.Path) == "" {
		return errors.New("storage.sqlite.path cannot be empty when storage.driver is sqlite")
	}
	if err := oneOf("vector.driver", c.Vector.Driver, DriverMemory, DriverPGVector, DriverQdrant); err != nil {
		return err
	}
	if c.Vector.Driver == DriverPGVector && strings.TrimSpace(c.Storage.Postgres.DSN) == "" {
		return errors.New("storage.postgres.dsn cannot be empty when vector.driver is pgvector")
	}
	if c.Vector.Dimensions < 0 {
		return errors.New("vector.dimensions cannot be negative")
	}
	if err := oneOf("cache.driver", c.Cache.Driver, DriverMemory, DriverValkey); err != nil {
		return err
	}
	if (c.Cache.Driver == DriverValkey || c.Analytics.Queue == QueueValkey) && strings.TrimSpace(c.Cache.Addr) == "" {
		return errors.New("cache.addr cannot be empty when valkey is in use")
	}
	if err := oneOf("seed.source", c.Seed.Source, SeedSourceDemo, SeedSourceObjectStore); err != nil {
		return err
	}
	if c.Seed.Source == SeedSourceObjectStore && (c.Seed.Bucket == "" || c.Seed.ObjectKey == "" || c.Seed.Endpoint == "") {
		return errors.New("seed.endpoint, seed.bucket and seed.objectKey are required for the objectstore source")
	}
	return nil
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("%s must be one of %s, got %q", field, strings.Join(allowed, "|"), value)
}
