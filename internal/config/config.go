// Package config defines all configuration structures for LeaseLens.
// No I/O or parsing logic lives here, only plain data types and validation.
package config

import (
	"fmt"
	"time"

	"github.com/leaselens/leaselens/internal/infrastructure/monitoring/logging"
)

// ServerConfig holds HTTP server tunables.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release" | "test"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// RedisConfig holds Redis connection parameters. Redis backs the L2 semantic
// cache, persisted analyses, and conversation history.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	KeyPrefix    string        `mapstructure:"key_prefix"`
}

// OpenSearchConfig holds OpenSearch cluster parameters for the clause index.
type OpenSearchConfig struct {
	Addresses          []string      `mapstructure:"addresses"`
	User               string        `mapstructure:"user"`
	Password           string        `mapstructure:"password"`
	InsecureSkipVerify bool          `mapstructure:"insecure_skip_verify"`
	IndexPrefix        string        `mapstructure:"index_prefix"`
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
}

// MilvusConfig holds Milvus parameters for the violation-exemplar index.
type MilvusConfig struct {
	Addr           string        `mapstructure:"addr"`
	DBName         string        `mapstructure:"db_name"`
	CollectionName string        `mapstructure:"collection_name"`
	SearchTimeout  time.Duration `mapstructure:"search_timeout"`
}

// AIConfig holds the embedding and completion provider parameters. The
// provider speaks the OpenAI wire protocol; BaseURL points it at any
// compatible backend. When APIKey is empty the deterministic stub embedder is
// used instead of a remote provider.
type AIConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	BaseURL         string        `mapstructure:"base_url"`
	EmbeddingModel  string        `mapstructure:"embedding_model"`
	EmbeddingDim    int           `mapstructure:"embedding_dim"`
	CompletionModel string        `mapstructure:"completion_model"`
	MaxTokens       int           `mapstructure:"max_tokens"`
	Temperature     float64       `mapstructure:"temperature"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

// DetectionConfig holds violation-detection tunables.
type DetectionConfig struct {
	// SimilarityThreshold is the minimum exemplar similarity accepted by
	// the vector fallback.
	SimilarityThreshold float64 `mapstructure:"similarity_threshold"`
	// TopK is how many exemplar neighbours the fallback retrieves.
	TopK int `mapstructure:"top_k"`
	// Confidence is assigned to clauses with a detected violation.
	Confidence float64 `mapstructure:"confidence"`
	// AnalysisTTL bounds how long persisted analyses are retained.
	AnalysisTTL time.Duration `mapstructure:"analysis_ttl"`
}

// SearchConfig holds query-expansion and enhanced-search tunables.
type SearchConfig struct {
	MaxSynonymsPerWord int `mapstructure:"max_synonyms_per_word"`
	MaxFuzzyPerWord    int `mapstructure:"max_fuzzy_per_word"`
	MaxVariants        int `mapstructure:"max_variants"`
	CandidatesPerQuery int `mapstructure:"candidates_per_query"`
	MaxResults         int `mapstructure:"max_results"`
}

// CacheConfig holds semantic-cache tunables.
type CacheConfig struct {
	L1Capacity          int           `mapstructure:"l1_capacity"`
	L1TTL               time.Duration `mapstructure:"l1_ttl"`
	L2TTL               time.Duration `mapstructure:"l2_ttl"`
	SimilarityThreshold float64       `mapstructure:"similarity_threshold"`
	SimilaritySample    int           `mapstructure:"similarity_sample"`
}

// ConversationConfig holds Q&A history tunables.
type ConversationConfig struct {
	MaxTurns int           `mapstructure:"max_turns"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Config is the root configuration structure for the whole service.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Redis        RedisConfig        `mapstructure:"redis"`
	OpenSearch   OpenSearchConfig   `mapstructure:"opensearch"`
	Milvus       MilvusConfig       `mapstructure:"milvus"`
	AI           AIConfig           `mapstructure:"ai"`
	Detection    DetectionConfig    `mapstructure:"detection"`
	Search       SearchConfig       `mapstructure:"search"`
	Cache        CacheConfig        `mapstructure:"cache"`
	Conversation ConversationConfig `mapstructure:"conversation"`
	Log          logging.Config     `mapstructure:"log"`
}

// Validate performs semantic validation of a fully-populated Config. It
// returns the first error found; callers must treat any error as fatal and
// refuse to start.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("config: server.port %d is out of range [1, 65535]", c.Server.Port)
	}
	switch c.Server.Mode {
	case "debug", "release", "test":
	default:
		return fmt.Errorf("config: server.mode %q is invalid; expected debug|release|test", c.Server.Mode)
	}

	if c.Redis.Addr == "" {
		return fmt.Errorf("config: redis.addr is required")
	}
	if c.Redis.DB < 0 {
		return fmt.Errorf("config: redis.db must be >= 0, got %d", c.Redis.DB)
	}

	if len(c.OpenSearch.Addresses) == 0 {
		return fmt.Errorf("config: opensearch.addresses must contain at least one address")
	}
	if c.Milvus.Addr == "" {
		return fmt.Errorf("config: milvus.addr is required")
	}

	if c.AI.EmbeddingDim < 1 {
		return fmt.Errorf("config: ai.embedding_dim must be >= 1, got %d", c.AI.EmbeddingDim)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("config: ai.temperature %v is out of range [0, 2]", c.AI.Temperature)
	}

	if c.Detection.SimilarityThreshold <= 0 || c.Detection.SimilarityThreshold > 1 {
		return fmt.Errorf("config: detection.similarity_threshold %v is out of range (0, 1]", c.Detection.SimilarityThreshold)
	}
	if c.Detection.TopK < 1 {
		return fmt.Errorf("config: detection.top_k must be >= 1, got %d", c.Detection.TopK)
	}
	if c.Detection.Confidence < 0 || c.Detection.Confidence > 1 {
		return fmt.Errorf("config: detection.confidence %v is out of range [0, 1]", c.Detection.Confidence)
	}

	if c.Cache.L1Capacity < 1 {
		return fmt.Errorf("config: cache.l1_capacity must be >= 1, got %d", c.Cache.L1Capacity)
	}
	if c.Cache.SimilarityThreshold <= 0 || c.Cache.SimilarityThreshold > 1 {
		return fmt.Errorf("config: cache.similarity_threshold %v is out of range (0, 1]", c.Cache.SimilarityThreshold)
	}
	if c.Cache.L1TTL > c.Cache.L2TTL {
		return fmt.Errorf("config: cache.l1_ttl must not exceed cache.l2_ttl")
	}

	if c.Conversation.MaxTurns < 2 {
		return fmt.Errorf("config: conversation.max_turns must be >= 2, got %d", c.Conversation.MaxTurns)
	}

	switch c.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}

	return nil
}
