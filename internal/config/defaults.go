package config

import "time"

// Default values applied to unset fields. Thresholds that the detection and
// caching layers depend on live here rather than as constants in the
// components, so deployments can tune them without a rebuild.
const (
	DefaultServerPort      = 8080
	DefaultSimilarity      = 0.85
	DefaultDetectionTopK   = 5
	DefaultConfidence      = 0.85
	DefaultAnalysisTTL     = 30 * 24 * time.Hour
	DefaultEmbeddingDim    = 768
	DefaultL1Capacity      = 1000
	DefaultL1TTL           = 5 * time.Minute
	DefaultL2TTL           = 24 * time.Hour
	DefaultCacheSample     = 50
	DefaultMaxTurns        = 20
	DefaultConversationTTL = 7 * 24 * time.Hour
)

// ApplyDefaults fills every unset field of cfg with its default value.
// It never overrides a value the operator has set explicitly.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultServerPort
	}
	if cfg.Server.Mode == "" {
		cfg.Server.Mode = "release"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 30 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 60 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 15 * time.Second
	}

	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.PoolSize == 0 {
		cfg.Redis.PoolSize = 10
	}
	if cfg.Redis.DialTimeout == 0 {
		cfg.Redis.DialTimeout = 5 * time.Second
	}
	if cfg.Redis.ReadTimeout == 0 {
		cfg.Redis.ReadTimeout = 3 * time.Second
	}
	if cfg.Redis.WriteTimeout == 0 {
		cfg.Redis.WriteTimeout = 3 * time.Second
	}
	if cfg.Redis.KeyPrefix == "" {
		cfg.Redis.KeyPrefix = "leaselens"
	}

	if len(cfg.OpenSearch.Addresses) == 0 {
		cfg.OpenSearch.Addresses = []string{"http://localhost:9200"}
	}
	if cfg.OpenSearch.IndexPrefix == "" {
		cfg.OpenSearch.IndexPrefix = "leaselens"
	}
	if cfg.OpenSearch.RequestTimeout == 0 {
		cfg.OpenSearch.RequestTimeout = 10 * time.Second
	}

	if cfg.Milvus.Addr == "" {
		cfg.Milvus.Addr = "localhost:19530"
	}
	if cfg.Milvus.CollectionName == "" {
		cfg.Milvus.CollectionName = "violation_exemplars"
	}
	if cfg.Milvus.SearchTimeout == 0 {
		cfg.Milvus.SearchTimeout = 10 * time.Second
	}

	if cfg.AI.EmbeddingModel == "" {
		cfg.AI.EmbeddingModel = "text-embedding-3-small"
	}
	if cfg.AI.EmbeddingDim == 0 {
		cfg.AI.EmbeddingDim = DefaultEmbeddingDim
	}
	if cfg.AI.CompletionModel == "" {
		cfg.AI.CompletionModel = "gpt-4o-mini"
	}
	if cfg.AI.MaxTokens == 0 {
		cfg.AI.MaxTokens = 1024
	}
	if cfg.AI.Temperature == 0 {
		cfg.AI.Temperature = 0.2
	}
	if cfg.AI.RequestTimeout == 0 {
		cfg.AI.RequestTimeout = 30 * time.Second
	}

	if cfg.Detection.SimilarityThreshold == 0 {
		cfg.Detection.SimilarityThreshold = DefaultSimilarity
	}
	if cfg.Detection.TopK == 0 {
		cfg.Detection.TopK = DefaultDetectionTopK
	}
	if cfg.Detection.Confidence == 0 {
		cfg.Detection.Confidence = DefaultConfidence
	}
	if cfg.Detection.AnalysisTTL == 0 {
		cfg.Detection.AnalysisTTL = DefaultAnalysisTTL
	}

	if cfg.Search.MaxSynonymsPerWord == 0 {
		cfg.Search.MaxSynonymsPerWord = 3
	}
	if cfg.Search.MaxFuzzyPerWord == 0 {
		cfg.Search.MaxFuzzyPerWord = 5
	}
	if cfg.Search.MaxVariants == 0 {
		cfg.Search.MaxVariants = 12
	}
	if cfg.Search.CandidatesPerQuery == 0 {
		cfg.Search.CandidatesPerQuery = 10
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = 20
	}

	if cfg.Cache.L1Capacity == 0 {
		cfg.Cache.L1Capacity = DefaultL1Capacity
	}
	if cfg.Cache.L1TTL == 0 {
		cfg.Cache.L1TTL = DefaultL1TTL
	}
	if cfg.Cache.L2TTL == 0 {
		cfg.Cache.L2TTL = DefaultL2TTL
	}
	if cfg.Cache.SimilarityThreshold == 0 {
		cfg.Cache.SimilarityThreshold = DefaultSimilarity
	}
	if cfg.Cache.SimilaritySample == 0 {
		cfg.Cache.SimilaritySample = DefaultCacheSample
	}

	if cfg.Conversation.MaxTurns == 0 {
		cfg.Conversation.MaxTurns = DefaultMaxTurns
	}
	if cfg.Conversation.TTL == 0 {
		cfg.Conversation.TTL = DefaultConversationTTL
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
}

// NewDefaultConfig returns a Config with every field at its default value.
// Useful for tests and local development without a config file.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
