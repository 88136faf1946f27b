package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for all settings.
const envPrefix = "LEASELENS"

// configKeys lists every settable key. Viper only resolves environment
// variables during Unmarshal for keys it knows about, so each key is bound
// explicitly; a key missing here is invisible to LoadFromEnv.
var configKeys = []string{
	"server.port", "server.mode", "server.read_timeout", "server.write_timeout",
	"server.shutdown_timeout",
	"redis.addr", "redis.password", "redis.db", "redis.pool_size",
	"redis.min_idle_conns", "redis.dial_timeout", "redis.read_timeout",
	"redis.write_timeout", "redis.key_prefix",
	"opensearch.addresses", "opensearch.user", "opensearch.password",
	"opensearch.insecure_skip_verify", "opensearch.index_prefix",
	"opensearch.request_timeout",
	"milvus.addr", "milvus.db_name", "milvus.collection_name", "milvus.search_timeout",
	"ai.api_key", "ai.base_url", "ai.embedding_model", "ai.embedding_dim",
	"ai.completion_model", "ai.max_tokens", "ai.temperature", "ai.request_timeout",
	"detection.similarity_threshold", "detection.top_k", "detection.confidence",
	"detection.analysis_ttl",
	"search.max_synonyms_per_word", "search.max_fuzzy_per_word", "search.max_variants",
	"search.candidates_per_query", "search.max_results",
	"cache.l1_capacity", "cache.l1_ttl", "cache.l2_ttl",
	"cache.similarity_threshold", "cache.similarity_sample",
	"conversation.max_turns", "conversation.ttl",
	"log.level", "log.format", "log.output_paths",
}

// newViper builds a pre-configured Viper instance: YAML file type, LEASELENS_
// env prefix, automatic env binding, and a key replacer mapping "." to "_" so
// nested keys like "redis.addr" resolve to "LEASELENS_REDIS_ADDR".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range configKeys {
		_ = v.BindEnv(key)
	}
	return v
}

// Load reads the YAML file at configPath, merges LEASELENS_* environment
// overrides, applies defaults for unset fields, and validates the result.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from LEASELENS_* environment variables
// with no config file, the preferred strategy for containerized deployments.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}

// Watch monitors configPath for changes and invokes onChange with the newly
// parsed Config whenever the file is modified. Intended for hot-reloading
// non-critical settings such as log level and cache thresholds; callers apply
// only the subset that is safe to change at runtime.
//
// Watch is non-blocking. If a changed file fails to parse or validate the
// callback is skipped so the application never enters a broken state.
func Watch(configPath string, onChange func(*Config)) {
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.WatchConfig()
	v.OnConfigChange(func(_ fsnotify.Event) {
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			return
		}
		onChange(cfg)
	})
}

// MustLoad wraps Load and panics on error; for use in main() where a
// config-load failure is always fatal.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("config: MustLoad failed: %v", err))
	}
	return cfg
}
