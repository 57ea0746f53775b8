// Package config loads the askdex API configuration from per-environment
// YAML files with ${VAR} and ${VAR:-default} expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the askdex API configuration.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Redis       RedisConfig       `yaml:"redis"`
	Embedding   EmbeddingConfig   `yaml:"embedding"`
	Generation  GenerationConfig  `yaml:"generation"`
	Reranker    RerankerConfig    `yaml:"reranker"`
	Authz       AuthzConfig       `yaml:"authz"`
	Search      SearchConfig      `yaml:"search"`
	Permissions PermissionsConfig `yaml:"permissions"`
	Answer      AnswerConfig      `yaml:"answer"`
	Auth        AuthConfig        `yaml:"auth"`
	Logging     LoggingConfig     `yaml:"logging"`
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

// RedisConfig holds the semantic index store connection settings.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// EmbeddingConfig holds the embedding provider settings.
type EmbeddingConfig struct {
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	Dimensions  int    `yaml:"dimensions"`
	Concurrency int    `yaml:"concurrency"`
}

// GenerationConfig holds the answer-generation backend settings.
type GenerationConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// RerankerConfig holds the pairwise relevance scorer settings.
type RerankerConfig struct {
	Enabled     bool   `yaml:"enabled"`
	APIKey      string `yaml:"api_key"`
	BaseURL     string `yaml:"base_url"`
	Model       string `yaml:"model"`
	TimeoutSec  int    `yaml:"timeout_sec"`
	Concurrency int    `yaml:"concurrency"`
}

// AuthzConfig holds the authorization service settings.
type AuthzConfig struct {
	BaseURL    string `yaml:"base_url"`
	Token      string `yaml:"token"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// SearchConfig holds retrieval pipeline tunables.
type SearchConfig struct {
	RRFK               int     `yaml:"rrf_k"`
	LexicalWeight      float64 `yaml:"lexical_weight"`
	SemanticWeight     float64 `yaml:"semantic_weight"`
	CandidateK         int     `yaml:"candidate_k"`
	SourceTimeoutSec   int     `yaml:"source_timeout_sec"`
	RequestDeadlineSec int     `yaml:"request_deadline_sec"`
}

// PermissionsConfig holds permission filter settings.
type PermissionsConfig struct {
	CacheTTLSec       int `yaml:"cache_ttl_sec"`
	LookupConcurrency int `yaml:"lookup_concurrency"`
}

// AnswerConfig holds answer assembly settings.
type AnswerConfig struct {
	ContextTokenBudget int     `yaml:"context_token_budget"`
	StalenessAgeDays   int     `yaml:"staleness_age_days"`
	MinRelevance       float64 `yaml:"min_relevance"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

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

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
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
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 30
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10
	}
	if c.Embedding.Concurrency <= 0 {
		c.Embedding.Concurrency = 4
	}
	if c.Generation.TimeoutSec <= 0 {
		c.Generation.TimeoutSec = 20
	}
	if c.Generation.MaxTokens <= 0 {
		c.Generation.MaxTokens = 700
	}
	if c.Reranker.TimeoutSec <= 0 {
		c.Reranker.TimeoutSec = 8
	}
	if c.Reranker.Concurrency <= 0 {
		c.Reranker.Concurrency = 4
	}
	if c.Authz.TimeoutSec <= 0 {
		c.Authz.TimeoutSec = 3
	}
	if c.Search.RRFK <= 0 {
		c.Search.RRFK = 60
	}
	if c.Search.LexicalWeight <= 0 {
		c.Search.LexicalWeight = 1
	}
	if c.Search.SemanticWeight <= 0 {
		c.Search.SemanticWeight = 1
	}
	if c.Search.CandidateK <= 0 {
		c.Search.CandidateK = 50
	}
	if c.Search.SourceTimeoutSec <= 0 {
		c.Search.SourceTimeoutSec = 5
	}
	if c.Search.RequestDeadlineSec <= 0 {
		c.Search.RequestDeadlineSec = 30
	}
	if c.Permissions.CacheTTLSec <= 0 {
		c.Permissions.CacheTTLSec = 300
	}
	if c.Permissions.LookupConcurrency <= 0 {
		c.Permissions.LookupConcurrency = 8
	}
	if c.Answer.ContextTokenBudget <= 0 {
		c.Answer.ContextTokenBudget = 3000
	}
	if c.Answer.StalenessAgeDays <= 0 {
		c.Answer.StalenessAgeDays = 180
	}
	if c.Answer.MinRelevance <= 0 {
		c.Answer.MinRelevance = 0.01
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Redis.Addrs) == 0 {
		return fmt.Errorf("redis.addrs is required")
	}
	if c.Authz.BaseURL == "" {
		return fmt.Errorf("authz.base_url is required")
	}
	if c.Search.LexicalWeight < 0 || c.Search.SemanticWeight < 0 {
		return fmt.Errorf("search fusion weights must be non-negative")
	}
	if c.Answer.MinRelevance < 0 || c.Answer.MinRelevance > 1 {
		return fmt.Errorf("answer.min_relevance must be between 0 and 1, got %f", c.Answer.MinRelevance)
	}
	return nil
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
