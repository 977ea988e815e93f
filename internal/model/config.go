package model

import (
	"fmt"
	"math"
	"time"
)

// Config is the complete immutable configuration for one analyzer instance.
// It is constructed once (defaults, config file, environment, flags) and
// passed into the pipeline; there is no ambient global state.
type Config struct {
	HTTP        HTTPConfig        `yaml:"http"`
	Fanout      FanoutConfig      `yaml:"fanout"`
	Scoring     ScoringConfig     `yaml:"scoring"`
	Threat      ThreatConfig      `yaml:"threat"`
	FactCheck   FactCheckConfig   `yaml:"factcheck"`
	LLM         LLMConfig         `yaml:"llm"`
	Cache       CacheConfig       `yaml:"cache"`
	History     HistoryConfig     `yaml:"history"`
	Server      ServerConfig      `yaml:"server"`
	Concurrency ConcurrencyConfig `yaml:"concurrency"`
}

// HTTPConfig controls outbound fetching of the page under analysis
type HTTPConfig struct {
	Timeout       time.Duration `yaml:"timeout"`
	UserAgent     string        `yaml:"user_agent"`
	MaxBodyBytes  int64         `yaml:"max_body_bytes"`
	InsecureTLS   bool          `yaml:"insecure_tls"`
	HTTPProxy     string        `yaml:"http_proxy"`
	HTTPSProxy    string        `yaml:"https_proxy"`
	NoProxy       string        `yaml:"no_proxy"`
	RespectRobots bool          `yaml:"respect_robots"`
}

// FanoutConfig bounds the signal-gathering phase
type FanoutConfig struct {
	// SourceTimeout bounds each individual adapter call
	SourceTimeout time.Duration `yaml:"source_timeout"`
	// Deadline bounds the whole fan-out; adapters still pending when it
	// elapses are abandoned and their slots filled with Unavailable
	Deadline time.Duration `yaml:"deadline"`
}

// Weights are the per-source priority weights. Tunable defaults; they
// must sum to 1.0.
type Weights struct {
	ThreatLookup      float64 `yaml:"threat_lookup"`
	FactCheck         float64 `yaml:"fact_check"`
	ContentAssessment float64 `yaml:"content_assessment"`
}

// For returns the weight configured for the given source
func (w Weights) For(source Source) float64 {
	switch source {
	case SourceThreatLookup:
		return w.ThreatLookup
	case SourceFactCheck:
		return w.FactCheck
	case SourceContentAssessment:
		return w.ContentAssessment
	default:
		return 0
	}
}

// Thresholds are the inclusive lower bounds of the verdict buckets
type Thresholds struct {
	Verified int `yaml:"verified"` // score >= Verified -> Verified
	Caution  int `yaml:"caution"`  // score >= Caution  -> Caution
	Danger   int `yaml:"danger"`   // score <  Danger   -> Danger, else Unreliable
}

// ScoringConfig holds the tunable scoring policy
type ScoringConfig struct {
	Weights    Weights    `yaml:"weights"`
	Thresholds Thresholds `yaml:"thresholds"`
}

// ThreatConfig configures the Safe Browsing threat lookup
type ThreatConfig struct {
	APIKey        string        `yaml:"api_key"`
	BaseURL       string        `yaml:"base_url"`
	Timeout       time.Duration `yaml:"timeout"`
	ClientID      string        `yaml:"client_id"`
	ClientVersion string        `yaml:"client_version"`
}

// FactCheckConfig configures the Fact Check Tools claim search
type FactCheckConfig struct {
	APIKey   string        `yaml:"api_key"`
	BaseURL  string        `yaml:"base_url"`
	Timeout  time.Duration `yaml:"timeout"`
	PageSize int           `yaml:"page_size"`
	Language string        `yaml:"language"`
}

// LLMConfig configures the generative content assessment provider
type LLMConfig struct {
	Provider        string `yaml:"provider"` // gemini, openai, ollama
	Model           string `yaml:"model"`
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"`
	Timeout         int    `yaml:"timeout"` // seconds
	MaxTokens       int    `yaml:"max_tokens"`
	MaxContentChars int    `yaml:"max_content_chars"`
}

// CacheConfig controls the report cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Dir       string        `yaml:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl"`
}

// HistoryConfig controls the optional sqlite analysis history.
// Disabled when Path is empty.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// ConcurrencyConfig controls batch processing and outbound politeness
type ConcurrencyConfig struct {
	BatchWorkers  int     `yaml:"batch_workers"`
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
}

// DefaultConfig returns the built-in defaults. Weight and threshold values
// are tunable policy, not derived from any authoritative source.
func DefaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Timeout:       10 * time.Second,
			UserAgent:     "Veracity/0.1 (+https://github.com/veracitylab/veracity)",
			MaxBodyBytes:  5 * 1024 * 1024,
			RespectRobots: true,
		},
		Fanout: FanoutConfig{
			SourceTimeout: 8 * time.Second,
			Deadline:      10 * time.Second,
		},
		Scoring: ScoringConfig{
			Weights: Weights{
				ThreatLookup:      0.5,
				FactCheck:         0.3,
				ContentAssessment: 0.2,
			},
			Thresholds: Thresholds{
				Verified: 80,
				Caution:  60,
				Danger:   30,
			},
		},
		Threat: ThreatConfig{
			BaseURL:       "https://safebrowsing.googleapis.com/v4/threatMatches:find",
			Timeout:       8 * time.Second,
			ClientID:      "veracity",
			ClientVersion: "0.1.0",
		},
		FactCheck: FactCheckConfig{
			BaseURL:  "https://factchecktools.googleapis.com/v1alpha1/claims:search",
			Timeout:  8 * time.Second,
			PageSize: 5,
			Language: "en",
		},
		LLM: LLMConfig{
			Provider:        "gemini",
			Model:           "gemini-1.5-flash-latest",
			Timeout:         30,
			MaxTokens:       1000,
			MaxContentChars: 30000,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   6 * time.Hour,
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers:  4,
			RatePerSecond: 2.0,
			Burst:         4,
		},
	}
}

// Validate checks invariants the rest of the system relies on
func (c *Config) Validate() error {
	sum := c.Scoring.Weights.ThreatLookup + c.Scoring.Weights.FactCheck + c.Scoring.Weights.ContentAssessment
	if math.Abs(sum-1.0) > 1e-9 {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.4f", sum)
	}
	t := c.Scoring.Thresholds
	if !(t.Danger < t.Caution && t.Caution < t.Verified) {
		return fmt.Errorf("verdict thresholds must be ordered danger < caution < verified, got %d/%d/%d", t.Danger, t.Caution, t.Verified)
	}
	if c.Fanout.Deadline < c.Fanout.SourceTimeout {
		return fmt.Errorf("fan-out deadline (%v) must not be shorter than the per-source timeout (%v)", c.Fanout.Deadline, c.Fanout.SourceTimeout)
	}
	return nil
}
