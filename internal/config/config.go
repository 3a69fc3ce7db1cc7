package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/veridict-ai/veridict/internal/newsbert"
	"github.com/veridict-ai/veridict/internal/textprep"
	"github.com/veridict-ai/veridict/internal/verdict"
)

// envPrefix is the prefix for environment overrides, e.g.
// VERIDICT_MODEL_BUNDLE_DIR.
const envPrefix = "veridict"

// Config holds the full engine configuration.
type Config struct {
	Model     ModelConfig     `yaml:"model"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Scoring   ScoringConfig   `yaml:"scoring"`
	Sources   []string        `yaml:"sources" envconfig:"SOURCES"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	Logging   LoggingConfig   `yaml:"logging"`
}

type ModelConfig struct {
	BundleDir    string `yaml:"bundle_dir" envconfig:"MODEL_BUNDLE_DIR"`
	SeqLen       int    `yaml:"seq_len" envconfig:"MODEL_SEQ_LEN"`
	TimeoutMS    int    `yaml:"timeout_ms" envconfig:"MODEL_TIMEOUT_MS"`
	MaxSessions  int    `yaml:"max_sessions" envconfig:"MODEL_MAX_SESSIONS"`
	IntraThreads int    `yaml:"intra_threads" envconfig:"MODEL_INTRA_THREADS"`
	InterThreads int    `yaml:"inter_threads" envconfig:"MODEL_INTER_THREADS"`

	// RequireModel makes a missing or unloadable bundle fatal instead of
	// degrading to rules-only mode.
	RequireModel bool `yaml:"require_model" envconfig:"MODEL_REQUIRE_MODEL"`
}

type AnalysisConfig struct {
	MinChars         int     `yaml:"min_chars" envconfig:"ANALYSIS_MIN_CHARS"`
	MaxChars         int     `yaml:"max_chars" envconfig:"ANALYSIS_MAX_CHARS"`
	MaxWords         int     `yaml:"max_words" envconfig:"ANALYSIS_MAX_WORDS"`
	MinAlphaRatio    float64 `yaml:"min_alpha_ratio" envconfig:"ANALYSIS_MIN_ALPHA_RATIO"`
	BatchConcurrency int     `yaml:"batch_concurrency" envconfig:"ANALYSIS_BATCH_CONCURRENCY"`
	MaxBatchSize     int     `yaml:"max_batch_size" envconfig:"ANALYSIS_MAX_BATCH_SIZE"`
	TopFactors       int     `yaml:"top_factors" envconfig:"ANALYSIS_TOP_FACTORS"`
}

// AdjustmentRule mirrors one verdict.Rule in the scoring table.
type AdjustmentRule struct {
	Feature   string  `yaml:"feature"`
	Threshold float64 `yaml:"threshold"`
	Scale     float64 `yaml:"scale"`
	Delta     float64 `yaml:"delta"`
}

// FallbackWeights mirrors verdict.Weights. Signs matter: positive weights
// push toward real.
type FallbackWeights struct {
	Citation    float64 `yaml:"citation"`
	Readability float64 `yaml:"readability"`
	Clickbait   float64 `yaml:"clickbait"`
	Emotion     float64 `yaml:"emotion"`
	Bias        float64 `yaml:"bias"`
}

type ScoringConfig struct {
	RealThreshold      float64          `yaml:"real_threshold" envconfig:"SCORING_REAL_THRESHOLD"`
	FakeThreshold      float64          `yaml:"fake_threshold" envconfig:"SCORING_FAKE_THRESHOLD"`
	MaxTotalAdjustment float64          `yaml:"max_total_adjustment" envconfig:"SCORING_MAX_TOTAL_ADJUSTMENT"`
	Adjustments        []AdjustmentRule `yaml:"adjustments"`
	Fallback           FallbackWeights  `yaml:"fallback"`
}

type TelemetryConfig struct {
	Enabled  bool   `yaml:"enabled" envconfig:"TELEMETRY_ENABLED"`
	Endpoint string `yaml:"endpoint" envconfig:"TELEMETRY_ENDPOINT"`
	Protocol string `yaml:"protocol" envconfig:"TELEMETRY_PROTOCOL"` // grpc | http
	Service  string `yaml:"service" envconfig:"TELEMETRY_SERVICE"`
	Version  string `yaml:"version" envconfig:"TELEMETRY_VERSION"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOGGING_LEVEL"`   // debug | info | warn | error
	Format string `yaml:"format" envconfig:"LOGGING_FORMAT"` // json | console
}

// Load reads configuration from a YAML file, applies defaults, and overlays
// VERIDICT_* environment variables. A missing file is not an error: defaults
// plus environment apply.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyDefaults(cfg)

	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("apply environment overrides: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the configuration used when no file and no environment
// overrides are present.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	if cfg.Model.SeqLen == 0 {
		cfg.Model.SeqLen = newsbert.DefaultSeqLen
	}
	if cfg.Model.TimeoutMS == 0 {
		cfg.Model.TimeoutMS = 2000
	}
	if cfg.Model.MaxSessions == 0 {
		sessions := runtime.NumCPU()
		if sessions > 4 {
			sessions = 4
		}
		cfg.Model.MaxSessions = sessions
	}

	limits := textprep.DefaultLimits()
	if cfg.Analysis.MinChars == 0 {
		cfg.Analysis.MinChars = limits.MinChars
	}
	if cfg.Analysis.MaxChars == 0 {
		cfg.Analysis.MaxChars = limits.MaxChars
	}
	if cfg.Analysis.MaxWords == 0 {
		cfg.Analysis.MaxWords = limits.MaxWords
	}
	if cfg.Analysis.MinAlphaRatio == 0 {
		cfg.Analysis.MinAlphaRatio = limits.MinAlphaRatio
	}
	if cfg.Analysis.BatchConcurrency == 0 {
		cfg.Analysis.BatchConcurrency = 4
	}
	if cfg.Analysis.MaxBatchSize == 0 {
		cfg.Analysis.MaxBatchSize = 50
	}
	if cfg.Analysis.TopFactors == 0 {
		cfg.Analysis.TopFactors = 5
	}

	if cfg.Scoring.RealThreshold == 0 && cfg.Scoring.FakeThreshold == 0 {
		policy := verdict.DefaultPolicy()
		cfg.Scoring.RealThreshold = policy.RealThreshold
		cfg.Scoring.FakeThreshold = policy.FakeThreshold
	}
	if cfg.Scoring.MaxTotalAdjustment == 0 {
		cfg.Scoring.MaxTotalAdjustment = verdict.DefaultPolicy().MaxTotalAdjustment
	}
	if len(cfg.Scoring.Adjustments) == 0 {
		for _, r := range verdict.DefaultPolicy().Rules {
			cfg.Scoring.Adjustments = append(cfg.Scoring.Adjustments, AdjustmentRule{
				Feature:   r.Feature,
				Threshold: r.Threshold,
				Scale:     r.Scale,
				Delta:     r.Delta,
			})
		}
	}
	if (cfg.Scoring.Fallback == FallbackWeights{}) {
		w := verdict.DefaultWeights()
		cfg.Scoring.Fallback = FallbackWeights{
			Citation:    w.Citation,
			Readability: w.Readability,
			Clickbait:   w.Clickbait,
			Emotion:     w.Emotion,
			Bias:        w.Bias,
		}
	}

	if len(cfg.Sources) == 0 {
		cfg.Sources = []string{
			"https://www.snopes.com",
			"https://www.factcheck.org",
			"https://www.politifact.com",
			"https://www.reuters.com/fact-check",
			"https://apnews.com/hub/ap-fact-check",
		}
	}

	if cfg.Telemetry.Protocol == "" {
		cfg.Telemetry.Protocol = "grpc"
	}
	if cfg.Telemetry.Service == "" {
		cfg.Telemetry.Service = "veridict"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

// Limits converts the analysis section into textprep limits.
func (a AnalysisConfig) Limits() textprep.Limits {
	return textprep.Limits{
		MinChars:      a.MinChars,
		MaxChars:      a.MaxChars,
		MaxWords:      a.MaxWords,
		MinAlphaRatio: a.MinAlphaRatio,
	}
}

// Policy converts the scoring section into a verdict policy.
func (s ScoringConfig) Policy() verdict.Policy {
	rules := make([]verdict.Rule, 0, len(s.Adjustments))
	for _, r := range s.Adjustments {
		rules = append(rules, verdict.Rule{
			Feature:   r.Feature,
			Threshold: r.Threshold,
			Scale:     r.Scale,
			Delta:     r.Delta,
		})
	}
	return verdict.Policy{
		RealThreshold:      s.RealThreshold,
		FakeThreshold:      s.FakeThreshold,
		MaxTotalAdjustment: s.MaxTotalAdjustment,
		Rules:              rules,
	}
}

// Weights converts the fallback section into verdict weights.
func (s ScoringConfig) Weights() verdict.Weights {
	return verdict.Weights{
		Citation:    s.Fallback.Citation,
		Readability: s.Fallback.Readability,
		Clickbait:   s.Fallback.Clickbait,
		Emotion:     s.Fallback.Emotion,
		Bias:        s.Fallback.Bias,
	}
}

// Runtime converts the model section into the ONNX runtime settings.
func (m ModelConfig) Runtime() newsbert.Runtime {
	return newsbert.Runtime{
		MaxSessions:  m.MaxSessions,
		IntraThreads: m.IntraThreads,
		InterThreads: m.InterThreads,
		Timeout:      time.Duration(m.TimeoutMS) * time.Millisecond,
	}
}
