package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/veridict-ai/veridict/internal/features"
)

// Validate checks the loaded config for required fields and safe values.
// Any failure here is fatal at startup.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.New("config is nil")
	}

	if err := validateModel(cfg.Model); err != nil {
		return err
	}
	if err := validateAnalysis(cfg.Analysis); err != nil {
		return err
	}
	if err := validateScoring(cfg.Scoring); err != nil {
		return err
	}
	if err := validateSources(cfg.Sources); err != nil {
		return err
	}
	if err := validateTelemetry(cfg.Telemetry); err != nil {
		return err
	}
	return validateLogging(cfg.Logging)
}

func validateModel(m ModelConfig) error {
	if m.SeqLen <= 0 {
		return fmt.Errorf("model.seq_len must be positive, got %d", m.SeqLen)
	}
	if m.TimeoutMS <= 0 {
		return fmt.Errorf("model.timeout_ms must be positive, got %d", m.TimeoutMS)
	}
	if m.MaxSessions <= 0 {
		return fmt.Errorf("model.max_sessions must be positive, got %d", m.MaxSessions)
	}
	if m.IntraThreads < 0 || m.InterThreads < 0 {
		return errors.New("model thread counts must not be negative")
	}
	if m.RequireModel && strings.TrimSpace(m.BundleDir) == "" {
		return errors.New("model.require_model is set but model.bundle_dir is empty")
	}
	return nil
}

func validateAnalysis(a AnalysisConfig) error {
	if a.MinChars <= 0 {
		return fmt.Errorf("analysis.min_chars must be positive, got %d", a.MinChars)
	}
	if a.MaxChars < a.MinChars {
		return fmt.Errorf("analysis.max_chars (%d) must be at least min_chars (%d)", a.MaxChars, a.MinChars)
	}
	if a.MaxWords <= 0 {
		return fmt.Errorf("analysis.max_words must be positive, got %d", a.MaxWords)
	}
	if a.MinAlphaRatio < 0 || a.MinAlphaRatio > 1 {
		return fmt.Errorf("analysis.min_alpha_ratio must be within [0,1], got %g", a.MinAlphaRatio)
	}
	if a.BatchConcurrency <= 0 {
		return fmt.Errorf("analysis.batch_concurrency must be positive, got %d", a.BatchConcurrency)
	}
	if a.MaxBatchSize <= 0 {
		return fmt.Errorf("analysis.max_batch_size must be positive, got %d", a.MaxBatchSize)
	}
	if a.TopFactors <= 0 {
		return fmt.Errorf("analysis.top_factors must be positive, got %d", a.TopFactors)
	}
	return nil
}

func validateScoring(s ScoringConfig) error {
	if s.FakeThreshold < 0 || s.RealThreshold > 100 {
		return fmt.Errorf("scoring thresholds must lie within [0,100], got fake=%g real=%g",
			s.FakeThreshold, s.RealThreshold)
	}
	if s.FakeThreshold >= s.RealThreshold {
		return fmt.Errorf("scoring.fake_threshold (%g) must be below real_threshold (%g)",
			s.FakeThreshold, s.RealThreshold)
	}
	if s.MaxTotalAdjustment <= 0 {
		return fmt.Errorf("scoring.max_total_adjustment must be positive, got %g", s.MaxTotalAdjustment)
	}

	for i, r := range s.Adjustments {
		if !features.Valid(r.Feature) {
			return fmt.Errorf("scoring.adjustments[%d] references unknown feature %q", i, r.Feature)
		}
		if r.Scale <= r.Threshold {
			return fmt.Errorf("scoring.adjustments[%d] (%s): scale (%g) must exceed threshold (%g)",
				i, r.Feature, r.Scale, r.Threshold)
		}
		if r.Delta == 0 {
			return fmt.Errorf("scoring.adjustments[%d] (%s): delta must not be zero", i, r.Feature)
		}
	}
	return nil
}

func validateSources(sources []string) error {
	for i, s := range sources {
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("sources[%d] is not a valid URL: %q", i, s)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("sources[%d] must be http or https, got %q", i, s)
		}
	}
	return nil
}

func validateTelemetry(t TelemetryConfig) error {
	if !t.Enabled {
		return nil
	}
	if strings.TrimSpace(t.Endpoint) == "" {
		return errors.New("telemetry enabled but endpoint is empty")
	}
	switch strings.ToLower(strings.TrimSpace(t.Protocol)) {
	case "grpc", "http":
		return nil
	default:
		return fmt.Errorf("telemetry.protocol must be grpc or http, got %q", t.Protocol)
	}
}

func validateLogging(l LoggingConfig) error {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error, got %q", l.Level)
	}
	switch strings.ToLower(strings.TrimSpace(l.Format)) {
	case "json", "console":
		return nil
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", l.Format)
	}
}
