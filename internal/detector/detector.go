package detector

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/veridict-ai/veridict/internal/config"
	"github.com/veridict-ai/veridict/internal/explain"
	"github.com/veridict-ai/veridict/internal/features"
	"github.com/veridict-ai/veridict/internal/inference"
	"github.com/veridict-ai/veridict/internal/logging"
	"github.com/veridict-ai/veridict/internal/telemetry"
	"github.com/veridict-ai/veridict/internal/textprep"
	"github.com/veridict-ai/veridict/internal/verdict"
)

const previewLen = 80

// ModelService is the inference backend the detector drives. A nil
// ModelService puts the detector in permanent rules-only mode.
type ModelService interface {
	Infer(ctx context.Context, text string) inference.Output
	Version() string
	Close() error
}

// Result is the complete outcome of one analysis.
type Result struct {
	ID          string           `json:"id"`
	Prediction  inference.Label  `json:"prediction"`
	Confidence  float64          `json:"confidence"`
	Explanation string           `json:"explanation"`
	Factors     []explain.Factor `json:"factors"`
	Sources     []string         `json:"sources"`

	Timestamp    time.Time `json:"timestamp"`
	ModelVersion string    `json:"model_version"`
	ModelUsed    string    `json:"model_used"`

	Language       string        `json:"language,omitempty"`
	Truncated      bool          `json:"truncated"`
	ProcessingTime time.Duration `json:"processing_time"`
}

// Detector runs the full analysis pipeline: normalize, extract features,
// classify (model or rules), combine, explain.
type Detector struct {
	limits    textprep.Limits
	extractor *features.Extractor
	fallback  *verdict.Fallback
	combiner  *verdict.Combiner
	explainer *explain.Generator

	model   ModelService
	sources []string

	batchConcurrency int
	maxBatchSize     int

	log *zap.Logger
	tel *telemetry.Provider
}

// New wires the pipeline from config. The model is injected so callers can
// run rules-only (nil) or supply a fake in tests.
func New(cfg *config.Config, model ModelService, log *zap.Logger, tel *telemetry.Provider) (*Detector, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if log == nil {
		log = zap.NewNop()
	}

	extractor, err := features.NewExtractor()
	if err != nil {
		return nil, err
	}

	sources := make([]string, len(cfg.Sources))
	copy(sources, cfg.Sources)

	return &Detector{
		limits:           cfg.Analysis.Limits(),
		extractor:        extractor,
		fallback:         verdict.NewFallback(cfg.Scoring.Weights()),
		combiner:         verdict.NewCombiner(cfg.Scoring.Policy()),
		explainer:        explain.NewGenerator(cfg.Analysis.TopFactors),
		model:            model,
		sources:          sources,
		batchConcurrency: cfg.Analysis.BatchConcurrency,
		maxBatchSize:     cfg.Analysis.MaxBatchSize,
		log:              log,
		tel:              tel,
	}, nil
}

// Analyze classifies one text. The only error it returns is
// *textprep.ValidationError; model trouble degrades to the rule-based
// fallback instead of failing the call.
func (d *Detector) Analyze(ctx context.Context, text string) (*Result, error) {
	start := time.Now()

	ctx, span := d.tel.Tracer().Start(ctx, "veridict.analyze")
	defer span.End()

	nt, err := textprep.Normalize(text, d.limits)
	if err != nil {
		return nil, err
	}
	if nt.Lang != "" && nt.Lang != "en" {
		d.log.Debug("non-english input",
			zap.String("lang", nt.Lang),
			zap.Float64("lang_confidence", nt.LangConfidence),
			zap.String("preview", logging.Preview(nt.Clean, previewLen)))
	}

	// Model inference and feature extraction run concurrently; both read
	// the same immutable normalized text.
	var modelCh chan inference.Output
	if d.model != nil {
		modelCh = make(chan inference.Output, 1)
		go func() {
			modelCh <- d.model.Infer(ctx, nt.Clean)
		}()
	}

	vec := d.extractor.Extract(nt)

	base, fellBack := d.baseOutput(modelCh, vec)
	combined := d.combiner.Combine(base, vec)
	explanation, factors := d.explainer.Explain(combined, vec)

	res := &Result{
		ID:             uuid.NewString(),
		Prediction:     combined.Label,
		Confidence:     combined.Confidence,
		Explanation:    explanation,
		Factors:        factors,
		Sources:        d.sources,
		Timestamp:      time.Now().UTC(),
		ModelVersion:   d.modelVersion(fellBack),
		ModelUsed:      combined.Source,
		Language:       nt.Lang,
		Truncated:      nt.Truncated,
		ProcessingTime: time.Since(start),
	}

	durMs := float64(res.ProcessingTime) / float64(time.Millisecond)
	span.SetAttributes(telemetry.SafeAttributes(map[string]interface{}{
		"veridict.prediction": string(res.Prediction),
		"veridict.confidence": res.Confidence,
		"veridict.model_used": res.ModelUsed,
		"veridict.fallback":   fellBack,
		"veridict.words":      nt.Words,
	})...)
	d.tel.RecordPrediction(string(res.Prediction), res.ModelUsed, durMs, fellBack)

	d.log.Debug("analyzed text",
		zap.String("id", res.ID),
		zap.String("prediction", string(res.Prediction)),
		zap.Float64("confidence", res.Confidence),
		zap.String("model_used", res.ModelUsed),
		zap.Bool("fallback", fellBack),
		zap.Duration("took", res.ProcessingTime),
		zap.String("preview", logging.Preview(nt.Clean, previewLen)))

	return res, nil
}

// baseOutput waits for the model result when a model is wired, falling back
// to the rule-based classifier when the model produced nothing usable.
func (d *Detector) baseOutput(modelCh chan inference.Output, vec features.Vector) (inference.Output, bool) {
	if modelCh == nil {
		return d.fallback.Classify(vec), false
	}
	out := <-modelCh
	if !out.Unavailable {
		return out, false
	}
	d.log.Warn("model unavailable, using rule-based fallback",
		zap.String("reason", out.Reason),
		zap.Duration("model_latency", out.Latency))
	return d.fallback.Classify(vec), true
}

func (d *Detector) modelVersion(fellBack bool) string {
	if d.model == nil {
		return "rules-only"
	}
	v := d.model.Version()
	if fellBack {
		return v + "+fallback"
	}
	return v
}

// Close releases the model backend, if any.
func (d *Detector) Close() error {
	if d.model == nil {
		return nil
	}
	return d.model.Close()
}
