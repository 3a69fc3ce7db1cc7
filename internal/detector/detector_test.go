package detector

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/veridict-ai/veridict/internal/config"
	"github.com/veridict-ai/veridict/internal/inference"
	"github.com/veridict-ai/veridict/internal/textprep"
)

const (
	clickbaitText = "SHOCKING! You won't believe this amazing discovery! Click here!"
	citedText     = "According to a study published in Nature, researchers at a university found a 15% reduction in risk over 10 years."
	neutralText   = "Officials confirmed the schedule change on Tuesday afternoon."
)

// fakeModel implements ModelService with a caller-provided infer func.
type fakeModel struct {
	infer   func(ctx context.Context, text string) inference.Output
	version string
	closed  bool
}

func (f *fakeModel) Infer(ctx context.Context, text string) inference.Output {
	return f.infer(ctx, text)
}

func (f *fakeModel) Version() string { return f.version }

func (f *fakeModel) Close() error {
	f.closed = true
	return nil
}

func newTestDetector(t *testing.T, model ModelService, mutate func(cfg *config.Config)) *Detector {
	t.Helper()
	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}
	d, err := New(cfg, model, zap.NewNop(), nil)
	if err != nil {
		t.Fatalf("new detector: %v", err)
	}
	return d
}

func TestAnalyzeRejectsInvalidText(t *testing.T) {
	d := newTestDetector(t, nil, nil)

	for _, raw := range []string{"", "   ", "short"} {
		_, err := d.Analyze(context.Background(), raw)
		var verr *textprep.ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("input %q: expected ValidationError, got %v", raw, err)
		}
	}
}

func TestAnalyzeClickbaitIsFake(t *testing.T) {
	d := newTestDetector(t, nil, nil)

	res, err := d.Analyze(context.Background(), clickbaitText)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Prediction != inference.LabelFake {
		t.Fatalf("expected fake, got %s (confidence %.1f)", res.Prediction, res.Confidence)
	}
	if res.Confidence > 40 {
		t.Fatalf("expected confidence at or below the fake threshold, got %.1f", res.Confidence)
	}
	if res.ModelUsed != inference.SourceRules {
		t.Fatalf("expected rules source, got %q", res.ModelUsed)
	}
	if res.ModelVersion != "rules-only" {
		t.Fatalf("expected rules-only version, got %q", res.ModelVersion)
	}
	if !strings.Contains(res.Explanation, "fake news") {
		t.Fatalf("explanation should name the verdict, got %q", res.Explanation)
	}
	if len(res.Factors) == 0 {
		t.Fatal("expected at least one factor")
	}
}

func TestAnalyzeCitedTextIsReal(t *testing.T) {
	d := newTestDetector(t, nil, nil)

	res, err := d.Analyze(context.Background(), citedText)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Prediction != inference.LabelReal {
		t.Fatalf("expected real, got %s (confidence %.1f)", res.Prediction, res.Confidence)
	}
	if res.Confidence < 60 {
		t.Fatalf("expected confidence at or above the real threshold, got %.1f", res.Confidence)
	}
}

func TestAnalyzeNeutralIsInconclusive(t *testing.T) {
	d := newTestDetector(t, nil, nil)

	res, err := d.Analyze(context.Background(), neutralText)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.Prediction != inference.LabelInconclusive {
		t.Fatalf("expected inconclusive, got %s (confidence %.1f)", res.Prediction, res.Confidence)
	}
	if res.Confidence <= 40 || res.Confidence >= 60 {
		t.Fatalf("expected confidence strictly between thresholds, got %.1f", res.Confidence)
	}
}

func TestAnalyzeIsDeterministic(t *testing.T) {
	d := newTestDetector(t, nil, nil)

	a, err := d.Analyze(context.Background(), citedText)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	b, err := d.Analyze(context.Background(), citedText)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}

	if a.ID == b.ID {
		t.Fatal("expected distinct IDs")
	}
	if a.Prediction != b.Prediction || a.Confidence != b.Confidence {
		t.Fatalf("verdict differs: %s/%.2f vs %s/%.2f", a.Prediction, a.Confidence, b.Prediction, b.Confidence)
	}
	if a.Explanation != b.Explanation {
		t.Fatalf("explanation differs:\n%q\n%q", a.Explanation, b.Explanation)
	}
	if !reflect.DeepEqual(a.Factors, b.Factors) {
		t.Fatal("factors differ between identical runs")
	}
	if a.ModelVersion != b.ModelVersion || a.Language != b.Language || a.Truncated != b.Truncated {
		t.Fatal("metadata differs between identical runs")
	}
}

func TestAnalyzePrefersModelOutput(t *testing.T) {
	model := &fakeModel{
		version: "bert-test-v1",
		infer: func(ctx context.Context, text string) inference.Output {
			return inference.Output{
				Label:  inference.LabelReal,
				Real:   0.92,
				Fake:   0.08,
				Source: inference.SourceONNX,
			}
		},
	}
	d := newTestDetector(t, model, nil)

	// Clickbait text, but the model says real with high confidence. The
	// rule adjustments still apply on top of the model score.
	res, err := d.Analyze(context.Background(), clickbaitText)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.ModelUsed != inference.SourceONNX {
		t.Fatalf("expected onnx source, got %q", res.ModelUsed)
	}
	if res.ModelVersion != "bert-test-v1" {
		t.Fatalf("unexpected model version %q", res.ModelVersion)
	}
	if res.Prediction != inference.LabelReal {
		t.Fatalf("expected real, got %s (confidence %.1f)", res.Prediction, res.Confidence)
	}
	if res.Confidence >= 92 {
		t.Fatalf("expected clickbait adjustments to pull the score down from 92, got %.1f", res.Confidence)
	}
}

func TestAnalyzeFallsBackWhenModelUnavailable(t *testing.T) {
	model := &fakeModel{
		version: "bert-test-v1",
		infer: func(ctx context.Context, text string) inference.Output {
			return inference.Output{
				Source:      inference.SourceONNX,
				Unavailable: true,
				Reason:      "inference timeout",
			}
		},
	}
	d := newTestDetector(t, model, nil)

	res, err := d.Analyze(context.Background(), citedText)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if res.ModelUsed != inference.SourceRules {
		t.Fatalf("expected rules source after fallback, got %q", res.ModelUsed)
	}
	if res.ModelVersion != "bert-test-v1+fallback" {
		t.Fatalf("expected fallback marker, got %q", res.ModelVersion)
	}
	if res.Prediction != inference.LabelReal {
		t.Fatalf("expected the rule path to still call this real, got %s", res.Prediction)
	}
}

func TestAnalyzeSlowModelStaysWithinItsOwnBound(t *testing.T) {
	// The model enforces its own deadline and reports Unavailable; Analyze
	// must degrade, not hang.
	model := &fakeModel{
		version: "bert-test-v1",
		infer: func(ctx context.Context, text string) inference.Output {
			time.Sleep(20 * time.Millisecond)
			return inference.Output{
				Source:      inference.SourceONNX,
				Unavailable: true,
				Reason:      "inference timeout",
				Latency:     20 * time.Millisecond,
			}
		},
	}
	d := newTestDetector(t, model, nil)

	start := time.Now()
	res, err := d.Analyze(context.Background(), neutralText)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if took := time.Since(start); took > 2*time.Second {
		t.Fatalf("analyze took too long: %v", took)
	}
	if res.ModelVersion != "bert-test-v1+fallback" {
		t.Fatalf("expected fallback marker, got %q", res.ModelVersion)
	}
}

func TestDetectorCloseReleasesModel(t *testing.T) {
	model := &fakeModel{
		version: "bert-test-v1",
		infer: func(ctx context.Context, text string) inference.Output {
			return inference.Output{}
		},
	}
	d := newTestDetector(t, model, nil)
	if err := d.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !model.closed {
		t.Fatal("expected model Close to be called")
	}

	rulesOnly := newTestDetector(t, nil, nil)
	if err := rulesOnly.Close(); err != nil {
		t.Fatalf("close without model: %v", err)
	}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Scoring.FakeThreshold = 90
	if _, err := New(cfg, nil, zap.NewNop(), nil); err == nil {
		t.Fatal("expected config validation error")
	}
}
