package verdict

import (
	"math"
	"testing"

	"github.com/veridict-ai/veridict/internal/features"
	"github.com/veridict-ai/veridict/internal/inference"
)

func neutralVector() features.Vector {
	v := make(features.Vector, len(features.Names()))
	for _, n := range features.Names() {
		v[n] = 0
	}
	v[features.FleschReadingEase] = 50
	return v
}

func TestFallbackNeutralIsMidpoint(t *testing.T) {
	f := NewFallback(DefaultWeights())
	out := f.Classify(neutralVector())

	if out.Real != 0.5 {
		t.Fatalf("expected P(real) 0.5 on neutral features, got %v", out.Real)
	}
	if out.Label != inference.LabelReal {
		t.Fatalf("midpoint must label real, got %v", out.Label)
	}
	if out.Source != inference.SourceRules {
		t.Fatalf("expected rules source, got %q", out.Source)
	}
	if out.Unavailable {
		t.Fatal("fallback must never be unavailable")
	}
}

func TestFallbackClickbaitPushesFake(t *testing.T) {
	f := NewFallback(DefaultWeights())
	v := neutralVector()
	v[features.ClickbaitScore] = 60
	v[features.EmotionalIntensity] = 22.2

	out := f.Classify(v)
	if out.Label != inference.LabelFake {
		t.Fatalf("expected fake, got %v", out.Label)
	}
	if out.Real >= 0.3 {
		t.Fatalf("expected P(real) well below 0.3, got %v", out.Real)
	}
	if math.Abs(out.Real+out.Fake-1) > 1e-12 {
		t.Fatalf("probabilities must sum to 1, got %v + %v", out.Real, out.Fake)
	}
}

func TestFallbackCitationsPushReal(t *testing.T) {
	f := NewFallback(DefaultWeights())
	v := neutralVector()
	v[features.CitationCount] = 2

	out := f.Classify(v)
	if out.Label != inference.LabelReal {
		t.Fatalf("expected real, got %v", out.Label)
	}
	// 0.35 * min(100, 2*25) / 100 above the prior.
	if math.Abs(out.Real-0.675) > 1e-9 {
		t.Fatalf("expected P(real) 0.675, got %v", out.Real)
	}
}

func TestFallbackCitationSaturates(t *testing.T) {
	f := NewFallback(DefaultWeights())
	v := neutralVector()
	v[features.CitationCount] = 50

	out := f.Classify(v)
	if math.Abs(out.Real-0.85) > 1e-9 {
		t.Fatalf("citation term must saturate at 100, got P(real) %v", out.Real)
	}
}

func TestCombineNoRulesFired(t *testing.T) {
	c := NewCombiner(DefaultPolicy())
	out := c.Combine(inference.Output{Real: 0.5, Fake: 0.5, Source: inference.SourceRules}, neutralVector())

	if out.Confidence != 50 {
		t.Fatalf("expected confidence 50, got %v", out.Confidence)
	}
	if out.Base != 50 {
		t.Fatalf("expected base 50, got %v", out.Base)
	}
	if out.Label != inference.LabelInconclusive {
		t.Fatalf("expected inconclusive, got %v", out.Label)
	}
	if len(out.Adjustments) != 0 {
		t.Fatalf("expected no adjustments, got %v", out.Adjustments)
	}
}

func TestCombineProportionalSeverity(t *testing.T) {
	c := NewCombiner(DefaultPolicy())
	v := neutralVector()
	v[features.ClickbaitScore] = 75 // halfway between threshold 50 and scale 100

	out := c.Combine(inference.Output{Real: 0.5, Source: "onnx"}, v)
	if math.Abs(out.Confidence-42.5) > 1e-9 {
		t.Fatalf("expected 50 - 7.5, got %v", out.Confidence)
	}
	if len(out.Adjustments) != 1 {
		t.Fatalf("expected one adjustment, got %d", len(out.Adjustments))
	}
	adj := out.Adjustments[0]
	if adj.Feature != features.ClickbaitScore || math.Abs(adj.Delta+7.5) > 1e-9 {
		t.Fatalf("unexpected adjustment %+v", adj)
	}
	if out.Source != "onnx" {
		t.Fatalf("source must pass through, got %q", out.Source)
	}
}

func TestCombineSeverityCapsAtScale(t *testing.T) {
	c := NewCombiner(DefaultPolicy())
	v := neutralVector()
	v[features.CitationCount] = 10 // far beyond the saturation scale of 3

	out := c.Combine(inference.Output{Real: 0.5, Source: inference.SourceRules}, v)
	if math.Abs(out.Confidence-60) > 1e-9 {
		t.Fatalf("expected full +10 citation bonus, got %v", out.Confidence)
	}
}

func TestCombineTotalBoundTruncatesInOrder(t *testing.T) {
	p := DefaultPolicy()
	p.MaxTotalAdjustment = 20
	c := NewCombiner(p)

	v := neutralVector()
	v[features.ClickbaitScore] = 100     // -15
	v[features.EmotionalIntensity] = 100 // -10, truncated to -5
	v[features.TotalBiasScore] = 100     // -8, truncated to 0 and dropped

	out := c.Combine(inference.Output{Real: 0.5, Source: inference.SourceRules}, v)
	if math.Abs(out.Confidence-30) > 1e-9 {
		t.Fatalf("expected 50 - 20, got %v", out.Confidence)
	}
	if len(out.Adjustments) != 2 {
		t.Fatalf("expected 2 recorded adjustments, got %d: %v", len(out.Adjustments), out.Adjustments)
	}
	if math.Abs(out.Adjustments[1].Delta+5) > 1e-9 {
		t.Fatalf("second adjustment must truncate to -5, got %v", out.Adjustments[1].Delta)
	}
}

func TestCombineLabelBoundaries(t *testing.T) {
	c := NewCombiner(DefaultPolicy())
	v := neutralVector()

	cases := []struct {
		pReal float64
		want  inference.Label
	}{
		{0.60, inference.LabelReal},
		{0.40, inference.LabelFake},
		{0.5999, inference.LabelInconclusive},
		{0.4001, inference.LabelInconclusive},
		{0.95, inference.LabelReal},
		{0.05, inference.LabelFake},
	}
	for _, tc := range cases {
		out := c.Combine(inference.Output{Real: tc.pReal, Source: inference.SourceRules}, v)
		if out.Label != tc.want {
			t.Fatalf("P(real)=%v: expected %v, got %v (confidence %v)",
				tc.pReal, tc.want, out.Label, out.Confidence)
		}
	}
}

func TestCombineConfidenceStaysInRange(t *testing.T) {
	c := NewCombiner(DefaultPolicy())
	v := neutralVector()
	v[features.ClickbaitScore] = 100
	v[features.EmotionalIntensity] = 100
	v[features.TotalBiasScore] = 100

	out := c.Combine(inference.Output{Real: 0.05, Source: inference.SourceRules}, v)
	if out.Confidence < 0 || out.Confidence > 100 {
		t.Fatalf("confidence out of range: %v", out.Confidence)
	}
	if out.Label != inference.LabelFake {
		t.Fatalf("expected fake, got %v", out.Label)
	}
}
