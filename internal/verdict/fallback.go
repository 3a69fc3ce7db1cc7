package verdict

import (
	"math"

	"github.com/veridict-ai/veridict/internal/features"
	"github.com/veridict-ai/veridict/internal/inference"
)

// Weights are the signed coefficients of the rule-based classifier. Positive
// weights push toward a real verdict, negative toward fake. All of them are
// configurable; the defaults below are the tuned production values.
type Weights struct {
	Citation    float64
	Readability float64
	Clickbait   float64
	Emotion     float64
	Bias        float64
}

// DefaultWeights returns the standard fallback coefficients.
func DefaultWeights() Weights {
	return Weights{
		Citation:    0.35,
		Readability: 0.10,
		Clickbait:   -0.45,
		Emotion:     -0.30,
		Bias:        -0.25,
	}
}

// citationSaturation caps the citation contribution: beyond four markers
// additional citations add nothing.
const citationSaturation = 25.0

// Fallback scores a feature vector without any model. It always produces a
// usable output, which is what makes it the terminal fallback of the
// pipeline.
type Fallback struct {
	w Weights
}

func NewFallback(w Weights) *Fallback {
	return &Fallback{w: w}
}

// Classify maps the feature vector to real/fake probabilities. Each term is
// on the 0-100 feature scale; the weighted sum shifts a neutral 0.5 prior by
// up to one full probability unit.
func (f *Fallback) Classify(v features.Vector) inference.Output {
	citation := math.Min(100, v[features.CitationCount]*citationSaturation)

	realSignal := f.w.Citation*citation +
		f.w.Readability*(v[features.FleschReadingEase]-50) +
		f.w.Clickbait*v[features.ClickbaitScore] +
		f.w.Emotion*v[features.EmotionalIntensity] +
		f.w.Bias*v[features.TotalBiasScore]

	pReal := clamp01(0.5 + realSignal/100)

	label := inference.LabelFake
	if pReal >= 0.5 {
		label = inference.LabelReal
	}
	return inference.Output{
		Label:  label,
		Real:   pReal,
		Fake:   1 - pReal,
		Source: inference.SourceRules,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
