package verdict

import (
	"github.com/veridict-ai/veridict/internal/features"
	"github.com/veridict-ai/veridict/internal/inference"
)

// Rule is one confidence adjustment: when the named feature exceeds
// Threshold, a delta proportional to how far it sits between Threshold and
// Scale is applied. Delta is the signed cap reached when the feature hits
// Scale.
type Rule struct {
	Feature   string
	Threshold float64
	Scale     float64
	Delta     float64
}

// Policy holds the full combination configuration: verdict thresholds, the
// ordered adjustment table, and the total adjustment bound.
type Policy struct {
	RealThreshold      float64
	FakeThreshold      float64
	MaxTotalAdjustment float64
	Rules              []Rule
}

// DefaultPolicy returns the standard thresholds and adjustment table. Rule
// order matters: when the total bound truncates, later rules lose first.
func DefaultPolicy() Policy {
	return Policy{
		RealThreshold:      60,
		FakeThreshold:      40,
		MaxTotalAdjustment: 30,
		Rules: []Rule{
			{Feature: features.ClickbaitScore, Threshold: 50, Scale: 100, Delta: -15},
			{Feature: features.EmotionalIntensity, Threshold: 50, Scale: 100, Delta: -10},
			{Feature: features.CitationCount, Threshold: 0, Scale: 3, Delta: 10},
			{Feature: features.TotalBiasScore, Threshold: 40, Scale: 100, Delta: -8},
		},
	}
}

// Applied records one adjustment that actually changed the score, in
// application order.
type Applied struct {
	Feature string
	Value   float64
	Delta   float64
}

// Combined is the final verdict: Confidence is on the real scale, so high
// values mean likely real and low values likely fake.
type Combined struct {
	Label       inference.Label
	Confidence  float64
	Base        float64
	Adjustments []Applied
	Source      string
}

// Combiner applies the adjustment policy to a base classification.
type Combiner struct {
	p Policy
}

func NewCombiner(p Policy) *Combiner {
	return &Combiner{p: p}
}

// Combine turns a base output (model or fallback, [0,1] probabilities) into
// the final [0,100] verdict. The adjustment sum is bounded by
// MaxTotalAdjustment; the rule that would overflow the bound is truncated to
// the remaining headroom, keeping the result order-deterministic.
func (c *Combiner) Combine(base inference.Output, v features.Vector) Combined {
	score := base.Real * 100

	var applied []Applied
	total := 0.0
	for _, r := range c.p.Rules {
		val := v[r.Feature]
		if val <= r.Threshold || r.Scale <= r.Threshold {
			continue
		}
		severity := (val - r.Threshold) / (r.Scale - r.Threshold)
		if severity > 1 {
			severity = 1
		}
		delta := r.Delta * severity

		if total+delta > c.p.MaxTotalAdjustment {
			delta = c.p.MaxTotalAdjustment - total
		} else if total+delta < -c.p.MaxTotalAdjustment {
			delta = -c.p.MaxTotalAdjustment - total
		}
		if delta == 0 {
			continue
		}
		total += delta
		applied = append(applied, Applied{Feature: r.Feature, Value: val, Delta: delta})
	}

	conf := clamp100(score + total)

	label := inference.LabelInconclusive
	switch {
	case conf >= c.p.RealThreshold:
		label = inference.LabelReal
	case conf <= c.p.FakeThreshold:
		label = inference.LabelFake
	}

	return Combined{
		Label:       label,
		Confidence:  conf,
		Base:        score,
		Adjustments: applied,
		Source:      base.Source,
	}
}

func clamp100(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
