package explain

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/lo"

	"github.com/veridict-ai/veridict/internal/features"
	"github.com/veridict-ai/veridict/internal/inference"
	"github.com/veridict-ai/veridict/internal/verdict"
)

// Impact values for Factor.
const (
	ImpactPositive = "positive"
	ImpactNegative = "negative"
	ImpactNeutral  = "neutral"
)

// Factor is one human-readable contributor to the verdict.
type Factor struct {
	Name        string  `json:"name"`
	Score       float64 `json:"score"`
	Impact      string  `json:"impact"`
	Description string  `json:"description"`
}

// DefaultTopFactors bounds the factor list when no configuration overrides it.
const DefaultTopFactors = 5

// Flesch boundaries for the neutral readability factors.
const (
	complexFleschBelow = 30.0
	simpleFleschAbove  = 90.0
)

// Generator renders verdicts into factors and a narrative string. Output is
// deterministic: identical inputs produce byte-identical text.
type Generator struct {
	topN int
}

func NewGenerator(topN int) *Generator {
	if topN <= 0 {
		topN = DefaultTopFactors
	}
	return &Generator{topN: topN}
}

// descriptor renders the display name and description for one adjustment
// feature.
type descriptor struct {
	name     string
	describe func(v features.Vector) string
}

var descriptors = map[string]descriptor{
	features.ClickbaitScore: {
		name: "Clickbait Language",
		describe: func(v features.Vector) string {
			return fmt.Sprintf("Contains clickbait phrases (score: %.1f/100)", v[features.ClickbaitScore])
		},
	},
	features.EmotionalIntensity: {
		name: "Emotional Language",
		describe: func(v features.Vector) string {
			return fmt.Sprintf("High emotional language intensity (%.1f%% of words)", v[features.EmotionalIntensity])
		},
	},
	features.CitationCount: {
		name: "Source Citations",
		describe: func(v features.Vector) string {
			return fmt.Sprintf("Contains %.0f citations and %.0f URLs",
				v[features.CitationCount], v[features.URLCount])
		},
	},
	features.TotalBiasScore: {
		name: "Bias Indicators",
		describe: func(v features.Vector) string {
			return fmt.Sprintf("Contains biased language patterns (score: %.1f/100)", v[features.TotalBiasScore])
		},
	},
}

// Explain builds the ranked factor list and narrative for a combined verdict.
func (g *Generator) Explain(res verdict.Combined, v features.Vector) (string, []Factor) {
	type ranked struct {
		factor Factor
		weight float64
		order  int
	}

	rankedFactors := lo.Map(res.Adjustments, func(adj verdict.Applied, _ int) ranked {
		impact := ImpactNegative
		if adj.Delta > 0 {
			impact = ImpactPositive
		}
		d, ok := descriptors[adj.Feature]
		if !ok {
			d = genericDescriptor(adj.Feature)
		}
		return ranked{
			factor: Factor{
				Name:        d.name,
				Score:       adj.Value,
				Impact:      impact,
				Description: d.describe(v),
			},
			weight: abs(adj.Delta),
			order:  features.Rank(adj.Feature),
		}
	})

	// Strongest contribution first; equal contributions keep feature
	// declaration order.
	sort.SliceStable(rankedFactors, func(i, j int) bool {
		if rankedFactors[i].weight != rankedFactors[j].weight {
			return rankedFactors[i].weight > rankedFactors[j].weight
		}
		return rankedFactors[i].order < rankedFactors[j].order
	})

	factors := lo.Map(rankedFactors, func(r ranked, _ int) Factor { return r.factor })
	factors = append(factors, readabilityFactors(v)...)
	if len(factors) > g.topN {
		factors = factors[:g.topN]
	}

	return g.narrative(res, factors), factors
}

// readabilityFactors are informational only: they describe the text without
// moving the score.
func readabilityFactors(v features.Vector) []Factor {
	flesch := v[features.FleschReadingEase]
	switch {
	case flesch < complexFleschBelow:
		return []Factor{{
			Name:        "Complex Language",
			Score:       100 - flesch,
			Impact:      ImpactNeutral,
			Description: fmt.Sprintf("Text is difficult to read (Flesch score: %.1f)", flesch),
		}}
	case flesch > simpleFleschAbove:
		return []Factor{{
			Name:        "Very Simple Language",
			Score:       flesch,
			Impact:      ImpactNeutral,
			Description: fmt.Sprintf("Text is very easy to read (Flesch score: %.1f)", flesch),
		}}
	}
	return nil
}

func (g *Generator) narrative(res verdict.Combined, factors []Factor) string {
	var b strings.Builder

	certainty := res.Confidence
	switch res.Label {
	case inference.LabelFake:
		certainty = 100 - res.Confidence
		fmt.Fprintf(&b, "This text appears to be fake news with %.1f%% confidence.", certainty)
	case inference.LabelReal:
		fmt.Fprintf(&b, "This text appears to be legitimate news with %.1f%% confidence.", certainty)
	default:
		if 100-res.Confidence > certainty {
			certainty = 100 - res.Confidence
		}
		fmt.Fprintf(&b, "The analysis is inconclusive with %.1f%% confidence.", certainty)
	}

	concerns := lo.Filter(factors, func(f Factor, _ int) bool { return f.Impact == ImpactNegative })
	if len(concerns) > 0 {
		if len(concerns) > 2 {
			concerns = concerns[:2]
		}
		names := lo.Map(concerns, func(f Factor, _ int) string { return strings.ToLower(f.Name) })
		fmt.Fprintf(&b, " Key concerns include %s.", strings.Join(names, ", "))
	}

	positives := lo.Filter(factors, func(f Factor, _ int) bool { return f.Impact == ImpactPositive })
	if len(positives) > 0 {
		fmt.Fprintf(&b, " Positive indicators include %s.", strings.ToLower(positives[0].Name))
	}

	return b.String()
}

func genericDescriptor(feature string) descriptor {
	words := strings.Split(feature, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	name := strings.Join(words, " ")
	return descriptor{
		name: name,
		describe: func(v features.Vector) string {
			return fmt.Sprintf("%s is elevated (value: %.1f)", name, v[feature])
		},
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
