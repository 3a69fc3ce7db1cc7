package features

import (
	"math"
	"reflect"
	"testing"

	"github.com/veridict-ai/veridict/internal/textprep"
)

func mustNormalize(t *testing.T, raw string) textprep.NormalizedText {
	t.Helper()
	nt, err := textprep.Normalize(raw, textprep.DefaultLimits())
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return nt
}

func mustExtractor(t *testing.T) *Extractor {
	t.Helper()
	e, err := NewExtractor()
	if err != nil {
		t.Fatalf("new extractor: %v", err)
	}
	return e
}

func TestExtractProducesFullSchema(t *testing.T) {
	e := mustExtractor(t)
	v := e.Extract(mustNormalize(t, "Officials confirmed the schedule change on Tuesday afternoon."))

	if len(v) != len(Names()) {
		t.Fatalf("expected %d features, got %d", len(Names()), len(v))
	}
	for _, name := range Names() {
		val, ok := v[name]
		if !ok {
			t.Fatalf("missing feature %q", name)
		}
		if math.IsNaN(val) || math.IsInf(val, 0) {
			t.Fatalf("feature %q is not finite: %v", name, val)
		}
	}
}

func TestExtractClickbaitHeavy(t *testing.T) {
	e := mustExtractor(t)
	v := e.Extract(mustNormalize(t, "SHOCKING! You won't believe this amazing discovery! Click here!"))

	// Four phrase hits plus both structural components.
	if got := v[ClickbaitScore]; got != 60 {
		t.Fatalf("expected clickbait_score 60, got %v", got)
	}
	if v[HasClickbait] != 1 {
		t.Fatal("expected has_clickbait to fire")
	}
	if v[TotalEmotionalWords] != 2 {
		t.Fatalf("expected 2 emotional words, got %v", v[TotalEmotionalWords])
	}
	if v[PositiveEmotionScore] != 20 || v[NegativeEmotionScore] != 20 {
		t.Fatalf("expected one positive and one negative hit, got %v / %v",
			v[PositiveEmotionScore], v[NegativeEmotionScore])
	}
	if v[ExclamationDensity] <= 0.05 {
		t.Fatalf("expected dense exclamations, got %v", v[ExclamationDensity])
	}
	if v[CapsDensity] <= 0.1 {
		t.Fatalf("expected dense caps, got %v", v[CapsDensity])
	}
}

func TestExtractCitationMarkers(t *testing.T) {
	e := mustExtractor(t)
	v := e.Extract(mustNormalize(t,
		"According to a study published in Nature, researchers at a university found a 15% reduction in risk over 10 years."))

	// "according to" and "study"; "research" must not fire inside
	// "researchers".
	if got := v[CitationCount]; got != 2 {
		t.Fatalf("expected citation_count 2, got %v", got)
	}
	if v[HasSources] != 1 {
		t.Fatal("expected has_sources to fire")
	}
	if v[ClickbaitScore] != 0 {
		t.Fatalf("expected no clickbait, got %v", v[ClickbaitScore])
	}
}

func TestExtractWordBoundaries(t *testing.T) {
	e := mustExtractor(t)

	v := e.Extract(mustNormalize(t, "The discovery of secretions surprised nobody involved."))
	if v[ClickbaitScore] != 0 {
		t.Fatalf("embedded phrases must not match, got clickbait_score %v", v[ClickbaitScore])
	}

	v = e.Extract(mustNormalize(t, "They tried to discover the secret behind the scheme."))
	if v[ClickbaitScore] != 20 {
		t.Fatalf("expected two clickbait hits, got score %v", v[ClickbaitScore])
	}
}

func TestExtractURLCount(t *testing.T) {
	e := mustExtractor(t)
	v := e.Extract(mustNormalize(t, "Full details are available at https://example.com/report for anyone interested."))

	if v[URLCount] != 1 {
		t.Fatalf("expected url_count 1, got %v", v[URLCount])
	}
	if v[HasSources] != 1 {
		t.Fatal("expected has_sources to fire on a URL")
	}
}

func TestExtractBiasIndicators(t *testing.T) {
	e := mustExtractor(t)
	v := e.Extract(mustNormalize(t,
		"Everyone knows the media always lies and obviously nothing they print is ever true."))

	if v[AbsoluteTermsCount] != 1 {
		t.Fatalf("expected 1 absolute term, got %v", v[AbsoluteTermsCount])
	}
	if v[LoadedLanguageCount] != 1 {
		t.Fatalf("expected 1 loaded term, got %v", v[LoadedLanguageCount])
	}
	if v[GeneralizationsCount] != 1 {
		t.Fatalf("expected 1 generalization, got %v", v[GeneralizationsCount])
	}
	if v[TotalBiasScore] != 15 {
		t.Fatalf("expected total_bias_score 15, got %v", v[TotalBiasScore])
	}
	if v[HasBiasIndicators] != 0 {
		t.Fatal("has_bias_indicators must not fire at exactly the floor")
	}
}

func TestExtractSentenceStats(t *testing.T) {
	e := mustExtractor(t)
	v := e.Extract(mustNormalize(t, "One two three. One two three four five. One two three four."))

	if v[SentenceCount] != 3 {
		t.Fatalf("expected 3 sentences, got %v", v[SentenceCount])
	}
	if v[AvgSentenceLength] != 4 {
		t.Fatalf("expected avg length 4, got %v", v[AvgSentenceLength])
	}
	if v[MaxSentenceLength] != 5 {
		t.Fatalf("expected max length 5, got %v", v[MaxSentenceLength])
	}
	// Population variance of {3, 5, 4}.
	if got := v[SentenceLengthVariance]; math.Abs(got-2.0/3.0) > 1e-9 {
		t.Fatalf("expected variance 2/3, got %v", got)
	}
}

func TestExtractVocabularyDiversity(t *testing.T) {
	e := mustExtractor(t)

	v := e.Extract(mustNormalize(t, "word word word word word word word word"))
	if got := v[VocabularyDiversity]; math.Abs(got-1.0/8.0) > 1e-9 {
		t.Fatalf("expected diversity 1/8, got %v", got)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	e := mustExtractor(t)
	nt := mustNormalize(t, "According to officials, the amazing result was never in doubt.")

	a := e.Extract(nt)
	b := e.Extract(nt)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical vectors, got %v vs %v", a, b)
	}
}

func TestCountSyllables(t *testing.T) {
	cases := []struct {
		word string
		want int
	}{
		{"cat", 1},
		{"hello", 2},
		{"university", 5},
		{"the", 1},
		{"rhythm", 1},
		{"believe", 2},
		{"15%", 1},
	}
	for _, tc := range cases {
		if got := countSyllables(tc.word); got != tc.want {
			t.Fatalf("countSyllables(%q) = %d, want %d", tc.word, got, tc.want)
		}
	}
}

func TestReadabilityNeutralDefaults(t *testing.T) {
	flesch, fk, ari, cl, fog := readabilityScores(textStats{})
	if flesch != neutralFlesch {
		t.Fatalf("expected neutral flesch %v, got %v", neutralFlesch, flesch)
	}
	for _, g := range []float64{fk, ari, cl, fog} {
		if g != neutralGrade {
			t.Fatalf("expected neutral grade %v, got %v", neutralGrade, g)
		}
	}
}
