package features

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"

	"github.com/veridict-ai/veridict/internal/textprep"
)

// Score constants for the lexicon-driven signals.
const (
	clickbaitPointsPerHit  = 10.0
	clickbaitScoreFloor    = 20.0 // has_clickbait fires above this
	emotionPointsPerHit    = 20.0
	biasPointsPerHit       = 5.0
	biasScoreFloor         = 15.0 // has_bias_indicators fires above this
	exclamationDenseCutoff = 0.05
	capsDenseCutoff        = 0.1
	structuralPoints       = 10.0
	diversityMinWords      = 5
)

var (
	urlRe = regexp.MustCompile(`https?://\S+`)

	// "number 7 will ..." style teasers carry a numeric slot, so they live
	// outside the phrase automaton.
	numberTeaseRe = regexp.MustCompile(`\bnumber \d+ will\b`)

	sentenceSplitRe = regexp.MustCompile(`[.!?]+`)
)

// Extractor computes the fixed feature schema over normalized text. It is
// immutable after construction and safe for concurrent use.
type Extractor struct {
	machine *goahocorasick.Machine
	classes map[string][]phraseClass
}

// NewExtractor builds the phrase automaton from the lexicon tables.
func NewExtractor() (*Extractor, error) {
	classes := make(map[string][]phraseClass, len(phraseTable))
	phrases := make([]string, 0, len(phraseTable))
	for _, e := range phraseTable {
		if _, dup := classes[e.phrase]; dup {
			return nil, fmt.Errorf("duplicate lexicon phrase %q", e.phrase)
		}
		classes[e.phrase] = e.classes
		phrases = append(phrases, e.phrase)
	}
	sort.Strings(phrases)

	patterns := make([][]rune, len(phrases))
	for i, p := range phrases {
		patterns[i] = []rune(p)
	}
	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, fmt.Errorf("build lexicon automaton: %w", err)
	}
	return &Extractor{machine: m, classes: classes}, nil
}

// Extract computes all declared features in one pass over the cleaned text.
// It never fails: degenerate inputs produce neutral values, and any NaN or
// Inf from a sub-computation is replaced by zero.
func (e *Extractor) Extract(nt textprep.NormalizedText) Vector {
	words := strings.Fields(nt.Clean)
	total := len(words)

	lower := strings.ToLower(nt.Clean)
	counts := e.matchPhrases(lower)
	counts[classClickbait] += len(numberTeaseRe.FindAllString(lower, -1))

	sentences := splitSentences(nt.Clean)
	st := gatherStats(words, sentences)
	flesch, fkGrade, ari, colemanLiau, fog := readabilityScores(st)

	exclCount := strings.Count(nt.Clean, "!")
	capsCount := 0
	for _, w := range words {
		if isAllCaps(w) {
			capsCount++
		}
	}

	denom := math.Max(float64(total), 1)
	exclDensity := float64(exclCount) / denom
	capsDensity := float64(capsCount) / denom

	clickbait := float64(counts[classClickbait]) * clickbaitPointsPerHit
	if exclDensity > exclamationDenseCutoff {
		clickbait += structuralPoints
	}
	if capsDensity > capsDenseCutoff {
		clickbait += structuralPoints
	}
	clickbait = clamp(clickbait, 0, 100)

	emotionalHits := counts[classPositive] + counts[classNegative] +
		counts[classFear] + counts[classAnger]

	biasHits := counts[classAbsolute] + counts[classLoaded] + counts[classGeneralization]
	biasScore := clamp(float64(biasHits)*biasPointsPerHit, 0, 100)

	citations := counts[classCitation]
	urls := len(urlRe.FindAllString(lower, -1))

	v := Vector{
		FleschReadingEase:         flesch,
		FleschKincaidGrade:        fkGrade,
		AutomatedReadabilityIndex: ari,
		ColemanLiauIndex:          colemanLiau,
		GunningFog:                fog,

		ClickbaitScore: clickbait,
		HasClickbait:   boolFeature(clickbait > clickbaitScoreFloor),

		PositiveEmotionScore: clamp(float64(counts[classPositive])*emotionPointsPerHit, 0, 100),
		NegativeEmotionScore: clamp(float64(counts[classNegative])*emotionPointsPerHit, 0, 100),
		FearEmotionScore:     clamp(float64(counts[classFear])*emotionPointsPerHit, 0, 100),
		AngerEmotionScore:    clamp(float64(counts[classAnger])*emotionPointsPerHit, 0, 100),
		TotalEmotionalWords:  float64(emotionalHits),
		ExclamationDensity:   exclDensity,
		CapsDensity:          capsDensity,
		EmotionalIntensity:   clamp(float64(emotionalHits)/denom*100, 0, 100),

		AbsoluteTermsCount:   float64(counts[classAbsolute]),
		LoadedLanguageCount:  float64(counts[classLoaded]),
		GeneralizationsCount: float64(counts[classGeneralization]),
		TotalBiasScore:       biasScore,
		HasBiasIndicators:    boolFeature(biasScore > biasScoreFloor),

		CitationCount: float64(citations),
		URLCount:      float64(urls),
		HasSources:    boolFeature(citations > 0 || urls > 0),
		SourceDensity: float64(citations+urls) / denom,

		VocabularyDiversity:    vocabularyDiversity(words),
		AvgSentenceLength:      avgLen(sentences),
		SentenceCount:          float64(len(sentences)),
		MaxSentenceLength:      maxLen(sentences),
		SentenceLengthVariance: lenVariance(sentences),
	}

	for k, val := range v {
		if math.IsNaN(val) || math.IsInf(val, 0) {
			v[k] = 0
		}
	}
	return v
}

// matchPhrases runs the automaton once and tallies boundary-verified hits
// per class.
func (e *Extractor) matchPhrases(lower string) map[phraseClass]int {
	counts := make(map[phraseClass]int)
	runes := []rune(lower)
	for _, term := range e.machine.MultiPatternSearch(runes, false) {
		start := term.Pos
		end := start + len(term.Word)
		if !wordBounded(runes, start, end) {
			continue
		}
		for _, c := range e.classes[string(term.Word)] {
			counts[c]++
		}
	}
	return counts
}

// wordBounded reports whether the match at [start,end) is not embedded in a
// larger word.
func wordBounded(runes []rune, start, end int) bool {
	if start > 0 && isWordRune(runes[start-1]) {
		return false
	}
	if end < len(runes) && isWordRune(runes[end]) {
		return false
	}
	return true
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// isAllCaps reports whether a token is an all-uppercase word of at least two
// letters, e.g. "BREAKING" but not "A" or "7pm".
func isAllCaps(word string) bool {
	letters := 0
	for _, r := range word {
		if !unicode.IsLetter(r) {
			continue
		}
		if !unicode.IsUpper(r) {
			return false
		}
		letters++
	}
	return letters >= 2
}

func splitSentences(clean string) [][]string {
	var out [][]string
	for _, seg := range sentenceSplitRe.Split(clean, -1) {
		fields := strings.Fields(seg)
		if len(fields) > 0 {
			out = append(out, fields)
		}
	}
	return out
}

func vocabularyDiversity(words []string) float64 {
	if len(words) < diversityMinWords {
		return 0
	}
	seen := make(map[string]struct{}, len(words))
	for _, w := range words {
		seen[strings.ToLower(w)] = struct{}{}
	}
	return float64(len(seen)) / float64(len(words))
}

func avgLen(sentences [][]string) float64 {
	if len(sentences) == 0 {
		return 0
	}
	sum := 0
	for _, s := range sentences {
		sum += len(s)
	}
	return float64(sum) / float64(len(sentences))
}

func maxLen(sentences [][]string) float64 {
	m := 0
	for _, s := range sentences {
		if len(s) > m {
			m = len(s)
		}
	}
	return float64(m)
}

// lenVariance is the population variance of sentence word counts; zero for
// fewer than two sentences.
func lenVariance(sentences [][]string) float64 {
	if len(sentences) < 2 {
		return 0
	}
	mean := avgLen(sentences)
	sum := 0.0
	for _, s := range sentences {
		d := float64(len(s)) - mean
		sum += d * d
	}
	return sum / float64(len(sentences))
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
