package textprep

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
)

// Limits bounds what the engine accepts as analyzable text.
type Limits struct {
	MinChars      int
	MaxChars      int
	MaxWords      int
	MinAlphaRatio float64
}

// DefaultLimits returns the bounds used when no configuration overrides them.
func DefaultLimits() Limits {
	return Limits{
		MinChars:      10,
		MaxChars:      50000,
		MaxWords:      512,
		MinAlphaRatio: 0.3,
	}
}

// ValidationError reports input text the engine refuses to analyze.
// It is the only error surfaced from the analyze path.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "invalid text: " + e.Reason
}

// NormalizedText is the cleaned, bounded form of one input text.
// It is created once per request and never mutated afterward.
type NormalizedText struct {
	Original  string
	Clean     string
	Words     int
	Truncated bool

	// Lang is the ISO 639-1 code detected on the cleaned text. The feature
	// lexicons assume English; the detector logs non-English input but does
	// not reject it.
	Lang           string
	LangConfidence float64
}

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	punctRunRe   = regexp.MustCompile(`(\.)\.{3,}|(!)!{3,}|(\?)\?{3,}`)

	quoteReplacer = strings.NewReplacer(
		"“", `"`, "”", `"`, "„", `"`,
		"‘", "'", "’", "'",
		"–", "-", "—", "-",
	)
)

// Validate checks raw text against the limits. Callers are expected to
// validate before invoking the engine; Normalize re-validates defensively.
func Validate(raw string, limits Limits) error {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return &ValidationError{Reason: "text is empty"}
	}
	if len(trimmed) < limits.MinChars {
		return &ValidationError{Reason: fmt.Sprintf("text is too short (minimum %d characters)", limits.MinChars)}
	}
	if limits.MaxChars > 0 && len(raw) > limits.MaxChars {
		return &ValidationError{Reason: fmt.Sprintf("text is too long (maximum %d characters)", limits.MaxChars)}
	}
	if ratio := alphaRatio(raw); ratio < limits.MinAlphaRatio {
		return &ValidationError{Reason: "text contains too few alphabetic characters"}
	}
	return nil
}

// Normalize validates and cleans raw text, truncating to the word budget.
// Pure: the same input and limits always produce the same NormalizedText.
func Normalize(raw string, limits Limits) (NormalizedText, error) {
	if err := Validate(raw, limits); err != nil {
		return NormalizedText{}, err
	}

	clean := quoteReplacer.Replace(raw)
	clean = stripDisallowed(clean)
	clean = punctRunRe.ReplaceAllString(clean, "$1$1$1$2$2$2$3$3$3")
	clean = whitespaceRe.ReplaceAllString(clean, " ")
	clean = strings.TrimSpace(clean)

	words := strings.Fields(clean)
	truncated := false
	if limits.MaxWords > 0 && len(words) > limits.MaxWords {
		words = words[:limits.MaxWords]
		clean = strings.Join(words, " ")
		truncated = true
	}

	info := whatlanggo.Detect(clean)

	return NormalizedText{
		Original:       raw,
		Clean:          clean,
		Words:          len(words),
		Truncated:      truncated,
		Lang:           info.Lang.Iso6391(),
		LangConfidence: info.Confidence,
	}, nil
}

// stripDisallowed drops characters outside letters, digits, whitespace, and
// the punctuation the feature formulas rely on.
func stripDisallowed(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			return r
		}
		if strings.ContainsRune(`.,!?;:'"()-%$/`, r) {
			return r
		}
		return -1
	}, s)
}

func alphaRatio(s string) float64 {
	total := 0
	alpha := 0
	for _, r := range s {
		total++
		if unicode.IsLetter(r) {
			alpha++
		}
	}
	if total == 0 {
		return 0
	}
	return float64(alpha) / float64(total)
}
