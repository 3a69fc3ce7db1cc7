package features

import (
	"strings"
	"unicode"
)

// Neutral defaults reported when a text has no countable words or sentences.
// Returning mid-range values keeps downstream scoring stable instead of
// erroring on degenerate input.
const (
	neutralFlesch = 50.0
	neutralGrade  = 10.0
)

type textStats struct {
	words        int
	sentences    int
	syllables    int
	chars        int // letters and digits only
	letters      int
	complexWords int // three or more syllables
}

func gatherStats(words []string, sentences [][]string) textStats {
	st := textStats{
		words:     len(words),
		sentences: len(sentences),
	}
	for _, w := range words {
		syl := countSyllables(w)
		st.syllables += syl
		if syl >= 3 {
			st.complexWords++
		}
		for _, r := range w {
			if unicode.IsLetter(r) {
				st.letters++
				st.chars++
			} else if unicode.IsDigit(r) {
				st.chars++
			}
		}
	}
	return st
}

// readabilityScores computes the five classic formulas from shared counts.
// All values are clamped to their conventional ranges.
func readabilityScores(st textStats) (flesch, fkGrade, ari, colemanLiau, fog float64) {
	if st.words == 0 || st.sentences == 0 {
		return neutralFlesch, neutralGrade, neutralGrade, neutralGrade, neutralGrade
	}

	wps := float64(st.words) / float64(st.sentences)
	spw := float64(st.syllables) / float64(st.words)
	cpw := float64(st.chars) / float64(st.words)

	flesch = clamp(206.835-1.015*wps-84.6*spw, 0, 100)
	fkGrade = clamp(0.39*wps+11.8*spw-15.59, 0, 20)
	ari = clamp(4.71*cpw+0.5*wps-21.43, 0, 20)

	// Coleman-Liau wants letters and sentences per 100 words.
	l := float64(st.letters) / float64(st.words) * 100
	s := float64(st.sentences) / float64(st.words) * 100
	colemanLiau = clamp(0.0588*l-0.296*s-15.8, 0, 20)

	fog = clamp(0.4*(wps+100*float64(st.complexWords)/float64(st.words)), 0, 20)
	return flesch, fkGrade, ari, colemanLiau, fog
}

// countSyllables estimates syllables as vowel runs with a silent-e
// correction, never returning less than one for a word with letters.
func countSyllables(word string) int {
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) {
			return unicode.ToLower(r)
		}
		return -1
	}, word)
	if cleaned == "" {
		return 1
	}

	count := 0
	prevVowel := false
	for _, r := range cleaned {
		v := isVowel(r)
		if v && !prevVowel {
			count++
		}
		prevVowel = v
	}
	if strings.HasSuffix(cleaned, "e") && count > 1 {
		count--
	}
	if count < 1 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
