package features

// Vector holds one extracted feature set. Every key in Names() is always
// present; consumers may index without existence checks.
type Vector map[string]float64

// Feature keys, grouped by category. The slice order below is the canonical
// declaration order used for deterministic tie-breaks downstream.
const (
	FleschReadingEase         = "flesch_reading_ease"
	FleschKincaidGrade        = "flesch_kincaid_grade"
	AutomatedReadabilityIndex = "automated_readability_index"
	ColemanLiauIndex          = "coleman_liau_index"
	GunningFog                = "gunning_fog"

	ClickbaitScore = "clickbait_score"
	HasClickbait   = "has_clickbait"

	PositiveEmotionScore = "positive_emotion_score"
	NegativeEmotionScore = "negative_emotion_score"
	FearEmotionScore     = "fear_emotion_score"
	AngerEmotionScore    = "anger_emotion_score"
	TotalEmotionalWords  = "total_emotional_words"
	ExclamationDensity   = "exclamation_density"
	CapsDensity          = "caps_density"
	EmotionalIntensity   = "emotional_intensity"

	AbsoluteTermsCount   = "absolute_terms_count"
	LoadedLanguageCount  = "loaded_language_count"
	GeneralizationsCount = "generalizations_count"
	TotalBiasScore       = "total_bias_score"
	HasBiasIndicators    = "has_bias_indicators"

	CitationCount = "citation_count"
	URLCount      = "url_count"
	HasSources    = "has_sources"
	SourceDensity = "source_density"

	VocabularyDiversity    = "vocabulary_diversity"
	AvgSentenceLength      = "avg_sentence_length"
	SentenceCount          = "sentence_count"
	MaxSentenceLength      = "max_sentence_length"
	SentenceLengthVariance = "sentence_length_variance"
)

var names = []string{
	FleschReadingEase,
	FleschKincaidGrade,
	AutomatedReadabilityIndex,
	ColemanLiauIndex,
	GunningFog,
	ClickbaitScore,
	HasClickbait,
	PositiveEmotionScore,
	NegativeEmotionScore,
	FearEmotionScore,
	AngerEmotionScore,
	TotalEmotionalWords,
	ExclamationDensity,
	CapsDensity,
	EmotionalIntensity,
	AbsoluteTermsCount,
	LoadedLanguageCount,
	GeneralizationsCount,
	TotalBiasScore,
	HasBiasIndicators,
	CitationCount,
	URLCount,
	HasSources,
	SourceDensity,
	VocabularyDiversity,
	AvgSentenceLength,
	SentenceCount,
	MaxSentenceLength,
	SentenceLengthVariance,
}

var nameSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return set
}()

// Names returns the feature keys in declaration order. The caller must not
// modify the returned slice.
func Names() []string {
	return names
}

// Valid reports whether name is a declared feature key.
func Valid(name string) bool {
	_, ok := nameSet[name]
	return ok
}

// Rank returns the declaration-order index of name, or len(Names()) for
// unknown names so they sort last.
func Rank(name string) int {
	for i, n := range names {
		if n == name {
			return i
		}
	}
	return len(names)
}
