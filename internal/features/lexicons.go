package features

// LexiconVersion identifies the phrase tables in this file. Bump it whenever
// an entry is added, removed, or reclassified.
const LexiconVersion = "2024.1"

type phraseClass int

const (
	classClickbait phraseClass = iota
	classPositive
	classNegative
	classFear
	classAnger
	classAbsolute
	classLoaded
	classGeneralization
	classCitation
)

// phraseEntry maps one lowercase phrase to the scoring classes it counts for.
// A phrase may serve several classes (e.g. "shocking" is both a clickbait
// marker and a negative-emotion word).
type phraseEntry struct {
	phrase  string
	classes []phraseClass
}

// The tables below drive all lexicon scoring. Matching is case-insensitive
// with word-boundary verification on both ends, so "discover" does not fire
// inside "discovery". Keep phrases lowercase and free of leading or trailing
// whitespace.
var phraseTable = []phraseEntry{
	// Clickbait markers. Roughly ten score points per hit.
	{"shocking", []phraseClass{classClickbait, classNegative}},
	{"amazing", []phraseClass{classClickbait, classPositive}},
	{"incredible", []phraseClass{classClickbait, classPositive}},
	{"unbelievable", []phraseClass{classClickbait}},
	{"you won't believe", []phraseClass{classClickbait}},
	{"this one trick", []phraseClass{classClickbait}},
	{"doctors hate", []phraseClass{classClickbait}},
	{"secret", []phraseClass{classClickbait}},
	{"click here", []phraseClass{classClickbait}},
	{"find out", []phraseClass{classClickbait}},
	{"discover", []phraseClass{classClickbait}},
	{"what happens next", []phraseClass{classClickbait}},

	// Emotion words.
	{"fantastic", []phraseClass{classPositive}},
	{"wonderful", []phraseClass{classPositive}},
	{"excellent", []phraseClass{classPositive}},
	{"perfect", []phraseClass{classPositive}},
	{"terrible", []phraseClass{classNegative}},
	{"awful", []phraseClass{classNegative}},
	{"horrible", []phraseClass{classNegative}},
	{"disgusting", []phraseClass{classNegative}},
	{"outrageous", []phraseClass{classNegative}},
	{"dangerous", []phraseClass{classFear}},
	{"threat", []phraseClass{classFear}},
	{"crisis", []phraseClass{classFear}},
	{"disaster", []phraseClass{classFear}},
	{"panic", []phraseClass{classFear}},
	{"terror", []phraseClass{classFear}},
	{"furious", []phraseClass{classAnger}},
	{"outraged", []phraseClass{classAnger}},
	{"angry", []phraseClass{classAnger}},
	{"mad", []phraseClass{classAnger}},
	{"hate", []phraseClass{classAnger}},
	{"disgusted", []phraseClass{classAnger}},

	// Bias indicators. Five score points per hit across all three classes.
	{"always", []phraseClass{classAbsolute}},
	{"never", []phraseClass{classAbsolute}},
	{"all", []phraseClass{classAbsolute}},
	{"none", []phraseClass{classAbsolute}},
	{"every", []phraseClass{classAbsolute}},
	{"completely", []phraseClass{classAbsolute}},
	{"totally", []phraseClass{classAbsolute}},
	{"obviously", []phraseClass{classLoaded}},
	{"clearly", []phraseClass{classLoaded}},
	{"undoubtedly", []phraseClass{classLoaded}},
	{"certainly", []phraseClass{classLoaded}},
	{"definitely", []phraseClass{classLoaded}},
	{"everyone knows", []phraseClass{classGeneralization}},
	{"it's common knowledge", []phraseClass{classGeneralization}},
	{"studies show", []phraseClass{classGeneralization}},

	// Citation markers.
	{"according to", []phraseClass{classCitation}},
	{"study", []phraseClass{classCitation}},
	{"studies", []phraseClass{classCitation}},
	{"research", []phraseClass{classCitation}},
	{"survey", []phraseClass{classCitation}},
	{"experts say", []phraseClass{classCitation}},
	{"officials said", []phraseClass{classCitation}},
	{"reports suggest", []phraseClass{classCitation}},
	{"data shows", []phraseClass{classCitation}},
	{"sources said", []phraseClass{classCitation}},
}
