package sentiment

import (
	"context"
	"strings"
	"unicode"
)

// LexiconScorer is a deterministic word-list scorer. Each known word carries a
// weight in [-1, 1]; a preceding negation flips and dampens it, a preceding
// intensifier amplifies it. The polarity is the mean over scored words.
type LexiconScorer struct {
	words        map[string]float64
	negations    map[string]bool
	intensifiers map[string]float64
}

// NewLexiconScorer returns a scorer over the built-in English lexicon.
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{
		words:        defaultLexicon,
		negations:    defaultNegations,
		intensifiers: defaultIntensifiers,
	}
}

// Polarity implements Scorer.
func (l *LexiconScorer) Polarity(_ context.Context, text string) (float64, error) {
	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && r != '\''
	})

	var sum float64
	var scored int
	for i, tok := range tokens {
		w, ok := l.words[tok]
		if !ok {
			continue
		}
		if i > 0 {
			prev := tokens[i-1]
			if boost, ok := l.intensifiers[prev]; ok {
				w *= boost
				if i > 1 && l.negations[tokens[i-2]] {
					w *= -0.5
				}
			} else if l.negations[prev] {
				w *= -0.5
			}
		}
		sum += w
		scored++
	}
	if scored == 0 {
		return 0, nil
	}
	return clamp(sum / float64(scored)), nil
}

func clamp(v float64) float64 {
	switch {
	case v > 1:
		return 1
	case v < -1:
		return -1
	default:
		return v
	}
}

var defaultNegations = map[string]bool{
	"not": true, "no": true, "never": true, "don't": true, "dont": true,
	"isn't": true, "wasn't": true, "can't": true, "cannot": true, "didn't": true,
	"doesn't": true, "hardly": true,
}

var defaultIntensifiers = map[string]float64{
	"very": 1.3, "really": 1.3, "extremely": 1.5, "so": 1.2, "highly": 1.3,
	"quite": 1.1, "super": 1.4,
}

var defaultLexicon = map[string]float64{
	"good": 0.7, "great": 0.8, "excellent": 1.0, "amazing": 0.6, "awesome": 1.0,
	"love": 0.5, "enjoy": 0.4, "happy": 0.8, "confident": 0.5, "strong": 0.4,
	"expert": 0.5, "best": 1.0, "perfect": 1.0, "passionate": 0.5, "excited": 0.4,
	"sure": 0.5, "certainly": 0.2, "definitely": 0.3, "skilled": 0.5, "proficient": 0.5,
	"successful": 0.75, "nice": 0.6, "fantastic": 0.4, "wonderful": 1.0, "easy": 0.4,
	"bad": -0.7, "terrible": -1.0, "awful": -1.0, "poor": -0.4, "hate": -0.8,
	"unsure": -0.5, "confused": -0.4, "difficult": -0.5, "hard": -0.3, "weak": -0.4,
	"worst": -1.0, "sad": -0.5, "nervous": -0.3, "worried": -0.4, "struggle": -0.4,
	"struggled": -0.4, "fail": -0.5, "failed": -0.5, "wrong": -0.5, "boring": -1.0,
	"maybe": -0.1, "guess": -0.2, "unfortunately": -0.5, "problem": -0.3, "stuck": -0.4,
}
