// Package sentiment classifies candidate answers as positive, neutral or
// negative and produces the advisory shown next to the conversation.
package sentiment

import (
	"context"
	"log/slog"
)

// Label is the three-way sentiment classification.
type Label string

const (
	Positive Label = "positive"
	Neutral  Label = "neutral"
	Negative Label = "negative"
)

// Thresholds are strict: exactly ±Threshold is neutral.
const Threshold = 0.1

// Advisories shown for non-neutral answers.
const (
	PositiveAdvisory = "Your response sounds confident! Keep it up!"
	NegativeAdvisory = "It seems you're unsure. Feel free to provide more details!"
)

// Scorer computes a polarity in [-1, 1] for a text.
type Scorer interface {
	Polarity(ctx context.Context, text string) (float64, error)
}

// Annotation is the result of annotating one text.
type Annotation struct {
	Label    Label   `json:"label"`
	Advisory string  `json:"advisory,omitempty"`
	Polarity float64 `json:"polarity"`
}

// Classify maps a polarity onto a label and advisory.
func Classify(polarity float64) Annotation {
	switch {
	case polarity > Threshold:
		return Annotation{Label: Positive, Advisory: PositiveAdvisory, Polarity: polarity}
	case polarity < -Threshold:
		return Annotation{Label: Negative, Advisory: NegativeAdvisory, Polarity: polarity}
	default:
		return Annotation{Label: Neutral, Polarity: polarity}
	}
}

// Annotator wraps a Scorer. Scoring failures degrade to neutral.
type Annotator struct {
	scorer Scorer
	logger *slog.Logger
}

// NewAnnotator creates an annotator. A nil scorer uses the built-in lexicon.
func NewAnnotator(scorer Scorer, logger *slog.Logger) *Annotator {
	if scorer == nil {
		scorer = NewLexiconScorer()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Annotator{scorer: scorer, logger: logger}
}

// Annotate scores and classifies text.
func (a *Annotator) Annotate(ctx context.Context, text string) Annotation {
	polarity, err := a.scorer.Polarity(ctx, text)
	if err != nil {
		a.logger.Warn("sentiment scoring failed, treating as neutral", "error", err)
		return Annotation{Label: Neutral}
	}
	return Classify(polarity)
}
