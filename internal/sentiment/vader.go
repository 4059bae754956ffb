// Package sentiment scores sentences with the VADER lexicon so a trained model
// can be compared against a rule-based baseline on the same split.
package sentiment

import (
	"github.com/jonreiter/govader"
)

var analyzer = govader.NewSentimentIntensityAnalyzer()

// Compound returns VADER's normalised compound score in [-1, 1].
func Compound(text string) float64 {
	return analyzer.PolarityScores(text).Compound
}

// BaselineScore maps the compound score onto the [0, 1] sentiment scale used
// by the corpus.
func BaselineScore(text string) float64 {
	return (Compound(text) + 1) / 2
}

func BaselineScores(texts []string) []float64 {
	out := make([]float64, len(texts))
	for i, text := range texts {
		out[i] = BaselineScore(text)
	}
	return out
}
