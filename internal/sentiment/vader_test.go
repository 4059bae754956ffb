package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBaselineScore(t *testing.T) {
	pos := BaselineScore("a wonderful , moving and beautiful film")
	neg := BaselineScore("a terrible , boring and awful film")
	neutral := BaselineScore("the film")

	assert.Greater(t, pos, 0.5)
	assert.Less(t, neg, 0.5)
	assert.InDelta(t, 0.5, neutral, 1e-9)

	for _, s := range []float64{pos, neg, neutral} {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
}

func TestBaselineScores(t *testing.T) {
	texts := []string{"good", "bad", "the plot"}
	scores := BaselineScores(texts)

	assert.Len(t, scores, 3)
	assert.Equal(t, BaselineScore("good"), scores[0])
	assert.InDelta(t, 0.5, scores[2], 1e-9)
}
