package evaluation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	yTrue := []float64{0.1, 0.5, 0.9}
	yPred := []float64{0.2, 0.5, 0.7}

	scores, err := Evaluate(yTrue, yPred)
	require.NoError(t, err)

	assert.InDelta(t, (0.01+0+0.04)/3, scores.MSE, 1e-12)
	assert.InDelta(t, (0.1+0+0.2)/3, scores.MAE, 1e-12)
	assert.InDelta(t, 0.9934, scores.Pearson, 1e-3)
}

func TestPearson_PerfectAndInverse(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	assert.InDelta(t, 1, Pearson(x, []float64{2, 4, 6, 8}), 1e-12)
	assert.InDelta(t, -1, Pearson(x, []float64{8, 6, 4, 2}), 1e-12)
}

func TestPearson_Constant(t *testing.T) {
	assert.True(t, math.IsNaN(Pearson([]float64{1, 2, 3}, []float64{5, 5, 5})))
	assert.True(t, math.IsNaN(Pearson([]float64{1}, []float64{1})))
}

func TestEvaluate_Errors(t *testing.T) {
	_, err := Evaluate([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)

	_, err = Evaluate(nil, nil)
	assert.Error(t, err)
}
