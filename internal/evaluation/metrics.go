package evaluation

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/spacesedan/sstflow/internal/models"
)

var ErrLengthMismatch = errors.New("prediction and target lengths differ")

func check(yTrue, yPred []float64) error {
	if len(yTrue) != len(yPred) {
		return fmt.Errorf("%w: %d targets, %d predictions", ErrLengthMismatch, len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return errors.New("no samples to evaluate")
	}
	return nil
}

func MeanSquaredError(yTrue, yPred []float64) float64 {
	diff := make([]float64, len(yTrue))
	floats.SubTo(diff, yTrue, yPred)
	return floats.Dot(diff, diff) / float64(len(diff))
}

func MeanAbsoluteError(yTrue, yPred []float64) float64 {
	diff := make([]float64, len(yTrue))
	floats.SubTo(diff, yTrue, yPred)
	return floats.Norm(diff, 1) / float64(len(diff))
}

// Pearson is NaN when either series is constant.
func Pearson(yTrue, yPred []float64) float64 {
	if len(yTrue) < 2 {
		return math.NaN()
	}
	return stat.Correlation(yTrue, yPred, nil)
}

func Evaluate(yTrue, yPred []float64) (models.Scores, error) {
	if err := check(yTrue, yPred); err != nil {
		return models.Scores{}, err
	}
	return models.Scores{
		MSE:     MeanSquaredError(yTrue, yPred),
		MAE:     MeanAbsoluteError(yTrue, yPred),
		Pearson: Pearson(yTrue, yPred),
	}, nil
}
