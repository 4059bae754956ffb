package corpus

import "fmt"

const (
	PolarityNegative = 0
	PolarityPositive = 1
)

// LabelFor buckets a continuous score into the five SST classes:
// [0,0.2]→1, (0.2,0.4]→2, (0.4,0.6]→3, (0.6,0.8]→4, (0.8,1]→5.
func LabelFor(score float64) (int, error) {
	switch {
	case score >= 0 && score <= 0.2:
		return 1, nil
	case score > 0.2 && score <= 0.4:
		return 2, nil
	case score > 0.4 && score <= 0.6:
		return 3, nil
	case score > 0.6 && score <= 0.8:
		return 4, nil
	case score > 0.8 && score <= 1:
		return 5, nil
	default:
		return 0, fmt.Errorf("%w: %v", ErrScoreOutOfRange, score)
	}
}

// PolarityFor reports the binary polarity of a label. The neutral label 3
// has none.
func PolarityFor(label int) (int, bool) {
	switch label {
	case 1, 2:
		return PolarityNegative, true
	case 4, 5:
		return PolarityPositive, true
	default:
		return 0, false
	}
}
