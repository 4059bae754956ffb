package sequence

import (
	"log/slog"

	"github.com/spacesedan/sstflow/internal/models"
)

// Set is one split as model input: padded index rows and target scores, with
// the source text kept for reporting.
type Set struct {
	X     [][]int
	Y     []float64
	Texts []string
}

func (s Set) Len() int {
	return len(s.X)
}

type Dataset struct {
	Train      Set
	Validation Set
	Test       Set
	MaxLen     int
}

// BuildDataset turns aligned reviews into fixed-length index matrices per
// split.
func BuildDataset(aligned *models.AlignedCorpus, maxLen int) Dataset {
	raw := map[models.Split]*Set{
		models.SplitTrain:      {},
		models.SplitValidation: {},
		models.SplitTest:       {},
	}

	for _, r := range aligned.Reviews {
		set, ok := raw[r.Option]
		if !ok {
			continue
		}
		set.X = append(set.X, Indices(r.Text, aligned.WordIndex))
		set.Y = append(set.Y, r.Intensity)
		set.Texts = append(set.Texts, r.Text)
	}

	for _, set := range raw {
		set.X = Pad(set.X, maxLen)
	}

	ds := Dataset{
		Train:      *raw[models.SplitTrain],
		Validation: *raw[models.SplitValidation],
		Test:       *raw[models.SplitTest],
		MaxLen:     maxLen,
	}

	slog.Info("[Dataset] Index matrices built",
		slog.Int("n_train_sample", ds.Train.Len()),
		slog.Int("n_valid_sample", ds.Validation.Len()),
		slog.Int("n_test_sample", ds.Test.Len()),
		slog.Int("len_sentence", maxLen),
		slog.Int("max_features", aligned.Matrix.Rows),
		slog.Int("num_features", aligned.Matrix.Dim))
	return ds
}
