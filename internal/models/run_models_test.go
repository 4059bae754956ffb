package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunSummary_Finite(t *testing.T) {
	in := RunSummary{
		RunID:   "r",
		Test:    Scores{MSE: 0.2, Pearson: math.NaN()},
		History: []EpochStats{{Epoch: 1, TrainLoss: math.Inf(1), Validation: Scores{MAE: math.NaN()}}},
	}

	out := in.Finite()
	assert.Equal(t, 0.2, out.Test.MSE)
	assert.Zero(t, out.Test.Pearson)
	assert.Zero(t, out.History[0].TrainLoss)
	assert.Zero(t, out.History[0].Validation.MAE)
	assert.True(t, math.IsNaN(in.Test.Pearson), "receiver left untouched")
	assert.True(t, math.IsInf(in.History[0].TrainLoss, 1), "history copied, not shared")

	_, err := json.Marshal(in)
	assert.Error(t, err)
	_, err = json.Marshal(out)
	require.NoError(t, err)
}
