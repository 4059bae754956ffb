package align

import (
	"context"
	"math/rand"
	"testing"

	"github.com/spacesedan/sstflow/internal/embeddings"
	"github.com/spacesedan/sstflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCorpus() *models.Corpus {
	return &models.Corpus{Records: []models.SentenceRecord{
		{ID: 1, Text: "a good good film", Score: 0.9, Split: models.SplitTrain},
		{ID: 2, Text: "a bad film", Score: 0.1, Split: models.SplitTest},
		{ID: 3, Text: "an odd film", Score: 0.5, Split: models.SplitValidation},
	}}
}

func testSource(t *testing.T) *embeddings.Table {
	t.Helper()
	table := embeddings.NewTable(2)
	require.NoError(t, table.Add("good", []float32{1, 1}))
	require.NoError(t, table.Add("bad", []float32{-1, -1}))
	require.NoError(t, table.Add("film", []float32{0.5, 0}))
	require.NoError(t, table.Add("a", []float32{0, 0.5}))
	return table
}

func TestBuildReviews(t *testing.T) {
	reviews, vocab := BuildReviews(testCorpus())

	require.Len(t, reviews, 3)
	assert.Equal(t, models.SplitTrain, reviews[0].Option)
	assert.Equal(t, models.SplitValidation, reviews[1].Option)
	assert.Equal(t, models.SplitTest, reviews[2].Option)
	assert.Equal(t, 4, reviews[0].NumWords)
	assert.InDelta(t, 0.9, reviews[0].Intensity, 1e-9)

	// counted once per sentence
	assert.Equal(t, 1.0, vocab["good"])
	assert.Equal(t, 3.0, vocab["film"])
	assert.Equal(t, 2.0, vocab["a"])
	assert.Len(t, vocab, 6)
}

func TestBuildMatrix_SentinelsAndOrder(t *testing.T) {
	vectors := map[string][]float32{
		"zebra": {3, 3},
		"apple": {1, 1},
		"mango": {2, 2},
	}

	m, index := BuildMatrix(vectors, 2, rand.New(rand.NewSource(7)))

	assert.Equal(t, 5, m.Rows)
	assert.Equal(t, []float64{0, 0}, m.Row(models.PadIndex))
	for _, v := range m.Row(models.UnknownIndex) {
		assert.GreaterOrEqual(t, v, -0.25)
		assert.Less(t, v, 0.25)
	}

	assert.Equal(t, map[string]int{"apple": 2, "mango": 3, "zebra": 4}, index)
	assert.Equal(t, []float64{2, 2}, m.Row(index["mango"]))
}

func TestBuildMatrix_Deterministic(t *testing.T) {
	vectors := map[string][]float32{"b": {1, 2}, "a": {3, 4}, "c": {5, 6}}

	m1, idx1 := BuildMatrix(vectors, 2, rand.New(rand.NewSource(1)))
	m2, idx2 := BuildMatrix(vectors, 2, rand.New(rand.NewSource(1)))

	assert.Equal(t, idx1, idx2)
	assert.Equal(t, m1.Data, m2.Data)
}

func TestAlign(t *testing.T) {
	src := testSource(t)

	aligned, err := Align(context.Background(), testCorpus(), src, Options{Seed: 42})
	require.NoError(t, err)

	assert.Len(t, aligned.Reviews, 3)
	assert.Equal(t, 4+2, aligned.Matrix.Rows)
	assert.Equal(t, 2, aligned.Matrix.Dim)
	assert.NotContains(t, aligned.WordIndex, "odd")
	assert.NotContains(t, aligned.WordIndex, "an")

	for word, idx := range aligned.WordIndex {
		assert.GreaterOrEqual(t, idx, 2, word)
		assert.Less(t, idx, aligned.Matrix.Rows, word)
	}

	// the source handle is released once lookup is done
	_, ok := src.Lookup("good")
	assert.False(t, ok)
}

func TestAlign_EmptyCorpus(t *testing.T) {
	_, err := Align(context.Background(), &models.Corpus{}, testSource(t), Options{})
	assert.Error(t, err)
}
