package embeddings

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func word2vecBinary(words []string, vecs [][]float32) []byte {
	var buf bytes.Buffer
	buf.WriteString(strconv.Itoa(len(words)) + " " + strconv.Itoa(len(vecs[0])) + "\n")
	for i, w := range words {
		buf.WriteString(w + " ")
		for _, v := range vecs[i] {
			var b [4]byte
			binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
			buf.Write(b[:])
		}
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func TestOpen_Word2VecBinary(t *testing.T) {
	path := writeFile(t, "vectors.bin", word2vecBinary(
		[]string{"good", "bad", "film"},
		[][]float32{{0.5, -0.25}, {-1, 1}, {0.125, 2}},
	))

	src, err := Open(FormatWord2VecBinary, path, 2, nil)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 2, src.Dim())
	vec, ok := src.Lookup("bad")
	require.True(t, ok)
	assert.Equal(t, []float32{-1, 1}, vec)
	vec, ok = src.Lookup("film")
	require.True(t, ok)
	assert.Equal(t, []float32{0.125, 2}, vec)

	_, ok = src.Lookup("missing")
	assert.False(t, ok)
}

func TestOpen_Word2VecBinaryKeepsOnlyVocabulary(t *testing.T) {
	path := writeFile(t, "vectors.bin", word2vecBinary(
		[]string{"good", "bad", "film"},
		[][]float32{{0.5, -0.25}, {-1, 1}, {0.125, 2}},
	))

	src, err := Open(FormatWord2VecBinary, path, 0, func(w string) bool { return w == "film" })
	require.NoError(t, err)
	defer src.Close()

	_, ok := src.Lookup("good")
	assert.False(t, ok)
	vec, ok := src.Lookup("film")
	require.True(t, ok)
	assert.Equal(t, []float32{0.125, 2}, vec)
}

func TestOpen_Word2VecBinaryTruncated(t *testing.T) {
	data := word2vecBinary([]string{"good", "bad"}, [][]float32{{1, 2}, {3, 4}})
	path := writeFile(t, "vectors.bin", data[:len(data)-5])

	_, err := Open(FormatWord2VecBinary, path, 2, nil)
	assert.ErrorIs(t, err, ErrMalformedVector)
}

func TestOpen_Word2VecText(t *testing.T) {
	path := writeFile(t, "vectors.txt", []byte("2 3\ngood 1 2 3\nbad -1 -2 -3\n"))

	src, err := Open(FormatWord2VecText, path, 3, nil)
	require.NoError(t, err)
	defer src.Close()

	vec, ok := src.Lookup("bad")
	require.True(t, ok)
	assert.Equal(t, []float32{-1, -2, -3}, vec)
}

func TestOpen_GloVe(t *testing.T) {
	path := writeFile(t, "glove.txt", []byte("good 0.1 0.2\nat home 0.3 0.4\n\nbad 0.5 0.6\n"))

	src, err := Open(FormatGloVe, path, 2, nil)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 2, src.Dim())
	vec, ok := src.Lookup("at home")
	require.True(t, ok)
	assert.InDeltaSlice(t, []float32{0.3, 0.4}, vec, 1e-6)
}

func TestOpen_GloVeInfersDimension(t *testing.T) {
	path := writeFile(t, "glove.txt", []byte("good 0.1 0.2 0.3\n"))

	src, err := Open(FormatGloVe, path, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, src.Dim())
}

func TestOpen_GloVeInfersDimensionPastMultiWordToken(t *testing.T) {
	path := writeFile(t, "glove.txt", []byte("new york 0.1 0.2\ngood 0.3 0.4\n"))

	src, err := Open(FormatGloVe, path, 0, nil)
	require.NoError(t, err)
	defer src.Close()

	assert.Equal(t, 2, src.Dim())
	vec, ok := src.Lookup("new york")
	require.True(t, ok)
	assert.InDeltaSlice(t, []float32{0.1, 0.2}, vec, 1e-6)
}

func TestOpen_Errors(t *testing.T) {
	tests := []struct {
		name    string
		format  string
		data    string
		dim     int
		wantErr error
	}{
		{"unknown format", "fasttext", "", 0, ErrUnknownFormat},
		{"dimension mismatch", FormatWord2VecText, "1 3\ngood 1 2 3\n", 2, ErrDimMismatch},
		{"short vector", FormatGloVe, "good 1 2\nbad 1\n", 2, ErrDimMismatch},
		{"bad value", FormatGloVe, "good 1 x\n", 2, ErrMalformedVector},
		{"bad header", FormatWord2VecText, "three dims\n", 0, ErrMalformedVector},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, "vectors", []byte(tt.data))
			_, err := Open(tt.format, path, tt.dim, nil)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTable_Close(t *testing.T) {
	table := NewTable(2)
	require.NoError(t, table.Add("good", []float32{1, 2}))
	assert.ErrorIs(t, table.Add("bad", []float32{1}), ErrDimMismatch)

	require.NoError(t, table.Close())
	_, ok := table.Lookup("good")
	assert.False(t, ok)
	assert.Error(t, table.Add("good", []float32{1, 2}))
}
