package sequence

import (
	"strings"

	"github.com/spacesedan/sstflow/internal/models"
)

// Indices maps each whitespace token of text to its embedding row, using the
// unknown row for words outside the index.
func Indices(text string, wordIndex map[string]int) []int {
	words := strings.Fields(text)
	out := make([]int, len(words))
	for i, w := range words {
		if idx, ok := wordIndex[w]; ok {
			out[i] = idx
		} else {
			out[i] = models.UnknownIndex
		}
	}
	return out
}

// Pad brings every sequence to exactly maxLen. Short sequences are
// left-padded with the padding index; long ones keep their last maxLen
// tokens.
func Pad(seqs [][]int, maxLen int) [][]int {
	out := make([][]int, len(seqs))
	for i, s := range seqs {
		out[i] = PadOne(s, maxLen)
	}
	return out
}

func PadOne(seq []int, maxLen int) []int {
	row := make([]int, maxLen)
	if len(seq) >= maxLen {
		copy(row, seq[len(seq)-maxLen:])
		return row
	}
	offset := maxLen - len(seq)
	for j := 0; j < offset; j++ {
		row[j] = models.PadIndex
	}
	copy(row[offset:], seq)
	return row
}
