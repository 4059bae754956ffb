package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCorpus_BinarySkipsNeutral(t *testing.T) {
	neg, pos := 0, 1
	c := Corpus{Records: []SentenceRecord{
		{ID: 1, Text: "awful", Score: 0.1, Polarity: &neg, Split: SplitTrain},
		{ID: 2, Text: "fine", Score: 0.5, Split: SplitTrain},
		{ID: 3, Text: "great", Score: 0.9, Polarity: &pos, Split: SplitTrain},
		{ID: 4, Text: "superb", Score: 0.95, Polarity: &pos, Split: SplitTest},
	}}

	assert.False(t, c.Records[1].HasPolarity())

	train := c.Binary(SplitTrain)
	assert.Equal(t, []string{"awful", "great"}, train.Texts)
	assert.Equal(t, []int{0, 1}, train.Polarities)

	fine := c.FineGrained(SplitTrain)
	assert.Len(t, fine.Texts, 3)
}
