package models

import "fmt"

type Split string

const (
	SplitTrain      Split = "train"
	SplitTest       Split = "test"
	SplitValidation Split = "valid"
)

// Splits lists the splits in the order the aligner walks them.
var Splits = []Split{SplitTrain, SplitValidation, SplitTest}

// SplitFromCode maps the datasetSplit.txt code to a Split.
func SplitFromCode(code int) (Split, error) {
	switch code {
	case 1:
		return SplitTrain, nil
	case 2:
		return SplitTest, nil
	case 3:
		return SplitValidation, nil
	default:
		return "", fmt.Errorf("unknown split code %d", code)
	}
}

type SentenceRecord struct {
	ID       int     `json:"id" msgpack:"id"`
	Raw      string  `json:"raw" msgpack:"raw"`
	Text     string  `json:"text" msgpack:"text"`
	Score    float64 `json:"score" msgpack:"score"`
	Label    int     `json:"label" msgpack:"label"`
	Polarity *int    `json:"polarity,omitempty" msgpack:"polarity,omitempty"`
	Split    Split   `json:"split" msgpack:"split"`
}

func (r SentenceRecord) HasPolarity() bool {
	return r.Polarity != nil
}
