package models

const (
	PadIndex     = 0
	UnknownIndex = 1
)

type Review struct {
	Text      string  `json:"text" msgpack:"text"`
	Intensity float64 `json:"intensity" msgpack:"intensity"`
	NumWords  int     `json:"num_words" msgpack:"num_words"`
	Option    Split   `json:"option" msgpack:"option"`
}

// EmbeddingMatrix is a row-major (Rows x Dim) table. Row 0 is padding, row 1
// the unknown-word vector.
type EmbeddingMatrix struct {
	Rows int       `msgpack:"rows"`
	Dim  int       `msgpack:"dim"`
	Data []float64 `msgpack:"data"`
}

func (m *EmbeddingMatrix) Row(i int) []float64 {
	return m.Data[i*m.Dim : (i+1)*m.Dim]
}

// AlignedCorpus is the aligner's artifact.
type AlignedCorpus struct {
	Reviews    []Review           `msgpack:"reviews"`
	Matrix     EmbeddingMatrix    `msgpack:"matrix"`
	WordIndex  map[string]int     `msgpack:"word_index"`
	Vocabulary map[string]float64 `msgpack:"vocabulary"`
}
