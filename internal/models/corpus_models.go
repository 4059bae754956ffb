package models

// Corpus is the loader's artifact: every sentence of the treebank in
// ascending sentence id order.
type Corpus struct {
	Records []SentenceRecord `msgpack:"records"`
}

type FineGrainedSplit struct {
	Texts  []string
	Scores []float64
	Labels []int
}

type BinarySplit struct {
	Texts      []string
	Polarities []int
}

// FineGrained returns the parallel (text, score, label) columns of a split.
func (c *Corpus) FineGrained(split Split) FineGrainedSplit {
	var out FineGrainedSplit
	for _, r := range c.Records {
		if r.Split != split {
			continue
		}
		out.Texts = append(out.Texts, r.Text)
		out.Scores = append(out.Scores, r.Score)
		out.Labels = append(out.Labels, r.Label)
	}
	return out
}

// Binary returns the (text, polarity) columns of a split, leaving out the
// neutral band.
func (c *Corpus) Binary(split Split) BinarySplit {
	var out BinarySplit
	for _, r := range c.Records {
		if r.Split != split || !r.HasPolarity() {
			continue
		}
		out.Texts = append(out.Texts, r.Text)
		out.Polarities = append(out.Polarities, *r.Polarity)
	}
	return out
}
