package align

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"slices"
	"strings"
	"time"

	"github.com/spacesedan/sstflow/internal/embeddings"
	"github.com/spacesedan/sstflow/internal/models"
)

const (
	firstWordRow = 2

	unknownRange = 0.25
)

type Options struct {
	Seed int64
}

// BuildReviews flattens the corpus into reviews (train, then validation, then
// test) and counts, for every whitespace token, how many sentences contain it.
func BuildReviews(c *models.Corpus) ([]models.Review, map[string]float64) {
	vocab := make(map[string]float64)
	var reviews []models.Review

	for _, split := range models.Splits {
		cols := c.FineGrained(split)
		for i, text := range cols.Texts {
			words := strings.Fields(text)
			seen := make(map[string]struct{}, len(words))
			for _, w := range words {
				if _, ok := seen[w]; ok {
					continue
				}
				seen[w] = struct{}{}
				vocab[w]++
			}
			reviews = append(reviews, models.Review{
				Text:      text,
				Intensity: cols.Scores[i],
				NumWords:  len(words),
				Option:    split,
			})
		}
	}
	return reviews, vocab
}

// LookupVectors resolves each vocabulary word against src. Misses are counted
// and reported, never fatal: they fall back to the unknown row at indexing
// time.
func LookupVectors(src embeddings.Source, vocab map[string]float64) (map[string][]float32, int) {
	found := make(map[string][]float32, len(vocab))
	unknown := 0
	for word := range vocab {
		vec, ok := src.Lookup(word)
		if !ok {
			unknown++
			continue
		}
		found[word] = vec
	}

	slog.Info("[Aligner] Vocabulary resolved",
		slog.Int("found", len(found)),
		slog.Int("unknown", unknown))
	return found, unknown
}

// BuildMatrix lays the vectors out as rows 2..N in lexical word order, after
// the zero padding row and a random unknown-word row.
func BuildMatrix(vectors map[string][]float32, dim int, rng *rand.Rand) (models.EmbeddingMatrix, map[string]int) {
	words := make([]string, 0, len(vectors))
	for w := range vectors {
		words = append(words, w)
	}
	slices.Sort(words)

	m := models.EmbeddingMatrix{
		Rows: len(words) + firstWordRow,
		Dim:  dim,
		Data: make([]float64, (len(words)+firstWordRow)*dim),
	}

	unk := m.Row(models.UnknownIndex)
	for j := range unk {
		unk[j] = rng.Float64()*2*unknownRange - unknownRange
	}

	index := make(map[string]int, len(words))
	for i, w := range words {
		row := m.Row(i + firstWordRow)
		for j, v := range vectors[w] {
			row[j] = float64(v)
		}
		index[w] = i + firstWordRow
	}
	return m, index
}

// Align runs the whole stage: reviews and vocabulary from the corpus, vector
// lookup in src, and the embedding matrix. src is closed before returning.
func Align(ctx context.Context, c *models.Corpus, src embeddings.Source, opts Options) (*models.AlignedCorpus, error) {
	defer func() {
		if err := src.Close(); err != nil {
			slog.Warn("[Aligner] Failed to close embeddings source",
				slog.String("error", err.Error()))
		}
	}()

	start := time.Now()
	reviews, vocab := BuildReviews(c)
	if len(reviews) == 0 {
		return nil, fmt.Errorf("corpus has no sentences to align")
	}
	logReviewStats(reviews, vocab)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vectors, _ := LookupVectors(src, vocab)
	matrix, index := BuildMatrix(vectors, src.Dim(), rand.New(rand.NewSource(opts.Seed)))

	slog.Info("[Aligner] Embedding matrix built",
		slog.Int("rows", matrix.Rows),
		slog.Int("dim", matrix.Dim),
		slog.Duration("elapsed", time.Since(start)))

	return &models.AlignedCorpus{
		Reviews:    reviews,
		Matrix:     matrix,
		WordIndex:  index,
		Vocabulary: vocab,
	}, nil
}

func logReviewStats(reviews []models.Review, vocab map[string]float64) {
	maxLen, total := 0, 0
	for _, r := range reviews {
		total += r.NumWords
		maxLen = max(maxLen, r.NumWords)
	}
	slog.Info("[Aligner] Data loaded",
		slog.Int("sentences", len(reviews)),
		slog.Int("vocab_size", len(vocab)),
		slog.Int("max_sentence_length", maxLen),
		slog.Float64("mean_sentence_length", float64(total)/float64(len(reviews))))
}
