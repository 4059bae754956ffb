package corpus

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/spacesedan/sstflow/internal/models"
)

type Options struct {
	// SkipMalformed logs and drops rows that do not parse instead of failing.
	// Integrity errors are fatal either way.
	SkipMalformed bool
}

// Files returns the four corpus files Load reads, in a stable order.
func Files(dir string) []string {
	return []string{
		filepath.Join(dir, SentimentLabelsFile),
		filepath.Join(dir, DictionaryFile),
		filepath.Join(dir, SentencesFile),
		filepath.Join(dir, SplitFile),
	}
}

// Load parses the treebank in dir into one record per sentence.
func Load(ctx context.Context, dir string, opts Options) (*models.Corpus, error) {
	start := time.Now()
	slog.Info("[CorpusLoader] Loading corpus", slog.String("dir", dir))

	scores, err := readSentimentLabels(filepath.Join(dir, SentimentLabelsFile), opts.SkipMalformed)
	if err != nil {
		return nil, err
	}
	phrases, err := readPhraseDictionary(filepath.Join(dir, DictionaryFile), opts.SkipMalformed)
	if err != nil {
		return nil, err
	}
	sentences, err := readSentences(filepath.Join(dir, SentencesFile), opts.SkipMalformed)
	if err != nil {
		return nil, err
	}
	splits, err := readSplits(filepath.Join(dir, SplitFile), opts.SkipMalformed)
	if err != nil {
		return nil, err
	}

	ids := make([]int, 0, len(sentences))
	for id := range sentences {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	records := make([]models.SentenceRecord, 0, len(ids))
	for i, id := range ids {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		record, err := buildRecord(id, sentences[id], phrases, scores, splits)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	c := &models.Corpus{Records: records}
	logCounts(c)
	slog.Info("[CorpusLoader] Corpus loaded",
		slog.Int("sentences", len(records)),
		slog.Duration("elapsed", time.Since(start)))
	return c, nil
}

func buildRecord(id int, raw string, phrases map[string]int, scores map[int]float64, splits map[int]int) (models.SentenceRecord, error) {
	text := CleanText(raw)

	phraseID, ok := phrases[text]
	if !ok {
		return models.SentenceRecord{}, fmt.Errorf("sentence %d %q: %w", id, text, ErrMissingPhrase)
	}
	score, ok := scores[phraseID]
	if !ok {
		return models.SentenceRecord{}, fmt.Errorf("sentence %d (phrase %d): %w", id, phraseID, ErrMissingSentiment)
	}
	label, err := LabelFor(score)
	if err != nil {
		return models.SentenceRecord{}, fmt.Errorf("sentence %d: %w", id, err)
	}
	code, ok := splits[id]
	if !ok {
		return models.SentenceRecord{}, fmt.Errorf("sentence %d: %w", id, ErrMissingSplit)
	}
	split, err := models.SplitFromCode(code)
	if err != nil {
		return models.SentenceRecord{}, fmt.Errorf("sentence %d: %w %d", id, ErrUnknownSplit, code)
	}

	record := models.SentenceRecord{
		ID:    id,
		Raw:   raw,
		Text:  text,
		Score: score,
		Label: label,
		Split: split,
	}
	if polarity, ok := PolarityFor(label); ok {
		record.Polarity = &polarity
	}
	return record, nil
}

func logCounts(c *models.Corpus) {
	train, valid, test := c.FineGrained(models.SplitTrain), c.FineGrained(models.SplitValidation), c.FineGrained(models.SplitTest)
	slog.Info("[CorpusLoader] Fine-grained",
		slog.Int("train", len(train.Texts)),
		slog.Int("valid", len(valid.Texts)),
		slog.Int("test", len(test.Texts)))

	btrain, bvalid, btest := c.Binary(models.SplitTrain), c.Binary(models.SplitValidation), c.Binary(models.SplitTest)
	slog.Info("[CorpusLoader] Binary classification",
		slog.Int("train", len(btrain.Texts)),
		slog.Int("valid", len(bvalid.Texts)),
		slog.Int("test", len(btest.Texts)))
}
