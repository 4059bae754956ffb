package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spacesedan/sstflow/config"
	"github.com/spacesedan/sstflow/internal/align"
	"github.com/spacesedan/sstflow/internal/artifacts"
	"github.com/spacesedan/sstflow/internal/corpus"
	"github.com/spacesedan/sstflow/internal/embeddings"
	"github.com/spacesedan/sstflow/internal/models"
)

// Load returns the parsed corpus, from the cache when the four corpus files
// and the row policy are unchanged.
func (r *Runner) Load(ctx context.Context) (*models.Corpus, error) {
	if r.corpus != nil {
		return r.corpus, nil
	}

	s := r.settings
	out := r.path(artifacts.CorpusFile)

	key, err := artifacts.Fingerprint(corpus.Files(s.CorpusDir), s.MalformedRows)
	if err != nil {
		return nil, err
	}

	var c models.Corpus
	if r.cache.Fresh(ctx, StageLoad, key, out) {
		err := artifacts.Load(out, &c)
		if err == nil {
			r.corpus = &c
			return r.corpus, nil
		}
		slog.Warn("[Pipeline] Cached corpus unreadable, rebuilding",
			slog.String("error", err.Error()))
	}

	loaded, err := corpus.Load(ctx, s.CorpusDir, corpus.Options{
		SkipMalformed: s.MalformedRows == config.RowPolicySkip,
	})
	if err != nil {
		return nil, err
	}
	if err := r.store(ctx, StageLoad, key, out, loaded); err != nil {
		return nil, err
	}
	r.corpus = loaded
	return loaded, nil
}

// Align returns the aligned corpus. Its key covers the corpus artifact, so a
// reloaded corpus always invalidates it.
func (r *Runner) Align(ctx context.Context) (*models.AlignedCorpus, error) {
	if r.aligned != nil {
		return r.aligned, nil
	}

	c, err := r.Load(ctx)
	if err != nil {
		return nil, err
	}

	s := r.settings
	out := r.path(artifacts.AlignedFile)
	key, err := artifacts.Fingerprint(
		[]string{r.path(artifacts.CorpusFile), s.EmbeddingsPath},
		s.EmbeddingsFormat, s.EmbeddingDim, s.Seed)
	if err != nil {
		return nil, err
	}

	var aligned models.AlignedCorpus
	if r.cache.Fresh(ctx, StageAlign, key, out) {
		err := artifacts.Load(out, &aligned)
		if err == nil {
			r.aligned = &aligned
			return r.aligned, nil
		}
		slog.Warn("[Pipeline] Cached alignment unreadable, rebuilding",
			slog.String("error", err.Error()))
	}

	_, vocab := align.BuildReviews(c)
	src, err := embeddings.Open(s.EmbeddingsFormat, s.EmbeddingsPath, s.EmbeddingDim, func(w string) bool {
		_, ok := vocab[w]
		return ok
	})
	if err != nil {
		return nil, err
	}

	result, err := align.Align(ctx, c, src, align.Options{Seed: s.Seed})
	if err != nil {
		return nil, err
	}
	if err := r.store(ctx, StageAlign, key, out, result); err != nil {
		return nil, err
	}
	r.aligned = result
	return result, nil
}

func (r *Runner) store(ctx context.Context, stage, key, path string, v any) error {
	if err := artifacts.Save(path, v); err != nil {
		return fmt.Errorf("failed to save %s artifact: %w", stage, err)
	}
	if err := r.cache.Commit(ctx, stage, key); err != nil {
		// the artifact is valid; the next run simply rebuilds it
		slog.Warn("[Pipeline] Failed to record stage key",
			slog.String("stage", stage),
			slog.String("error", err.Error()))
	}
	slog.Info("[Pipeline] Stage artifact written",
		slog.String("stage", stage),
		slog.String("path", path))
	return nil
}
