// Package pipeline chains the loader, aligner and trainer over one artifact
// cache, so each command reuses whatever earlier stages already produced.
package pipeline

import (
	"context"
	"path/filepath"

	"github.com/spacesedan/sstflow/config"
	"github.com/spacesedan/sstflow/internal/artifacts"
	"github.com/spacesedan/sstflow/internal/models"
)

const (
	StageLoad  = "load"
	StageAlign = "align"
	StageTrain = "train"
)

// ResultSink receives every finished run.
type ResultSink interface {
	Publish(ctx context.Context, summary models.RunSummary, predictions []models.Prediction) error
}

// Runner holds one invocation. Stage results are kept once produced, so a
// later stage that needs them does not hash or decode its inputs again.
type Runner struct {
	settings config.Settings
	cache    *artifacts.Cache
	sinks    []ResultSink

	corpus  *models.Corpus
	aligned *models.AlignedCorpus
}

func New(settings config.Settings, cache *artifacts.Cache, sinks ...ResultSink) *Runner {
	return &Runner{settings: settings, cache: cache, sinks: sinks}
}

func (r *Runner) path(name string) string {
	return filepath.Join(r.settings.WorkDir, name)
}
