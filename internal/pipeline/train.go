package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/spacesedan/sstflow/internal/artifacts"
	"github.com/spacesedan/sstflow/internal/cnn"
	"github.com/spacesedan/sstflow/internal/evaluation"
	"github.com/spacesedan/sstflow/internal/models"
	"github.com/spacesedan/sstflow/internal/report"
	"github.com/spacesedan/sstflow/internal/sentiment"
	"github.com/spacesedan/sstflow/internal/sequence"
)

func (r *Runner) modelConfig() cnn.Config {
	s := r.settings
	cfg := cnn.DefaultConfig()
	cfg.MaxLen = s.MaxLen
	cfg.Filters = s.Filters
	cfg.KernelSize = s.KernelSize
	cfg.PoolSize = s.PoolSize
	cfg.HiddenDim = s.HiddenDim
	cfg.Dropout = s.Dropout
	cfg.BatchSize = s.BatchSize
	cfg.Epochs = s.Epochs
	cfg.Seed = s.Seed
	return cfg
}

// Train fits the regressor on the aligned corpus and scores it, and the
// lexicon baseline, on the test split. The weights, a JSON summary and the
// report land in the work directory before the summary is handed to the sinks.
func (r *Runner) Train(ctx context.Context) (models.RunSummary, error) {
	aligned, err := r.Align(ctx)
	if err != nil {
		return models.RunSummary{}, err
	}

	runID := uuid.NewString()
	started := time.Now()
	slog.Info("[Trainer] Starting run", slog.String("run_id", runID))

	ds := sequence.BuildDataset(aligned, r.settings.MaxLen)
	if ds.Train.Len() == 0 || ds.Test.Len() == 0 {
		return models.RunSummary{}, fmt.Errorf("need train and test sentences, got %d and %d",
			ds.Train.Len(), ds.Test.Len())
	}

	cfg := r.modelConfig()
	model, err := cnn.New(cfg, aligned.Matrix)
	if err != nil {
		return models.RunSummary{}, err
	}

	history, err := model.Fit(ctx, ds.Train.X, ds.Train.Y, ds.Validation.X, ds.Validation.Y)
	if err != nil {
		return models.RunSummary{}, err
	}

	predicted, err := model.Predict(ds.Test.X)
	if err != nil {
		return models.RunSummary{}, err
	}
	testScores, err := evaluation.Evaluate(ds.Test.Y, predicted)
	if err != nil {
		return models.RunSummary{}, err
	}

	baseline := sentiment.BaselineScores(ds.Test.Texts)
	baselineScores, err := evaluation.Evaluate(ds.Test.Y, baseline)
	if err != nil {
		return models.RunSummary{}, err
	}

	slog.Info("[Trainer] Test set scored",
		slog.Float64("mse", testScores.MSE),
		slog.Float64("mae", testScores.MAE),
		slog.Float64("pearson", testScores.Pearson),
		slog.Float64("baseline_mse", baselineScores.MSE),
		slog.Float64("baseline_pearson", baselineScores.Pearson))

	summary := models.RunSummary{
		RunID:          runID,
		StartedAt:      started,
		FinishedAt:     time.Now(),
		TrainSamples:   ds.Train.Len(),
		ValidSamples:   ds.Validation.Len(),
		TestSamples:    ds.Test.Len(),
		VocabularyRows: aligned.Matrix.Rows,
		EmbeddingDim:   aligned.Matrix.Dim,
		Hyperparameters: models.Hyperparameters{
			MaxLen:     cfg.MaxLen,
			BatchSize:  cfg.BatchSize,
			Epochs:     cfg.Epochs,
			Filters:    cfg.Filters,
			KernelSize: cfg.KernelSize,
			PoolSize:   cfg.PoolSize,
			HiddenDim:  cfg.HiddenDim,
			Dropout:    cfg.Dropout,
			Seed:       cfg.Seed,
		},
		History:  history,
		Test:     testScores,
		Baseline: baselineScores,
	}

	predictions := make([]models.Prediction, len(predicted))
	for i := range predicted {
		predictions[i] = models.Prediction{
			RunID:     runID,
			Index:     i,
			Text:      ds.Test.Texts[i],
			Expected:  ds.Test.Y[i],
			Predicted: predicted[i],
			Baseline:  baseline[i],
		}
	}

	if err := r.writeRun(model, summary); err != nil {
		return summary, err
	}
	return summary, r.publish(ctx, summary, predictions)
}

func (r *Runner) writeRun(model *cnn.Model, summary models.RunSummary) error {
	if err := os.MkdirAll(r.settings.WorkDir, 0o755); err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}

	f, err := os.Create(r.path(artifacts.ModelFile))
	if err != nil {
		return fmt.Errorf("failed to create model file: %w", err)
	}
	if err := model.Save(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to save model: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to save model: %w", err)
	}

	data, err := json.MarshalIndent(summary.Finite(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	if err := os.WriteFile(r.path(artifacts.SummaryFile), data, 0o644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}

	if err := report.Write(summary, r.path(artifacts.ReportFile), r.path(artifacts.ReportHTML)); err != nil {
		return err
	}

	slog.Info("[Trainer] Run written",
		slog.String("run_id", summary.RunID),
		slog.String("dir", r.settings.WorkDir))
	return nil
}

// publish offers the run to every sink; one failing sink does not stop the
// others.
func (r *Runner) publish(ctx context.Context, summary models.RunSummary, predictions []models.Prediction) error {
	var errs []error
	for _, sink := range r.sinks {
		if err := sink.Publish(ctx, summary, predictions); err != nil {
			slog.Error("[Trainer] Failed to publish run",
				slog.String("run_id", summary.RunID),
				slog.String("sink", fmt.Sprintf("%T", sink)),
				slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
