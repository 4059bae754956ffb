package report

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/sstflow/internal/models"
)

func summary() models.RunSummary {
	start := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	return models.RunSummary{
		RunID:          "run-42",
		StartedAt:      start,
		FinishedAt:     start.Add(90 * time.Second),
		TrainSamples:   8544,
		ValidSamples:   1101,
		TestSamples:    2210,
		VocabularyRows: 17000,
		EmbeddingDim:   300,
		Hyperparameters: models.Hyperparameters{
			MaxLen: 56, BatchSize: 32, Epochs: 2, Filters: 60, KernelSize: 3,
			PoolSize: 2, HiddenDim: 70, Dropout: 0.25, Seed: 1337,
		},
		History: []models.EpochStats{
			{Epoch: 1, TrainLoss: 0.08, Validation: models.Scores{MSE: 0.07, MAE: 0.2, Pearson: 0.4}},
			{Epoch: 2, TrainLoss: 0.05, Validation: models.Scores{MSE: 0.06, MAE: 0.19, Pearson: 0.5}},
		},
		Test:     models.Scores{MSE: 0.061, MAE: 0.19, Pearson: 0.52},
		Baseline: models.Scores{MSE: 0.09, MAE: 0.24, Pearson: math.NaN()},
	}
}

func TestMarkdown(t *testing.T) {
	md := Markdown(summary())

	assert.Contains(t, md, "# Training run run-42")
	assert.Contains(t, md, "| train | 8544 |")
	assert.Contains(t, md, "| filters | 60 x 3 |")
	assert.Contains(t, md, "| 2 | 0.0500 | 0.0600 | 0.1900 | 0.5000 |")
	assert.Contains(t, md, "| CNN | 0.0610 | 0.1900 | 0.5200 |")
	assert.Contains(t, md, "| VADER baseline | 0.0900 | 0.2400 | n/a |")
	assert.Contains(t, md, "(1m30s)")
}

func TestHTML_RendersTables(t *testing.T) {
	html := string(HTML(Markdown(summary())))

	assert.Contains(t, html, "<h1>Training run run-42</h1>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "<td>VADER baseline</td>")
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	mdPath := filepath.Join(dir, "report.md")
	htmlPath := filepath.Join(dir, "report.html")

	require.NoError(t, Write(summary(), mdPath, htmlPath))

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	assert.Equal(t, Markdown(summary()), string(md))

	html, err := os.ReadFile(htmlPath)
	require.NoError(t, err)
	assert.Contains(t, string(html), "<!DOCTYPE html>")
}
