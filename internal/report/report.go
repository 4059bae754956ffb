// Package report renders a finished training run as markdown and HTML.
package report

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/russross/blackfriday/v2"

	"github.com/spacesedan/sstflow/internal/models"
)

func metric(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.4f", v)
}

// Markdown lays out dataset sizes, hyper-parameters, the epoch history and the
// test metrics of the model next to the lexicon baseline.
func Markdown(s models.RunSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# Training run %s\n\n", s.RunID)
	fmt.Fprintf(&b, "Started %s, finished %s (%s).\n\n",
		s.StartedAt.Format("2006-01-02 15:04:05"),
		s.FinishedAt.Format("2006-01-02 15:04:05"),
		s.FinishedAt.Sub(s.StartedAt).Round(time.Millisecond))

	b.WriteString("## Data\n\n")
	b.WriteString("| split | sentences |\n|---|---|\n")
	fmt.Fprintf(&b, "| train | %d |\n| validation | %d |\n| test | %d |\n\n",
		s.TrainSamples, s.ValidSamples, s.TestSamples)
	fmt.Fprintf(&b, "Embedding matrix: %d rows x %d dimensions.\n\n", s.VocabularyRows, s.EmbeddingDim)

	h := s.Hyperparameters
	b.WriteString("## Hyper-parameters\n\n")
	b.WriteString("| name | value |\n|---|---|\n")
	fmt.Fprintf(&b, "| max length | %d |\n", h.MaxLen)
	fmt.Fprintf(&b, "| batch size | %d |\n", h.BatchSize)
	fmt.Fprintf(&b, "| epochs | %d |\n", h.Epochs)
	fmt.Fprintf(&b, "| filters | %d x %d |\n", h.Filters, h.KernelSize)
	fmt.Fprintf(&b, "| pool size | %d |\n", h.PoolSize)
	fmt.Fprintf(&b, "| hidden units | %d |\n", h.HiddenDim)
	fmt.Fprintf(&b, "| dropout | %.2f |\n", h.Dropout)
	fmt.Fprintf(&b, "| seed | %d |\n\n", h.Seed)

	if len(s.History) > 0 {
		b.WriteString("## History\n\n")
		b.WriteString("| epoch | train loss | val MSE | val MAE | val Pearson |\n|---|---|---|---|---|\n")
		for _, e := range s.History {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n", e.Epoch, metric(e.TrainLoss),
				metric(e.Validation.MSE), metric(e.Validation.MAE), metric(e.Validation.Pearson))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Test set\n\n")
	b.WriteString("| model | MSE | MAE | Pearson |\n|---|---|---|---|\n")
	fmt.Fprintf(&b, "| CNN | %s | %s | %s |\n", metric(s.Test.MSE), metric(s.Test.MAE), metric(s.Test.Pearson))
	fmt.Fprintf(&b, "| VADER baseline | %s | %s | %s |\n",
		metric(s.Baseline.MSE), metric(s.Baseline.MAE), metric(s.Baseline.Pearson))

	return b.String()
}

func HTML(markdown string) []byte {
	body := blackfriday.Run([]byte(markdown), blackfriday.WithExtensions(blackfriday.CommonExtensions))
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>sstflow run</title></head><body>\n")
	b.Write(body)
	b.WriteString("</body></html>\n")
	return []byte(b.String())
}

// Write stores both renderings of s.
func Write(s models.RunSummary, markdownPath, htmlPath string) error {
	md := Markdown(s)
	if err := os.WriteFile(markdownPath, []byte(md), 0o644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.WriteFile(htmlPath, HTML(md), 0o644); err != nil {
		return fmt.Errorf("failed to write html report: %w", err)
	}
	return nil
}
