package cnn

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/spacesedan/sstflow/internal/evaluation"
	"github.com/spacesedan/sstflow/internal/models"
	"github.com/spacesedan/sstflow/internal/utils"
)

type adadelta struct {
	lr, rho, eps float64
	accGrad      []float64
	accDelta     []float64
}

func newAdadelta(n int, lr, rho, eps float64) *adadelta {
	return &adadelta{
		lr:       lr,
		rho:      rho,
		eps:      eps,
		accGrad:  make([]float64, n),
		accDelta: make([]float64, n),
	}
}

func (a *adadelta) step(params, grad []float64) {
	for i, g := range grad {
		a.accGrad[i] = a.rho*a.accGrad[i] + (1-a.rho)*g*g
		delta := math.Sqrt(a.accDelta[i]+a.eps) / math.Sqrt(a.accGrad[i]+a.eps) * g
		a.accDelta[i] = a.rho*a.accDelta[i] + (1-a.rho)*delta*delta
		params[i] -= a.lr * delta
	}
}

// Fit trains for the configured number of epochs, shuffling every epoch, and
// scores the validation set after each one when it is non-empty.
func (m *Model) Fit(ctx context.Context, x [][]int, y []float64, valX [][]int, valY []float64) ([]models.EpochStats, error) {
	if len(x) == 0 {
		return nil, fmt.Errorf("%w: no training samples", ErrBadInput)
	}
	if len(x) != len(y) || len(valX) != len(valY) {
		return nil, fmt.Errorf("%w: samples and targets differ in length", ErrBadInput)
	}
	if err := m.checkInput(x); err != nil {
		return nil, err
	}
	if err := m.checkInput(valX); err != nil {
		return nil, err
	}

	slog.Info("[CNN] Training",
		slog.Int("samples", len(x)),
		slog.Int("params", m.NumParams()),
		slog.Int("epochs", m.cfg.Epochs),
		slog.Int("batch_size", m.cfg.BatchSize))

	ws := m.newWorkspace()
	ws.training = true
	grad := make([]float64, len(m.params))
	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}
	bx := make([][]int, 0, m.cfg.BatchSize)
	by := make([]float64, 0, m.cfg.BatchSize)

	history := make([]models.EpochStats, 0, m.cfg.Epochs)
	for epoch := 1; epoch <= m.cfg.Epochs; epoch++ {
		start := time.Now()
		m.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

		total := 0.0
		for _, batch := range utils.Chunks(order, m.cfg.BatchSize) {
			select {
			case <-ctx.Done():
				slog.Warn("[CNN] context canceled, stopping training",
					slog.Int("epoch", epoch))
				return history, ctx.Err()
			default:
			}

			bx, by = bx[:0], by[:0]
			for _, i := range batch {
				bx = append(bx, x[i])
				by = append(by, y[i])
			}

			loss := m.batchGradient(ws, bx, by, grad)
			m.opt.step(m.params, grad)
			total += loss * float64(len(batch))
		}

		stats := models.EpochStats{Epoch: epoch, TrainLoss: total / float64(len(x))}
		attrs := []any{
			slog.Int("epoch", epoch),
			slog.Float64("loss", stats.TrainLoss),
		}
		if len(valX) > 0 {
			pred, err := m.Predict(valX)
			if err != nil {
				return history, err
			}
			scores, err := evaluation.Evaluate(valY, pred)
			if err != nil {
				return history, err
			}
			stats.Validation = scores
			attrs = append(attrs,
				slog.Float64("val_mse", scores.MSE),
				slog.Float64("val_mae", scores.MAE),
				slog.Float64("val_pearson", scores.Pearson))
		}
		attrs = append(attrs, slog.Duration("elapsed", time.Since(start)))
		slog.Info("[CNN] Epoch finished", attrs...)

		history = append(history, stats)
	}
	return history, nil
}

type snapshot struct {
	Config Config    `msgpack:"config"`
	Rows   int       `msgpack:"rows"`
	Dim    int       `msgpack:"dim"`
	Params []float64 `msgpack:"params"`
}

// Save writes the configuration and trained weights. The embedding matrix is
// not included; it travels in the aligner's artifact.
func (m *Model) Save(w io.Writer) error {
	rows, dim := m.embed.Dims()
	return msgpack.NewEncoder(w).Encode(snapshot{
		Config: m.cfg,
		Rows:   rows,
		Dim:    dim,
		Params: m.params,
	})
}

// Load restores a model saved with Save on top of the same embedding matrix.
func Load(r io.Reader, embedding models.EmbeddingMatrix) (*Model, error) {
	var snap snapshot
	if err := msgpack.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode model: %w", err)
	}
	if snap.Rows != embedding.Rows || snap.Dim != embedding.Dim {
		return nil, fmt.Errorf("%w: model trained on %dx%d embeddings, got %dx%d",
			ErrBadConfig, snap.Rows, snap.Dim, embedding.Rows, embedding.Dim)
	}

	m, err := newShell(snap.Config, embedding)
	if err != nil {
		return nil, err
	}
	if len(snap.Params) != len(m.params) {
		return nil, fmt.Errorf("%w: %d saved parameters, model has %d",
			ErrBadConfig, len(snap.Params), len(m.params))
	}
	copy(m.params, snap.Params)
	return m, nil
}
